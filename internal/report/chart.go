package report

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// WriteRosterChart renders a standalone bar-chart page comparing the roster
// by CP and IV percentage. Members appear in roster order, which for a gym
// is weakest defender first.
func (r *GymReport) WriteRosterChart(w io.Writer) error {
	names := make([]string, 0, len(r.Members))
	cp := make([]opts.BarData, 0, len(r.Members))
	iv := make([]opts.BarData, 0, len(r.Members))
	for _, m := range r.Members {
		names = append(names, m.Nickname)
		cp = append(cp, opts.BarData{Value: m.CP})
		iv = append(iv, opts.BarData{Value: m.IVPercent})
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: r.Name, Width: "100%", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    r.Name,
			Subtitle: fmt.Sprintf("Level %d %s gym, %d defenders", r.Level, r.Team.Label, len(r.Members)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)
	bar.SetXAxis(names).
		AddSeries("CP", cp).
		AddSeries("IV %", iv)

	if err := bar.Render(w); err != nil {
		return fmt.Errorf("rendering roster chart %s: %w", r.ID, err)
	}
	return nil
}
