package report

import (
	"fmt"
	"html/template"
	"io"

	"github.com/banshee-data/gymwatch/internal/security"
)

// gymPage is the static per-gym page. The stylesheet link and the sprite
// image paths are relative so the output directory can be served or opened
// from anywhere.
const gymPage = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<link rel="stylesheet" href="styles.css">
</head>
<body id="{{.Team.Label}}">
<h1>{{.Name}}</h1>
<h2>{{.Description}}</h2>
{{if .ImageURL}}<img id="main" src="{{.ImageURL}}" width="25%">
{{end}}<h2 style="background-color: {{.BannerCSS}}">Level {{.Level}} {{.Team.Label}} gym</h2>
<table cols="8" rows="{{.TableRows}}" id="t01">
<tr><th>Pokemon</th><th>Nickname</th><th>CP</th><th>HP</th><th>IV %</th><th>Owner</th><th>Quick move</th><th>Charge move</th></tr>
{{range .Members}}<tr>
<td><img src="pokemon/{{printf "%03d" .SpeciesID}}.gif" alt="{{.Species}}" title="{{.Species}}"></td>
<td>{{.Nickname}}</td>
<td>{{.CP}}</td>
<td>{{.HP}}</td>
<td>{{printf "%.2f" .IVPercent}}</td>
<td>{{.TrainerName}} (L{{.TrainerLevel}})</td>
<td>{{.Move1.Name}} ({{.Move1.Type}})</td>
<td>{{.Move2.Name}} ({{.Move2.Type}})</td>
</tr>
{{end}}</table>
<p><a href="{{.ChartHref}}">Roster chart</a></p>
</body>
</html>
`

var gymTemplate = template.Must(template.New("gym").Parse(gymPage))

type gymPageData struct {
	*GymReport
	BannerCSS template.CSS
	ChartHref string
}

// PageName is the output file name for a gym's HTML page.
func (r *GymReport) PageName() string {
	return "gym_" + security.SanitizeID(r.ID) + ".html"
}

// ChartName is the output file name for a gym's roster chart page.
func (r *GymReport) ChartName() string {
	return "gym_" + security.SanitizeID(r.ID) + "_chart.html"
}

// WriteHTML renders the gym page. The team colour is trusted CSS from our own
// table, not remote data, hence the template.CSS wrapping.
func (r *GymReport) WriteHTML(w io.Writer) error {
	data := gymPageData{
		GymReport: r,
		BannerCSS: template.CSS(r.Team.CSS),
		ChartHref: r.ChartName(),
	}
	if err := gymTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("rendering gym page %s: %w", r.ID, err)
	}
	return nil
}
