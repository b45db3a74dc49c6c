package report

import (
	"bytes"
	_ "embed"
	"fmt"
	"io"
	"path/filepath"

	"github.com/banshee-data/gymwatch/internal/catalog"
	"github.com/banshee-data/gymwatch/internal/fsutil"
	"github.com/banshee-data/gymwatch/internal/monitoring"
	"github.com/banshee-data/gymwatch/internal/store"
)

//go:embed assets/styles.css
var defaultStylesheet []byte

// PublishStats counts the outcome of one publish pass.
type PublishStats struct {
	Rendered int
	Failed   int
}

// Publisher writes gym pages and charts into the web directory and echoes the
// text summary of each gym to its output writer. One gym failing to render
// never stops the others.
type Publisher struct {
	fs     fsutil.FileSystem
	webDir string
	cats   *catalog.Catalogs
	teams  TeamTable
	out    io.Writer
}

// NewPublisher creates a publisher writing pages under webDir and text
// summaries to out.
func NewPublisher(fs fsutil.FileSystem, webDir string, cats *catalog.Catalogs, teams TeamTable, out io.Writer) *Publisher {
	return &Publisher{fs: fs, webDir: webDir, cats: cats, teams: teams, out: out}
}

// PublishAll renders every gym record. Render or write failures are logged
// per gym and counted; the returned error covers only setup failures that
// make the whole pass impossible.
func (p *Publisher) PublishAll(gyms []store.StoredGym) (PublishStats, error) {
	var stats PublishStats

	if err := p.fs.MkdirAll(p.webDir, 0755); err != nil {
		return stats, fmt.Errorf("creating web directory: %w", err)
	}

	// Ship the stylesheet once; a hand-edited copy is left alone.
	cssPath := filepath.Join(p.webDir, "styles.css")
	if !p.fs.Exists(cssPath) {
		if err := p.fs.WriteFile(cssPath, defaultStylesheet, 0644); err != nil {
			return stats, fmt.Errorf("writing stylesheet: %w", err)
		}
	}

	for i := range gyms {
		if err := p.publishOne(&gyms[i]); err != nil {
			monitoring.Logf("skipping gym %s: %v", gyms[i].ID, err)
			stats.Failed++
			continue
		}
		stats.Rendered++
	}
	return stats, nil
}

func (p *Publisher) publishOne(gym *store.StoredGym) error {
	rep, err := Render(gym.ID, &gym.Detail, p.cats, p.teams)
	if err != nil {
		return err
	}

	var page bytes.Buffer
	if err := rep.WriteHTML(&page); err != nil {
		return err
	}
	if err := p.fs.WriteFile(filepath.Join(p.webDir, rep.PageName()), page.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing gym page: %w", err)
	}

	var chart bytes.Buffer
	if err := rep.WriteRosterChart(&chart); err != nil {
		return err
	}
	if err := p.fs.WriteFile(filepath.Join(p.webDir, rep.ChartName()), chart.Bytes(), 0644); err != nil {
		return fmt.Errorf("writing roster chart: %w", err)
	}

	if p.out != nil {
		fmt.Fprintln(p.out, rep.Text())
	}
	return nil
}
