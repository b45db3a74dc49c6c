package report

import (
	"bytes"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func renderedPage(t *testing.T, rep *GymReport) *goquery.Document {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, rep.WriteHTML(&buf))
	doc, err := goquery.NewDocumentFromReader(&buf)
	require.NoError(t, err)
	return doc
}

func TestWriteHTML(t *testing.T) {
	rep, err := Render("gym-1", sampleDetail(), testCatalogs(), DefaultTeams())
	require.NoError(t, err)

	doc := renderedPage(t, rep)

	body, _ := doc.Find("body").Attr("id")
	assert.Equal(t, "Mystic", body)
	assert.Equal(t, "Brandenburg Gate", doc.Find("h1").Text())

	banner := doc.Find("h2[style]")
	require.Equal(t, 1, banner.Length())
	assert.Equal(t, "Level 4 Mystic gym", banner.Text())
	style, _ := banner.Attr("style")
	assert.Contains(t, style, "rgba(74,138,202,.6)")

	link, _ := doc.Find("p a").Attr("href")
	assert.Equal(t, "gym_gym-1_chart.html", link)
}

func TestWriteHTMLRendersEveryMember(t *testing.T) {
	// A level-1 gym sizes its table for 2 rows, but a roster of 5 must still
	// render all 5 entries.
	detail := sampleDetail()
	detail.GymState.FortData.GymPoints = nil
	member := detail.GymState.Memberships[0]
	detail.GymState.Memberships = nil
	for i := 0; i < 5; i++ {
		m := member
		m.PokemonData.CP = 1000 + i
		detail.GymState.Memberships = append(detail.GymState.Memberships, m)
	}

	rep, err := Render("gym-1", detail, testCatalogs(), DefaultTeams())
	require.NoError(t, err)
	assert.Equal(t, 2, rep.TableRows())

	doc := renderedPage(t, rep)

	table := doc.Find("table#t01")
	rows, _ := table.Attr("rows")
	assert.Equal(t, "2", rows)

	// Header row plus one row per member.
	assert.Equal(t, 6, table.Find("tr").Length())
	assert.Equal(t, 5, table.Find("td img").Length())
}

func TestWriteHTMLEscapesRemoteText(t *testing.T) {
	detail := sampleDetail()
	detail.Name = `<script>alert("x")</script>`

	rep, err := Render("gym-1", detail, testCatalogs(), DefaultTeams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteHTML(&buf))
	assert.NotContains(t, buf.String(), "<script>alert")
}

func TestWriteHTMLSpritePathUsesSpeciesID(t *testing.T) {
	rep, err := Render("gym-1", sampleDetail(), testCatalogs(), DefaultTeams())
	require.NoError(t, err)

	doc := renderedPage(t, rep)
	src, _ := doc.Find("td img").First().Attr("src")
	assert.Equal(t, "pokemon/059.gif", src)
}

func TestWriteRosterChart(t *testing.T) {
	rep, err := Render("gym-1", sampleDetail(), testCatalogs(), DefaultTeams())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, rep.WriteRosterChart(&buf))

	html := buf.String()
	assert.Contains(t, html, "echarts")
	assert.Contains(t, html, "Brandenburg Gate")
	assert.Contains(t, html, "Rex")
}

func TestPageNamesSanitised(t *testing.T) {
	rep := &GymReport{ID: "../evil/id"}
	assert.False(t, strings.Contains(rep.PageName(), "/"))
	assert.False(t, strings.Contains(rep.ChartName(), "/"))
}
