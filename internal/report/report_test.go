package report

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/orchestrator"
)

func fixture() (*listing.Record, *orchestrator.OrchestratorResult) {
	rec := &listing.Record{
		Title: "Acme Mata do Jogi",
		Brand: "Acme",
		Listings: map[string]*listing.Bundle{
			"DE": {Title: "Acme Yogamatte", Bullets: []string{"Rutschfest", "Leicht"}, Description: "<p>Gute <b>Matte</b></p>", Translated: true},
			"FR": {Title: "Acme Mata do Jogi", Bullets: []string{"Antypoślizgowa"}, FallbackUsed: true},
		},
		Debug: []string{"source language: PL", "FR: fallback at TranslatingTitle: boom"},
	}
	res := &orchestrator.OrchestratorResult{
		SourceLanguage: "PL",
		Duration:       1234 * time.Millisecond,
		Outcomes: []orchestrator.Outcome{
			{Marketplace: "DE", Language: "DE", State: orchestrator.StateDone, Translated: true, Retries: 1},
			{Marketplace: "FR", Language: "FR", State: orchestrator.StateFallback, FallbackUsed: true, Reason: "boom"},
		},
	}
	return rec, res
}

func TestMarkdown(t *testing.T) {
	md := string(Markdown(fixture()))

	assert.True(t, strings.HasPrefix(md, "# Acme Mata do Jogi\n"))
	assert.Contains(t, md, "Source language: PL")
	assert.Contains(t, md, "Translated: 1, fallbacks: 1, duration: 1.234s")
	assert.Contains(t, md, "| DE | DE | Done | 1 |  |")
	assert.Contains(t, md, "| FR | FR | Fallback | 0 | fallback: boom |")
	assert.Contains(t, md, "## DE\n\n**Acme Yogamatte**\n\n- Rutschfest\n- Leicht\n")
	assert.Contains(t, md, "Gute Matte", "description markup is stripped")
	assert.Contains(t, md, "```\nsource language: PL\n")
	assert.Less(t, strings.Index(md, "## DE"), strings.Index(md, "## FR"))
}

func TestMarkdown_NoResult(t *testing.T) {
	rec, _ := fixture()
	md := string(Markdown(rec, nil))

	assert.NotContains(t, md, "| Marketplace |")
	assert.Contains(t, md, "## FR")
}

func TestMarkdown_EscapesTableCells(t *testing.T) {
	rec, res := fixture()
	res.Outcomes[1].Reason = "a | b"

	md := string(Markdown(rec, res))
	assert.Contains(t, md, `fallback: a \| b`)
}

func TestRender(t *testing.T) {
	rec, res := fixture()

	html, err := Render("html", rec, res)
	require.NoError(t, err)
	assert.Contains(t, html, "<h1>Acme Mata do Jogi</h1>")
	assert.Contains(t, html, "<table>")

	txt, err := Render("txt", rec, res)
	require.NoError(t, err)
	assert.NotContains(t, txt, "<")
	assert.Contains(t, txt, "Acme Yogamatte")

	md, err := Render("", rec, res)
	require.NoError(t, err)
	assert.Equal(t, string(Markdown(rec, res)), md)

	_, err = Render("pdf", rec, res)
	assert.Error(t, err)
}

func TestStripHTMLTags(t *testing.T) {
	assert.Equal(t, "Hello world", StripHTMLTags("<p>Hello <em>world</em></p>"))
	assert.Equal(t, "plain", StripHTMLTags("plain"))
}
