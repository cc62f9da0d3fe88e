// Package report renders a finished localization run as Markdown, HTML or
// plain text.
package report

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/valpere/listran/internal/listing"
	"github.com/valpere/listran/internal/orchestrator"
)

// Markdown summarises rec after a run: one status table, then each
// marketplace's localized content, then the debug trace.
func Markdown(rec *listing.Record, res *orchestrator.OrchestratorResult) []byte {
	var b bytes.Buffer

	fmt.Fprintf(&b, "# %s\n\n", escape(rec.Title))
	if rec.Brand != "" {
		fmt.Fprintf(&b, "Brand: **%s**  \n", escape(rec.Brand))
	}
	if res != nil {
		fmt.Fprintf(&b, "Source language: %s  \n", orDash(res.SourceLanguage))
		fmt.Fprintf(&b, "Translated: %d, fallbacks: %d, duration: %s\n\n",
			res.Succeeded(), res.Failed(), res.Duration.Round(time.Millisecond))

		b.WriteString("| Marketplace | Language | State | Retries | Note |\n")
		b.WriteString("|---|---|---|---|---|\n")
		for _, o := range res.Outcomes {
			fmt.Fprintf(&b, "| %s | %s | %s | %d | %s |\n",
				o.Marketplace, o.Language, o.State, o.Retries, escape(note(o)))
		}
		b.WriteString("\n")
	}

	for _, id := range rec.Marketplaces() {
		bundle := rec.Listings[id]
		fmt.Fprintf(&b, "## %s\n\n", id)
		fmt.Fprintf(&b, "**%s**\n\n", escape(bundle.Title))
		for _, line := range bundle.Bullets {
			fmt.Fprintf(&b, "- %s\n", escape(line))
		}
		if len(bundle.Bullets) > 0 {
			b.WriteString("\n")
		}
		if d := strings.TrimSpace(StripHTMLTags(bundle.Description)); d != "" {
			fmt.Fprintf(&b, "%s\n\n", escape(d))
		}
	}

	if len(rec.Debug) > 0 {
		b.WriteString("## Trace\n\n```\n")
		for _, line := range rec.Debug {
			b.WriteString(line)
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}

	return b.Bytes()
}

func note(o orchestrator.Outcome) string {
	switch {
	case o.Skipped:
		return "skipped"
	case o.FallbackUsed:
		return "fallback: " + o.Reason
	}
	return ""
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

var mdEscaper = strings.NewReplacer("|", `\|`, "*", `\*`, "_", `\_`, "`", "\\`", "<", "&lt;", ">", "&gt;")

func escape(s string) string {
	return mdEscaper.Replace(s)
}

// ToHTML renders Markdown to HTML.
func ToHTML(md []byte) string {
	opts := html.RendererOptions{
		Flags: html.CommonFlags | html.HrefTargetBlank | html.CompletePage,
		Title: "Localization report",
	}
	renderer := html.NewRenderer(opts)
	ext := parser.CommonExtensions | parser.Attributes
	p := parser.NewWithExtensions(ext)
	doc := p.Parse(md)
	return string(markdown.Render(doc, renderer))
}

func ToPlainText(md []byte) string {
	return StripHTMLTags(ToHTML(md))
}

// StripHTMLTags drops everything between '<' and '>'.
func StripHTMLTags(htmlContent string) string {
	var result bytes.Buffer
	inTag := false

	for _, ch := range htmlContent {
		switch ch {
		case '<':
			inTag = true
		case '>':
			inTag = false
		default:
			if !inTag {
				result.WriteRune(ch)
			}
		}
	}

	return result.String()
}

// Render picks the output format by name: "md", "html" or "txt".
func Render(format string, rec *listing.Record, res *orchestrator.OrchestratorResult) (string, error) {
	md := Markdown(rec, res)
	switch strings.ToLower(format) {
	case "", "md", "markdown":
		return string(md), nil
	case "html":
		return ToHTML(md), nil
	case "txt", "text":
		return ToPlainText(md), nil
	}
	return "", errors.Newf("unknown report format %q", format)
}
