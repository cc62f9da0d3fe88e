// Package fitter pads or truncates titles to a marketplace's length bounds.
// Lengths are counted in runes.
package fitter

import (
	"strings"
	"unicode"

	"github.com/valpere/listran/internal/lexicon"
)

// Ellipsis marks a truncated title.
const Ellipsis = "…"

// Fit returns title adjusted to [min, max]. A short title gets padding
// phrases appended in order, skipping phrases it already contains and
// phrases that would overflow max; a long title is cut at a word boundary
// and ends with Ellipsis. Titles already in range are returned unchanged.
func Fit(title string, padding []string, min, max int) string {
	n := lexicon.RuneLen(title)
	switch {
	case max > 0 && n > max:
		return truncate(title, min, max)
	case n < min:
		return pad(title, padding, min, max)
	}
	return title
}

func pad(title string, padding []string, min, max int) string {
	for _, phrase := range padding {
		if lexicon.RuneLen(title) >= min {
			break
		}
		phrase = strings.TrimSpace(phrase)
		if phrase == "" || strings.Contains(strings.ToLower(title), strings.ToLower(phrase)) {
			continue
		}
		candidate := phrase
		if title != "" {
			candidate = title + " " + phrase
		}
		if max > 0 && lexicon.RuneLen(candidate) > max {
			continue
		}
		title = candidate
	}
	return title
}

func truncate(title string, min, max int) string {
	limit := max - lexicon.RuneLen(Ellipsis)
	if limit <= 0 {
		return string([]rune(title)[:max])
	}
	runes := []rune(title)[:limit]

	cut := limit
	for i := limit - 1; i > limit/2; i-- {
		if unicode.IsSpace(runes[i]) {
			if i >= min {
				cut = i
			}
			break
		}
	}

	head := strings.TrimRightFunc(string(runes[:cut]), func(r rune) bool {
		return unicode.IsSpace(r) || unicode.IsPunct(r)
	})
	return head + Ellipsis
}
