// Package placeholder protects markup inside listing descriptions (HTML
// comments, tags, character entities and URLs) during translation by
// replacing it with numbered markers ([PH0], [PH1], …) that the model is
// instructed to preserve. Restore puts the originals back afterwards.
package placeholder

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	// HTML comments, may span lines
	reComment = regexp.MustCompile(`(?s)<!--.*?-->`)

	// HTML tags: opening, closing, and self-closing
	reHTMLTag = regexp.MustCompile(`</?[a-zA-Z][^<>]*>`)

	// named and numeric character references: &nbsp; &#8211; &#x2013;
	reEntity = regexp.MustCompile(`&(?:[a-zA-Z][a-zA-Z0-9]{1,31}|#[0-9]{1,7}|#[xX][0-9a-fA-F]{1,6});`)

	// bare links
	reURL = regexp.MustCompile(`https?://[^\s<>"']+`)

	// placeholder reference in translated text, tolerating inner spaces
	rePlaceholder = regexp.MustCompile(`\[\s*PH\s*(\d+)\s*\]`)

	reDoubleSpace = regexp.MustCompile(`[ \t]{2,}`)
)

// Protect replaces markup with numbered placeholders in the order it is
// found. It returns the modified text and the captured originals.
func Protect(text string) (string, []string) {
	var markers []string

	replace := func(match string) string {
		id := fmt.Sprintf("[PH%d]", len(markers))
		markers = append(markers, match)
		return id
	}

	// Comments first so tags inside them stay in one marker.
	text = reComment.ReplaceAllStringFunc(text, replace)
	text = reHTMLTag.ReplaceAllStringFunc(text, replace)
	text = reEntity.ReplaceAllStringFunc(text, replace)
	text = reURL.ReplaceAllStringFunc(text, replace)

	return text, markers
}

// Restore substitutes [PHn] markers in text with the originals captured by
// Protect. Unknown indices are left as they are.
func Restore(text string, markers []string) string {
	return rePlaceholder.ReplaceAllStringFunc(text, func(match string) string {
		sub := rePlaceholder.FindStringSubmatch(match)
		idx, err := strconv.Atoi(sub[1])
		if err != nil || idx < 0 || idx >= len(markers) {
			return match
		}
		return markers[idx]
	})
}

// InstructionHint is appended to free-text instructions so the model
// leaves placeholders intact.
func InstructionHint() string {
	return "Preserve all [PHn] markers exactly as they appear. Do not translate, move or remove them."
}

// Validate returns the indices of markers missing from the translated text.
func Validate(text string, markers []string) []int {
	present := make(map[int]bool)
	for _, m := range rePlaceholder.FindAllStringSubmatch(text, -1) {
		if idx, err := strconv.Atoi(m[1]); err == nil {
			present[idx] = true
		}
	}
	var missing []int
	for i := range markers {
		if !present[i] {
			missing = append(missing, i)
		}
	}
	return missing
}

// Strip removes any placeholder left in text, for the case where the
// model invented markers that have no original.
func Strip(text string) string {
	text = rePlaceholder.ReplaceAllString(text, "")
	return strings.TrimSpace(reDoubleSpace.ReplaceAllString(text, " "))
}
