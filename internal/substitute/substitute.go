// Package substitute replaces untranslated product names left inside
// bullets and descriptions with the verified translated name.
package substitute

import (
	"regexp"
	"strings"
)

// Substitute replaces every case-insensitive occurrence of "brand
// sourceName" with "brand translatedName" and then every remaining
// occurrence of sourceName with translatedName.
func Substitute(text, brand, sourceName, translatedName string) string {
	sourceName = strings.TrimSpace(sourceName)
	translatedName = strings.TrimSpace(translatedName)
	if text == "" || sourceName == "" || translatedName == "" || strings.EqualFold(sourceName, translatedName) {
		return text
	}

	if brand = strings.TrimSpace(brand); brand != "" {
		withBrand := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(brand) + `\s+` + literal(sourceName))
		text = withBrand.ReplaceAllLiteralString(text, brand+" "+translatedName)
	}
	return regexp.MustCompile(`(?i)`+literal(sourceName)).ReplaceAllLiteralString(text, translatedName)
}

// Lines applies Substitute to every line.
func Lines(lines []string, brand, sourceName, translatedName string) []string {
	out := make([]string, len(lines))
	for i, l := range lines {
		out[i] = Substitute(l, brand, sourceName, translatedName)
	}
	return out
}

// literal quotes s and lets any run of whitespace in it match any other.
func literal(s string) string {
	parts := strings.Fields(s)
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return strings.Join(parts, `\s+`)
}
