// Package cleaner removes formatting artifacts that survive output stripping:
// meta-comments in titles, bullet labels and numbering, and header lines the
// model split away from their body.
package cleaner

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/valpere/listran/internal/lexicon"
)

// --- Titles ---

var parentheticalRe = regexp.MustCompile(`\s*[(\[]([^()\[\]]*)[)\]]`)

// metaWords mark a parenthetical as commentary about the translation rather
// than part of the product name.
var metaWords = []string{
	"note", "notes", "translation", "translated", "literally", "literal", "original",
	"uwaga", "tłumaczenie", "hinweis", "anmerkung", "übersetzung", "wörtlich",
	"remarque", "traduction", "nota", "traduzione", "traducción",
	"opmerking", "vertaling", "poznámka", "překlad",
}

// languageWords are bare language names or codes the model appends,
// e.g. "(German)" or "[DE]".
var languageWords = []string{
	"pl", "de", "en", "fr", "it", "es", "nl", "cs",
	"polish", "german", "english", "french", "italian", "spanish", "dutch", "czech",
	"deutsch", "polski", "français", "italiano", "español", "nederlands", "čeština",
}

var spaceRe = regexp.MustCompile(`\s+`)

// CleanTitle keeps the first content-bearing line of text and strips
// parenthetical meta-comments, markdown emphasis and wrapping quotes.
func CleanTitle(text string) string {
	line := firstContentLine(text)

	line = parentheticalRe.ReplaceAllStringFunc(line, func(m string) string {
		inner := parentheticalRe.FindStringSubmatch(m)[1]
		if isMetaComment(inner) {
			return ""
		}
		return m
	})

	line = strings.ReplaceAll(line, "**", "")
	line = strings.Trim(strings.TrimSpace(line), "\"'«»“”„‘’`")
	line = strings.TrimLeft(line, "#*-• ")
	return spaceRe.ReplaceAllString(strings.TrimSpace(line), " ")
}

func isMetaComment(inner string) bool {
	words := lexicon.NewSet(inner)
	if len(words) == 0 {
		return true
	}
	if _, ok := words.AnyOf(metaWords); ok {
		return true
	}
	// "(German)", "(DE)", "(in German)"
	if len(words) <= 2 {
		if _, ok := words.AnyOf(languageWords); ok {
			return true
		}
	}
	return false
}

func firstContentLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if hasLetterOrDigit(line) {
			return line
		}
	}
	return ""
}

func hasLetterOrDigit(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return true
		}
	}
	return false
}

// --- Bullets ---

// bulletLabelRe matches "BULLET 1:", "Bullet point #2 -", "Punkt 3)" and the
// like, optionally inside markdown emphasis or after a list marker.
var bulletLabelRe = regexp.MustCompile(
	`(?i)^\s*(?:[-*•]\s+)?(?:\*\*)?(?:bullet(?:\s*point)?|punkt|point|punto|punt|odrážka|aufzählungspunkt)\s*#?\s*\d+\s*(?:\*\*)?\s*[:.)\-–]\s*(?:\*\*)?\s*`,
)

// numberingRe matches list numbering and markers: "1. ", "2) ", "- ", "• ".
var numberingRe = regexp.MustCompile(`^\s*(?:\d{1,2}\s*[.)]\s+|[-*•]\s+)`)

// CleanBullet strips bullet labels and numbering from one line.
func CleanBullet(text string) string {
	text = bulletLabelRe.ReplaceAllString(text, "")
	text = numberingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// --- Split pairs ---

const (
	// headerMaxRunes bounds a line that may be a split-off header.
	headerMaxRunes = 40
	// splitRatio is how many times longer the body must be than a header
	// that carries no formatting marker.
	splitRatio = 3
)

// MergeSplitPairs rejoins a short header line with the disproportionately
// long line that follows it: "Comfort:" + "Soft foam cushions…" becomes
// "Comfort: Soft foam cushions…". A header qualifies when it ends with a
// colon, is wrapped in markdown emphasis, is upper-case, or when the
// following line is at least three times its length.
func MergeSplitPairs(lines []string) []string {
	out := make([]string, 0, len(lines))
	for i := 0; i < len(lines); i++ {
		cur := strings.TrimSpace(lines[i])
		if i+1 < len(lines) {
			next := strings.TrimSpace(lines[i+1])
			if isSplitHeader(cur, next) {
				out = append(out, joinPair(cur, next))
				i++
				continue
			}
		}
		out = append(out, cur)
	}
	return out
}

func isSplitHeader(header, body string) bool {
	hl, bl := lexicon.RuneLen(header), lexicon.RuneLen(body)
	if hl == 0 || hl > headerMaxRunes || bl <= hl {
		return false
	}
	if looksLikeHeader(body) {
		return false
	}
	if hasFormattingMarker(header) {
		return true
	}
	return bl >= splitRatio*hl
}

func hasFormattingMarker(s string) bool {
	return strings.HasSuffix(s, ":") ||
		(strings.HasPrefix(s, "**") && strings.HasSuffix(s, "**")) ||
		IsUpper(s)
}

func looksLikeHeader(s string) bool {
	return lexicon.RuneLen(s) <= headerMaxRunes && hasFormattingMarker(s)
}

func joinPair(header, body string) string {
	header = strings.TrimSpace(strings.Trim(header, "*"))
	if strings.HasSuffix(header, ":") {
		return header + " " + body
	}
	return header + ": " + body
}

// IsUpper reports whether s has letters and none of them is lower-case.
func IsUpper(s string) bool {
	letters := 0
	for _, r := range s {
		if unicode.IsLetter(r) {
			letters++
			if unicode.IsLower(r) {
				return false
			}
		}
	}
	return letters > 0
}
