// Package postprocess removes model artifacts from translation output:
// reasoning blocks, echoed instructions, answer labels and wrapping quotes.
//
// It is applied to the raw text returned by the text-generation service
// before any verification runs.
package postprocess

import (
	"regexp"
	"sort"
	"strings"

	"github.com/valpere/listran/internal/lexicon"
)

// Clean removes reasoning blocks, a leading English answer label and outer
// quotes, and returns the trimmed result.
func Clean(text string) string {
	text = removeThinkingBlocks(text)
	text = removeAnswerLabel(text)
	text = removeQuoteWrapping(text)
	return strings.TrimSpace(text)
}

// RE2 has no backreferences, so every tag pair is spelled out.
var thinkingBlockRe = regexp.MustCompile(
	`(?is)<(?:thinking|think|reasoning|reflection)>.*?</(?:thinking|think|reasoning|reflection)>`,
)

// An opened tag with no closing one: the model was cut off mid-thought.
var truncatedThinkingRe = regexp.MustCompile(`(?is)<(?:thinking|think|reasoning|reflection)>.*$`)

func removeThinkingBlocks(text string) string {
	text = thinkingBlockRe.ReplaceAllString(text, "")
	text = truncatedThinkingRe.ReplaceAllString(text, "")
	return strings.TrimSpace(text)
}

// answerLabelRe matches the chatty lead-ins models put before listing
// content: "Here are the translated bullet points:", "Sure, here is the
// title in German:", "Translated description:". A colon is required.
var answerLabelRe = regexp.MustCompile(`(?i)^(?:(?:certainly|sure|of course|okay)[,.!]?\s*)?` +
	`(?:here(?:'s| is| are)\s+)?(?:the\s+|your\s+)?(?:translated\s+|localized\s+)?` +
	`(?:translation|text|title|product name|name|bullet points|bullets|description)` +
	`(?:\s+in\s+\p{L}+)?\s*:`)

func removeAnswerLabel(text string) string {
	if loc := answerLabelRe.FindStringIndex(text); loc != nil {
		return strings.TrimSpace(text[loc[1]:])
	}
	return text
}

// quotePairs maps an opening quote to the closers that may end it.
var quotePairs = map[rune]string{
	'"':      `"`,
	'\'':     `'`,
	'\u00AB': "\u00BB",
	'\u00BB': "\u00AB",
	'\u201E': "\u201C\u201D",
	'\u201C': "\u201D",
	'\u2018': "\u2019",
}

func removeQuoteWrapping(text string) string {
	runes := []rune(text)
	n := len(runes)
	if n < 2 {
		return text
	}
	closers, ok := quotePairs[runes[0]]
	if !ok || !strings.ContainsRune(closers, runes[n-1]) {
		return text
	}
	inner := runes[1 : n-1]
	// "A" and "B" is two quoted phrases, not one wrapped answer.
	for _, r := range inner {
		if r == runes[0] || strings.ContainsRune(closers, r) {
			return text
		}
	}
	return strings.TrimSpace(string(inner))
}

// amplifiedHeaderRe matches the directive header of an amplified retry when
// the model repeats it ahead of its answer.
var amplifiedHeaderRe = regexp.MustCompile(`(?i)^\s*translate\s+to\s+\p{L}+\s*:\s*`)

var paragraphSplitRe = regexp.MustCompile(`\n[ \t]*\n`)

// Stripper removes prompt leakage in every supported language.
type Stripper struct {
	markers  []string
	verbs    []string
	prefixRe *regexp.Regexp
}

// NewStripper builds a Stripper. markers are words that betray an echoed
// instruction ("must", "critical"); verbs are the imperatives such a
// paragraph always carries ("translate", "übersetze"); prefixes are labels
// such as "Übersetzung" that models put before the answer.
func NewStripper(markers, verbs, prefixes []string) *Stripper {
	s := &Stripper{
		markers: append(append([]string(nil), markers...), verbs...),
		verbs:   verbs,
	}

	sorted := append([]string(nil), prefixes...)
	sort.Slice(sorted, func(i, j int) bool { return len(sorted[i]) > len(sorted[j]) })
	quoted := make([]string, 0, len(sorted))
	for _, p := range sorted {
		if p = strings.TrimSpace(p); p != "" {
			quoted = append(quoted, regexp.QuoteMeta(p))
		}
	}
	if len(quoted) > 0 {
		// "Translation:", "**Übersetzung (DE):**", "Tłumaczenie :"
		s.prefixRe = regexp.MustCompile(`(?i)^\s*(?:\*\*)?(?:` + strings.Join(quoted, "|") +
			`)(?:\s*\([^)]*\))?\s*(?:\*\*)?\s*:\s*(?:\*\*)?\s*`)
	}
	return s
}

// Strip runs Clean, drops a leading instruction-echo paragraph and removes
// translation prefixes and an echoed amplified header.
func (s *Stripper) Strip(text string) string {
	text = Clean(text)
	text = s.dropInstructionParagraph(text)
	text = amplifiedHeaderRe.ReplaceAllString(text, "")
	if s.prefixRe != nil {
		text = s.prefixRe.ReplaceAllString(text, "")
	}
	return strings.TrimSpace(removeQuoteWrapping(strings.TrimSpace(text)))
}

// dropInstructionParagraph removes the first paragraph when it carries an
// instruction verb plus at least one more instruction word, and something
// else follows it.
func (s *Stripper) dropInstructionParagraph(text string) string {
	parts := paragraphSplitRe.Split(text, 2)
	if len(parts) < 2 || strings.TrimSpace(parts[1]) == "" {
		return text
	}
	words := lexicon.NewSet(parts[0])
	if _, ok := words.AnyOf(s.verbs); !ok || words.CountOf(s.markers) < 2 {
		return text
	}
	return strings.TrimSpace(parts[1])
}
