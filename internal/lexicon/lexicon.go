// Package lexicon tokenises text into lower-cased words for the
// whole-word heuristics used across the pipeline.
package lexicon

import (
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// Words splits text on every rune that is neither a letter nor a digit and
// returns the NFC-normalised, lower-cased tokens in order.
func Words(text string) []string {
	text = strings.ToLower(norm.NFC.String(text))
	return strings.FieldsFunc(text, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Set is a lookup of the distinct words of a text.
type Set map[string]struct{}

// NewSet tokenises text into a Set.
func NewSet(text string) Set {
	words := Words(text)
	s := make(Set, len(words))
	for _, w := range words {
		s[w] = struct{}{}
	}
	return s
}

// Has reports whether word occurs as a whole word.
func (s Set) Has(word string) bool {
	_, ok := s[strings.ToLower(norm.NFC.String(word))]
	return ok
}

// CountOf returns how many distinct words of list occur in the set.
func (s Set) CountOf(list []string) int {
	n := 0
	seen := make(map[string]struct{}, len(list))
	for _, w := range list {
		w = strings.ToLower(norm.NFC.String(w))
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := s[w]; ok {
			n++
		}
	}
	return n
}

// AnyOf returns the first word of list present in the set.
func (s Set) AnyOf(list []string) (string, bool) {
	for _, w := range list {
		if s.Has(w) {
			return w, true
		}
	}
	return "", false
}

// RuneLen counts characters the way marketplace limits do.
func RuneLen(s string) int {
	return len([]rune(s))
}
