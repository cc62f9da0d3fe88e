// Package verifier decides whether a translated title, description or bullet
// set is actually in the target language and well-formed.
//
// The checks are deliberately approximate. They catch gross failures such as
// the model echoing the source text or answering in English, and can both
// over- and under-report on short strings.
package verifier

import (
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/valpere/listran/internal/cleaner"
	"github.com/valpere/listran/internal/lexicon"
	"github.com/valpere/listran/internal/profile"
)

const (
	// MinBullets is the number of bullets a translated set must keep.
	MinBullets = 5
	// MinDescriptionMarkers is the number of distinct target-language
	// markers a description must contain.
	MinDescriptionMarkers = 2
	// labelMaxRunes bounds lines that may be dropped as labels.
	labelMaxRunes = 40
)

// Verifier runs the per-content checks against a profile table.
type Verifier struct {
	profiles *profile.Table
	labels   map[string]struct{}
}

// New builds a Verifier. A nil table selects profile.Default().
func New(t *profile.Table) *Verifier {
	if t == nil {
		t = profile.Default()
	}
	labels := make(map[string]struct{})
	for _, p := range t.Profiles() {
		for _, l := range p.SectionLabels {
			labels[normalizeLabel(l)] = struct{}{}
		}
	}
	return &Verifier{profiles: t, labels: labels}
}

// TitleNeedsRetry reports whether a translated name still carries diacritics
// of another language, function words of the source language, or English
// function words when neither side is English. The reason names the first
// finding.
func (v *Verifier) TitleNeedsRetry(output, target, source string) (bool, string) {
	tp, ok := v.profiles.Lookup(target)
	if !ok {
		return false, ""
	}
	if strings.TrimSpace(output) == "" {
		return true, "empty title"
	}

	for _, r := range norm.NFC.String(output) {
		if !unicode.IsLetter(r) || tp.HasDiacritic(r) {
			continue
		}
		for _, p := range v.profiles.Profiles() {
			if p.Code != tp.Code && p.HasDiacritic(r) {
				return true, fmt.Sprintf("%s diacritic %q", p.Code, r)
			}
		}
	}

	words := lexicon.NewSet(output)
	own := lexicon.NewSet(strings.Join(tp.FunctionWords, " "))

	sp, hasSource := v.profiles.Lookup(source)
	if hasSource && sp.Code != tp.Code {
		if w, found := words.AnyOf(without(sp.FunctionWords, own)); found {
			return true, fmt.Sprintf("%s function word %q", sp.Code, w)
		}
	}

	if tp.Code != profile.English && (!hasSource || sp.Code != profile.English) {
		if en, ok := v.profiles.Lookup(profile.English); ok {
			if w, found := words.AnyOf(without(en.FunctionWords, own)); found {
				return true, fmt.Sprintf("English function word %q", w)
			}
		}
	}

	return false, ""
}

// DescriptionNeedsRetry reports whether output contains fewer than
// MinDescriptionMarkers distinct target-language markers.
func (v *Verifier) DescriptionNeedsRetry(output, target string) (bool, string) {
	tp, ok := v.profiles.Lookup(target)
	if !ok {
		return false, ""
	}
	n := lexicon.NewSet(output).CountOf(tp.DescriptionMarkers)
	if n < MinDescriptionMarkers {
		return true, fmt.Sprintf("%d %s markers", n, tp.Code)
	}
	return false, ""
}

// ParseBullets splits a translated bullet set into lines, strips labels and
// numbering, drops structural section headers, merges split header/body
// pairs and finally drops any remaining short upper-case or label-only line.
func (v *Verifier) ParseBullets(text string) []string {
	var lines []string
	for _, raw := range strings.Split(text, "\n") {
		line := cleaner.CleanBullet(raw)
		if line == "" || v.IsStructuralLabel(line) {
			continue
		}
		lines = append(lines, line)
	}

	out := make([]string, 0, len(lines))
	for _, line := range cleaner.MergeSplitPairs(lines) {
		if isLabelOnly(line) {
			continue
		}
		out = append(out, line)
	}
	return out
}

// BulletsNeedRetry reports whether fewer than want lines survived parsing.
func (v *Verifier) BulletsNeedRetry(lines []string, want int) bool {
	return len(lines) < want
}

// IsStructuralLabel reports whether line is a known section header such as
// "Key features:" or "**Vorteile**".
func (v *Verifier) IsStructuralLabel(line string) bool {
	_, ok := v.labels[normalizeLabel(line)]
	return ok
}

func isLabelOnly(line string) bool {
	if lexicon.RuneLen(line) >= labelMaxRunes {
		return false
	}
	return cleaner.IsUpper(line) || strings.HasSuffix(strings.TrimRight(line, "* "), ":")
}

func normalizeLabel(s string) string {
	s = strings.Trim(strings.TrimSpace(s), "*#:-–— ")
	return strings.Join(lexicon.Words(s), " ")
}

func without(list []string, exclude lexicon.Set) []string {
	out := make([]string, 0, len(list))
	for _, w := range list {
		if !exclude.Has(w) {
			out = append(out, w)
		}
	}
	return out
}
