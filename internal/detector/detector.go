// Package detector identifies the language of a listing when the record
// does not name its source language.
package detector

import (
	"strings"

	lingua "github.com/pemistahl/lingua-go"

	"github.com/valpere/listran/internal/profile"
)

// Detector wraps a lingua detector restricted to the supported profiles.
// Building it loads language models; reuse the instance.
type Detector struct {
	detector lingua.LanguageDetector
	profiles *profile.Table
}

// New builds a Detector for the languages of t. A nil table selects
// profile.Default().
func New(t *profile.Table) *Detector {
	if t == nil {
		t = profile.Default()
	}

	var codes []lingua.IsoCode639_1
	for _, p := range t.Profiles() {
		base, _ := p.LanguageTag().Base()
		code := lingua.GetIsoCode639_1FromValue(strings.ToUpper(base.String()))
		if code != lingua.UnknownIsoCode639_1 {
			codes = append(codes, code)
		}
	}

	builder := lingua.NewLanguageDetectorBuilder()
	var detector lingua.LanguageDetector
	if len(codes) >= 2 {
		detector = builder.FromIsoCodes639_1(codes...).Build()
	} else {
		detector = builder.FromAllLanguages().Build()
	}

	return &Detector{detector: detector, profiles: t}
}

func (d *Detector) Detect(text string) (lingua.Language, bool) {
	if strings.TrimSpace(text) == "" {
		return lingua.Unknown, false
	}
	return d.detector.DetectLanguageOf(text)
}

func (d *Detector) DetectISO(text string) (string, bool) {
	lang, ok := d.Detect(text)
	if !ok {
		return "", false
	}
	return lang.IsoCode639_1().String(), true
}

// Profile returns the profile code of the language text is written in.
func (d *Detector) Profile(text string) (string, bool) {
	iso, ok := d.DetectISO(text)
	if !ok {
		return "", false
	}
	return d.profiles.Detect(iso)
}
