package translator

import (
	"strings"

	"github.com/valpere/listran/internal/placeholder"
	"github.com/valpere/listran/internal/profile"
)

// Mode selects the instruction template of a call.
type Mode int

const (
	// ModeName translates a product name.
	ModeName Mode = iota
	// ModeBullets translates a newline-separated bullet set line for line.
	ModeBullets
	// ModeFreeText translates unstructured text such as a description.
	ModeFreeText
)

func (m Mode) String() string {
	switch m {
	case ModeName:
		return "name"
	case ModeBullets:
		return "bullets"
	case ModeFreeText:
		return "freeText"
	}
	return "unknown"
}

const nameTemplate = `You are translating an e-commerce PRODUCT NAME into {lang}.
The input is the name of a product, not the name of a person or a place.
Translate every common noun and descriptive word into {lang}. Do not transliterate and do not keep words in the source language.
Keep brand names, model numbers and sizes unchanged.
Return only the translated product name on a single line, with no quotes, notes or explanations.`

const bulletsTemplate = `Translate the following product bullet points into {lang}, line by line.
Return exactly the same number of lines as the input, in the same order.
Preserve headers, bullet glyphs and separators such as ":" or "-" where they appear.
Do not merge, split or reorder lines. Do not add section headings, labels or numbering.
Return only the translated lines, with no notes or explanations.`

var freeTextTemplate = `Translate the following product description into {lang}.
` + placeholder.InstructionHint() + `
Return only the translation, with no notes or explanations.`

const amplifiedPrefix = `TRANSLATE TO {LANG}: the previous answer was not a proper {lang} translation.
Every word of your answer must be {lang}. Do not repeat these instructions.
`

// Instructions renders the instruction block for mode and target.
func Instructions(mode Mode, p *profile.Profile, amplified bool) string {
	var tmpl string
	switch mode {
	case ModeName:
		tmpl = nameTemplate
	case ModeBullets:
		tmpl = bulletsTemplate
	default:
		tmpl = freeTextTemplate
	}
	if amplified {
		tmpl = amplifiedPrefix + tmpl
	}

	name := p.Name
	if name == "" {
		name = p.Code
	}
	return strings.NewReplacer("{lang}", name, "{LANG}", languageName(p)).Replace(tmpl)
}
