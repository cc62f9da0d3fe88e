// Package profile holds the static language and marketplace tables consumed
// by the localization pipeline: per-language heuristics (diacritics,
// function words, suffixes, padding phrases, label patterns) and the
// marketplace → language and title-limit maps.
package profile

import (
	_ "embed"
	"sort"
	"strings"
	"sync"

	"github.com/cockroachdb/errors"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"
)

//go:embed profiles.yaml
var defaultTables []byte

// English is the code of the language the secondary name pass targets.
const English = "EN"

// Profile describes one supported language.
type Profile struct {
	Code                string   `yaml:"code"`
	Name                string   `yaml:"name"`
	Tag                 string   `yaml:"tag"`
	Diacritics          string   `yaml:"diacritics"`
	FunctionWords       []string `yaml:"function_words"`
	DescriptionMarkers  []string `yaml:"description_markers"`
	Suffixes            []string `yaml:"suffixes"`
	Padding             []string `yaml:"padding"`
	TranslationPrefixes []string `yaml:"translation_prefixes"`
	InstructionMarkers  []string `yaml:"instruction_markers"`
	InstructionVerbs    []string `yaml:"instruction_verbs"`
	SectionLabels       []string `yaml:"section_labels"`

	tag language.Tag
}

// LanguageTag returns the parsed BCP 47 tag of the profile.
func (p *Profile) LanguageTag() language.Tag {
	return p.tag
}

// HasDiacritic reports whether r belongs to the language's alphabet extras.
func (p *Profile) HasDiacritic(r rune) bool {
	return strings.ContainsRune(p.Diacritics, r) ||
		strings.ContainsRune(strings.ToUpper(p.Diacritics), r)
}

// Limits bounds a marketplace title length in runes.
type Limits struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

type tables struct {
	Languages    []*Profile        `yaml:"languages"`
	Marketplaces map[string]string `yaml:"marketplaces"`
	TitleLimits  map[string]Limits `yaml:"title_limits"`
}

// Table is the immutable lookup over the loaded tables.
type Table struct {
	profiles     map[string]*Profile
	order        []*Profile
	marketplaces map[string]string
	limits       map[string]Limits
}

// Load parses a YAML table document.
func Load(data []byte) (*Table, error) {
	var raw tables
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "failed to parse profile tables")
	}

	t := &Table{
		profiles:     make(map[string]*Profile, len(raw.Languages)),
		marketplaces: make(map[string]string, len(raw.Marketplaces)),
		limits:       make(map[string]Limits, len(raw.TitleLimits)),
	}

	for _, p := range raw.Languages {
		p.Code = NormalizeCode(p.Code)
		if p.Code == "" {
			return nil, errors.New("language profile without code")
		}
		tag, err := language.Parse(p.Tag)
		if err != nil {
			return nil, errors.Wrapf(err, "profile %s: invalid tag %q", p.Code, p.Tag)
		}
		p.tag = tag
		if _, dup := t.profiles[p.Code]; dup {
			return nil, errors.Newf("duplicate language profile %s", p.Code)
		}
		t.profiles[p.Code] = p
		t.order = append(t.order, p)
	}

	for id, code := range raw.Marketplaces {
		code = NormalizeCode(code)
		if _, ok := t.profiles[code]; !ok {
			return nil, errors.Newf("marketplace %s: no profile for language %s", id, code)
		}
		t.marketplaces[strings.ToLower(id)] = code
	}

	for base, l := range raw.TitleLimits {
		if l.Max <= 0 || l.Min > l.Max {
			return nil, errors.Newf("title limits for %s: invalid range [%d, %d]", base, l.Min, l.Max)
		}
		t.limits[strings.ToLower(base)] = l
	}

	return t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the table built from the embedded profiles.yaml.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(defaultTables)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

// NormalizeCode maps "de", "de-DE" or "DE" to "DE".
func NormalizeCode(code string) string {
	code = strings.TrimSpace(code)
	if i := strings.IndexAny(code, "-_"); i > 0 {
		code = code[:i]
	}
	return strings.ToUpper(code)
}

// Lookup returns the profile for a language code.
func (t *Table) Lookup(code string) (*Profile, bool) {
	p, ok := t.profiles[NormalizeCode(code)]
	return p, ok
}

// Profiles returns every profile in declaration order.
func (t *Table) Profiles() []*Profile {
	return t.order
}

// LanguageFor returns the target language of a marketplace.
func (t *Table) LanguageFor(marketplace string) (string, bool) {
	code, ok := t.marketplaces[strings.ToLower(marketplace)]
	return code, ok
}

// Known reports whether the marketplace is configured.
func (t *Table) Known(marketplace string) bool {
	_, ok := t.LanguageFor(marketplace)
	return ok
}

// Marketplaces returns every configured marketplace id, sorted.
func (t *Table) Marketplaces() []string {
	ids := make([]string, 0, len(t.marketplaces))
	for id := range t.marketplaces {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// BaseMarketplace strips the regional suffix: "amazon_de" → "amazon".
func BaseMarketplace(marketplace string) string {
	marketplace = strings.ToLower(marketplace)
	if i := strings.IndexByte(marketplace, '_'); i > 0 {
		return marketplace[:i]
	}
	return marketplace
}

// LimitsFor returns the title bounds of the marketplace's base, falling back
// to the "default" entry.
func (t *Table) LimitsFor(marketplace string) Limits {
	if l, ok := t.limits[BaseMarketplace(marketplace)]; ok {
		return l
	}
	if l, ok := t.limits["default"]; ok {
		return l
	}
	return Limits{Min: 0, Max: 200}
}

// Detect maps an ISO 639-1 code (as returned by a language detector) to a
// configured profile code.
func (t *Table) Detect(iso string) (string, bool) {
	base, err := language.Parse(iso)
	if err != nil {
		return "", false
	}
	b, _ := base.Base()
	for _, p := range t.order {
		pb, _ := p.tag.Base()
		if pb == b {
			return p.Code, true
		}
	}
	return "", false
}
