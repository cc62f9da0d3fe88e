// Package listing holds the record shape exchanged with the localization
// pipeline: one source product plus a per-marketplace map of bundles.
package listing

import (
	"sort"
	"strings"
	"unicode"

	"github.com/cockroachdb/errors"
	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// ErrInvalidRecord marks a record whose shape prevents any processing.
var ErrInvalidRecord = errors.New("invalid listing record")

// Bundle is the title/bullets/description triple for one marketplace.
type Bundle struct {
	Title        string   `json:"title" yaml:"title"`
	Bullets      []string `json:"bullets" yaml:"bullets"`
	Description  string   `json:"description" yaml:"description"`
	Language     string   `json:"language" yaml:"language"`
	Translated   bool     `json:"translated" yaml:"translated"`
	FallbackUsed bool     `json:"fallback_used" yaml:"fallback_used"`
}

// Clone returns a deep copy so callers can keep an untouched snapshot.
func (b *Bundle) Clone() *Bundle {
	c := *b
	if b.Bullets != nil {
		c.Bullets = append([]string(nil), b.Bullets...)
	}
	return &c
}

// Product is the immutable product metadata the pipeline reads names from.
type Product struct {
	Title string `json:"title" yaml:"title"`
	Brand string `json:"brand" yaml:"brand"`
}

// RawName returns the product title with a leading brand prefix removed.
func (p Product) RawName() string {
	return StripBrand(p.Title, p.Brand)
}

// StripBrand removes brand from the start of title together with any
// separator that follows it. Titles without the prefix are returned trimmed.
func StripBrand(title, brand string) string {
	title = strings.TrimSpace(title)
	brand = strings.TrimSpace(brand)
	if brand == "" || len(title) < len(brand) {
		return title
	}
	if !strings.EqualFold(title[:len(brand)], brand) {
		return title
	}
	rest := title[len(brand):]
	if rest != "" {
		r := []rune(rest)[0]
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			// "Acmefit" is not "Acme" + "fit".
			return title
		}
	}
	rest = strings.TrimLeftFunc(rest, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune("-–—|,:®™", r)
	})
	if rest == "" {
		return title
	}
	return rest
}

// Record is the pipeline's input and output. Listings are mutated in place.
type Record struct {
	Title               string             `json:"title" yaml:"title"`
	Brand               string             `json:"brand" yaml:"brand"`
	SourceLanguage      string             `json:"source_language,omitempty" yaml:"source_language,omitempty"`
	Listings            map[string]*Bundle `json:"listings" yaml:"listings"`
	TranslationsApplied bool               `json:"translationsApplied" yaml:"translationsApplied"`
	Debug               []string           `json:"debug" yaml:"debug"`
}

// Product returns the record's product metadata.
func (r *Record) Product() Product {
	return Product{Title: r.Title, Brand: r.Brand}
}

// Marketplaces returns the listing keys in a stable order.
func (r *Record) Marketplaces() []string {
	ids := make([]string, 0, len(r.Listings))
	for id := range r.Listings {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Validate checks the record shape. known reports whether a marketplace id
// is configured; pass nil to skip that check.
func (r *Record) Validate(known func(string) bool) error {
	err := validation.ValidateStruct(r,
		validation.Field(&r.Title, validation.Required),
		validation.Field(&r.Listings, validation.Required, validation.By(func(value any) error {
			listings, _ := value.(map[string]*Bundle)
			for id, b := range listings {
				if b == nil {
					return validation.NewError("listing_nil", "listing "+id+" is empty")
				}
				if known != nil && !known(id) {
					return validation.NewError("listing_unknown_marketplace", "unknown marketplace "+id)
				}
			}
			return nil
		})),
	)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "record"), ErrInvalidRecord)
	}
	return nil
}
