package listing

import (
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripBrand(t *testing.T) {
	tests := []struct {
		name  string
		title string
		brand string
		want  string
	}{
		{name: "no brand", title: "Mata do Jogi", brand: "", want: "Mata do Jogi"},
		{name: "brand prefix", title: "Acme Mata do Jogi", brand: "Acme", want: "Mata do Jogi"},
		{name: "case insensitive", title: "ACME Mata do Jogi", brand: "acme", want: "Mata do Jogi"},
		{name: "dash separator", title: "Acme - Mata do Jogi", brand: "Acme", want: "Mata do Jogi"},
		{name: "brand not prefix", title: "Mata do Jogi Acme", brand: "Acme", want: "Mata do Jogi Acme"},
		{name: "brand glued to word", title: "Acmefit Mata", brand: "Acme", want: "Acmefit Mata"},
		{name: "title is brand", title: "Acme", brand: "Acme", want: "Acme"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripBrand(tt.title, tt.brand))
		})
	}
}

func TestBundle_Clone(t *testing.T) {
	b := &Bundle{Title: "t", Bullets: []string{"a", "b"}, Description: "d", Language: "PL"}
	c := b.Clone()
	c.Bullets[0] = "changed"
	c.Title = "x"

	assert.Equal(t, "a", b.Bullets[0])
	assert.Equal(t, "t", b.Title)
}

func TestRecord_Validate(t *testing.T) {
	known := func(id string) bool { return id == "amazon_de" }

	valid := &Record{Title: "Mata", Listings: map[string]*Bundle{"amazon_de": {Title: "Mata"}}}
	require.NoError(t, valid.Validate(known))

	tests := []struct {
		name string
		rec  *Record
	}{
		{name: "missing title", rec: &Record{Listings: map[string]*Bundle{"amazon_de": {}}}},
		{name: "no listings", rec: &Record{Title: "Mata"}},
		{name: "nil bundle", rec: &Record{Title: "Mata", Listings: map[string]*Bundle{"amazon_de": nil}}},
		{name: "unknown marketplace", rec: &Record{Title: "Mata", Listings: map[string]*Bundle{"mars": {}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.rec.Validate(known)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidRecord))
		})
	}
}

func TestRecord_Marketplaces(t *testing.T) {
	r := &Record{Listings: map[string]*Bundle{"b": {}, "a": {}, "c": {}}}
	assert.Equal(t, []string{"a", "b", "c"}, r.Marketplaces())
}
