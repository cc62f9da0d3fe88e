package cleaner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCleanTitle(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain", "Acme Yogamatte rutschfest", "Acme Yogamatte rutschfest"},
		{"note parenthetical", "Yogamatte rutschfest (Note: literal translation)", "Yogamatte rutschfest"},
		{"language parenthetical", "Yogamatte rutschfest (German)", "Yogamatte rutschfest"},
		{"bracketed code", "Yogamatte [DE]", "Yogamatte"},
		{"keeps product parenthetical", "Yogamatte (183 x 61 cm)", "Yogamatte (183 x 61 cm)"},
		{"keeps pack size", "Socken (5 Paar)", "Socken (5 Paar)"},
		{"first content line", "\n---\nYogamatte rutschfest\nThis is the German translation.", "Yogamatte rutschfest"},
		{"markdown and quotes", "**\"Yogamatte rutschfest\"**", "Yogamatte rutschfest"},
		{"german note", "Yogamatte (Hinweis: wörtlich)", "Yogamatte"},
		{"collapses spaces", "Yogamatte   rutschfest", "Yogamatte rutschfest"},
		{"empty", "  \n ", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanTitle(tt.input); got != tt.expected {
				t.Errorf("CleanTitle(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestCleanBullet(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"BULLET 1: Rutschfeste Oberfläche", "Rutschfeste Oberfläche"},
		{"**Bullet 2:** Leicht", "Leicht"},
		{"Bullet point #3 - Waschbar", "Waschbar"},
		{"Punkt 4) Robust", "Robust"},
		{"1. Rutschfest", "Rutschfest"},
		{"2) Rutschfest", "Rutschfest"},
		{"- Rutschfest", "Rutschfest"},
		{"• Rutschfest", "Rutschfest"},
		{"KOMFORT: weicher Schaum", "KOMFORT: weicher Schaum"},
		{"4 mm dick", "4 mm dick"},
	}

	for _, tt := range tests {
		if got := CleanBullet(tt.input); got != tt.expected {
			t.Errorf("CleanBullet(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestMergeSplitPairs(t *testing.T) {
	long := "Weicher Schaum schont die Gelenke bei jeder Übung auf hartem Boden"

	tests := []struct {
		name  string
		input []string
		want  []string
	}{
		{
			name:  "colon header",
			input: []string{"KOMFORT:", long},
			want:  []string{"KOMFORT: " + long},
		},
		{
			name:  "upper-case header without colon",
			input: []string{"KOMFORT", long},
			want:  []string{"KOMFORT: " + long},
		},
		{
			name:  "bold header",
			input: []string{"**Komfort**", long},
			want:  []string{"Komfort: " + long},
		},
		{
			name:  "ratio header",
			input: []string{"Komfort", long},
			want:  []string{"Komfort: " + long},
		},
		{
			name:  "comparable lengths stay apart",
			input: []string{"Rutschfeste Oberfläche für sicheren Halt", "Leicht und einfach zu transportieren"},
			want:  []string{"Rutschfeste Oberfläche für sicheren Halt", "Leicht und einfach zu transportieren"},
		},
		{
			name:  "two headers in a row",
			input: []string{"KOMFORT:", "HALT:", long},
			want:  []string{"KOMFORT:", "HALT: " + long},
		},
		{
			name:  "trailing header",
			input: []string{long, "KOMFORT:"},
			want:  []string{long, "KOMFORT:"},
		},
		{
			name:  "empty",
			input: nil,
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MergeSplitPairs(tt.input)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("MergeSplitPairs mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestIsUpper(t *testing.T) {
	if !IsUpper("KOMFORT & HALT") {
		t.Error("expected upper")
	}
	if IsUpper("Komfort") {
		t.Error("expected not upper")
	}
	if IsUpper("123 -") {
		t.Error("no letters must not count as upper")
	}
}
