package postprocess

import "testing"

func TestClean(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"plain title", "Yogamatte rutschfest", "Yogamatte rutschfest"},
		{"empty", "", ""},
		{"think block", "<think>The user wants German.</think>\nYogamatte", "Yogamatte"},
		{"multiline reasoning block", "<reasoning>\nstep 1\nstep 2\n</reasoning>Tapis de yoga", "Tapis de yoga"},
		{"mixed case tags", "<THINKING>x</THINKING>Esterilla", "Esterilla"},
		{"two blocks", "<think>a</think>Yoga<think>b</think>", "Yoga"},
		{"truncated block drops the tail", "Yogamatte <thinking>and then", "Yogamatte"},
		{"here is the title", "Here is the translated title: Yogamatte", "Yogamatte"},
		{"here are bullets in language", "Here are the bullet points in German:\nLeicht\nRutschfest", "Leicht\nRutschfest"},
		{"sure lead-in", "Sure, here's the description: Eine Matte.", "Eine Matte."},
		{"bare translation label", "Translation: Tapis", "Tapis"},
		{"label needs a colon", "Title of the book", "Title of the book"},
		{"label only at the start", "Yogamatte. Translation: none", "Yogamatte. Translation: none"},
		{"double quotes", `"Yogamatte"`, "Yogamatte"},
		{"guillemets", "«Tapis de yoga»", "Tapis de yoga"},
		{"german low-high quotes", "„Yogamatte“", "Yogamatte"},
		{"polish low-high quotes", "„Mata do jogi”", "Mata do jogi"},
		{"curly quotes", "“Yoga mat”", "Yoga mat"},
		{"two quoted phrases kept", `"Soft" and "light"`, `"Soft" and "light"`},
		{"mismatched quotes kept", `"Yogamatte'`, `"Yogamatte'`},
		{"single character", `"`, `"`},
		{"all phases", "<think>hmm</think>Here is the translation: \"Yogamatte\"", "Yogamatte"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Clean(tt.input); got != tt.expected {
				t.Errorf("Clean(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestStripper_Strip(t *testing.T) {
	s := NewStripper(
		[]string{"must", "critical", "important", "musisz", "deve", "importante"},
		[]string{"translate", "übersetze", "traduci"},
		[]string{"Translation", "Übersetzung", "Tłumaczenie"},
	)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain answer",
			input:    "Yogamatte rutschfest",
			expected: "Yogamatte rutschfest",
		},
		{
			name:     "english prefix",
			input:    "Translation: Yogamatte rutschfest",
			expected: "Yogamatte rutschfest",
		},
		{
			name:     "german prefix with language tag and bold",
			input:    "**Übersetzung (DE):** Yogamatte",
			expected: "Yogamatte",
		},
		{
			name:     "polish prefix with spaced colon",
			input:    "Tłumaczenie : Mata do jogi",
			expected: "Mata do jogi",
		},
		{
			name:     "instruction echo paragraph",
			input:    "You must translate line by line. CRITICAL: keep markers.\n\nYogamatte rutschfest",
			expected: "Yogamatte rutschfest",
		},
		{
			name:     "single paragraph with marker word is kept",
			input:    "A mat you must have",
			expected: "A mat you must have",
		},
		{
			name:     "first paragraph with one marker is kept",
			input:    "An important accessory.\n\nMade of foam.",
			expected: "An important accessory.\n\nMade of foam.",
		},
		{
			name:     "benign paragraph with two markers is kept",
			input:    "È importante scegliere bene: il tappetino deve essere morbido.\n\nMade of foam.",
			expected: "È importante scegliere bene: il tappetino deve essere morbido.\n\nMade of foam.",
		},
		{
			name:     "verb alone is not enough",
			input:    "Translate your routine to the floor.\n\nMade of foam.",
			expected: "Translate your routine to the floor.\n\nMade of foam.",
		},
		{
			name:     "italian instruction echo",
			input:    "Traduci riga per riga. È importante mantenere i marcatori.\n\nTappetino yoga",
			expected: "Tappetino yoga",
		},
		{
			name:     "first paragraph without markers is kept",
			input:    "Line one\n\nLine two",
			expected: "Line one\n\nLine two",
		},
		{
			name:     "amplified header echo",
			input:    "TRANSLATE TO GERMAN: Yogamatte",
			expected: "Yogamatte",
		},
		{
			name:     "thinking then quoted prefix",
			input:    "<think>hmm</think>Translation: \"Yogamatte\"",
			expected: "Yogamatte",
		},
		{
			name:     "quoted after language prefix",
			input:    "Übersetzung: „Yogamatte“",
			expected: "Yogamatte",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := s.Strip(tt.input)
			if result != tt.expected {
				t.Errorf("Strip(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestStripper_NoPrefixes(t *testing.T) {
	s := NewStripper(nil, nil, nil)

	// The English answer labels are built in.
	if got := s.Strip("Translation: x"); got != "x" {
		t.Errorf("Strip = %q, want %q", got, "x")
	}
	if got := s.Strip("Übersetzung: x"); got != "Übersetzung: x" {
		t.Errorf("Strip = %q, want unchanged", got)
	}
}
