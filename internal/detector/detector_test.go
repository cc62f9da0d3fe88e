package detector

import (
	"testing"
)

func TestDetector_Detect(t *testing.T) {
	d := New(nil)

	tests := []struct {
		name     string
		text     string
		wantLang string
		wantOK   bool
	}{
		{
			name:     "empty text",
			text:     "  ",
			wantLang: "",
			wantOK:   false,
		},
		{
			name:     "english text",
			text:     "Non-slip yoga mat made of soft foam, perfect for home workouts.",
			wantLang: "English",
			wantOK:   true,
		},
		{
			name:     "german text",
			text:     "Rutschfeste Yogamatte aus weichem Schaum, ideal für das Training zu Hause.",
			wantLang: "German",
			wantOK:   true,
		},
		{
			name:     "polish text",
			text:     "Antypoślizgowa mata do jogi z miękkiej pianki, idealna do ćwiczeń w domu.",
			wantLang: "Polish",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lang, ok := d.Detect(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Detect(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && lang.String() != tt.wantLang {
				t.Errorf("Detect(%q) = %v, want %v", tt.text, lang, tt.wantLang)
			}
		})
	}
}

func TestDetector_Profile(t *testing.T) {
	d := New(nil)

	tests := []struct {
		name     string
		text     string
		wantCode string
		wantOK   bool
	}{
		{
			name:   "empty text",
			text:   "",
			wantOK: false,
		},
		{
			name:     "polish listing",
			text:     "Antypoślizgowa mata do jogi z miękkiej pianki, idealna do ćwiczeń w domu.",
			wantCode: "PL",
			wantOK:   true,
		},
		{
			name:     "french listing",
			text:     "Tapis de yoga antidérapant en mousse douce, idéal pour les exercices à la maison.",
			wantCode: "FR",
			wantOK:   true,
		},
		{
			name:     "czech listing",
			text:     "Protiskluzová podložka na jógu z měkké pěny, ideální pro cvičení doma.",
			wantCode: "CS",
			wantOK:   true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			code, ok := d.Profile(tt.text)
			if ok != tt.wantOK {
				t.Errorf("Profile(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
				return
			}
			if tt.wantOK && code != tt.wantCode {
				t.Errorf("Profile(%q) = %q, want %q", tt.text, code, tt.wantCode)
			}
		})
	}
}

func TestDetector_DetectISO(t *testing.T) {
	d := New(nil)

	iso, ok := d.DetectISO("Rutschfeste Yogamatte aus weichem Schaum, ideal für das Training zu Hause.")
	if !ok || iso != "DE" {
		t.Errorf("DetectISO = %q, %v, want DE, true", iso, ok)
	}

	if _, ok := d.DetectISO(""); ok {
		t.Error("DetectISO of empty text should fail")
	}
}
