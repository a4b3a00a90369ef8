package normalize

import "testing"

var testConfusables = map[string]string{
	"a": "а",
	"e": "е",
	"k": "к",
	"m": "м",
	"o": "о",
	"t": "т",
}

func TestNormalize(t *testing.T) {
	n := New(testConfusables)

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"empty", "", ""},
		{"confusables folded", "tema", "tema"},
		{"confusable round trip is stable", "тема", "tema"},
		{"cyrillic word", "привет", "privet"},
		{"mixed script evasion", "привeт", "privet"},
		{"upper case", "ПРИВЕТ", "privet"},
		{"spaces stripped", "п р и в е т", "privet"},
		{"newlines stripped", "при\nвет", "privet"},
		{"tabs kept", "при\tвет", "pri\tvet"},
		{"digits kept", "привет1234", "privet1234"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := n.Normalize(tt.input); got != tt.want {
				t.Errorf("Normalize(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	n := New(testConfusables)

	inputs := []string{
		"",
		"hello world",
		"привет",
		"спам",
		"spam",
		"пpивeт1234",
		"ЗАРАБОТОК НА ДОМУ",
		"mixed ПрИвЕт text",
		"tabs\tand\nnewlines",
		"éàü ß",
	}

	for _, s := range inputs {
		once := n.Normalize(s)
		twice := n.Normalize(once)
		if once != twice {
			t.Errorf("Normalize not idempotent for %q: once=%q twice=%q", s, once, twice)
		}
	}
}

// A mapping whose target transliterates to a different letter would make a
// second normalization pass rewrite the first pass's output ("спам" →
// "spam" → "sram" with p→р in the table), so the constructor refuses such
// pairs no matter what the config says.
func TestNew_DropsNonRoundTrippingPairs(t *testing.T) {
	n := New(map[string]string{"p": "р", "c": "с", "a": "а"})

	if _, ok := n.confusables['p']; ok {
		t.Error("pair p→р kept; р transliterates to \"r\"")
	}
	if _, ok := n.confusables['c']; ok {
		t.Error("pair c→с kept; с transliterates to \"s\"")
	}
	if _, ok := n.confusables['a']; !ok {
		t.Error("round-tripping pair a→а dropped")
	}

	if got := n.Normalize("спам"); got != "spam" {
		t.Errorf("Normalize(%q) = %q, want %q", "спам", got, "spam")
	}
	if once := n.Normalize("spam"); once != n.Normalize(once) {
		t.Errorf("Normalize drifts on %q: %q then %q", "spam", once, n.Normalize(once))
	}
}

func TestNormalize_UnmappedRunePassesThrough(t *testing.T) {
	n := New(map[string]string{})

	if got := n.Normalize("q7!"); got != "q7!" {
		t.Errorf("Normalize(%q) = %q, want unchanged", "q7!", got)
	}
}

func TestNew_IgnoresMultiRuneKeys(t *testing.T) {
	n := New(map[string]string{"ab": "х", "k": "к"})

	if got := n.Normalize("ab"); got != "ab" {
		t.Errorf("multi-rune key was applied: got %q", got)
	}
	if _, ok := n.confusables['k']; !ok {
		t.Error("single-rune key was dropped")
	}
}
