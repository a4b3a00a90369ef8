package moderation

import (
	"testing"

	"chatguard/internal/normalize"
)

var testConfusables = map[string]string{
	"a": "а",
	"e": "е",
	"k": "к",
	"m": "м",
	"o": "о",
	"t": "т",
}

func newTestFilter(phrases ...string) *Filter {
	return NewFilter(normalize.New(testConfusables), phrases)
}

func strPtr(s string) *string { return &s }

func TestClean_AbsentText(t *testing.T) {
	f := newTestFilter("привет")

	if !f.Clean(nil) {
		t.Fatal("Clean(nil) = false, want true regardless of phrases")
	}
}

func TestClean(t *testing.T) {
	f := newTestFilter("привет", "заработок")

	tests := []struct {
		name  string
		input string
		clean bool
	}{
		{"clean text", "добрый день", true},
		{"exact phrase", "привет", false},
		{"phrase embedded in word", "суперприветище", false},
		{"phrase with digits around", "привет1234", false},
		{"upper case", "ПРИВЕТ", false},
		{"spaces inside phrase", "п р и в е т", false},
		{"mixed script", "привeт", false},
		{"second phrase", "лёгкий заработок тут", false},
		{"empty text", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := f.Clean(strPtr(tt.input)); got != tt.clean {
				t.Errorf("Clean(%q) = %v, want %v", tt.input, got, tt.clean)
			}
		})
	}
}

// Adding phrases only tightens the filter: anything clean under a superset
// phrase list is clean under a subset.
func TestClean_Monotonic(t *testing.T) {
	subset := newTestFilter("привет")
	superset := newTestFilter("привет", "заработок", "доход")

	samples := []string{
		"добрый день",
		"привет всем",
		"пассивный доход",
		"заработок",
		"ничего подозрительного",
	}

	for _, s := range samples {
		if superset.Clean(strPtr(s)) && !subset.Clean(strPtr(s)) {
			t.Errorf("text %q clean under superset but dirty under subset", s)
		}
	}
}

func TestNewFilter_DropsEmptyPhrases(t *testing.T) {
	f := newTestFilter("", " \n", "привет")

	if len(f.phrases) != 1 {
		t.Fatalf("expected 1 phrase, got %d", len(f.phrases))
	}
	if f.Clean(strPtr("совершенно чистый текст")) != true {
		t.Error("empty phrase slipped into the set and matches everything")
	}
}
