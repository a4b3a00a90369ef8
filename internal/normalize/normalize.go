// Package normalize canonicalizes raw message text into the comparison form
// used by the phrase matcher. Normalization is deterministic and idempotent;
// it never fails.
package normalize

import (
	"strings"

	"github.com/mozillazg/go-unidecode"
)

// Normalizer holds the static confusable-script substitution table. The table
// maps single code points (typically Latin letters) to their Cyrillic
// look-alikes so that mixed-script evasion collapses onto one script before
// transliteration.
type Normalizer struct {
	confusables map[rune]string
}

// New builds a Normalizer from a confusable table keyed by single-rune
// strings. Keys longer than one rune are ignored. A pair is kept only when
// its target transliterates back to the key (a→а, t→т and the like):
// anything else (p→р comes back as "r", c→с as "s") would make repeated
// normalization drift, so such pairs are dropped here.
func New(confusables map[string]string) *Normalizer {
	table := make(map[rune]string, len(confusables))
	for from, to := range confusables {
		runes := []rune(from)
		if len(runes) != 1 {
			continue
		}
		if strings.ToLower(unidecode.Unidecode(to)) != from {
			continue
		}
		table[runes[0]] = to
	}
	return &Normalizer{confusables: table}
}

// Normalize applies, in fixed order: confusable substitution, transliteration
// of remaining non-ASCII runes to an ASCII approximation, lower-casing, and
// removal of spaces and newlines. Other whitespace (tabs etc.) is kept;
// the narrow definition is intentional. A rune without a table entry passes
// through to the transliteration step unchanged.
func (n *Normalizer) Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if mapped, ok := n.confusables[r]; ok {
			b.WriteString(mapped)
		} else {
			b.WriteRune(r)
		}
	}

	text := unidecode.Unidecode(b.String())
	text = strings.ToLower(text)
	text = strings.ReplaceAll(text, " ", "")
	text = strings.ReplaceAll(text, "\n", "")

	return text
}
