// Package moderation implements the decision pipeline applied to every
// incoming message: phrase matching over normalized text, the trusted-sender
// check, and the verdict state machine with its enforcement hook.
package moderation

import (
	"strings"

	"chatguard/internal/normalize"
)

// Filter tests normalized text against the banned-phrase set. The set is
// loaded once at startup and immutable for the process lifetime.
type Filter struct {
	norm    *normalize.Normalizer
	phrases []string
}

// NewFilter pre-normalizes the configured phrases, preserving order. Phrases
// that normalize to the empty string are dropped (an empty phrase would match
// everything).
func NewFilter(norm *normalize.Normalizer, rawPhrases []string) *Filter {
	phrases := make([]string, 0, len(rawPhrases))
	for _, raw := range rawPhrases {
		p := norm.Normalize(raw)
		if p == "" {
			continue
		}
		phrases = append(phrases, p)
	}
	return &Filter{norm: norm, phrases: phrases}
}

// Clean reports whether the text contains no banned phrase. Absent text is
// vacuously clean. Matching is substring containment on the normalized form,
// first hit short-circuits.
func (f *Filter) Clean(text *string) bool {
	if text == nil {
		return true
	}

	normalized := f.norm.Normalize(*text)
	for _, phrase := range f.phrases {
		if strings.Contains(normalized, phrase) {
			return false
		}
	}
	return true
}
