package chat

import "strings"

// DefaultFallbackPhrases are the sentinel phrases a grounded answer may
// contain when the model found nothing useful in the supplied context.
var DefaultFallbackPhrases = []string{"tidak ada data", "tidak ditemukan"}

// FallbackPolicy decides when a grounded answer counts as a soft miss and
// must be discarded in favor of a general-knowledge re-ask.
type FallbackPolicy struct {
	phrases []string
}

func NewFallbackPolicy(phrases []string) FallbackPolicy {
	if len(phrases) == 0 {
		phrases = DefaultFallbackPhrases
	}

	lowered := make([]string, len(phrases))
	for i, phrase := range phrases {
		lowered[i] = strings.ToLower(phrase)
	}

	return FallbackPolicy{phrases: lowered}
}

// Triggered reports whether the answer contains any sentinel phrase,
// case-insensitively.
func (p FallbackPolicy) Triggered(answer string) bool {
	lower := strings.ToLower(answer)
	for _, phrase := range p.phrases {
		if strings.Contains(lower, phrase) {
			return true
		}
	}
	return false
}
