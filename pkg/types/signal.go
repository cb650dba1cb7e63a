package types

// Signal is a single detected (category, confidence, tokens) triple produced
// by one classifier pass over one utterance. Zero, one, or several signals
// may fire per utterance; the first in classifier priority order is primary.
type Signal struct {
	// Element is the detected category.
	Element Element `json:"element"`

	// Confidence is the detection confidence in (0.0, 1.0].
	// A single keyword hit yields 0.6; reinforcing matches raise it.
	Confidence float64 `json:"confidence"`

	// MatchedTokens lists the lexicon tokens that fired, in match order.
	// These feed topic extraction downstream.
	MatchedTokens []string `json:"matched_tokens,omitempty"`

	// Paradox marks a cross-cutting polarity detection. A paradox signal
	// always carries Element == Aether and can co-occur with any primary
	// category.
	Paradox bool `json:"paradox,omitempty"`
}

// PrimarySignal returns the highest-priority signal in signals, or nil when
// signals is empty. Paradox-only signals are skipped unless nothing else
// fired: polarity is a modifier, not a primary classification.
func PrimarySignal(signals []Signal) *Signal {
	var best *Signal
	for i := range signals {
		s := &signals[i]
		if s.Paradox {
			continue
		}
		if best == nil || PriorityRank(s.Element) < PriorityRank(best.Element) {
			best = s
		}
	}
	if best == nil && len(signals) > 0 {
		best = &signals[0]
	}
	return best
}

// HasParadox reports whether any signal in signals is a polarity detection.
func HasParadox(signals []Signal) bool {
	for _, s := range signals {
		if s.Paradox {
			return true
		}
	}
	return false
}
