// Package types defines the core data structures for the elemental
// dialogue-balancing engine: elements, signals, turns, and decisions.
// These types are shared between the classifier, the balancing engine,
// and the analytics sinks.
package types

// Element is one of the five fixed affect/topic categories used as a
// coarse classification of user intent and emotion.
type Element string

// Elemental category constants
const (
	// Fire covers intensity, agency, and transformation language
	Fire Element = "fire"

	// Water covers emotional and intuitive language
	Water Element = "water"

	// Earth covers somatic, practical, and stability language
	Earth Element = "earth"

	// Air covers mental, communicative, and clarity language
	Air Element = "air"

	// Aether covers unity, paradox, and transcendence language
	Aether Element = "aether"
)

// ClassifierPriority is the fixed evaluation order for category detectors.
// Fire and Aether are checked before Water so that intensity-driven and
// polarity-driven language is not mis-classified as pure emotion. The order
// also resolves ties: when two categories match with equal weight, the one
// earlier in this slice wins.
var ClassifierPriority = []Element{Fire, Aether, Water, Air, Earth}

// AllElements lists every valid element in priority order.
// It aliases ClassifierPriority; callers must not mutate it.
var AllElements = ClassifierPriority

// IsValidElement reports whether e is one of the five elemental categories.
// The empty string is valid and means "no element" (neutral turn).
func IsValidElement(e Element) bool {
	if e == "" {
		return true
	}
	for _, known := range AllElements {
		if e == known {
			return true
		}
	}
	return false
}

// ParseElement converts a string to an Element, reporting whether the
// value names a known category. The empty string parses to "" (no element).
func ParseElement(s string) (Element, bool) {
	e := Element(s)
	if !IsValidElement(e) {
		return "", false
	}
	return e, true
}

// PriorityRank returns the position of e in the classifier priority order.
// Lower is higher priority. Unknown or empty elements rank last.
func PriorityRank(e Element) int {
	for i, known := range ClassifierPriority {
		if e == known {
			return i
		}
	}
	return len(ClassifierPriority)
}
