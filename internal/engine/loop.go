package engine

import "github.com/spiralogic/elemental/pkg/types"

// LoopKind names what the detector found repeating.
type LoopKind string

// Loop kinds
const (
	// LoopNone means no degenerate repetition was found
	LoopNone LoopKind = ""

	// LoopElement means the same element dominated the last K turns
	LoopElement LoopKind = "element"

	// LoopStrategy means the same strategy was chosen K times in a row
	LoopStrategy LoopKind = "strategy"
)

// LoopSignal is the detector's verdict for one turn.
type LoopSignal struct {
	// IsLooping is true when either loop kind was detected.
	IsLooping bool

	// Kind names what is repeating.
	Kind LoopKind

	// Element is the looped element: the repeated detection for element
	// loops, or the element whose technique keeps repeating for strategy
	// loops (empty when the looping strategy has no element, e.g. the
	// neutral default).
	Element types.Element
}

// LoopDetector inspects recent history for degenerate repetition. Mirroring
// the same affect or technique indefinitely reads as unresponsive, so the
// balancer breaks loops the detector reports.
type LoopDetector struct {
	window int
}

// NewLoopDetector returns a detector with the given consecutive-turn window.
func NewLoopDetector(cfg Config) *LoopDetector {
	return &LoopDetector{window: cfg.LoopWindow}
}

// Detect examines the most recent turns and strategy streaks.
//
// An element loop needs the last window turns to share one non-empty
// detected element, and that element must still lead the intensity vector —
// a loop on an element that has already cooled below the others is stale.
// A strategy loop needs any strategy streak of at least window.
func (d *LoopDetector) Detect(history []types.Turn, streaks map[types.Strategy]int, intensity map[types.Element]float64) LoopSignal {
	if len(history) >= d.window {
		recent := history[len(history)-d.window:]
		candidate := recent[0].Element
		same := candidate != ""
		for _, t := range recent[1:] {
			if t.Element != candidate {
				same = false
				break
			}
		}
		if same {
			if leader, _ := Dominant(intensity); leader == candidate {
				return LoopSignal{IsLooping: true, Kind: LoopElement, Element: candidate}
			}
		}
	}

	for strategy, count := range streaks {
		if count >= d.window {
			return LoopSignal{
				IsLooping: true,
				Kind:      LoopStrategy,
				Element:   elementForStrategy(strategy),
			}
		}
	}

	return LoopSignal{}
}

// elementForStrategy inverts the element->technique mapping. The neutral
// default strategy has no element.
func elementForStrategy(s types.Strategy) types.Element {
	for _, el := range types.AllElements {
		if types.StrategyForElement(el) == s {
			return el
		}
	}
	return ""
}
