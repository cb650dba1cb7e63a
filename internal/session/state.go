// Package session owns per-session conversational state: the decaying
// elemental intensity vector, the bounded turn history, and the strategy
// streak counters. State lives behind an injectable Store so hosts control
// lifecycle and tests stay isolated — the engine itself holds no hidden
// globals.
package session

import (
	"sync"

	"github.com/spiralogic/elemental/pkg/types"
)

// State is the mutable per-session record. All access must happen while
// holding the state's lock; the engine serializes whole turns with it so two
// concurrent calls for one session can never interleave.
type State struct {
	mu sync.Mutex

	// ID is the owning session identifier.
	ID string

	// Intensity is the decaying per-element signal accumulation.
	// Values are always >= 0.
	Intensity map[types.Element]float64

	// History is the bounded log of recent turns.
	History *HistoryRing

	// ConsecutiveStrategy counts how many times in a row each strategy was
	// chosen. Choosing a strategy zeroes every other entry, so at most one
	// entry is ever non-zero.
	ConsecutiveStrategy map[types.Strategy]int

	// NextTurn is the zero-based index the next turn will receive.
	NextTurn int
}

// newState returns a fresh session state with zeroed intensities.
func newState(id string, historySize int) *State {
	intensity := make(map[types.Element]float64, len(types.AllElements))
	for _, el := range types.AllElements {
		intensity[el] = 0
	}
	return &State{
		ID:                  id,
		Intensity:           intensity,
		History:             NewHistoryRing(historySize),
		ConsecutiveStrategy: make(map[types.Strategy]int),
	}
}

// Lock acquires the per-session lock.
func (s *State) Lock() { s.mu.Lock() }

// Unlock releases the per-session lock.
func (s *State) Unlock() { s.mu.Unlock() }

// RecordStrategy updates the consecutive-strategy counters for a newly
// chosen strategy: its count increments, every other count resets.
func (s *State) RecordStrategy(chosen types.Strategy) {
	for st := range s.ConsecutiveStrategy {
		if st != chosen {
			delete(s.ConsecutiveStrategy, st)
		}
	}
	s.ConsecutiveStrategy[chosen]++
}

// IntensitySnapshot returns a copy of the intensity vector, safe to hand to
// immutable decision records.
func (s *State) IntensitySnapshot() map[types.Element]float64 {
	snap := make(map[types.Element]float64, len(s.Intensity))
	for el, v := range s.Intensity {
		snap[el] = v
	}
	return snap
}
