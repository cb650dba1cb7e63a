package engine

import "fmt"

// Config holds the engine's tuning constants. The defaults are the tuned
// values shipped with the engine; hosts should treat them as configuration
// and validate against representative conversation logs before changing them
// (the replay tool under cmd/elemental-replay exists for exactly that).
type Config struct {
	// DecayFactor is applied to every intensity before new signals are added
	// each turn, bounding the influence of stale signals (default: 0.85).
	DecayFactor float64

	// IntensityCeiling clamps per-element intensity so pathological inputs
	// cannot grow it without bound (default: 10.0).
	IntensityCeiling float64

	// IntensityEpsilon zeroes intensities that have decayed below it
	// (default: 0.01).
	IntensityEpsilon float64

	// DominanceMargin is how far the leading element must exceed the
	// runner-up for the high tier to fire (default: 1.5).
	DominanceMargin float64

	// DominanceFloor is the absolute intensity the leading element must
	// reach for the high tier to fire (default: 2.0).
	DominanceFloor float64

	// SomaticThreshold is the Earth intensity above which somatic distress
	// with no Fire presence forces the urgent tier (default: 3.0).
	SomaticThreshold float64

	// AgencyEpsilon is the Fire intensity below which "no Fire presence"
	// holds for the urgent tier (default: 0.1).
	AgencyEpsilon float64

	// LoopWindow is how many consecutive same-element or same-strategy turns
	// count as a degenerate loop (default: 3).
	LoopWindow int

	// HistorySize is the per-session turn history capacity (default: 10).
	HistorySize int
}

// DefaultConfig returns a Config with the shipped tuning defaults.
func DefaultConfig() Config {
	return Config{
		DecayFactor:      0.85,
		IntensityCeiling: 10.0,
		IntensityEpsilon: 0.01,
		DominanceMargin:  1.5,
		DominanceFloor:   2.0,
		SomaticThreshold: 3.0,
		AgencyEpsilon:    0.1,
		LoopWindow:       3,
		HistorySize:      10,
	}
}

// Validate checks if the config is valid.
func (c *Config) Validate() error {
	if c.DecayFactor <= 0 || c.DecayFactor >= 1 {
		return fmt.Errorf("DecayFactor must be in (0, 1), got %v", c.DecayFactor)
	}

	if c.IntensityCeiling <= 0 {
		return fmt.Errorf("IntensityCeiling must be > 0, got %v", c.IntensityCeiling)
	}

	if c.IntensityEpsilon < 0 {
		return fmt.Errorf("IntensityEpsilon must be >= 0, got %v", c.IntensityEpsilon)
	}

	if c.DominanceMargin <= 0 {
		return fmt.Errorf("DominanceMargin must be > 0, got %v", c.DominanceMargin)
	}

	if c.DominanceFloor <= 0 {
		return fmt.Errorf("DominanceFloor must be > 0, got %v", c.DominanceFloor)
	}

	if c.SomaticThreshold <= 0 {
		return fmt.Errorf("SomaticThreshold must be > 0, got %v", c.SomaticThreshold)
	}

	if c.AgencyEpsilon < 0 {
		return fmt.Errorf("AgencyEpsilon must be >= 0, got %v", c.AgencyEpsilon)
	}

	if c.LoopWindow < 2 {
		return fmt.Errorf("LoopWindow must be >= 2, got %d", c.LoopWindow)
	}

	if c.HistorySize < 1 {
		return fmt.Errorf("HistorySize must be >= 1, got %d", c.HistorySize)
	}

	return nil
}
