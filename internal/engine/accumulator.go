package engine

import "github.com/spiralogic/elemental/pkg/types"

// Accumulator applies the per-turn intensity update: decay every element
// first, then add the confidence of each incoming signal. Decay runs on
// every turn including neutral ones, so a session left alone always cools
// toward zero. The update is deterministic: the same signal sequence and
// config always produce the same trajectory.
type Accumulator struct {
	decayFactor float64
	ceiling     float64
	epsilon     float64
}

// NewAccumulator returns an accumulator for the given tuning.
func NewAccumulator(cfg Config) *Accumulator {
	return &Accumulator{
		decayFactor: cfg.DecayFactor,
		ceiling:     cfg.IntensityCeiling,
		epsilon:     cfg.IntensityEpsilon,
	}
}

// Update decays intensity in place and adds the new signals. Paradox signals
// carry polarity, not category weight, and do not contribute intensity.
// Values never go negative and never exceed the ceiling.
func (a *Accumulator) Update(intensity map[types.Element]float64, signals []types.Signal) {
	for el, v := range intensity {
		v *= a.decayFactor
		if v < a.epsilon {
			v = 0
		}
		intensity[el] = v
	}

	for _, s := range signals {
		if s.Paradox {
			continue
		}
		v := intensity[s.Element] + s.Confidence
		if v > a.ceiling {
			v = a.ceiling
		}
		intensity[s.Element] = v
	}
}

// Dominant returns the element with the highest intensity and that
// intensity. Ties resolve by classifier priority order so the result is
// deterministic. A fully cooled session reports the empty element.
func Dominant(intensity map[types.Element]float64) (types.Element, float64) {
	var best types.Element
	bestVal := 0.0
	for _, el := range types.ClassifierPriority {
		if v := intensity[el]; v > bestVal {
			best, bestVal = el, v
		}
	}
	return best, bestVal
}

// runnerUp returns the second-highest intensity, excluding leader.
func runnerUp(intensity map[types.Element]float64, leader types.Element) float64 {
	best := 0.0
	for _, el := range types.ClassifierPriority {
		if el == leader {
			continue
		}
		if v := intensity[el]; v > best {
			best = v
		}
	}
	return best
}
