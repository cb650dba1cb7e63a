package engine

import (
	"testing"

	"github.com/spiralogic/elemental/pkg/types"
)

func TestDecideUrgentTier(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Earth] = 3.5
	intensity[types.Fire] = 0.05

	d := b.Decide(intensity, LoopSignal{}, nil)

	if d.Tier != TierUrgent {
		t.Fatalf("Tier = %q, want urgent", d.Tier)
	}
	if d.Element != types.Fire {
		t.Errorf("Element = %s, want fire", d.Element)
	}
	if d.Urgency != types.UrgencyUrgent {
		t.Errorf("Urgency = %s, want urgent", d.Urgency)
	}
}

func TestDecideUrgentNeedsAbsentFire(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Earth] = 3.5
	intensity[types.Fire] = 0.5

	d := b.Decide(intensity, LoopSignal{}, nil)

	if d.Tier == TierUrgent {
		t.Errorf("Fire presence above epsilon must suppress the urgent tier, got %+v", d)
	}
}

func TestDecideHighTierCounters(t *testing.T) {
	tests := []struct {
		dominant types.Element
		counter  types.Element
	}{
		{types.Water, types.Fire},
		{types.Fire, types.Water},
		{types.Air, types.Earth},
		{types.Aether, types.Earth},
	}

	b := NewBalancer(DefaultConfig())
	for _, tt := range tests {
		t.Run(string(tt.dominant), func(t *testing.T) {
			intensity := freshIntensity()
			intensity[tt.dominant] = 4.0

			d := b.Decide(intensity, LoopSignal{}, nil)

			if d.Tier != TierHigh {
				t.Fatalf("Tier = %q, want high", d.Tier)
			}
			if d.Element != tt.counter {
				t.Errorf("Counter for %s = %s, want %s", tt.dominant, d.Element, tt.counter)
			}
			if d.Urgency != types.UrgencyHigh {
				t.Errorf("Urgency = %s, want high", d.Urgency)
			}
		})
	}
}

func TestDecideEarthCounterDependsOnSecondaryFire(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Earth] = 4.0
	intensity[types.Fire] = 0.5 // above agency epsilon so urgent can't fire

	// No Fire co-detection this turn: Earth dominance counters with Aether.
	d := b.Decide(intensity, LoopSignal{}, nil)
	if d.Tier != TierHigh || d.Element != types.Aether {
		t.Errorf("Earth without secondary fire: got %+v, want high/aether", d)
	}

	// A Fire signal this turn steers toward activation instead.
	signals := []types.Signal{{Element: types.Fire, Confidence: 0.6}}
	d = b.Decide(intensity, LoopSignal{}, signals)
	if d.Tier != TierHigh || d.Element != types.Fire {
		t.Errorf("Earth with secondary fire: got %+v, want high/fire", d)
	}
}

func TestDecideDominanceNeedsFloor(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Water] = 1.9 // clear margin over everything, below the floor

	d := b.Decide(intensity, LoopSignal{}, nil)

	if d.Tier == TierHigh {
		t.Errorf("Leader below the floor must not dominate, got %+v", d)
	}
}

func TestDecideDominanceNeedsMargin(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Water] = 2.5
	intensity[types.Air] = 1.8 // within margin, below the floor

	d := b.Decide(intensity, LoopSignal{}, nil)

	if d.Tier == TierHigh {
		t.Errorf("Within-margin runner-up below the floor must block dominance, got %+v", d)
	}
}

func TestDecideDominanceTieAboveFloor(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Water] = 2.6
	intensity[types.Fire] = 2.5 // both above the floor, within the margin

	d := b.Decide(intensity, LoopSignal{}, nil)

	// Contested top of the vector: fire wins the tie by priority even though
	// water carries slightly more raw intensity, so the counter is water.
	if d.Tier != TierHigh {
		t.Fatalf("Tier = %q, want high", d.Tier)
	}
	if d.Element != types.Water {
		t.Errorf("Fire dominates the tie so its counter is water, got %s", d.Element)
	}
}

func TestDecideDominanceTiePicksPriorityEarliest(t *testing.T) {
	b := NewBalancer(DefaultConfig())

	tests := []struct {
		name      string
		intensity map[types.Element]float64
		counter   types.Element
	}{
		{
			name:      "water over air",
			intensity: map[types.Element]float64{types.Air: 2.7, types.Water: 2.4},
			counter:   types.Fire, // water wins the tie, so fire counters
		},
		{
			name:      "fire among three contenders",
			intensity: map[types.Element]float64{types.Water: 2.9, types.Air: 2.6, types.Fire: 2.2},
			counter:   types.Water, // fire wins the tie, so water counters
		},
		{
			name:      "below-floor runner-up is no contender",
			intensity: map[types.Element]float64{types.Water: 2.6, types.Fire: 1.9},
			counter:   "", // fire never cleared the floor, nothing dominates
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			intensity := freshIntensity()
			for el, v := range tt.intensity {
				intensity[el] = v
			}

			d := b.Decide(intensity, LoopSignal{}, nil)

			if tt.counter == "" {
				if d.Tier == TierHigh {
					t.Fatalf("Expected no dominance, got %+v", d)
				}
				return
			}
			if d.Tier != TierHigh {
				t.Fatalf("Tier = %q, want high", d.Tier)
			}
			if d.Element != tt.counter {
				t.Errorf("Counter = %s, want %s", d.Element, tt.counter)
			}
		})
	}
}

func TestDecideParadoxTier(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	signals := []types.Signal{
		{Element: types.Fire, Confidence: 0.6},
		{Element: types.Aether, Confidence: 0.6, Paradox: true},
	}

	d := b.Decide(freshIntensity(), LoopSignal{}, signals)

	if d.Tier != TierParadox {
		t.Fatalf("Tier = %q, want paradox", d.Tier)
	}
	if d.Element != types.Aether {
		t.Errorf("Element = %s, want aether", d.Element)
	}
	if d.Urgency != types.UrgencyNormal {
		t.Errorf("Urgency = %s, want normal", d.Urgency)
	}
}

func TestDecideLoopTier(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Water] = 1.8
	intensity[types.Air] = 0.3

	loop := LoopSignal{IsLooping: true, Kind: LoopElement, Element: types.Water}
	d := b.Decide(intensity, loop, nil)

	if d.Tier != TierLoop {
		t.Fatalf("Tier = %q, want loop", d.Tier)
	}
	if d.Element == types.Water {
		t.Error("Loop breaking must never pick the looped element")
	}
	// Fire, Earth and Aether sit at zero; Fire wins the tie by priority.
	if d.Element != types.Fire {
		t.Errorf("Element = %s, want the least-active fire", d.Element)
	}
}

func TestDecideNoneTier(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Water] = 0.6

	d := b.Decide(intensity, LoopSignal{}, []types.Signal{{Element: types.Water, Confidence: 0.6}})

	if d.Tier != TierNone {
		t.Fatalf("Tier = %q, want none", d.Tier)
	}
	if d.Element != "" {
		t.Errorf("Element = %s, want empty (mirroring)", d.Element)
	}
	if d.Urgency != types.UrgencyNormal {
		t.Errorf("Urgency = %s, want normal", d.Urgency)
	}
}

func TestDecideUrgentBeatsDominance(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Earth] = 5.0 // dominant AND past the somatic threshold
	intensity[types.Fire] = 0.0

	d := b.Decide(intensity, LoopSignal{}, nil)

	if d.Tier != TierUrgent {
		t.Errorf("Urgent tier must outrank dominance, got %+v", d)
	}
}

func TestDecideDominanceBeatsParadox(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	intensity := freshIntensity()
	intensity[types.Water] = 4.0
	signals := []types.Signal{{Element: types.Aether, Confidence: 0.7, Paradox: true}}

	d := b.Decide(intensity, LoopSignal{}, signals)

	if d.Tier != TierHigh {
		t.Errorf("Dominance must outrank paradox, got %+v", d)
	}
}

func TestDecideParadoxBeatsLoop(t *testing.T) {
	b := NewBalancer(DefaultConfig())
	signals := []types.Signal{{Element: types.Aether, Confidence: 0.7, Paradox: true}}
	loop := LoopSignal{IsLooping: true, Kind: LoopElement, Element: types.Water}

	d := b.Decide(freshIntensity(), loop, signals)

	if d.Tier != TierParadox {
		t.Errorf("Paradox must outrank loop breaking, got %+v", d)
	}
}

func TestCountersNeverMatchDominant(t *testing.T) {
	b := NewBalancer(DefaultConfig())

	for _, el := range types.AllElements {
		intensity := freshIntensity()
		intensity[el] = 4.0
		if el == types.Earth {
			intensity[types.Fire] = 0.5 // keep the urgent tier out of the way
		}

		d := b.Decide(intensity, LoopSignal{}, nil)
		if d.Element == el {
			t.Errorf("Counter for %s equals the dominant element", el)
		}
	}
}
