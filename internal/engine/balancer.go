package engine

import "github.com/spiralogic/elemental/pkg/types"

// Tier names which balancing rule fired. Tiers evaluate in fixed priority
// order and the first match wins; there is no fallthrough.
type Tier string

// Rule tiers, highest priority first
const (
	// TierUrgent fires on somatic distress with no agency signal
	TierUrgent Tier = "urgent"

	// TierHigh fires on single-category dominance
	TierHigh Tier = "high"

	// TierParadox fires when a polarity signal is present
	TierParadox Tier = "paradox"

	// TierLoop fires on degenerate repetition with nothing above it
	TierLoop Tier = "loop"

	// TierNone means pure mirroring is appropriate
	TierNone Tier = ""
)

// BalanceDecision is the rule engine's output: a corrective element (empty
// when mirroring is right) and the urgency to hand downstream.
type BalanceDecision struct {
	Element types.Element
	Urgency types.Urgency
	Tier    Tier
}

// counterElements maps each dominant category to its fixed counter. Earth is
// absent: its counter depends on secondary signals (see counterForEarth).
var counterElements = map[types.Element]types.Element{
	types.Water:  types.Fire,
	types.Fire:   types.Water,
	types.Air:    types.Earth,
	types.Aether: types.Earth,
}

// Balancer is the threshold/priority rule engine that decides whether and
// how to steer the response away from pure mirroring.
type Balancer struct {
	cfg Config
}

// NewBalancer returns a balancer for the given tuning.
func NewBalancer(cfg Config) *Balancer {
	return &Balancer{cfg: cfg}
}

// Decide evaluates the rule tiers against the accumulated intensity, the
// loop verdict, and this turn's signals. The first matching tier wins.
func (b *Balancer) Decide(intensity map[types.Element]float64, loop LoopSignal, signals []types.Signal) BalanceDecision {
	// Urgent tier: sustained somatic distress with no agency signal is the
	// highest-priority case — counter with activation, not more dwelling.
	if intensity[types.Earth] >= b.cfg.SomaticThreshold && intensity[types.Fire] <= b.cfg.AgencyEpsilon {
		return BalanceDecision{Element: types.Fire, Urgency: types.UrgencyUrgent, Tier: TierUrgent}
	}

	// High tier: single-category dominance maps to a fixed counter-element.
	if dominant, ok := b.dominantElement(intensity); ok {
		return BalanceDecision{
			Element: b.counterFor(dominant, signals),
			Urgency: types.UrgencyHigh,
			Tier:    TierHigh,
		}
	}

	// Paradox tier: polarity present, nothing above fired.
	if types.HasParadox(signals) {
		return BalanceDecision{Element: types.Aether, Urgency: types.UrgencyNormal, Tier: TierParadox}
	}

	// Loop tier: break the loop by moving toward the least-active category.
	if loop.IsLooping {
		return BalanceDecision{
			Element: lowestIntensityExcept(intensity, loop.Element),
			Urgency: types.UrgencyNormal,
			Tier:    TierLoop,
		}
	}

	return BalanceDecision{Urgency: types.UrgencyNormal, Tier: TierNone}
}

// dominantElement reports whether one category dominates the session. The
// raw-intensity leader must reach the absolute floor and must either clear
// the runner-up by the dominance margin, or share the top of the vector with
// other floor-clearing categories inside the margin. In that contested case
// the dominant category is the priority-earliest of the contenders, not the
// raw leader: Fire at 2.5 beside Water at 2.6 reads as a Fire session.
func (b *Balancer) dominantElement(intensity map[types.Element]float64) (types.Element, bool) {
	leader, lead := Dominant(intensity)
	if leader == "" || lead < b.cfg.DominanceFloor {
		return "", false
	}
	second := runnerUp(intensity, leader)
	if lead-second >= b.cfg.DominanceMargin {
		return leader, true
	}
	if second < b.cfg.DominanceFloor {
		return "", false
	}
	for _, el := range types.ClassifierPriority {
		if v := intensity[el]; v >= b.cfg.DominanceFloor && lead-v < b.cfg.DominanceMargin {
			return el, true
		}
	}
	return leader, true
}

// counterFor returns the counter-element for a dominant category. Earth
// breaks its Aether-or-Fire tie on secondary signals: any Fire co-detection
// steers toward activation, otherwise toward perspective.
func (b *Balancer) counterFor(dominant types.Element, signals []types.Signal) types.Element {
	if dominant != types.Earth {
		return counterElements[dominant]
	}
	for _, s := range signals {
		if !s.Paradox && s.Element == types.Fire {
			return types.Fire
		}
	}
	return types.Aether
}

// lowestIntensityExcept picks the least-active element other than excluded,
// ties resolving by classifier priority order.
func lowestIntensityExcept(intensity map[types.Element]float64, excluded types.Element) types.Element {
	var best types.Element
	bestVal := 0.0
	for _, el := range types.ClassifierPriority {
		if el == excluded {
			continue
		}
		v := intensity[el]
		if best == "" || v < bestVal {
			best, bestVal = el, v
		}
	}
	return best
}
