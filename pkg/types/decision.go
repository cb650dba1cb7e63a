package types

import "time"

// Urgency is the priority level attached to a balancing decision. Downstream
// generation uses it to modulate tone.
type Urgency string

// Urgency level constants
const (
	// UrgencyNormal indicates routine mirroring or gentle balancing
	UrgencyNormal Urgency = "normal"

	// UrgencyHigh indicates single-category dominance that needs countering
	UrgencyHigh Urgency = "high"

	// UrgencyUrgent indicates a crisis-adjacent combination (somatic distress
	// with no agency signal) that must be met with activation
	UrgencyUrgent Urgency = "urgent"
)

// Strategy identifies a response technique for the generation step.
type Strategy string

// Response technique constants
const (
	// StrategyChallengePattern confronts stagnation with activation (Fire)
	StrategyChallengePattern Strategy = "challenge-pattern"

	// StrategyAttuneEmotion meets emotional content with attunement (Water)
	StrategyAttuneEmotion Strategy = "attune-emotion"

	// StrategyMirrorGround reflects and grounds somatic content (Earth)
	StrategyMirrorGround Strategy = "mirror-ground"

	// StrategyClarifyMeaning untangles mental or communicative content (Air)
	StrategyClarifyMeaning Strategy = "clarify-meaning"

	// StrategyHoldSpace names polarity and holds space for it (Aether)
	StrategyHoldSpace Strategy = "hold-space"

	// StrategyOpenReflection is the neutral default when nothing fired
	StrategyOpenReflection Strategy = "open-reflection"
)

// elementStrategies maps each element to its base response technique.
var elementStrategies = map[Element]Strategy{
	Fire:   StrategyChallengePattern,
	Water:  StrategyAttuneEmotion,
	Earth:  StrategyMirrorGround,
	Air:    StrategyClarifyMeaning,
	Aether: StrategyHoldSpace,
}

// StrategyForElement returns the base technique for e. The empty element
// (neutral turn) maps to StrategyOpenReflection.
func StrategyForElement(e Element) Strategy {
	if s, ok := elementStrategies[e]; ok {
		return s
	}
	return StrategyOpenReflection
}

// IsValidStrategy reports whether s is a known response technique.
func IsValidStrategy(s Strategy) bool {
	switch s {
	case StrategyChallengePattern, StrategyAttuneEmotion, StrategyMirrorGround,
		StrategyClarifyMeaning, StrategyHoldSpace, StrategyOpenReflection:
		return true
	}
	return false
}

// Decision is the engine's output record for one turn. It is immutable once
// produced; the engine keeps only a summary of it in session history. The
// decision is consumed by an external generation step (which turns it into
// prose) and by analytics sinks.
type Decision struct {
	// ID uniquely identifies this decision.
	ID string `json:"id"`

	// SessionID names the session this decision belongs to.
	SessionID string `json:"session_id"`

	// TurnIndex is the zero-based turn number within the session.
	TurnIndex int `json:"turn_index"`

	// PrimaryElement is the mirrored category, empty on neutral turns.
	PrimaryElement Element `json:"primary_element,omitempty"`

	// BalanceElement is the corrective category the response should steer
	// toward; empty when pure mirroring is appropriate.
	BalanceElement Element `json:"balance_element,omitempty"`

	// Strategy is the selected response technique.
	Strategy Strategy `json:"strategy"`

	// Urgency modulates downstream tone.
	Urgency Urgency `json:"urgency"`

	// Topics holds deduplicated topic tokens extracted during
	// classification, in stable first-seen order.
	Topics []string `json:"topics,omitempty"`

	// Intensity is the post-update per-element intensity snapshot.
	Intensity map[Element]float64 `json:"intensity,omitempty"`

	// CreatedAt is when the decision was produced.
	CreatedAt time.Time `json:"created_at"`
}
