package types

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// Turn is one entry in a session's bounded history: what was detected and
// what the engine chose. Raw utterance text is never retained, only a digest.
type Turn struct {
	// Index is the zero-based turn number within the session.
	Index int `json:"index"`

	// InputDigest is a short content digest of the utterance.
	InputDigest string `json:"input_digest"`

	// Element is the detected primary category, empty on neutral turns.
	Element Element `json:"element,omitempty"`

	// Strategy is the technique chosen for this turn.
	Strategy Strategy `json:"strategy"`

	// BalanceElement records the corrective category, when one was chosen.
	BalanceElement Element `json:"balance_element,omitempty"`

	// Timestamp is when the turn was processed.
	Timestamp time.Time `json:"timestamp"`
}

// DigestInput returns a short hex digest of an utterance for history
// records. 16 hex chars is plenty for within-session disambiguation.
func DigestInput(utterance string) string {
	sum := sha256.Sum256([]byte(utterance))
	return hex.EncodeToString(sum[:8])
}
