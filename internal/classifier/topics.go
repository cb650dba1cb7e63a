package classifier

import (
	"strings"

	"github.com/spiralogic/elemental/pkg/types"
)

// NormalizeTopics converts raw matched tokens into a clean topic list:
// lowercased, stripped of stopword fillers, deduplicated case-insensitively,
// in stable first-seen order. Downstream prompt assembly depends on the
// dedup — repeated raw extraction used to leak duplicate tokens into prompts.
func (c *Classifier) NormalizeTopics(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}

	var topics []string
	seen := make(map[string]struct{}, len(tokens))
	for _, tok := range tokens {
		topic := strings.ToLower(strings.TrimSpace(tok))
		if topic == "" {
			continue
		}
		if _, stop := c.stopwords[topic]; stop {
			continue
		}
		if _, dup := seen[topic]; dup {
			continue
		}
		seen[topic] = struct{}{}
		topics = append(topics, topic)
	}
	return topics
}

// TopicsFromSignals extracts and normalizes topics across all non-polarity
// signals. Polarity marker tokens (but/both/between...) are structural, not
// topical, so paradox signals contribute nothing.
func (c *Classifier) TopicsFromSignals(signals []types.Signal) []string {
	var tokens []string
	for _, s := range signals {
		if s.Paradox {
			continue
		}
		tokens = append(tokens, s.MatchedTokens...)
	}
	return c.NormalizeTopics(tokens)
}
