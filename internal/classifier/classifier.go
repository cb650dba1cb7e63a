// Package classifier turns raw utterances into elemental signals. Detection
// is deliberately pattern-based, not model-based: a fixed, ordered table of
// word-boundary-anchored detectors, one per element, plus a cross-cutting
// polarity detector that can flag Aether independently of the primary match.
package classifier

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/spiralogic/elemental/pkg/types"
)

const (
	// baseConfidence is the score for a single keyword hit.
	baseConfidence = 0.6

	// reinforceStep is added per additional matched lexicon entry.
	reinforceStep = 0.2

	// phraseWeight counts a multi-word phrase as this many entries:
	// an exact phrase is more specific than a lone keyword.
	phraseWeight = 2

	// paradoxMarkerConfidence applies when an explicit polarity marker fires.
	paradoxMarkerConfidence = 0.7

	// paradoxContrastConfidence applies when polarity is inferred from a
	// contrast conjunction joining two distinct elemental matches.
	paradoxContrastConfidence = 0.6
)

// detector is one entry in the ordered detection table.
type detector struct {
	element  types.Element
	keywords *regexp.Regexp // nil when the lexicon has no keywords
	phrases  *regexp.Regexp // nil when the lexicon has no phrases
}

// Classifier is a pure, reusable utterance classifier. It is safe for
// concurrent use: all state is immutable after construction.
type Classifier struct {
	detectors []detector
	markers   *regexp.Regexp
	contrast  *regexp.Regexp
	pairs     []*regexp.Regexp
	stopwords map[string]struct{}
}

// New returns a classifier with the default lexicon.
func New() *Classifier {
	c, err := NewWithLexicon(DefaultLexicon())
	if err != nil {
		// The default lexicon is static and must always compile.
		panic(fmt.Sprintf("classifier: default lexicon failed to compile: %v", err))
	}
	return c
}

// NewWithLexicon returns a classifier for the given lexicon. It returns an
// error when a lexicon entry produces an uncompilable pattern.
func NewWithLexicon(lex Lexicon) (*Classifier, error) {
	c := &Classifier{
		stopwords: make(map[string]struct{}, len(lex.Stopwords)),
	}

	// Detectors compile in classifier priority order. Evaluation order is
	// the tie-break: the first matching category becomes primary.
	for _, el := range types.ClassifierPriority {
		d := detector{element: el}

		var err error
		if words := lex.Keywords[el]; len(words) > 0 {
			d.keywords, err = compileAlternation(words)
			if err != nil {
				return nil, fmt.Errorf("classifier: %s keywords: %w", el, err)
			}
		}
		if phrases := lex.Phrases[el]; len(phrases) > 0 {
			d.phrases, err = compileAlternation(phrases)
			if err != nil {
				return nil, fmt.Errorf("classifier: %s phrases: %w", el, err)
			}
		}
		c.detectors = append(c.detectors, d)
	}

	if len(lex.ParadoxMarkers) > 0 {
		markers, err := compileAlternation(lex.ParadoxMarkers)
		if err != nil {
			return nil, fmt.Errorf("classifier: paradox markers: %w", err)
		}
		c.markers = markers
	}

	// A contrast conjunction joining two distinct elemental matches is
	// treated as polarity ("I'm excited but terrified"). Spanning templates
	// (both X and Y, neither X nor Y) flag polarity on their own.
	c.contrast = regexp.MustCompile(`(?i)\b(?:but|yet)\b`)
	c.pairs = []*regexp.Regexp{
		regexp.MustCompile(`(?i)\bboth\b.+\band\b`),
		regexp.MustCompile(`(?i)\bneither\b.+\bnor\b`),
	}

	for _, w := range lex.Stopwords {
		c.stopwords[strings.ToLower(w)] = struct{}{}
	}
	return c, nil
}

// compileAlternation builds a case-insensitive, word-boundary-anchored
// alternation over entries. Boundary anchoring is what keeps "stuck" from
// matching inside an unrelated word.
func compileAlternation(entries []string) (*regexp.Regexp, error) {
	quoted := make([]string, 0, len(entries))
	for _, e := range entries {
		e = strings.TrimSpace(e)
		if e == "" {
			continue
		}
		quoted = append(quoted, regexp.QuoteMeta(e))
	}
	if len(quoted) == 0 {
		return nil, nil
	}
	return regexp.Compile(`(?i)\b(?:` + strings.Join(quoted, `|`) + `)\b`)
}

// match is a single lexicon hit with its position in the utterance.
type match struct {
	token  string
	offset int
	phrase bool
}

// Classify maps an utterance to zero or more elemental signals, ordered by
// classifier priority with the primary category first. Polarity signals come
// last. Empty or whitespace-only input yields nil. Classify never fails.
func (c *Classifier) Classify(utterance string) []types.Signal {
	if strings.TrimSpace(utterance) == "" {
		return nil
	}

	var signals []types.Signal
	elementsMatched := 0

	for _, d := range c.detectors {
		matches := collectMatches(d.keywords, d.phrases, utterance)
		if len(matches) == 0 {
			continue
		}
		elementsMatched++

		tokens := make([]string, len(matches))
		seen := make(map[string]struct{}, len(matches))
		units := 0
		for i, m := range matches {
			tokens[i] = m.token
			key := strings.ToLower(m.token)
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			if m.phrase {
				units += phraseWeight
			} else {
				units++
			}
		}

		signals = append(signals, types.Signal{
			Element:       d.element,
			Confidence:    confidenceForUnits(units),
			MatchedTokens: tokens,
		})
	}

	if p, ok := c.detectParadox(utterance, elementsMatched); ok {
		signals = append(signals, p)
	}
	return signals
}

// detectParadox checks for polarity: explicit markers always count, a
// contrast conjunction counts only when it joins two distinct categories.
func (c *Classifier) detectParadox(utterance string, elementsMatched int) (types.Signal, bool) {
	if c.markers != nil {
		if tokens := c.markers.FindAllString(utterance, -1); len(tokens) > 0 {
			return types.Signal{
				Element:       types.Aether,
				Confidence:    paradoxMarkerConfidence,
				MatchedTokens: tokens,
				Paradox:       true,
			}, true
		}
	}
	for _, re := range c.pairs {
		if re.MatchString(utterance) {
			return types.Signal{
				Element:    types.Aether,
				Confidence: paradoxMarkerConfidence,
				Paradox:    true,
			}, true
		}
	}
	if elementsMatched >= 2 && c.contrast.MatchString(utterance) {
		return types.Signal{
			Element:    types.Aether,
			Confidence: paradoxContrastConfidence,
			Paradox:    true,
		}, true
	}
	return types.Signal{}, false
}

// collectMatches runs both pattern sets over the utterance and returns the
// hits in textual order.
func collectMatches(keywords, phrases *regexp.Regexp, utterance string) []match {
	var matches []match
	if phrases != nil {
		for _, loc := range phrases.FindAllStringIndex(utterance, -1) {
			matches = append(matches, match{
				token:  utterance[loc[0]:loc[1]],
				offset: loc[0],
				phrase: true,
			})
		}
	}
	if keywords != nil {
		for _, loc := range keywords.FindAllStringIndex(utterance, -1) {
			matches = append(matches, match{
				token:  utterance[loc[0]:loc[1]],
				offset: loc[0],
			})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].offset < matches[j].offset
	})
	return matches
}

// confidenceForUnits converts a specificity unit count to a confidence in
// (0, 1]: 0.6 for a single keyword, rising per reinforcing entry, capped.
func confidenceForUnits(units int) float64 {
	if units < 1 {
		units = 1
	}
	conf := baseConfidence + reinforceStep*float64(units-1)
	if conf > 1.0 {
		conf = 1.0
	}
	return conf
}
