package classifier

import "github.com/spiralogic/elemental/pkg/types"

// Lexicon holds the keyword and phrase vocabulary driving elemental
// detection. The compiled-in defaults cover the canonical vocabulary of each
// category; hosts can extend them via the tuning file without rebuilding.
type Lexicon struct {
	// Keywords maps each element to single-word triggers.
	Keywords map[types.Element][]string `yaml:"keywords"`

	// Phrases maps each element to multi-word triggers. Phrase matches are
	// more specific than keyword matches and score higher.
	Phrases map[types.Element][]string `yaml:"phrases"`

	// ParadoxMarkers are words or phrases that flag polarity regardless of
	// which primary category matched.
	ParadoxMarkers []string `yaml:"paradox_markers"`

	// Stopwords are filler tokens stripped from extracted topics.
	Stopwords []string `yaml:"stopwords"`
}

// DefaultLexicon returns the built-in elemental vocabulary.
func DefaultLexicon() Lexicon {
	return Lexicon{
		Keywords: map[types.Element][]string{
			types.Fire: {
				"stuck", "trapped", "stagnant", "unmotivated",
				"passion", "passionate", "create", "creative",
				"destroy", "change", "transform", "energy",
				"motivation", "motivated", "burn", "burning",
				"ignite", "excited", "exciting", "angry",
				"furious", "rage", "drive",
			},
			types.Water: {
				"feel", "feeling", "feelings", "emotion", "emotions",
				"emotional", "intuition", "dream", "dreams",
				"heal", "healing", "flow", "release", "cleanse",
				"tears", "cry", "crying", "grief", "grieving",
				"sad", "sadness", "love", "empathy", "sensitive",
				"overwhelmed", "overwhelming", "drowning", "flooded",
				"hurt", "pain", "trauma", "wounded",
				"scared", "afraid", "terrified", "fear",
				"anxious", "anxiety",
			},
			types.Earth: {
				"ground", "grounded", "stable", "stability",
				"practical", "manifest", "build", "grow",
				"root", "roots", "foundation", "body", "physical",
				"money", "home", "secure", "security", "solid",
				"exhausted", "tired", "sick", "ache", "aching",
				"tense", "numb", "heavy", "sleep",
			},
			types.Air: {
				"think", "thinking", "thought", "thoughts",
				"idea", "ideas", "communicate", "speak", "write",
				"clarity", "perspective", "freedom", "mental",
				"understand", "learn", "breathe",
				"confused", "confusing", "overthinking",
			},
			types.Aether: {
				"unity", "oneness", "void", "emptiness", "empty",
				"integration", "mystery", "consciousness", "aware",
				"awareness", "transcend", "beyond", "infinite",
				"eternal", "sacred", "divine", "cosmos", "universal",
				"meaningless", "whole", "soul", "spirit",
			},
		},
		Phrases: map[types.Element][]string{
			types.Fire:   {"break free", "fired up", "take action"},
			types.Water:  {"too much", "falling apart"},
			types.Earth:  {"worn out", "can't sleep"},
			types.Air:    {"racing thoughts", "make sense"},
			types.Aether: {"bigger than me", "part of something"},
		},
		ParadoxMarkers: []string{
			"paradox", "contradiction", "contradictory",
			"torn", "ambivalent",
			"at the same time", "torn between", "push and pull",
			"back and forth", "both ways",
		},
		Stopwords: []string{
			"and", "but", "yet", "both", "neither", "nor", "between",
			"where", "when", "what", "how", "why",
			"so", "very", "really", "just", "too much",
			"at the same time", "back and forth",
		},
	}
}

// Merge returns a copy of l with extra's entries appended. Duplicate entries
// are harmless: detection compiles them into a single alternation and topic
// extraction deduplicates.
func (l Lexicon) Merge(extra Lexicon) Lexicon {
	merged := Lexicon{
		Keywords: make(map[types.Element][]string, len(l.Keywords)),
		Phrases:  make(map[types.Element][]string, len(l.Phrases)),
	}
	for el, words := range l.Keywords {
		merged.Keywords[el] = append([]string(nil), words...)
	}
	for el, phrases := range l.Phrases {
		merged.Phrases[el] = append([]string(nil), phrases...)
	}
	for el, words := range extra.Keywords {
		merged.Keywords[el] = append(merged.Keywords[el], words...)
	}
	for el, phrases := range extra.Phrases {
		merged.Phrases[el] = append(merged.Phrases[el], phrases...)
	}
	merged.ParadoxMarkers = append(append([]string(nil), l.ParadoxMarkers...), extra.ParadoxMarkers...)
	merged.Stopwords = append(append([]string(nil), l.Stopwords...), extra.Stopwords...)
	return merged
}
