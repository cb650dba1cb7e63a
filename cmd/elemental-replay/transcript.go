package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Transcript is a recorded set of conversations used to validate tuning
// constants against representative dialogue before shipping them.
type Transcript struct {
	// Sessions lists the conversations to replay, in order.
	Sessions []TranscriptSession `yaml:"sessions"`
}

// TranscriptSession is one conversation: a session id and its utterances in
// turn order.
type TranscriptSession struct {
	ID         string   `yaml:"id"`
	Utterances []string `yaml:"utterances"`
}

// LoadTranscript parses the YAML transcript at path.
func LoadTranscript(path string) (*Transcript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript %q: %w", path, err)
	}

	var t Transcript
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse transcript %q: %w", path, err)
	}
	if len(t.Sessions) == 0 {
		return nil, fmt.Errorf("transcript %q contains no sessions", path)
	}
	for i, s := range t.Sessions {
		if s.ID == "" {
			return nil, fmt.Errorf("transcript %q: session %d has no id", path, i)
		}
	}
	return &t, nil
}
