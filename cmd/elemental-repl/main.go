// cmd/elemental-repl is an interactive front door to the balancing engine.
// It reads one utterance per line from stdin, runs it through a session, and
// writes the decision record as a JSON line to stdout.
//
// CRITICAL: ALL logging goes to stderr. stdout carries only decision JSON so
// the output can be piped straight into jq or a transcript file.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"

	"github.com/spiralogic/elemental/internal/analytics"
	"github.com/spiralogic/elemental/internal/classifier"
	"github.com/spiralogic/elemental/internal/config"
	"github.com/spiralogic/elemental/internal/engine"
	"github.com/spiralogic/elemental/internal/session"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("elemental-repl: ")
	log.SetFlags(log.LstdFlags)

	sessionID := flag.String("session", "", "session id (default: a fresh uuid)")
	tuningPath := flag.String("tuning", "", "tuning file path (overrides ELEMENTAL_TUNING_FILE)")
	flag.Parse()

	if *tuningPath != "" {
		os.Setenv("ELEMENTAL_TUNING_FILE", *tuningPath)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	eng, sink, err := buildEngine(cfg)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}
	if sink != nil {
		defer sink.Close()
	}

	// Hot-reload tuning while the REPL is running.
	if cfg.TuningFile != "" {
		watcher := config.NewWatcher(cfg.TuningFile, func(t *config.TuningFile) {
			if err := eng.ApplyTuning(t.Engine.Apply(engine.DefaultConfig())); err != nil {
				log.Printf("tuning rejected: %v", err)
				return
			}
			lex := classifier.DefaultLexicon().Merge(t.Lexicon)
			if err := eng.ApplyLexicon(lex); err != nil {
				log.Printf("lexicon rejected: %v", err)
			}
		})
		if err := watcher.Start(); err != nil {
			log.Printf("tuning watcher disabled: %v", err)
		} else {
			defer watcher.Stop()
		}
	}

	id := *sessionID
	if id == "" {
		id = uuid.NewString()
	}
	log.Printf("session %s ready, reading utterances from stdin", id)

	enc := json.NewEncoder(os.Stdout)
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		utterance := strings.TrimSpace(scanner.Text())
		if utterance == "" {
			continue
		}
		decision := eng.Process(context.Background(), id, utterance)
		if err := enc.Encode(decision); err != nil {
			log.Fatalf("failed to write decision: %v", err)
		}
	}
	if err := scanner.Err(); err != nil {
		log.Fatalf("stdin read failed: %v", err)
	}
}

// buildEngine assembles the engine and its sink chain from config.
func buildEngine(cfg *config.Config) (*engine.Engine, analytics.Sink, error) {
	store := session.NewMemoryStore(cfg.Session)

	var sinks analytics.MultiSink
	if cfg.Analytics.LogDecisions {
		sinks = append(sinks, analytics.LogSink{})
	}
	if cfg.Analytics.SQLitePath != "" {
		s, err := analytics.NewSQLiteSink(cfg.Analytics.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, analytics.NewBreakerSink(s, analytics.BreakerConfig{}))
	}
	if cfg.Analytics.PostgresDSN != "" {
		s, err := analytics.NewPostgresSink(cfg.Analytics.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		sinks = append(sinks, analytics.NewBreakerSink(s, analytics.BreakerConfig{}))
	}

	opts := []engine.Option{}
	var sink analytics.Sink
	if len(sinks) > 0 {
		sink = sinks
		opts = append(opts, engine.WithSink(sink))
	}

	cls, err := classifier.NewWithLexicon(classifier.DefaultLexicon().Merge(cfg.Lexicon))
	if err != nil {
		return nil, nil, err
	}
	opts = append(opts, engine.WithClassifier(cls))

	eng, err := engine.New(store, cfg.Engine, opts...)
	if err != nil {
		return nil, nil, err
	}
	return eng, sink, nil
}
