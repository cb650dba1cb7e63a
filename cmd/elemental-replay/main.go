// cmd/elemental-replay feeds recorded conversation transcripts through a
// fresh engine and summarizes the decisions it made. This is the tuning
// loop: adjust the constants in a tuning file, replay representative
// transcripts, and inspect how strategies and balance elements shift.
//
// Decisions are optionally recorded to a SQLite decision log for deeper
// inspection with ordinary SQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"

	"golang.org/x/time/rate"

	"github.com/spiralogic/elemental/internal/analytics"
	"github.com/spiralogic/elemental/internal/classifier"
	"github.com/spiralogic/elemental/internal/config"
	"github.com/spiralogic/elemental/internal/engine"
	"github.com/spiralogic/elemental/internal/session"
	"github.com/spiralogic/elemental/pkg/types"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("elemental-replay: ")
	log.SetFlags(log.LstdFlags)

	transcriptPath := flag.String("transcript", "", "YAML transcript to replay (required)")
	tuningPath := flag.String("tuning", "", "tuning file path (overrides ELEMENTAL_TUNING_FILE)")
	dbPath := flag.String("db", "", "record decisions to this SQLite decision log")
	turnsPerSec := flag.Float64("rate", 0, "pace replay at this many turns per second (0 = unpaced)")
	flag.Parse()

	if *transcriptPath == "" {
		flag.Usage()
		os.Exit(2)
	}
	if *tuningPath != "" {
		os.Setenv("ELEMENTAL_TUNING_FILE", *tuningPath)
	}

	transcript, err := LoadTranscript(*transcriptPath)
	if err != nil {
		log.Fatalf("%v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	var opts []engine.Option
	if *dbPath != "" {
		sink, err := analytics.NewSQLiteSink(*dbPath)
		if err != nil {
			log.Fatalf("failed to open decision log: %v", err)
		}
		defer sink.Close()
		opts = append(opts, engine.WithSink(sink))
	}

	cls, err := classifier.NewWithLexicon(classifier.DefaultLexicon().Merge(cfg.Lexicon))
	if err != nil {
		log.Fatalf("failed to build classifier: %v", err)
	}
	opts = append(opts, engine.WithClassifier(cls))

	eng, err := engine.New(session.NewMemoryStore(cfg.Session), cfg.Engine, opts...)
	if err != nil {
		log.Fatalf("failed to build engine: %v", err)
	}

	var limiter *rate.Limiter
	if *turnsPerSec > 0 {
		limiter = rate.NewLimiter(rate.Limit(*turnsPerSec), 1)
	}

	ctx := context.Background()
	summary := newSummary()
	for _, sess := range transcript.Sessions {
		for _, utterance := range sess.Utterances {
			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					log.Fatalf("rate limiter: %v", err)
				}
			}
			summary.add(eng.Process(ctx, sess.ID, utterance))
		}
	}

	summary.print(os.Stdout)
}

// summary aggregates replayed decisions for the report.
type summary struct {
	turns      int
	strategies map[types.Strategy]int
	balances   map[types.Element]int
	urgencies  map[types.Urgency]int
}

func newSummary() *summary {
	return &summary{
		strategies: make(map[types.Strategy]int),
		balances:   make(map[types.Element]int),
		urgencies:  make(map[types.Urgency]int),
	}
}

func (s *summary) add(d *types.Decision) {
	s.turns++
	s.strategies[d.Strategy]++
	if d.BalanceElement != "" {
		s.balances[d.BalanceElement]++
	}
	s.urgencies[d.Urgency]++
}

func (s *summary) print(w *os.File) {
	fmt.Fprintf(w, "replayed %d turns\n\nstrategies:\n", s.turns)
	for _, line := range sortedCounts(s.strategies) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintf(w, "\nbalance elements:\n")
	for _, line := range sortedCounts(s.balances) {
		fmt.Fprintf(w, "  %s\n", line)
	}
	fmt.Fprintf(w, "\nurgencies:\n")
	for _, line := range sortedCounts(s.urgencies) {
		fmt.Fprintf(w, "  %s\n", line)
	}
}

// sortedCounts renders a count map as "key: n" lines, highest count first,
// ties alphabetical, so reports are stable across runs.
func sortedCounts[K ~string](counts map[K]int) []string {
	keys := make([]K, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})
	out := make([]string, len(keys))
	for i, k := range keys {
		out[i] = fmt.Sprintf("%s: %d", string(k), counts[k])
	}
	return out
}
