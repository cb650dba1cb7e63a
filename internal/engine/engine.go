// Package engine implements the elemental dialogue-balancing pipeline:
// classify an utterance, update the session's decaying intensity vector,
// detect degenerate loops, run the balancing rule tiers, and select a
// response strategy. Each call is a fast, synchronous, I/O-free computation
// that always produces a usable Decision — the surrounding conversational
// product must never stall on this subsystem.
package engine

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/spiralogic/elemental/internal/analytics"
	"github.com/spiralogic/elemental/internal/classifier"
	"github.com/spiralogic/elemental/internal/session"
	"github.com/spiralogic/elemental/pkg/types"
)

// Engine is the core balancing engine. Per-session state is serialized via
// the session's own lock; calls for different sessions proceed concurrently.
type Engine struct {
	mu       sync.RWMutex // guards the tunable pipeline components
	cfg      Config
	cls      *classifier.Classifier
	acc      *Accumulator
	loops    *LoopDetector
	balancer *Balancer

	sessions session.Store
	sink     analytics.Sink

	now   func() time.Time
	newID func() string
}

// Option customizes engine construction.
type Option func(*Engine)

// WithSink attaches an analytics sink notified after every turn.
func WithSink(s analytics.Sink) Option {
	return func(e *Engine) { e.sink = s }
}

// WithClassifier replaces the default classifier (custom lexicon).
func WithClassifier(c *classifier.Classifier) Option {
	return func(e *Engine) { e.cls = c }
}

// WithClock overrides the time source. Tests use this to pin timestamps.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDFunc overrides decision ID generation. Tests use this to pin IDs.
func WithIDFunc(fn func() string) Option {
	return func(e *Engine) { e.newID = fn }
}

// New creates an engine over the given session store. The store is required:
// state ownership stays with the host so tests isolate cleanly and
// multi-instance deployments can partition sessions their own way.
func New(store session.Store, cfg Config, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errSessionStoreRequired
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:      cfg,
		sessions: store,
		now:      time.Now,
		newID:    uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.cls == nil {
		e.cls = classifier.New()
	}
	e.acc = NewAccumulator(cfg)
	e.loops = NewLoopDetector(cfg)
	e.balancer = NewBalancer(cfg)
	return e, nil
}

// Process runs one turn for a session and returns the decision record.
// It is fail-open by design: malformed or empty input yields the neutral
// decision, and a failing analytics sink is logged and ignored. The context
// is only handed to the sink; the pipeline itself never blocks.
func (e *Engine) Process(ctx context.Context, sessionID, utterance string) *types.Decision {
	e.mu.RLock()
	cfg, cls, acc, loops, balancer := e.cfg, e.cls, e.acc, e.loops, e.balancer
	e.mu.RUnlock()

	signals := cls.Classify(utterance)

	state := e.sessions.GetOrCreate(sessionID)
	state.Lock()

	acc.Update(state.Intensity, signals)

	window := state.History.Window(cfg.LoopWindow)
	loop := loops.Detect(window, state.ConsecutiveStrategy, state.Intensity)
	bal := balancer.Decide(state.Intensity, loop, signals)

	var primary types.Element
	if s := types.PrimarySignal(signals); s != nil {
		primary = s.Element
	}
	strategy := selectStrategy(primary, bal)

	decision := &types.Decision{
		ID:             e.newID(),
		SessionID:      sessionID,
		TurnIndex:      state.NextTurn,
		PrimaryElement: primary,
		BalanceElement: bal.Element,
		Strategy:       strategy,
		Urgency:        bal.Urgency,
		Topics:         cls.TopicsFromSignals(signals),
		Intensity:      state.IntensitySnapshot(),
		CreatedAt:      e.now(),
	}

	state.History.Record(types.Turn{
		Index:          state.NextTurn,
		InputDigest:    types.DigestInput(utterance),
		Element:        primary,
		Strategy:       strategy,
		BalanceElement: bal.Element,
		Timestamp:      decision.CreatedAt,
	})
	state.RecordStrategy(strategy)
	state.NextTurn++

	state.Unlock()

	// The sink runs outside the session lock: a slow sink must not serialize
	// other turns of the same session behind it.
	if e.sink != nil {
		if err := e.sink.Record(ctx, decision); err != nil {
			log.Printf("engine: analytics record failed: %v", err)
		}
	}
	return decision
}

// Reset clears all state for a session. Resetting an unknown session is a
// no-op, not an error.
func (e *Engine) Reset(sessionID string) {
	e.sessions.Evict(sessionID)
}

// ApplyTuning swaps the engine's tuning constants at runtime. In-flight
// turns finish under the old tuning; new turns see the new one. History
// capacity applies to sessions created after the change.
func (e *Engine) ApplyTuning(cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.cfg = cfg
	e.acc = NewAccumulator(cfg)
	e.loops = NewLoopDetector(cfg)
	e.balancer = NewBalancer(cfg)
	log.Printf("engine: tuning applied (decay=%.2f margin=%.2f floor=%.2f)",
		cfg.DecayFactor, cfg.DominanceMargin, cfg.DominanceFloor)
	return nil
}

// ApplyLexicon rebuilds the classifier from a merged lexicon at runtime.
func (e *Engine) ApplyLexicon(lex classifier.Lexicon) error {
	cls, err := classifier.NewWithLexicon(lex)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.cls = cls
	e.mu.Unlock()
	log.Printf("engine: lexicon applied")
	return nil
}

// Config returns the engine's current tuning.
func (e *Engine) Config() Config {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cfg
}
