// Package analytics provides decision sinks: destinations the engine hands
// each Decision to after a turn completes. Sinks are strictly downstream —
// a sink error never affects the decision already returned to the caller.
package analytics

import (
	"context"
	"log"

	"github.com/spiralogic/elemental/pkg/types"
)

// Sink receives decision records for logging, persistence, or streaming.
// Implementations must be safe for concurrent use.
type Sink interface {
	// Record delivers one decision. The engine logs and drops errors.
	Record(ctx context.Context, d *types.Decision) error

	// Close releases sink resources. Record must not be called after Close.
	Close() error
}

// NopSink discards every decision.
type NopSink struct{}

// Record implements Sink.
func (NopSink) Record(context.Context, *types.Decision) error { return nil }

// Close implements Sink.
func (NopSink) Close() error { return nil }

// LogSink writes a one-line summary of each decision to the process log.
type LogSink struct{}

// Record implements Sink.
func (LogSink) Record(_ context.Context, d *types.Decision) error {
	log.Printf("analytics: session=%s turn=%d primary=%s balance=%s strategy=%s urgency=%s",
		d.SessionID, d.TurnIndex, d.PrimaryElement, d.BalanceElement, d.Strategy, d.Urgency)
	return nil
}

// Close implements Sink.
func (LogSink) Close() error { return nil }

// MultiSink fans each decision out to every wrapped sink, returning the
// first error after all sinks have been attempted.
type MultiSink []Sink

// Record implements Sink.
func (m MultiSink) Record(ctx context.Context, d *types.Decision) error {
	var first error
	for _, s := range m {
		if err := s.Record(ctx, d); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// Close implements Sink.
func (m MultiSink) Close() error {
	var first error
	for _, s := range m {
		if err := s.Close(); err != nil && first == nil {
			first = err
		}
	}
	return first
}
