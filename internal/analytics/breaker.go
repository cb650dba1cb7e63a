package analytics

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/sony/gobreaker"

	"github.com/spiralogic/elemental/pkg/types"
)

// ErrSinkUnavailable is returned when the circuit is open and records are
// being shed to protect the conversation loop.
var ErrSinkUnavailable = errors.New("analytics: sink circuit open")

// BreakerConfig holds the circuit breaker settings for a wrapped sink.
type BreakerConfig struct {
	// MaxFailures is the number of consecutive failures that trip the
	// circuit. Default: 3
	MaxFailures uint32

	// Timeout is how long the circuit stays open before allowing a probe.
	// Default: 30 seconds
	Timeout time.Duration

	// HalfOpenMaxSuccesses is the number of consecutive probe successes
	// needed to close the circuit again. Default: 2
	HalfOpenMaxSuccesses uint32
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	if c.MaxFailures == 0 {
		c.MaxFailures = 3
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}
	if c.HalfOpenMaxSuccesses == 0 {
		c.HalfOpenMaxSuccesses = 2
	}
	return c
}

// BreakerSink wraps another sink with a circuit breaker so a failing
// decision log can never stall or error the turn pipeline. While the
// circuit is open, records are dropped with a log line — decisions are
// advisory analytics, losing some beats blocking the conversation.
type BreakerSink struct {
	inner   Sink
	breaker *gobreaker.CircuitBreaker
}

// NewBreakerSink wraps inner with the given breaker settings.
func NewBreakerSink(inner Sink, cfg BreakerConfig) *BreakerSink {
	cfg = cfg.withDefaults()

	settings := gobreaker.Settings{
		Name:        "AnalyticsSink",
		MaxRequests: cfg.HalfOpenMaxSuccesses,
		Interval:    0, // don't clear counts periodically
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.MaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Printf("analytics: sink circuit %s -> %s", from, to)
		},
	}

	return &BreakerSink{
		inner:   inner,
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Record implements Sink.
func (b *BreakerSink) Record(ctx context.Context, d *types.Decision) error {
	_, err := b.breaker.Execute(func() (interface{}, error) {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		return nil, b.inner.Record(ctx, d)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return ErrSinkUnavailable
	}
	return err
}

// State returns the current circuit state: "closed", "open", or "half-open".
func (b *BreakerSink) State() string {
	switch b.breaker.State() {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateOpen:
		return "open"
	case gobreaker.StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// Close implements Sink.
func (b *BreakerSink) Close() error {
	return b.inner.Close()
}
