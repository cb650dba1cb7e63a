package session

import (
	"log"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Store is the injectable session-state table. The engine receives a Store
// from the host instead of holding a package-level map, which keeps tests
// isolated and lets multi-instance hosts supply their own partitioning.
type Store interface {
	// Get returns the state for id, or nil when the session is unknown.
	Get(id string) *State

	// GetOrCreate returns the state for id, lazily creating it on first use.
	// Creation is concurrency-safe: two racing callers observe the same state.
	GetOrCreate(id string) *State

	// Evict removes the state for id. Evicting an unknown id is a no-op.
	Evict(id string)

	// Len returns the number of live sessions.
	Len() int
}

// Options configures the in-memory store.
type Options struct {
	// MaxSessions bounds the number of concurrently tracked sessions;
	// least-recently-used sessions are evicted beyond it. Default 1024.
	MaxSessions int

	// TTL expires sessions that have been idle this long. Default 30m.
	TTL time.Duration

	// HistorySize is the per-session turn history capacity. Default 10.
	HistorySize int
}

func (o Options) withDefaults() Options {
	if o.MaxSessions <= 0 {
		o.MaxSessions = 1024
	}
	if o.TTL <= 0 {
		o.TTL = 30 * time.Minute
	}
	if o.HistorySize <= 0 {
		o.HistorySize = 10
	}
	return o
}

// MemoryStore is the default Store: an expiring LRU keyed by session id.
// Idle sessions age out on their own, so abandoned conversations cannot
// accumulate for the lifetime of the process.
type MemoryStore struct {
	mu    sync.Mutex // serializes the check-then-create path
	cache *expirable.LRU[string, *State]
	opts  Options
}

// NewMemoryStore returns a store with the given options.
func NewMemoryStore(opts Options) *MemoryStore {
	opts = opts.withDefaults()
	s := &MemoryStore{opts: opts}
	s.cache = expirable.NewLRU[string, *State](opts.MaxSessions, s.onEvict, opts.TTL)
	return s
}

func (s *MemoryStore) onEvict(id string, _ *State) {
	log.Printf("session: evicted %s", id)
}

// Get returns the state for id, or nil when unknown or expired.
func (s *MemoryStore) Get(id string) *State {
	if state, ok := s.cache.Get(id); ok {
		return state
	}
	return nil
}

// GetOrCreate returns the existing state for id or creates a fresh one.
func (s *MemoryStore) GetOrCreate(id string) *State {
	if state, ok := s.cache.Get(id); ok {
		return state
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Re-check under the lock: a racing caller may have created it.
	if state, ok := s.cache.Get(id); ok {
		return state
	}
	state := newState(id, s.opts.HistorySize)
	s.cache.Add(id, state)
	return state
}

// Evict removes the state for id; unknown ids are a no-op.
func (s *MemoryStore) Evict(id string) {
	s.cache.Remove(id)
}

// Len returns the number of live sessions.
func (s *MemoryStore) Len() int {
	return s.cache.Len()
}
