package logging

import (
	"runtime/debug"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
)

const (
	// MinCapacity and MaxCapacity bound the number of records a Store keeps.
	MinCapacity = 1
	MaxCapacity = 1000
	// DefaultCapacity is used by NewLogger when no store is supplied.
	DefaultCapacity = 100
)

// Clock supplies timestamps. xclock clocks satisfy it.
type Clock interface {
	Now() time.Time
}

// Store holds the most recent log records in insertion order. It is thread-safe.
type Store struct {
	mu       sync.Mutex
	entries  ring
	capacity int
	pool     *Pool

	sanitizer atomic.Pointer[Sanitizer]
	enabled   atomic.Bool
	clock     Clock
	reclaim   func()
	subs      subscribers

	submitted uint64
	evicted   uint64
	trimmed   uint64
}

// StoreStats is a snapshot of the store counters.
type StoreStats struct {
	Len       int
	Capacity  int
	Submitted uint64
	Evicted   uint64
	Trimmed   uint64
	Listeners int
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithSanitizer replaces the default sanitizer.
func WithSanitizer(s *Sanitizer) StoreOption {
	return func(st *Store) {
		if s != nil {
			st.sanitizer.Store(s)
		}
	}
}

// WithClock sets the timestamp source.
func WithClock(c Clock) StoreOption {
	return func(st *Store) {
		if c != nil {
			st.clock = c
		}
	}
}

// WithReclaimer sets the hook invoked after hard memory pressure.
func WithReclaimer(fn func()) StoreOption {
	return func(st *Store) {
		st.reclaim = fn
	}
}

// NewStore creates a store with the given capacity, clamped to [MinCapacity, MaxCapacity].
// A nil pool gets a private pool sized to the capacity.
func NewStore(capacity int, pool *Pool, opts ...StoreOption) *Store {
	capacity = clampCapacity(capacity)
	if pool == nil {
		pool = NewPool(capacity)
	}
	s := &Store{
		capacity: capacity,
		pool:     pool,
		clock:    xclock.Default(),
		reclaim:  debug.FreeOSMemory,
	}
	s.sanitizer.Store(NewSanitizer(DefaultMaxMessageLen, true))
	s.enabled.Store(true)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func clampCapacity(n int) int {
	return min(max(n, MinCapacity), MaxCapacity)
}

// Pool returns the pool backing this store.
func (s *Store) Pool() *Pool {
	return s.pool
}

// Subscribe appends a listener to the ordered subscriber list and returns a function
// that removes it.
func (s *Store) Subscribe(name string, fn Listener) (unsubscribe func()) {
	return s.subs.add(name, fn)
}

// SetSanitizer swaps the sanitizer used by subsequent submissions.
func (s *Store) SetSanitizer(sz *Sanitizer) {
	if sz != nil {
		s.sanitizer.Store(sz)
	}
}

// SetEnabled turns the store on or off. A disabled store ignores submissions.
func (s *Store) SetEnabled(enable bool) {
	s.enabled.Store(enable)
}

// Enabled reports whether submissions are accepted.
func (s *Store) Enabled() bool {
	return s.enabled.Load()
}

// Submit sanitizes message and appends it, evicting the oldest records beyond capacity.
// Listeners run after the store lock is released; their failures are returned.
func (s *Store) Submit(message string, level LogLevel) []ListenerFailure {
	return s.SubmitTrace(message, level, "")
}

// SubmitTrace is Submit with an attached stack trace.
func (s *Store) SubmitTrace(message string, level LogLevel, trace string) []ListenerFailure {
	if message == "" || !s.enabled.Load() {
		return nil
	}
	message = s.sanitizer.Load().Sanitize(message)
	if message == "" {
		return nil
	}
	now := s.clock.Now()

	s.mu.Lock()
	r := s.pool.Acquire(message, level, now)
	r.Trace = trace
	s.entries.push(r)
	s.submitted++
	s.evictLocked(s.capacity)
	added := *r
	s.mu.Unlock()

	return s.subs.emit(Event{Kind: EventAdded, Record: added})
}

// evictLocked releases head records until at most limit remain.
func (s *Store) evictLocked(limit int) int {
	n := 0
	for s.entries.len() > limit {
		s.pool.Release(s.entries.pop())
		n++
	}
	s.evicted += uint64(n)
	return n
}

// SetCapacity changes the capacity, clamped to [MinCapacity, MaxCapacity], and evicts
// any overflow immediately.
func (s *Store) SetCapacity(n int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.capacity = clampCapacity(n)
	s.evictLocked(s.capacity)
}

// Capacity returns the current capacity.
func (s *Store) Capacity() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.capacity
}

// Len returns the number of stored records.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.entries.len()
}

// Clear returns every record to the pool and emits EventCleared.
func (s *Store) Clear() []ListenerFailure {
	s.mu.Lock()
	for s.entries.len() > 0 {
		s.pool.Release(s.entries.pop())
	}
	s.mu.Unlock()

	return s.subs.emit(Event{Kind: EventCleared})
}

// Snapshot returns a copy of all records, oldest first.
func (s *Store) Snapshot() []Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Record, s.entries.len())
	for i := range out {
		out[i] = *s.entries.at(i)
	}
	return out
}

// Stats returns a snapshot of the store counters.
func (s *Store) Stats() StoreStats {
	s.mu.Lock()
	st := StoreStats{
		Len:       s.entries.len(),
		Capacity:  s.capacity,
		Submitted: s.submitted,
		Evicted:   s.evicted,
		Trimmed:   s.trimmed,
	}
	s.mu.Unlock()
	st.Listeners = s.subs.len()
	return st
}
