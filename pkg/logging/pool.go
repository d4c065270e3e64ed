package logging

import (
	"sync"
	"time"
)

// Pool recycles Record slots so that steady-state logging does not allocate.
//
// Slots live in an indexable arena of at most MaxSize records; free slots are tracked
// by a stack of arena indices. When the arena is exhausted, Acquire hands out detached
// records which are dropped on release. Pool is safe for concurrent use.
type Pool struct {
	mu      sync.Mutex
	slots   []*Record
	free    []int
	maxSize int

	allocations uint64
	reuses      uint64
	discarded   uint64
}

// PoolStats is a snapshot of the pool counters.
type PoolStats struct {
	Allocations uint64
	Reuses      uint64
	Discarded   uint64
	Free        int
	Slots       int
	MaxSize     int
}

// ReuseRatio returns reuses / (allocations + reuses), or 0 if nothing was acquired yet.
func (s PoolStats) ReuseRatio() float64 {
	total := s.Allocations + s.Reuses
	if total == 0 {
		return 0
	}
	return float64(s.Reuses) / float64(total)
}

// NewPool creates a pool retaining at most maxSize slots (minimum 1).
func NewPool(maxSize int) *Pool {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Pool{
		slots:   make([]*Record, 0, maxSize),
		free:    make([]int, 0, maxSize),
		maxSize: maxSize,
	}
}

// Acquire returns an initialized record, reusing a free slot when one is available.
func (p *Pool) Acquire(message string, level LogLevel, ts time.Time) *Record {
	p.mu.Lock()
	defer p.mu.Unlock()

	if n := len(p.free); n > 0 {
		idx := p.free[n-1]
		p.free = p.free[:n-1]
		r := p.slots[idx]
		r.init(message, level, ts)
		p.reuses++
		return r
	}

	p.allocations++
	r := &Record{slot: -1}
	if len(p.slots) < p.maxSize {
		r.slot = len(p.slots)
		p.slots = append(p.slots, r)
	}
	r.init(message, level, ts)
	return r
}

// Release resets r and returns its slot to the free stack. Detached records, records
// whose slot no longer belongs to the arena, and releases beyond MaxSize are dropped.
// Releasing the same record twice is a no-op.
func (p *Pool) Release(r *Record) {
	if r == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	if r.pooled {
		return
	}
	r.reset()
	if p.owns(r) && len(p.free) < p.maxSize {
		r.pooled = true
		p.free = append(p.free, r.slot)
		return
	}
	p.discarded++
}

// owns reports whether r is the record currently stored at its arena index.
func (p *Pool) owns(r *Record) bool {
	return r.slot >= 0 && r.slot < len(p.slots) && p.slots[r.slot] == r
}

// SetMaxSize changes the slot limit (minimum 1). Shrinking drops free slots and
// arena entries above the new limit immediately; live records above it are dropped
// when they are released.
func (p *Pool) SetMaxSize(n int) {
	if n < 1 {
		n = 1
	}
	p.mu.Lock()
	defer p.mu.Unlock()

	p.maxSize = n
	if len(p.slots) <= n {
		return
	}

	kept := p.free[:0]
	for _, idx := range p.free {
		if idx < n {
			kept = append(kept, idx)
			continue
		}
		p.slots[idx].pooled = false
		p.discarded++
	}
	p.free = kept
	clear(p.slots[n:])
	p.slots = p.slots[:n]
}

// MaxSize returns the slot limit.
func (p *Pool) MaxSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.maxSize
}

// FreeCount returns the number of slots ready for reuse.
func (p *Pool) FreeCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.free)
}

// Stats returns a snapshot of the pool counters.
func (p *Pool) Stats() PoolStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	return PoolStats{
		Allocations: p.allocations,
		Reuses:      p.reuses,
		Discarded:   p.discarded,
		Free:        len(p.free),
		Slots:       len(p.slots),
		MaxSize:     p.maxSize,
	}
}
