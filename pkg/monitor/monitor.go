// Package monitor polls heap usage and reports memory pressure to a log store.
package monitor

import (
	"context"
	"runtime"
	"sync"
	"time"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/config"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

// Target receives pressure notifications. *logging.Store and *console.Console satisfy it.
type Target interface {
	OnMemoryPressure(level logging.Pressure) int
}

// HeapAlloc reads the live heap size from the Go runtime.
func HeapAlloc() uint64 {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	return ms.HeapAlloc
}

// Monitor notifies its target when heap usage crosses the soft or hard limit. It only
// fires on upward transitions and rearms once usage drops below the soft limit.
type Monitor struct {
	target   Target
	soft     uint64
	hard     uint64
	interval time.Duration
	read     func() uint64
	onFire   func(level logging.Pressure, heap uint64, trimmed int)

	mu    sync.Mutex
	level logging.Pressure
}

// Option configures a Monitor.
type Option func(*Monitor)

// WithReader replaces the heap reader, mainly for tests.
func WithReader(read func() uint64) Option {
	return func(m *Monitor) {
		if read != nil {
			m.read = read
		}
	}
}

// WithNotify sets a hook called after each notification.
func WithNotify(fn func(level logging.Pressure, heap uint64, trimmed int)) Option {
	return func(m *Monitor) { m.onFire = fn }
}

// New creates a monitor with limits in bytes. A zero limit disables that level.
func New(target Target, soft, hard uint64, interval time.Duration, opts ...Option) *Monitor {
	if interval <= 0 {
		interval = time.Second
	}
	m := &Monitor{
		target:   target,
		soft:     soft,
		hard:     hard,
		interval: interval,
		read:     HeapAlloc,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// FromSettings creates a monitor from the memory section of cfg.
func FromSettings(target Target, cfg config.Memory, opts ...Option) *Monitor {
	const mb = 1 << 20
	return New(target, uint64(cfg.SoftLimitMB)*mb, uint64(cfg.HardLimitMB)*mb, cfg.PollInterval.D(), opts...)
}

// Enabled reports whether any limit is set.
func (m *Monitor) Enabled() bool {
	return m.soft > 0 || m.hard > 0
}

func (m *Monitor) classify(heap uint64) logging.Pressure {
	switch {
	case m.hard > 0 && heap >= m.hard:
		return logging.PressureHard
	case m.soft > 0 && heap >= m.soft:
		return logging.PressureSoft
	default:
		return 0
	}
}

// Check reads heap usage once and notifies the target if pressure rose. It returns
// the level observed.
func (m *Monitor) Check() logging.Pressure {
	heap := m.read()
	level := m.classify(heap)

	m.mu.Lock()
	rose := level > m.level
	m.level = level
	m.mu.Unlock()

	if rose && m.target != nil {
		trimmed := m.target.OnMemoryPressure(level)
		if m.onFire != nil {
			m.onFire(level, heap, trimmed)
		}
	}
	return level
}

// Run polls until ctx is done. It returns immediately when no limit is set.
func (m *Monitor) Run(ctx context.Context) {
	if !m.Enabled() {
		return
	}
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Check()
		}
	}
}
