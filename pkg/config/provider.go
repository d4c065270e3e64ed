package config

import (
	"sync"
	"sync/atomic"
)

// Provider publishes settings snapshots. Readers never block writers.
type Provider struct {
	current atomic.Pointer[Settings]

	mu        sync.Mutex
	listeners []func(Settings)
}

// NewProvider returns a provider holding the normalized s.
func NewProvider(s Settings) *Provider {
	p := &Provider{}
	s = s.Normalize()
	p.current.Store(&s)
	return p
}

// Snapshot returns the current settings.
func (p *Provider) Snapshot() Settings {
	return *p.current.Load()
}

// Update normalizes s, swaps it in and calls every OnChange listener with it.
func (p *Provider) Update(s Settings) {
	s = s.Normalize()
	p.current.Store(&s)

	p.mu.Lock()
	listeners := append([]func(Settings){}, p.listeners...)
	p.mu.Unlock()
	for _, fn := range listeners {
		fn(s)
	}
}

// OnChange registers fn to run after each Update.
func (p *Provider) OnChange(fn func(Settings)) {
	p.mu.Lock()
	p.listeners = append(p.listeners, fn)
	p.mu.Unlock()
}
