// Package render moves records from a logging.Store to a text sink. Producers only
// format and enqueue; the goroutine owning the sink drives Tick, which drains the
// queue, bounds the text and pushes it in one call.
package render

import (
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xclock"
	"go.uber.org/zap"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/internal/diag"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/config"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/truncate"
)

const sinkWarnKey = "sink-unavailable"

// State describes what the scheduler is waiting for.
type State int32

const (
	// Idle means nothing is queued.
	Idle State = iota
	// PendingSingle means queued lines wait for the throttle interval.
	PendingSingle
	// Batching means queued lines wait for the batch interval.
	Batching
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case PendingSingle:
		return "pending"
	case Batching:
		return "batching"
	default:
		return "unknown"
	}
}

// Clock supplies the current time. xclock clocks satisfy it.
type Clock interface {
	Now() time.Time
}

// Stats is a snapshot of scheduler counters.
type Stats struct {
	Pushes  uint64
	Skipped uint64
	Dropped uint64
	Queued  int
	State   State
}

// Scheduler renders store events into a Sink.
type Scheduler struct {
	sink      Sink
	clock     Clock
	fallback  *diag.Channel
	wake      func()
	formatter atomic.Pointer[Formatter]
	batching  atomic.Bool
	state     atomic.Int32
	queue     *queue

	// Guarded by mu and only touched by the goroutine driving the sink.
	mu        sync.Mutex
	content   string
	lastPush  time.Time
	throttle  time.Duration
	batchWait time.Duration
	trunc     truncate.Options
	sinkDown  bool

	pushes  atomic.Uint64
	skipped atomic.Uint64
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock sets the time source used for throttling and batching.
func WithClock(c Clock) Option {
	return func(s *Scheduler) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithFallback sets the channel that receives sink and format warnings.
func WithFallback(ch *diag.Channel) Option {
	return func(s *Scheduler) { s.fallback = ch }
}

// WithFormatter replaces the default formatter.
func WithFormatter(f *Formatter) Option {
	return func(s *Scheduler) {
		if f != nil {
			s.formatter.Store(f)
		}
	}
}

// WithQueueCapacity bounds the number of lines waiting for a flush.
func WithQueueCapacity(n int) Option {
	return func(s *Scheduler) { s.queue = newQueue(n) }
}

// WithTruncation sets the bounds applied to the sink content.
func WithTruncation(o truncate.Options) Option {
	return func(s *Scheduler) { s.trunc = o }
}

// WithThrottle sets the minimum time between pushes when batching is off.
func WithThrottle(d time.Duration) Option {
	return func(s *Scheduler) { s.throttle = max(d, 0) }
}

// WithBatching enables batching with the given interval.
func WithBatching(enabled bool, interval time.Duration) Option {
	return func(s *Scheduler) {
		s.batching.Store(enabled)
		if interval > 0 {
			s.batchWait = interval
		}
	}
}

// WithWake sets a hook called from the producer goroutine when the queue becomes
// non-empty, so the host can schedule a Tick on its own loop.
func WithWake(fn func()) Option {
	return func(s *Scheduler) { s.wake = fn }
}

// NewScheduler creates a scheduler for sink using the default settings.
func NewScheduler(sink Sink, opts ...Option) *Scheduler {
	def := config.Default()
	s := &Scheduler{
		sink:      sink,
		clock:     xclock.Default(),
		queue:     newQueue(def.QueueCapacity),
		throttle:  def.ThrottleInterval.D(),
		batchWait: def.BatchInterval.D(),
		trunc:     def.TruncateOptions(),
	}
	s.formatter.Store(DefaultFormatter())
	s.batching.Store(def.Batching)
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Attach subscribes the scheduler to store and returns the unsubscribe function.
func (s *Scheduler) Attach(store *logging.Store) func() {
	return store.Subscribe("render", s.Listener())
}

// Listener returns the store listener that feeds the queue. It never touches the sink.
func (s *Scheduler) Listener() logging.Listener {
	return func(ev logging.Event) error {
		switch ev.Kind {
		case logging.EventAdded:
			s.Enqueue(ev.Record)
		case logging.EventCleared:
			s.queue.markCleared()
			s.notify()
		}
		return nil
	}
}

// Enqueue formats r and queues it for the next flush. Safe for concurrent use.
func (s *Scheduler) Enqueue(r logging.Record) {
	line := s.formatter.Load().Format(r)
	if s.queue.push(line, s.clock.Now()) {
		s.notify()
	}
}

func (s *Scheduler) notify() {
	waiting := PendingSingle
	if s.batching.Load() {
		waiting = Batching
	}
	s.state.CompareAndSwap(int32(Idle), int32(waiting))
	if s.wake != nil {
		s.wake()
	}
}

// Tick flushes queued lines when the throttle or batch interval allows it. Call it from
// the goroutine that owns the sink.
func (s *Scheduler) Tick() {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.clock.Now()
	n, since, cleared := s.queue.pending()
	if cleared {
		s.content = ""
		s.pushLocked(now)
	}
	if n == 0 {
		s.state.Store(int32(Idle))
		return
	}
	if s.batching.Load() {
		if now.Sub(since) < s.batchWait {
			s.state.Store(int32(Batching))
			return
		}
	} else if !s.lastPush.IsZero() && now.Sub(s.lastPush) < s.throttle {
		s.state.Store(int32(PendingSingle))
		return
	}
	s.flushLocked(now)
}

// ForceFlush pushes everything queued regardless of intervals.
func (s *Scheduler) ForceFlush() {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.clock.Now()
	if _, _, cleared := s.queue.pending(); cleared {
		s.content = ""
	}
	s.flushLocked(now)
}

// Clear drops queued lines and the current content and pushes empty text at once.
func (s *Scheduler) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.discard()
	s.content = ""
	s.state.Store(int32(Idle))
	s.pushLocked(s.clock.Now())
}

// Rebuild replaces the content with records rendered by the current formatter, for
// example after colors changed.
func (s *Scheduler) Rebuild(records []logging.Record) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queue.discard()
	f := s.formatter.Load()
	lines := make([]string, len(records))
	for i, r := range records {
		lines[i] = f.Format(r)
	}
	s.content = s.bound(strings.Join(lines, "\n"))
	s.state.Store(int32(Idle))
	s.pushLocked(s.clock.Now())
}

// Apply re-reads intervals, truncation bounds, queue capacity and presentation from
// cfg. Content already rendered keeps its old colors until Rebuild.
func (s *Scheduler) Apply(cfg config.Settings) {
	cfg = cfg.Normalize()
	s.formatter.Store(NewFormatter(cfg.Colors, cfg.TimestampFormat, s.fallback))
	s.batching.Store(cfg.Batching)
	s.queue.resize(cfg.QueueCapacity)

	s.mu.Lock()
	s.throttle = cfg.ThrottleInterval.D()
	s.batchWait = cfg.BatchInterval.D()
	s.trunc = cfg.TruncateOptions()
	s.mu.Unlock()
}

func (s *Scheduler) flushLocked(now time.Time) {
	lines := s.queue.drain()
	if len(lines) > 0 {
		var b strings.Builder
		b.WriteString(s.content)
		for _, line := range lines {
			if b.Len() > 0 {
				b.WriteByte('\n')
			}
			b.WriteString(line)
		}
		s.content = s.bound(b.String())
	}
	s.state.Store(int32(Idle))
	s.pushLocked(now)
}

// bound applies the truncation bounds and repairs the color tags the cut went through.
func (s *Scheduler) bound(text string) string {
	cut := s.trunc.Apply(text)
	if cut == text {
		return text
	}
	return repairTags(cut)
}

func (s *Scheduler) pushLocked(now time.Time) {
	if !sinkReady(s.sink) {
		s.skipped.Add(1)
		s.sinkDown = true
		s.fallback.WarnOnce(sinkWarnKey, "log sink unavailable, skipping update",
			zap.Int("content_len", len(s.content)))
		return
	}
	if s.sinkDown {
		s.sinkDown = false
		s.fallback.Reset(sinkWarnKey)
	}
	s.sink.SetContent(s.content)
	s.lastPush = now
	s.pushes.Add(1)
}

// Content returns the text most recently rendered, pushed or not.
func (s *Scheduler) Content() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.content
}

// State returns the current scheduler state.
func (s *Scheduler) State() State {
	return State(s.state.Load())
}

// Stats returns a snapshot of the counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Pushes:  s.pushes.Load(),
		Skipped: s.skipped.Load(),
		Dropped: s.queue.droppedCount(),
		Queued:  s.queue.len(),
		State:   s.State(),
	}
}
