// Package console wires a Pool, Store, Scheduler and Logger together from one set of
// settings.
package console

import (
	"sync"
	"sync/atomic"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/internal/diag"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/config"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/render"
)

// Console owns one store and the scheduler rendering it.
type Console struct {
	pool   *logging.Pool
	store  *logging.Store
	sched  *render.Scheduler
	logger *logging.Logger
	detach func()

	mu       sync.Mutex
	settings config.Settings
}

type options struct {
	fallback  *diag.Channel
	storeOpts []logging.StoreOption
	schedOpts []render.Option
}

// Option configures a Console.
type Option func(*options)

// WithFallback sets the diagnostic channel shared by the scheduler and formatter.
func WithFallback(ch *diag.Channel) Option {
	return func(o *options) { o.fallback = ch }
}

// WithStoreOptions passes options to the underlying store.
func WithStoreOptions(opts ...logging.StoreOption) Option {
	return func(o *options) { o.storeOpts = append(o.storeOpts, opts...) }
}

// WithSchedulerOptions passes options to the underlying scheduler. They are applied
// after the ones derived from settings.
func WithSchedulerOptions(opts ...render.Option) Option {
	return func(o *options) { o.schedOpts = append(o.schedOpts, opts...) }
}

// New builds a console rendering into sink. sink may be nil until the host has one;
// pushes are skipped meanwhile.
func New(cfg config.Settings, sink render.Sink, opts ...Option) *Console {
	cfg = cfg.Normalize()
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	pool := logging.NewPool(cfg.PoolSize)
	storeOpts := append([]logging.StoreOption{
		logging.WithSanitizer(logging.NewSanitizer(cfg.MaxMessageLen, cfg.StripMarkup)),
	}, o.storeOpts...)
	store := logging.NewStore(cfg.Capacity, pool, storeOpts...)
	store.SetEnabled(cfg.Enabled)

	schedOpts := append([]render.Option{
		render.WithFallback(o.fallback),
		render.WithFormatter(render.NewFormatter(cfg.Colors, cfg.TimestampFormat, o.fallback)),
		render.WithQueueCapacity(cfg.QueueCapacity),
		render.WithTruncation(cfg.TruncateOptions()),
		render.WithThrottle(cfg.ThrottleInterval.D()),
		render.WithBatching(cfg.Batching, cfg.BatchInterval.D()),
	}, o.schedOpts...)
	sched := render.NewScheduler(sink, schedOpts...)

	logger := logging.NewLogger(store)
	logger.SetCaptureTrace(cfg.CaptureTrace)

	return &Console{
		pool:     pool,
		store:    store,
		sched:    sched,
		logger:   logger,
		detach:   sched.Attach(store),
		settings: cfg,
	}
}

// Apply re-reads cfg. It pushes to the sink when presentation changes, so call it
// from the goroutine that drives Tick.
func (c *Console) Apply(cfg config.Settings) {
	cfg = cfg.Normalize()
	c.mu.Lock()
	prev := c.settings
	c.settings = cfg
	c.mu.Unlock()

	c.pool.SetMaxSize(cfg.PoolSize)
	c.store.SetCapacity(cfg.Capacity)
	c.store.SetEnabled(cfg.Enabled)
	if cfg.MaxMessageLen != prev.MaxMessageLen || cfg.StripMarkup != prev.StripMarkup {
		c.store.SetSanitizer(logging.NewSanitizer(cfg.MaxMessageLen, cfg.StripMarkup))
	}
	c.logger.SetCaptureTrace(cfg.CaptureTrace)
	c.sched.Apply(cfg)

	if cfg.Colors != prev.Colors || cfg.TimestampFormat != prev.TimestampFormat || cfg.TruncateOptions() != prev.TruncateOptions() {
		c.sched.Rebuild(c.store.Snapshot())
	}
}

// Settings returns the settings last applied.
func (c *Console) Settings() config.Settings {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.settings
}

// Pool returns the record pool.
func (c *Console) Pool() *logging.Pool {
	return c.pool
}

// Store returns the log store.
func (c *Console) Store() *logging.Store {
	return c.store
}

// Scheduler returns the render scheduler.
func (c *Console) Scheduler() *render.Scheduler {
	return c.sched
}

// Logger returns a leveled logger writing into the store.
func (c *Console) Logger() *logging.Logger {
	return c.logger
}

// Tick drives the scheduler.
func (c *Console) Tick() {
	c.sched.Tick()
}

// Clear empties the store and the sink.
func (c *Console) Clear() {
	c.store.Clear()
	c.sched.Clear()
}

// OnMemoryPressure trims the store. It satisfies monitor.Target.
func (c *Console) OnMemoryPressure(level logging.Pressure) int {
	return c.store.OnMemoryPressure(level)
}

// Close detaches the scheduler from the store.
func (c *Console) Close() {
	c.detach()
}

var defaultConsole atomic.Pointer[Console]

// Default returns the process-wide console, creating one without a sink on first use.
func Default() *Console {
	if c := defaultConsole.Load(); c != nil {
		return c
	}
	defaultConsole.CompareAndSwap(nil, New(config.Default(), nil))
	return defaultConsole.Load()
}

// SetDefault replaces the process-wide console. Nil is ignored.
func SetDefault(c *Console) {
	if c != nil {
		defaultConsole.Store(c)
	}
}

// ResetDefault drops the process-wide console; the next Default call builds a fresh one.
func ResetDefault() {
	if c := defaultConsole.Swap(nil); c != nil {
		c.Close()
	}
}
