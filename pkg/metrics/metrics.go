// Package metrics exposes store, pool and scheduler counters to Prometheus.
package metrics

import (
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/render"
)

const namespace = "scrollback"

// Collector reads stats on every scrape; it keeps no state of its own.
type Collector struct {
	store *logging.Store
	sched *render.Scheduler

	records, capacity, submitted, evicted, trimmed *prometheus.Desc
	allocations, reuses, discarded, free, ratio    *prometheus.Desc
	pushes, skipped, dropped, queued               *prometheus.Desc
}

// Option configures a Collector.
type Option func(*collectorOptions)

type collectorOptions struct {
	instance string
}

// WithInstance sets the instance label. It defaults to a random UUID.
func WithInstance(id string) Option {
	return func(o *collectorOptions) { o.instance = id }
}

// NewCollector creates a collector for store and, if not nil, sched.
func NewCollector(store *logging.Store, sched *render.Scheduler, opts ...Option) *Collector {
	o := collectorOptions{instance: uuid.NewString()}
	for _, opt := range opts {
		opt(&o)
	}
	labels := prometheus.Labels{"instance": o.instance}
	desc := func(subsystem, name, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName(namespace, subsystem, name), help, nil, labels)
	}
	return &Collector{
		store: store,
		sched: sched,

		records:   desc("store", "records", "Records currently held."),
		capacity:  desc("store", "capacity", "Configured store capacity."),
		submitted: desc("store", "submitted_total", "Records accepted by the store."),
		evicted:   desc("store", "evicted_total", "Records evicted because the store was full."),
		trimmed:   desc("store", "trimmed_total", "Records trimmed under memory pressure."),

		allocations: desc("pool", "allocations_total", "Records allocated by the pool."),
		reuses:      desc("pool", "reuses_total", "Records served from the free list."),
		discarded:   desc("pool", "discarded_total", "Released records the pool had no room for."),
		free:        desc("pool", "free", "Records waiting on the free list."),
		ratio:       desc("pool", "reuse_ratio", "Reuses over all acquisitions."),

		pushes:  desc("render", "pushes_total", "Content updates pushed to the sink."),
		skipped: desc("render", "skipped_total", "Updates skipped because the sink was unavailable."),
		dropped: desc("render", "dropped_total", "Lines dropped from the full render queue."),
		queued:  desc("render", "queued", "Lines waiting for the next flush."),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	for _, d := range []*prometheus.Desc{
		c.records, c.capacity, c.submitted, c.evicted, c.trimmed,
		c.allocations, c.reuses, c.discarded, c.free, c.ratio,
	} {
		ch <- d
	}
	if c.sched != nil {
		ch <- c.pushes
		ch <- c.skipped
		ch <- c.dropped
		ch <- c.queued
	}
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	gauge := func(d *prometheus.Desc, v float64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.GaugeValue, v)
	}
	counter := func(d *prometheus.Desc, v uint64) {
		ch <- prometheus.MustNewConstMetric(d, prometheus.CounterValue, float64(v))
	}

	st := c.store.Stats()
	gauge(c.records, float64(st.Len))
	gauge(c.capacity, float64(st.Capacity))
	counter(c.submitted, st.Submitted)
	counter(c.evicted, st.Evicted)
	counter(c.trimmed, st.Trimmed)

	ps := c.store.Pool().Stats()
	counter(c.allocations, ps.Allocations)
	counter(c.reuses, ps.Reuses)
	counter(c.discarded, ps.Discarded)
	gauge(c.free, float64(ps.Free))
	gauge(c.ratio, ps.ReuseRatio())

	if c.sched != nil {
		rs := c.sched.Stats()
		counter(c.pushes, rs.Pushes)
		counter(c.skipped, rs.Skipped)
		counter(c.dropped, rs.Dropped)
		gauge(c.queued, float64(rs.Queued))
	}
}
