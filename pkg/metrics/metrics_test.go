package metrics_test

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/internal/diag"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/metrics"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/render"
)

func gather(t *testing.T, c prometheus.Collector) map[string]*dto.Metric {
	t.Helper()
	reg := prometheus.NewPedanticRegistry()
	if err := reg.Register(c); err != nil {
		t.Fatalf("register: %v", err)
	}
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	out := make(map[string]*dto.Metric)
	for _, mf := range families {
		if len(mf.GetMetric()) != 1 {
			t.Fatalf("%s: expected one series, got %d", mf.GetName(), len(mf.GetMetric()))
		}
		out[mf.GetName()] = mf.GetMetric()[0]
	}
	return out
}

func value(m *dto.Metric) float64 {
	if m.GetCounter() != nil {
		return m.GetCounter().GetValue()
	}
	return m.GetGauge().GetValue()
}

func TestCollectorReportsStats(t *testing.T) {
	store := logging.NewStore(3, logging.NewPool(3))
	sched := render.NewScheduler(nil, render.WithFallback(diag.Nop()), render.WithQueueCapacity(2))
	sched.Attach(store)
	for _, m := range []string{"a", "b", "c", "d", "e"} {
		store.Submit(m, logging.LevelInfo)
	}

	got := gather(t, metrics.NewCollector(store, sched, metrics.WithInstance("test")))

	tests := []struct {
		name string
		want float64
	}{
		{"scrollback_store_records", 3},
		{"scrollback_store_capacity", 3},
		{"scrollback_store_submitted_total", 5},
		{"scrollback_store_evicted_total", 2},
		{"scrollback_pool_allocations_total", 4},
		{"scrollback_pool_reuses_total", 1},
		{"scrollback_render_queued", 2},
		{"scrollback_render_dropped_total", 3},
		{"scrollback_render_pushes_total", 0},
	}
	for _, tt := range tests {
		m, ok := got[tt.name]
		if !ok {
			t.Errorf("%s: missing", tt.name)
			continue
		}
		if v := value(m); v != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, v)
		}
		if l := m.GetLabel(); len(l) != 1 || l[0].GetName() != "instance" || l[0].GetValue() != "test" {
			t.Errorf("%s: unexpected labels %v", tt.name, l)
		}
	}
}

func TestCollectorWithoutScheduler(t *testing.T) {
	store := logging.NewStore(3, nil)
	got := gather(t, metrics.NewCollector(store, nil))
	if _, ok := got["scrollback_render_pushes_total"]; ok {
		t.Errorf("Render metrics must be absent without a scheduler")
	}
	m := got["scrollback_store_capacity"]
	if m == nil || len(m.GetLabel()) != 1 || m.GetLabel()[0].GetValue() == "" {
		t.Errorf("Expected a generated instance label")
	}
}
