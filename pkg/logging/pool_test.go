package logging_test

import (
	"testing"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

func TestPoolAcquireRelease(t *testing.T) {
	pool := logging.NewPool(2)

	a := pool.Acquire("a", logging.LevelInfo, testTime)
	b := pool.Acquire("b", logging.LevelWarning, testTime)
	c := pool.Acquire("c", logging.LevelError, testTime)
	if a.Slot() != 0 || b.Slot() != 1 {
		t.Fatalf("Expected arena slots 0 and 1, got %d and %d", a.Slot(), b.Slot())
	}
	if c.Slot() != -1 {
		t.Fatalf("Expected detached record once the arena is full, got slot %d", c.Slot())
	}

	pool.Release(a)
	pool.Release(c)
	if a.Message != "" || a.Level != logging.LevelInfo || !a.Timestamp.IsZero() {
		t.Errorf("Released record was not reset: %+v", a)
	}
	st := pool.Stats()
	if st.Free != 1 || st.Discarded != 1 {
		t.Errorf("Expected free=1 discarded=1, got free=%d discarded=%d", st.Free, st.Discarded)
	}

	d := pool.Acquire("d", logging.LevelInfo, testTime)
	if d != a {
		t.Errorf("Expected the freed slot to be reused")
	}
	if d.Message != "d" {
		t.Errorf("Reused record not reinitialized: %q", d.Message)
	}
	st = pool.Stats()
	if st.Allocations != 3 || st.Reuses != 1 {
		t.Errorf("Expected 3 allocations and 1 reuse, got %d and %d", st.Allocations, st.Reuses)
	}
}

func TestPoolDoubleReleaseIsIgnored(t *testing.T) {
	pool := logging.NewPool(4)
	r := pool.Acquire("x", logging.LevelInfo, testTime)
	pool.Release(r)
	pool.Release(r)
	if free := pool.FreeCount(); free != 1 {
		t.Fatalf("Expected one free slot after double release, got %d", free)
	}
	first := pool.Acquire("1", logging.LevelInfo, testTime)
	second := pool.Acquire("2", logging.LevelInfo, testTime)
	if first == second {
		t.Fatalf("Double release handed the same record out twice")
	}
}

func TestPoolSetMaxSize(t *testing.T) {
	pool := logging.NewPool(4)
	var records []*logging.Record
	for i := 0; i < 4; i++ {
		records = append(records, pool.Acquire("m", logging.LevelInfo, testTime))
	}
	for _, r := range records[:3] {
		pool.Release(r)
	}
	if pool.FreeCount() != 3 {
		t.Fatalf("Expected 3 free slots, got %d", pool.FreeCount())
	}

	pool.SetMaxSize(2)
	if pool.MaxSize() != 2 {
		t.Fatalf("Expected max size 2, got %d", pool.MaxSize())
	}
	if free := pool.FreeCount(); free > 2 {
		t.Fatalf("Free count %d exceeds max size after shrink", free)
	}

	// records[3] lived above the new limit and must not come back.
	pool.Release(records[3])
	if free := pool.FreeCount(); free > 2 {
		t.Fatalf("Free count %d exceeds max size after late release", free)
	}

	pool.SetMaxSize(0)
	if pool.MaxSize() != 1 {
		t.Errorf("Expected max size clamped to 1, got %d", pool.MaxSize())
	}
	if free := pool.FreeCount(); free > 1 {
		t.Errorf("Free count %d exceeds clamped max size", free)
	}
}

func TestPoolFreeCountNeverExceedsMaxSize(t *testing.T) {
	pool := logging.NewPool(3)
	var live []*logging.Record
	for i := 0; i < 10; i++ {
		live = append(live, pool.Acquire("m", logging.LevelInfo, testTime))
	}
	for _, r := range live {
		pool.Release(r)
		if free := pool.FreeCount(); free > pool.MaxSize() {
			t.Fatalf("Free count %d exceeds max size %d", free, pool.MaxSize())
		}
	}
	if st := pool.Stats(); st.Free != 3 || st.Discarded != 7 {
		t.Errorf("Expected free=3 discarded=7, got free=%d discarded=%d", st.Free, st.Discarded)
	}
}

func TestPoolReuseRatio(t *testing.T) {
	if ratio := (logging.PoolStats{}).ReuseRatio(); ratio != 0 {
		t.Errorf("Expected idle ratio 0, got %f", ratio)
	}
	st := logging.PoolStats{Allocations: 1, Reuses: 3}
	if ratio := st.ReuseRatio(); ratio != 0.75 {
		t.Errorf("Expected ratio 0.75, got %f", ratio)
	}
}
