package logging_test

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

var testTime = time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC)

func newTestStore(capacity, poolSize int) *logging.Store {
	return logging.NewStore(capacity, logging.NewPool(poolSize), logging.WithClock(fixedClock{testTime}))
}

func messages(records []logging.Record) []string {
	out := make([]string, len(records))
	for i, r := range records {
		out[i] = r.Message
	}
	return out
}

func TestStoreFIFOEviction(t *testing.T) {
	store := newTestStore(2, 8)
	for _, m := range []string{"A", "B", "C"} {
		store.Submit(m, logging.LevelInfo)
	}
	if got := strings.Join(messages(store.Snapshot()), ","); got != "B,C" {
		t.Fatalf("Expected store [B,C], got [%s]", got)
	}
	store.Submit("D", logging.LevelInfo)
	if got := strings.Join(messages(store.Snapshot()), ","); got != "C,D" {
		t.Fatalf("Expected store [C,D], got [%s]", got)
	}
}

func TestStoreKeepsNewestMessages(t *testing.T) {
	store := newTestStore(5, 16)
	for i := 0; i < 8; i++ {
		store.Submit(fmt.Sprintf("Buffer test message %d", i), logging.LevelInfo)
	}
	got := messages(store.Snapshot())
	if len(got) != 5 {
		t.Fatalf("Expected 5 records, got %d", len(got))
	}
	for i, msg := range got {
		want := fmt.Sprintf("Buffer test message %d", i+3)
		if msg != want {
			t.Errorf("Record %d: expected %q, got %q", i, want, msg)
		}
	}
}

func TestStoreIgnoresEmptyMessages(t *testing.T) {
	store := newTestStore(5, 5)
	store.Submit("", logging.LevelError)
	store.Submit("<b></b>", logging.LevelError)
	if store.Len() != 0 {
		t.Fatalf("Expected empty store, got %d records", store.Len())
	}
	if allocs := store.Pool().Stats().Allocations; allocs != 0 {
		t.Errorf("Expected no allocations, got %d", allocs)
	}
}

func TestStoreRecordFields(t *testing.T) {
	store := newTestStore(5, 5)
	store.SubmitTrace("boom", logging.LevelError, "main.go:10")
	snap := store.Snapshot()
	if len(snap) != 1 {
		t.Fatalf("Expected 1 record, got %d", len(snap))
	}
	r := snap[0]
	if r.Level != logging.LevelError || r.Trace != "main.go:10" || !r.Timestamp.Equal(testTime) {
		t.Errorf("Unexpected record: %+v", r)
	}
}

func TestStoreSnapshotDoesNotAlias(t *testing.T) {
	store := newTestStore(1, 4)
	store.Submit("first", logging.LevelInfo)
	snap := store.Snapshot()
	store.Submit("second", logging.LevelInfo)
	if snap[0].Message != "first" {
		t.Fatalf("Snapshot changed after eviction and reuse: %q", snap[0].Message)
	}
	snap[0].Message = "mutated"
	if got := store.Snapshot()[0].Message; got != "second" {
		t.Fatalf("Store changed through snapshot: %q", got)
	}
}

func TestStorePoolReuse(t *testing.T) {
	const capacity, n = 2, 10
	store := newTestStore(capacity, 8)
	for i := 0; i < n; i++ {
		store.Submit(fmt.Sprintf("msg %d", i), logging.LevelInfo)
	}
	st := store.Pool().Stats()
	if st.Allocations > n {
		t.Fatalf("Expected at most %d allocations, got %d", n, st.Allocations)
	}
	// The first eviction only fills the free list; every acquire after it reuses.
	if st.Allocations != capacity+1 {
		t.Errorf("Expected %d allocations, got %d", capacity+1, st.Allocations)
	}
	if st.Reuses != n-capacity-1 {
		t.Errorf("Expected %d reuses, got %d", n-capacity-1, st.Reuses)
	}
	if st.ReuseRatio() <= 0.5 {
		t.Errorf("Expected reuse ratio above 0.5, got %f", st.ReuseRatio())
	}
}

func TestStoreClearReturnsRecordsToPool(t *testing.T) {
	const n = 7
	store := newTestStore(10, 10)
	for i := 0; i < n; i++ {
		store.Submit(fmt.Sprintf("msg %d", i), logging.LevelWarning)
	}
	before := store.Pool().Stats()

	var cleared int
	store.Subscribe("counter", func(ev logging.Event) error {
		if ev.Kind == logging.EventCleared {
			cleared++
		}
		return nil
	})
	store.Clear()

	after := store.Pool().Stats()
	if store.Len() != 0 {
		t.Fatalf("Expected empty store after clear, got %d", store.Len())
	}
	if after.Free-before.Free != n {
		t.Errorf("Expected free count to grow by %d, grew by %d", n, after.Free-before.Free)
	}
	if after.Allocations != before.Allocations {
		t.Errorf("Allocation counter changed: %d -> %d", before.Allocations, after.Allocations)
	}
	if cleared != 1 {
		t.Errorf("Expected one cleared notification, got %d", cleared)
	}
}

func TestStoreDisabledIsNoop(t *testing.T) {
	store := newTestStore(10, 10)
	store.SetEnabled(false)

	start := time.Now()
	for i := 0; i < 1000; i++ {
		store.Submit("ignored message", logging.LevelInfo)
	}
	elapsed := time.Since(start)

	if store.Len() != 0 {
		t.Fatalf("Disabled store accepted %d records", store.Len())
	}
	if allocs := store.Pool().Stats().Allocations; allocs != 0 {
		t.Errorf("Disabled store allocated %d records", allocs)
	}
	if elapsed > 5*time.Millisecond {
		t.Errorf("1000 disabled submits took %v", elapsed)
	}
}

func TestStoreSetCapacity(t *testing.T) {
	store := newTestStore(10, 20)
	for i := 0; i < 10; i++ {
		store.Submit(fmt.Sprintf("msg %d", i), logging.LevelInfo)
	}
	store.SetCapacity(3)
	if got := strings.Join(messages(store.Snapshot()), ","); got != "msg 7,msg 8,msg 9" {
		t.Fatalf("Unexpected records after shrink: %s", got)
	}

	tests := []struct{ in, want int }{
		{0, 1}, {-5, 1}, {1, 1}, {500, 500}, {1000, 1000}, {5000, 1000},
	}
	for _, tt := range tests {
		store.SetCapacity(tt.in)
		if got := store.Capacity(); got != tt.want {
			t.Errorf("SetCapacity(%d): expected %d, got %d", tt.in, tt.want, got)
		}
	}
}

func TestStoreMemoryPressure(t *testing.T) {
	var reclaimed int
	newFull := func() *logging.Store {
		s := logging.NewStore(8, logging.NewPool(8),
			logging.WithClock(fixedClock{testTime}),
			logging.WithReclaimer(func() { reclaimed++ }))
		for i := 0; i < 8; i++ {
			s.Submit(fmt.Sprintf("msg %d", i), logging.LevelInfo)
		}
		return s
	}

	t.Run("Soft", func(t *testing.T) {
		s := newFull()
		if n := s.OnMemoryPressure(logging.PressureSoft); n != 2 {
			t.Errorf("Expected 2 trimmed records, got %d", n)
		}
		if s.Len() != 6 {
			t.Errorf("Expected 6 records, got %d", s.Len())
		}
		if reclaimed != 0 {
			t.Errorf("Soft pressure must not reclaim")
		}
		if msgs := messages(s.Snapshot()); msgs[0] != "msg 2" {
			t.Errorf("Soft pressure must trim oldest first, head is %q", msgs[0])
		}
	})

	t.Run("Hard", func(t *testing.T) {
		s := newFull()
		if n := s.OnMemoryPressure(logging.PressureHard); n != 4 {
			t.Errorf("Expected 4 trimmed records, got %d", n)
		}
		if reclaimed != 1 {
			t.Errorf("Expected one reclamation pass, got %d", reclaimed)
		}
		if free := s.Pool().FreeCount(); free != 4 {
			t.Errorf("Expected trimmed records back in pool, free=%d", free)
		}
		if s.Stats().Trimmed != 4 {
			t.Errorf("Expected trimmed counter 4, got %d", s.Stats().Trimmed)
		}
	})
}

func TestStoreSoftPressureKeepsNewestRecord(t *testing.T) {
	store := newTestStore(1, 1)
	store.Submit("only", logging.LevelInfo)
	if n := store.OnMemoryPressure(logging.PressureSoft); n != 0 {
		t.Errorf("Soft pressure on a single record store must not trim, trimmed %d", n)
	}
	if store.Len() != 1 {
		t.Fatalf("Expected the record to survive, got %d records", store.Len())
	}
	if n := store.OnMemoryPressure(logging.Pressure(0)); n != 0 {
		t.Errorf("Unknown levels must be ignored, trimmed %d", n)
	}
}

func TestStoreListenersRunInOrderAndIsolateFailures(t *testing.T) {
	store := newTestStore(5, 5)
	var order []string
	store.Subscribe("first", func(ev logging.Event) error {
		order = append(order, "first")
		return errors.New("first failed")
	})
	store.Subscribe("panics", func(ev logging.Event) error {
		order = append(order, "panics")
		panic("boom")
	})
	store.Subscribe("last", func(ev logging.Event) error {
		order = append(order, "last:"+ev.Record.Message)
		return nil
	})

	failures := store.Submit("hello", logging.LevelInfo)

	if got := strings.Join(order, ","); got != "first,panics,last:hello" {
		t.Fatalf("Unexpected listener order: %s", got)
	}
	if len(failures) != 2 {
		t.Fatalf("Expected 2 failures, got %d: %v", len(failures), failures)
	}
	if failures[0].Name != "first" || failures[1].Name != "panics" {
		t.Errorf("Unexpected failure names: %v", failures)
	}
	if !strings.Contains(failures[1].Err.Error(), "boom") {
		t.Errorf("Expected panic value in failure, got %v", failures[1].Err)
	}
	if store.Len() != 1 {
		t.Errorf("Record must be committed despite listener failures")
	}
}

func TestStoreListenerMaySubmit(t *testing.T) {
	store := newTestStore(10, 10)
	var fired atomic.Bool
	calls := 0
	store.Subscribe("echo", func(ev logging.Event) error {
		calls++
		if fired.CompareAndSwap(false, true) {
			store.Submit("echo of "+ev.Record.Message, logging.LevelInfo)
		}
		return nil
	})
	store.Submit("origin", logging.LevelInfo)
	if store.Len() != 2 {
		t.Fatalf("Expected reentrant submit to succeed, got %d records", store.Len())
	}
	if calls != 2 {
		t.Errorf("Expected the listener to see both records, got %d calls", calls)
	}
	if got := strings.Join(messages(store.Snapshot()), ","); got != "origin,echo of origin" {
		t.Errorf("Unexpected records: %s", got)
	}
}

func TestStoreUnsubscribe(t *testing.T) {
	store := newTestStore(5, 5)
	calls := 0
	unsubscribe := store.Subscribe("counter", func(logging.Event) error {
		calls++
		return nil
	})
	store.Submit("a", logging.LevelInfo)
	unsubscribe()
	unsubscribe()
	store.Submit("b", logging.LevelInfo)
	if calls != 1 {
		t.Errorf("Expected 1 call, got %d", calls)
	}
}

func TestStoreConcurrentSubmitters(t *testing.T) {
	const producers, perProducer, capacity, poolSize = 8, 500, 50, 32
	store := newTestStore(capacity, poolSize)

	var violations sync.Map
	store.Subscribe("invariant", func(logging.Event) error {
		if n := store.Len(); n > capacity {
			violations.Store(n, true)
		}
		if free := store.Pool().FreeCount(); free > poolSize {
			violations.Store(-free, true)
		}
		return nil
	})

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				store.Submit(fmt.Sprintf("producer %d message %d", p, i), logging.LogLevel(i%3))
				if i%100 == 0 {
					store.Snapshot()
				}
			}
		}(p)
	}
	wg.Wait()

	violations.Range(func(k, _ any) bool {
		t.Errorf("Invariant violated: %v", k)
		return true
	})
	st := store.Stats()
	if st.Len != capacity {
		t.Errorf("Expected full store, got %d", st.Len)
	}
	if st.Submitted != producers*perProducer {
		t.Errorf("Expected %d submitted, got %d", producers*perProducer, st.Submitted)
	}
	if ps := store.Pool().Stats(); ps.Allocations+ps.Reuses != producers*perProducer {
		t.Errorf("Pool acquisitions %d do not match submissions", ps.Allocations+ps.Reuses)
	}
}
