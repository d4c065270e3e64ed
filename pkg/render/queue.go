package render

import (
	"sync"
	"time"
)

// queue is the only structure shared between producers and the render goroutine.
// It is bounded and drops its oldest line when full.
type queue struct {
	mu      sync.Mutex
	buf     []string
	head    int
	n       int
	since   time.Time // arrival of the first line since the last drain
	cleared bool
	dropped uint64
}

func newQueue(capacity int) *queue {
	return &queue{buf: make([]string, max(capacity, 1))}
}

// push appends line and reports whether the queue was empty before.
func (q *queue) push(line string, now time.Time) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	wasEmpty := q.n == 0
	if wasEmpty {
		q.since = now
	}
	if q.n == len(q.buf) {
		q.buf[q.head] = ""
		q.head = (q.head + 1) % len(q.buf)
		q.n--
		q.dropped++
	}
	q.buf[(q.head+q.n)%len(q.buf)] = line
	q.n++
	return wasEmpty
}

// markCleared discards queued lines and flags a pending clear.
func (q *queue) markCleared() {
	q.mu.Lock()
	q.resetLocked()
	q.cleared = true
	q.mu.Unlock()
}

// pending returns the queue length, the batch start time and whether
// a clear is pending, consuming the clear flag.
func (q *queue) pending() (int, time.Time, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	cleared := q.cleared
	q.cleared = false
	return q.n, q.since, cleared
}

func (q *queue) drain() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]string, q.n)
	for i := range out {
		out[i] = q.buf[(q.head+i)%len(q.buf)]
	}
	q.resetLocked()
	return out
}

func (q *queue) discard() {
	q.mu.Lock()
	q.resetLocked()
	q.cleared = false
	q.mu.Unlock()
}

func (q *queue) resetLocked() {
	for i := 0; i < q.n; i++ {
		q.buf[(q.head+i)%len(q.buf)] = ""
	}
	q.head, q.n = 0, 0
	q.since = time.Time{}
}

// resize changes the capacity, keeping the newest lines.
func (q *queue) resize(capacity int) {
	capacity = max(capacity, 1)
	q.mu.Lock()
	defer q.mu.Unlock()
	if capacity == len(q.buf) {
		return
	}
	keep := min(q.n, capacity)
	q.dropped += uint64(q.n - keep)
	buf := make([]string, capacity)
	for i := 0; i < keep; i++ {
		buf[i] = q.buf[(q.head+q.n-keep+i)%len(q.buf)]
	}
	q.buf, q.head, q.n = buf, 0, keep
}

func (q *queue) len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.n
}

func (q *queue) droppedCount() uint64 {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.dropped
}
