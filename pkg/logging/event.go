package logging

import (
	"fmt"
	"sync"
)

// EventKind identifies what happened to a Store.
type EventKind int

const (
	// EventAdded is emitted after a record was committed.
	EventAdded EventKind = iota
	// EventCleared is emitted after all records were drained.
	EventCleared
)

func (k EventKind) String() string {
	switch k {
	case EventAdded:
		return "added"
	case EventCleared:
		return "cleared"
	default:
		return "unknown"
	}
}

// Event is delivered to store listeners. Record is a copy and stays valid after the
// listener returns; it is zero for EventCleared.
type Event struct {
	Kind   EventKind
	Record Record
}

// Listener receives store events synchronously on the goroutine that caused them.
type Listener func(Event) error

// ListenerFailure describes a listener that returned an error or panicked.
type ListenerFailure struct {
	Name string
	Err  error
}

func (f ListenerFailure) Error() string {
	return fmt.Sprintf("listener %q: %v", f.Name, f.Err)
}

type subscriber struct {
	id   uint64
	name string
	fn   Listener
}

// subscribers is an ordered list of listeners with its own lock, so that emitting
// never touches the store mutex.
type subscribers struct {
	mu     sync.RWMutex
	list   []subscriber
	nextID uint64
}

func (s *subscribers) add(name string, fn Listener) func() {
	s.mu.Lock()
	s.nextID++
	id := s.nextID
	s.list = append(s.list, subscriber{id: id, name: name, fn: fn})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.remove(id) })
	}
}

func (s *subscribers) remove(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, sub := range s.list {
		if sub.id == id {
			// Copy-on-write: emitters may still be iterating the old slice.
			next := make([]subscriber, 0, len(s.list)-1)
			next = append(next, s.list[:i]...)
			s.list = append(next, s.list[i+1:]...)
			return
		}
	}
}

func (s *subscribers) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.list)
}

// emit runs every listener in subscription order and collects their failures.
func (s *subscribers) emit(ev Event) []ListenerFailure {
	s.mu.RLock()
	list := s.list
	s.mu.RUnlock()

	var failures []ListenerFailure
	for _, sub := range list {
		if err := safeCall(sub.fn, ev); err != nil {
			failures = append(failures, ListenerFailure{Name: sub.name, Err: err})
		}
	}
	return failures
}

func safeCall(fn Listener, ev Event) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic: %v", r)
		}
	}()
	return fn(ev)
}
