package render

// Sink receives the complete rendered text on every push. It is only called from the
// goroutine driving the Scheduler.
type Sink interface {
	SetContent(text string)
}

// Availability is implemented by sinks that can be temporarily unable to display.
type Availability interface {
	Available() bool
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(text string)

func (f SinkFunc) SetContent(text string) { f(text) }

func sinkReady(s Sink) bool {
	if s == nil {
		return false
	}
	if a, ok := s.(Availability); ok {
		return a.Available()
	}
	return true
}
