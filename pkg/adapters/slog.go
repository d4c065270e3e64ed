package adapters

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

// SlogHandler is a slog.Handler submitting to a Store.
type SlogHandler struct {
	store     *logging.Store
	level     slog.Leveler
	addSource bool
	prefix    string // group path followed by a dot
	attrs     string // pre-rendered WithAttrs fields
}

// NewSlogHandler creates a handler. opts may be nil; Level and AddSource are honored.
func NewSlogHandler(store *logging.Store, opts *slog.HandlerOptions) *SlogHandler {
	h := &SlogHandler{store: store, level: slog.LevelInfo}
	if opts != nil {
		if opts.Level != nil {
			h.level = opts.Level
		}
		h.addSource = opts.AddSource
	}
	return h
}

// Enabled implements slog.Handler.
func (h *SlogHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

// Handle implements slog.Handler.
func (h *SlogHandler) Handle(_ context.Context, r slog.Record) error {
	var b strings.Builder
	b.WriteString(h.attrs)
	r.Attrs(func(a slog.Attr) bool {
		h.appendAttr(&b, h.prefix, a)
		return true
	})

	var trace string
	if h.addSource && r.PC != 0 {
		frames := runtime.CallersFrames([]uintptr{r.PC})
		f, _ := frames.Next()
		trace = fmt.Sprintf("%s\n\t%s:%d", f.Function, f.File, f.Line)
	}
	h.store.SubmitTrace(joinMessage(r.Message, b.String()), slogLevel(r.Level), trace)
	return nil
}

func (h *SlogHandler) appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			h.appendAttr(b, prefix, ga)
		}
		return
	}
	appendField(b, prefix+a.Key, a.Value.String())
}

// WithAttrs implements slog.Handler.
func (h *SlogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	child := *h
	var b strings.Builder
	b.WriteString(h.attrs)
	for _, a := range attrs {
		h.appendAttr(&b, h.prefix, a)
	}
	child.attrs = b.String()
	return &child
}

// WithGroup implements slog.Handler.
func (h *SlogHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	child := *h
	child.prefix = h.prefix + name + "."
	return &child
}

func slogLevel(l slog.Level) logging.LogLevel {
	switch {
	case l >= slog.LevelError:
		return logging.LevelError
	case l >= slog.LevelWarn:
		return logging.LevelWarning
	default:
		return logging.LevelInfo
	}
}
