package diag

import (
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestWarnOnce(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	ch := NewFromLogger(zap.New(core))

	if !ch.WarnOnce("sink", "sink unavailable") {
		t.Fatalf("First warning must be emitted")
	}
	if ch.WarnOnce("sink", "sink unavailable") {
		t.Errorf("Repeated warning must be suppressed")
	}
	ch.WarnOnce("format", "bad layout", zap.String("layout", "nope"))

	if logs.Len() != 2 {
		t.Fatalf("Expected 2 log entries, got %d", logs.Len())
	}
	entry := logs.All()[1]
	if entry.Message != "bad layout" || entry.ContextMap()["layout"] != "nope" || entry.ContextMap()["key"] != "format" {
		t.Errorf("Unexpected entry: %+v", entry)
	}

	ch.Reset("sink")
	if !ch.WarnOnce("sink", "sink unavailable") {
		t.Errorf("Warning must be emitted again after Reset")
	}
}

func TestNilChannelIsSafe(t *testing.T) {
	var ch *Channel
	ch.Warn("dropped")
	if ch.WarnOnce("k", "dropped") {
		t.Errorf("Nil channel must not report emitting")
	}
	ch.Reset("k")
	ch.Sync()
	if ch.Logger() == nil {
		t.Errorf("Nil channel must still return a logger")
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := t.TempDir() + "/diag.log"
	ch, err := New("production", path)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	ch.Warn("hello")
	ch.Sync()
}
