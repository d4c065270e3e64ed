package logging_test

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

func TestLoggerSubmitsAndTees(t *testing.T) {
	store := newTestStore(10, 10)
	logger := logging.NewLogger(store)
	var out bytes.Buffer
	logger.SetWriter(&out)

	logger.Infof("loaded %d items", 3)
	logger.Warn("disk", "almost", "full")
	logger.Debug("hidden")
	logger.SetDebug(true)
	logger.Debugf("visible %s", "now")

	got := messages(store.Snapshot())
	want := []string{"loaded 3 items", "disk almost full", "DEBUG: visible now"}
	if strings.Join(got, "|") != strings.Join(want, "|") {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	if levels := store.Snapshot(); levels[1].Level != logging.LevelWarning {
		t.Errorf("Expected warning level, got %v", levels[1].Level)
	}
	text := out.String()
	if !strings.Contains(text, "INFO  loaded 3 items") || !strings.Contains(text, "WARN  disk almost full") {
		t.Errorf("Writer output missing entries:\n%s", text)
	}
}

func TestLoggerCapturesTraceOnErrors(t *testing.T) {
	store := newTestStore(10, 10)
	logger := logging.NewLogger(store)
	logger.SetCaptureTrace(true)

	logger.Info("no trace")
	logger.Errorf("failed: %v", errors.New("boom"))

	snap := store.Snapshot()
	if snap[0].Trace != "" {
		t.Errorf("Info must not capture a trace")
	}
	if !strings.Contains(snap[1].Trace, "goroutine") {
		t.Errorf("Expected a stack trace on error, got %q", snap[1].Trace)
	}
}

func TestLoggerCountsListenerFailures(t *testing.T) {
	store := newTestStore(10, 10)
	store.Subscribe("broken", func(logging.Event) error { return errors.New("nope") })
	logger := logging.NewLogger(store)
	var out bytes.Buffer
	logger.SetWriter(&out)

	logger.Error("something")
	if logger.ListenerFailures() != 1 {
		t.Errorf("Expected 1 listener failure, got %d", logger.ListenerFailures())
	}
	if !strings.Contains(out.String(), `listener "broken": nope`) {
		t.Errorf("Expected failure to be written, got:\n%s", out.String())
	}
}

func TestDefaultLoggerIsResettable(t *testing.T) {
	t.Cleanup(func() { logging.ResetDefault() })

	custom := logging.NewLogger(newTestStore(5, 5))
	logging.SetDefault(custom)
	logging.Infof("to custom %d", 1)
	if custom.Store().Len() != 1 {
		t.Fatalf("Expected package-level call to reach the custom logger")
	}

	fresh := logging.ResetDefault()
	if fresh == custom || logging.Default() != fresh {
		t.Fatalf("ResetDefault did not install a fresh logger")
	}
	if fresh.Store().Len() != 0 {
		t.Errorf("Fresh default logger must start empty")
	}
	logging.SetDefault(nil)
	if logging.Default() != fresh {
		t.Errorf("SetDefault(nil) must keep the current logger")
	}
}
