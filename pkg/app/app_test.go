package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/internal/diag"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/config"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

func TestLoadSettings(t *testing.T) {
	path := filepath.Join(t.TempDir(), "demo.toml")
	if err := os.WriteFile(path, []byte("capacity = 30\nstrategy = \"newest\"\n"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	t.Setenv("SCROLLBACK_CAPACITY", "40")

	cfg, err := LoadSettings(&CLIArgs{ConfigPath: path})
	if err != nil {
		t.Fatalf("LoadSettings: %v", err)
	}
	if cfg.Capacity != 40 {
		t.Errorf("Environment must override the file, got capacity %d", cfg.Capacity)
	}
	if cfg.Strategy != "remove_newest" {
		t.Errorf("Expected normalized strategy, got %q", cfg.Strategy)
	}

	if _, err := LoadSettings(&CLIArgs{ConfigPath: filepath.Join(t.TempDir(), "none.json")}); err == nil {
		t.Errorf("Expected an error for a missing file")
	}
}

func TestEmittersReachStore(t *testing.T) {
	store := logging.NewStore(100, nil)
	logger := logging.NewLogger(store)
	levels := []logging.LogLevel{logging.LevelInfo, logging.LevelWarning, logging.LevelError}

	all := emitters(store, logger)
	if len(all) != 4 {
		t.Fatalf("Expected one emitter per facade, got %d", len(all))
	}
	for _, emit := range all {
		for i, level := range levels {
			emit(level, "message", i)
		}
	}

	snap := store.Snapshot()
	if len(snap) != len(all)*len(levels) {
		t.Fatalf("Expected %d records, got %d", len(all)*len(levels), len(snap))
	}
	for i, r := range snap {
		if want := levels[i%len(levels)]; r.Level != want {
			t.Errorf("Record %d (%q): expected %v, got %v", i, r.Message, want, r.Level)
		}
	}
}

func TestNewAppWiresConsole(t *testing.T) {
	cfg := config.Default()
	cfg.Capacity = 12
	cfg.Batching = false
	args := &CLIArgs{}
	args.Normalize()

	a := NewApp(cfg, args, diag.Nop())
	defer a.Console().Close()

	if a.Console().Store().Capacity() != 12 {
		t.Errorf("Console must use the given settings")
	}
	a.Console().Logger().Warn("hello")
	a.tick()
	if text := a.Layout().LogView().GetText(true); text == "" {
		t.Errorf("Tick must render into the log view")
	}
	if w, _ := a.Layout().Counters(); w != 1 {
		t.Errorf("Expected the warning counter to update, got %d", w)
	}
}

func TestSettingsUpdateReachesConsole(t *testing.T) {
	a := NewApp(config.Default(), &CLIArgs{}, diag.Nop())
	defer a.Console().Close()

	cfg := a.Settings().Snapshot()
	cfg.Capacity = 7
	cfg.Strategy = "middle"
	a.Settings().Update(cfg)

	if got := a.Console().Store().Capacity(); got != 7 {
		t.Errorf("Expected applied capacity 7, got %d", got)
	}
	if got := a.Console().Settings().Strategy; got != "remove_middle" {
		t.Errorf("Expected normalized strategy, got %q", got)
	}
}
