package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/truncate"
)

const (
	DefaultTimestampFormat = "15:04:05"
	DefaultQueueCapacity   = 1024
	DefaultMaxChars        = 50000
	DefaultMaxLines        = 1000
)

// Settings is the complete configuration of a console. Values are clamped by Normalize,
// never rejected.
type Settings struct {
	Enabled          bool     `json:"enabled" toml:"enabled"`
	Capacity         int      `json:"capacity" toml:"capacity"`
	PoolSize         int      `json:"poolSize" toml:"pool_size"`
	Colors           Colors   `json:"colors" toml:"colors"`
	TimestampFormat  string   `json:"timestampFormat" toml:"timestamp_format"`
	Strategy         string   `json:"strategy" toml:"strategy"`
	Ratio            float64  `json:"ratio" toml:"ratio"`
	MaxChars         int      `json:"maxChars" toml:"max_chars"`
	MaxLines         int      `json:"maxLines" toml:"max_lines"`
	ThrottleInterval Duration `json:"throttleInterval" toml:"throttle_interval"`
	BatchInterval    Duration `json:"batchInterval" toml:"batch_interval"`
	Batching         bool     `json:"batching" toml:"batching"`
	QueueCapacity    int      `json:"queueCapacity" toml:"queue_capacity"`
	MaxMessageLen    int      `json:"maxMessageLen" toml:"max_message_len"`
	StripMarkup      bool     `json:"stripMarkup" toml:"strip_markup"`
	CaptureTrace     bool     `json:"captureTrace" toml:"capture_trace"`
	Memory           Memory   `json:"memory" toml:"memory"`
}

// Colors are tview color names or #rrggbb values, one per level.
type Colors struct {
	Info    string `json:"info" toml:"info"`
	Warning string `json:"warning" toml:"warning"`
	Error   string `json:"error" toml:"error"`
}

// For returns the color of level.
func (c Colors) For(level logging.LogLevel) string {
	switch level {
	case logging.LevelWarning:
		return c.Warning
	case logging.LevelError:
		return c.Error
	default:
		return c.Info
	}
}

// Memory configures the heap monitor. A zero limit disables that level.
type Memory struct {
	SoftLimitMB  int      `json:"softLimitMB" toml:"soft_limit_mb"`
	HardLimitMB  int      `json:"hardLimitMB" toml:"hard_limit_mb"`
	PollInterval Duration `json:"pollInterval" toml:"poll_interval"`
}

// DefaultColors returns the built-in level colors.
func DefaultColors() Colors {
	return Colors{Info: "white", Warning: "yellow", Error: "red"}
}

// Default returns built-in defaults.
func Default() Settings {
	return Settings{
		Enabled:          true,
		Capacity:         logging.DefaultCapacity,
		PoolSize:         logging.DefaultCapacity,
		Colors:           DefaultColors(),
		TimestampFormat:  DefaultTimestampFormat,
		Strategy:         truncate.RemoveOldest.String(),
		Ratio:            truncate.DefaultRatio,
		MaxChars:         DefaultMaxChars,
		MaxLines:         DefaultMaxLines,
		ThrottleInterval: Duration(100 * time.Millisecond),
		BatchInterval:    Duration(250 * time.Millisecond),
		Batching:         true,
		QueueCapacity:    DefaultQueueCapacity,
		MaxMessageLen:    logging.DefaultMaxMessageLen,
		StripMarkup:      true,
		Memory: Memory{
			PollInterval: Duration(time.Second),
		},
	}
}

// Normalize clamps every field into its valid range and fills empty values with defaults.
func (s Settings) Normalize() Settings {
	def := Default()

	s.Capacity = min(max(s.Capacity, logging.MinCapacity), logging.MaxCapacity)
	if s.PoolSize < 1 {
		s.PoolSize = s.Capacity
	}
	if strategy, ok := truncate.ParseStrategy(s.Strategy); ok {
		s.Strategy = strategy.String()
	} else {
		s.Strategy = def.Strategy
	}
	s.Ratio = truncate.ClampRatio(s.Ratio)
	s.MaxChars = max(s.MaxChars, 0)
	s.MaxLines = max(s.MaxLines, 0)
	s.ThrottleInterval = max(s.ThrottleInterval, 0)
	if s.BatchInterval <= 0 {
		s.BatchInterval = def.BatchInterval
	}
	if s.QueueCapacity < 1 {
		s.QueueCapacity = def.QueueCapacity
	}
	if s.MaxMessageLen < 1 {
		s.MaxMessageLen = def.MaxMessageLen
	}
	if strings.TrimSpace(s.TimestampFormat) == "" {
		s.TimestampFormat = def.TimestampFormat
	}
	if s.Colors.Info == "" {
		s.Colors.Info = def.Colors.Info
	}
	if s.Colors.Warning == "" {
		s.Colors.Warning = def.Colors.Warning
	}
	if s.Colors.Error == "" {
		s.Colors.Error = def.Colors.Error
	}

	s.Memory.SoftLimitMB = max(s.Memory.SoftLimitMB, 0)
	s.Memory.HardLimitMB = max(s.Memory.HardLimitMB, 0)
	if s.Memory.SoftLimitMB > 0 && s.Memory.HardLimitMB > 0 && s.Memory.HardLimitMB < s.Memory.SoftLimitMB {
		s.Memory.HardLimitMB = s.Memory.SoftLimitMB
	}
	if s.Memory.PollInterval <= 0 {
		s.Memory.PollInterval = def.Memory.PollInterval
	}
	return s
}

// TruncateStrategy returns the parsed strategy, RemoveOldest if unknown.
func (s Settings) TruncateStrategy() truncate.Strategy {
	strategy, _ := truncate.ParseStrategy(s.Strategy)
	return strategy
}

// TruncateOptions returns the bounds handed to the truncation engine.
func (s Settings) TruncateOptions() truncate.Options {
	return truncate.Options{
		MaxChars: s.MaxChars,
		MaxLines: s.MaxLines,
		Strategy: s.TruncateStrategy(),
		Ratio:    s.Ratio,
	}
}

// Duration is a time.Duration written as "250ms" in config files. Plain JSON numbers
// are read as milliseconds.
type Duration time.Duration

// D returns d as a time.Duration.
func (d Duration) D() time.Duration {
	return time.Duration(d)
}

func (d Duration) String() string {
	return time.Duration(d).String()
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(strings.TrimSpace(string(text)))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	*d = Duration(v)
	return nil
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if raw == "null" {
		return nil
	}
	if len(raw) >= 2 && (raw[0] == '"' || raw[0] == '\'') && raw[len(raw)-1] == raw[0] {
		return d.UnmarshalText([]byte(raw[1 : len(raw)-1]))
	}
	ms, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid duration %s: %w", raw, err)
	}
	*d = Duration(ms * float64(time.Millisecond))
	return nil
}
