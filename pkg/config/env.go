package config

import (
	"os"
	"strconv"
	"time"
)

// EnvPrefix is prepended to every variable read by FromEnv.
const EnvPrefix = "SCROLLBACK_"

// FromEnv overlays SCROLLBACK_* environment variables onto cfg. Unparsable values are
// ignored.
func FromEnv(cfg *Settings) {
	envBool("ENABLED", &cfg.Enabled)
	envInt("CAPACITY", &cfg.Capacity)
	envInt("POOL_SIZE", &cfg.PoolSize)
	envString("COLOR_INFO", &cfg.Colors.Info)
	envString("COLOR_WARNING", &cfg.Colors.Warning)
	envString("COLOR_ERROR", &cfg.Colors.Error)
	envString("TIMESTAMP_FORMAT", &cfg.TimestampFormat)
	envString("STRATEGY", &cfg.Strategy)
	if v := os.Getenv(EnvPrefix + "RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Ratio = f
		}
	}
	envInt("MAX_CHARS", &cfg.MaxChars)
	envInt("MAX_LINES", &cfg.MaxLines)
	envDuration("THROTTLE_INTERVAL", &cfg.ThrottleInterval)
	envDuration("BATCH_INTERVAL", &cfg.BatchInterval)
	envBool("BATCHING", &cfg.Batching)
	envInt("QUEUE_CAPACITY", &cfg.QueueCapacity)
	envInt("MAX_MESSAGE_LEN", &cfg.MaxMessageLen)
	envBool("STRIP_MARKUP", &cfg.StripMarkup)
	envBool("CAPTURE_TRACE", &cfg.CaptureTrace)
	envInt("MEMORY_SOFT_LIMIT_MB", &cfg.Memory.SoftLimitMB)
	envInt("MEMORY_HARD_LIMIT_MB", &cfg.Memory.HardLimitMB)
	envDuration("MEMORY_POLL_INTERVAL", &cfg.Memory.PollInterval)
}

func envString(key string, dst *string) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func envBool(key string, dst *bool) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func envDuration(key string, dst *Duration) {
	if v := os.Getenv(EnvPrefix + key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = Duration(d)
		}
	}
}
