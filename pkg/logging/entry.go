package logging

import (
	"strings"
	"time"
)

// LogLevel defines the severity of a log record.
type LogLevel int

// Enum for log levels. The order is important for mapping foreign levels.
const (
	LevelInfo LogLevel = iota
	LevelWarning
	LevelError
)

// String returns the string representation of a LogLevel.
func (l LogLevel) String() string {
	switch l {
	case LevelInfo:
		return "INFO"
	case LevelWarning:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel converts a level name into a LogLevel. Unknown names map to LevelInfo
// and report false.
func ParseLevel(name string) (LogLevel, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "info", "debug", "trace":
		return LevelInfo, true
	case "warn", "warning":
		return LevelWarning, true
	case "error", "fatal", "panic":
		return LevelError, true
	default:
		return LevelInfo, false
	}
}

// Record represents a single log message held by a Store.
// Records handed out by a Pool are owned by whoever acquired them until released.
type Record struct {
	Message   string
	Level     LogLevel
	Timestamp time.Time
	Trace     string

	slot   int  // arena index, -1 for detached records
	pooled bool // true while the slot index sits on the free stack
}

// Slot returns the pool arena index backing this record, or -1 if the record is detached.
func (r *Record) Slot() int {
	return r.slot
}

func (r *Record) init(message string, level LogLevel, ts time.Time) {
	r.Message = message
	r.Level = level
	r.Timestamp = ts
	r.Trace = ""
	r.pooled = false
}

func (r *Record) reset() {
	r.Message = ""
	r.Level = LevelInfo
	r.Timestamp = time.Time{}
	r.Trace = ""
}
