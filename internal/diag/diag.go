// Package diag is the fallback channel for problems the log pipeline cannot report
// through itself, such as a missing sink or an unusable timestamp layout.
package diag

import (
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Channel wraps a zap logger and remembers which warnings were already emitted.
// A nil *Channel discards everything.
type Channel struct {
	logger *zap.Logger
	seen   sync.Map
}

// New builds a channel writing JSON lines to path, or to stderr when path is empty.
// env "development" switches to the console encoder at debug level.
func New(env, path string) (*Channel, error) {
	config := zap.NewProductionConfig()
	if env == "development" {
		config = zap.NewDevelopmentConfig()
	}
	if path == "" {
		path = "stderr"
	}
	config.OutputPaths = []string{path}
	config.ErrorOutputPaths = []string{"stderr"}
	config.EncoderConfig.TimeKey = "timestamp"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	logger, err := config.Build()
	if err != nil {
		return nil, err
	}
	return NewFromLogger(logger), nil
}

// NewFromLogger wraps an existing logger. A nil logger yields a no-op channel.
func NewFromLogger(logger *zap.Logger) *Channel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Channel{logger: logger.Named("scrollback")}
}

// Nop returns a channel that drops everything.
func Nop() *Channel {
	return &Channel{logger: zap.NewNop()}
}

// Warn always logs.
func (c *Channel) Warn(msg string, fields ...zap.Field) {
	if c == nil {
		return
	}
	c.logger.Warn(msg, fields...)
}

// WarnOnce logs msg the first time key is seen and reports whether it did.
func (c *Channel) WarnOnce(key, msg string, fields ...zap.Field) bool {
	if c == nil {
		return false
	}
	if _, loaded := c.seen.LoadOrStore(key, struct{}{}); loaded {
		return false
	}
	c.logger.Warn(msg, append(fields, zap.String("key", key))...)
	return true
}

// Reset forgets key so the next WarnOnce for it logs again.
func (c *Channel) Reset(key string) {
	if c == nil {
		return
	}
	c.seen.Delete(key)
}

// Logger exposes the underlying zap logger.
func (c *Channel) Logger() *zap.Logger {
	if c == nil {
		return zap.NewNop()
	}
	return c.logger
}

// Sync flushes buffered output.
func (c *Channel) Sync() {
	if c == nil {
		return
	}
	_ = c.logger.Sync()
}
