package adapters

import (
	"sort"
	"strings"

	"go.uber.org/zap/zapcore"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

type zapCore struct {
	zapcore.LevelEnabler
	store  *logging.Store
	fields []zapcore.Field
}

// NewZapCore returns a zapcore.Core writing entries at or above enab into store. Tee it
// with other cores to keep a file or console output.
func NewZapCore(store *logging.Store, enab zapcore.LevelEnabler) zapcore.Core {
	if enab == nil {
		enab = zapcore.InfoLevel
	}
	return &zapCore{LevelEnabler: enab, store: store}
}

func (c *zapCore) With(fields []zapcore.Field) zapcore.Core {
	child := *c
	child.fields = append(append([]zapcore.Field(nil), c.fields...), fields...)
	return &child
}

func (c *zapCore) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *zapCore) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range c.fields {
		f.AddTo(enc)
	}
	for _, f := range fields {
		f.AddTo(enc)
	}
	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	for _, k := range keys {
		appendField(&b, k, enc.Fields[k])
	}
	msg := ent.Message
	if ent.LoggerName != "" {
		msg = ent.LoggerName + ": " + msg
	}
	c.store.SubmitTrace(joinMessage(msg, b.String()), zapLevel(ent.Level), ent.Stack)
	return nil
}

func (c *zapCore) Sync() error {
	return nil
}

func zapLevel(l zapcore.Level) logging.LogLevel {
	switch {
	case l >= zapcore.ErrorLevel:
		return logging.LevelError
	case l == zapcore.WarnLevel:
		return logging.LevelWarning
	default:
		return logging.LevelInfo
	}
}
