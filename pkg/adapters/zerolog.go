package adapters

import (
	"strings"

	"github.com/rs/zerolog"
	"github.com/valyala/fastjson"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

// ZerologWriter is a zerolog.LevelWriter that parses each JSON event and submits it to a
// Store. Lines that are not JSON are stored verbatim.
type ZerologWriter struct {
	store  *logging.Store
	parser fastjson.ParserPool
}

// NewZerologWriter creates a writer for zerolog.New.
func NewZerologWriter(store *logging.Store) *ZerologWriter {
	return &ZerologWriter{store: store}
}

// Write implements io.Writer.
func (w *ZerologWriter) Write(p []byte) (int, error) {
	return w.WriteLevel(zerolog.NoLevel, p)
}

// WriteLevel implements zerolog.LevelWriter.
func (w *ZerologWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	parser := w.parser.Get()
	defer w.parser.Put(parser)

	v, err := parser.ParseBytes(p)
	if err != nil || v.Type() != fastjson.TypeObject {
		w.store.Submit(strings.TrimSpace(string(p)), zerologLevel(level))
		return len(p), nil
	}

	if s := v.GetStringBytes(zerolog.LevelFieldName); s != nil {
		if parsed, err := zerolog.ParseLevel(string(s)); err == nil {
			level = parsed
		}
	}
	msg := string(v.GetStringBytes(zerolog.MessageFieldName))

	var trace string
	if st := v.Get(zerolog.ErrorStackFieldName); st != nil {
		if s, err := st.StringBytes(); err == nil {
			trace = string(s)
		} else {
			trace = st.String()
		}
	}

	var b strings.Builder
	obj, _ := v.Object()
	obj.Visit(func(key []byte, val *fastjson.Value) {
		switch string(key) {
		case zerolog.LevelFieldName, zerolog.TimestampFieldName, zerolog.MessageFieldName, zerolog.ErrorStackFieldName:
			return
		}
		if s, err := val.StringBytes(); err == nil {
			appendField(&b, string(key), string(s))
		} else {
			appendField(&b, string(key), val.String())
		}
	})

	w.store.SubmitTrace(joinMessage(msg, b.String()), zerologLevel(level), trace)
	return len(p), nil
}

func zerologLevel(l zerolog.Level) logging.LogLevel {
	switch {
	case l == zerolog.NoLevel || l == zerolog.Disabled:
		return logging.LevelInfo
	case l >= zerolog.ErrorLevel:
		return logging.LevelError
	case l == zerolog.WarnLevel:
		return logging.LevelWarning
	default:
		return logging.LevelInfo
	}
}
