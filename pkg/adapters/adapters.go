// Package adapters lets common logging libraries write into a logging.Store.
//
// Structured fields are flattened into the message as key=value pairs, since a
// record carries only text.
package adapters

import (
	"fmt"
	"strconv"
	"strings"
)

func appendField(b *strings.Builder, key string, value any) {
	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(key)
	b.WriteByte('=')
	var s string
	switch v := value.(type) {
	case string:
		s = v
	case error:
		s = v.Error()
	case fmt.Stringer:
		s = v.String()
	default:
		s = fmt.Sprint(v)
	}
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		s = strconv.Quote(s)
	}
	b.WriteString(s)
}

// joinMessage appends flattened fields to msg.
func joinMessage(msg, fields string) string {
	switch {
	case fields == "":
		return msg
	case msg == "":
		return fields
	default:
		return msg + " " + fields
	}
}
