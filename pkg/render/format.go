package render

import (
	"regexp"
	"strings"
	"time"

	"github.com/rivo/tview"
	"go.uber.org/zap"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/internal/diag"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/config"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/truncate"
)

var colorPattern = regexp.MustCompile(`^[A-Za-z0-9#:_-]+$`)

// tagFragment is what is left of a color tag whose opening bracket was cut off.
var tagFragment = regexp.MustCompile(`^[A-Za-z0-9#:_-]*\]`)

var markerBlock = "\n" + truncate.Marker + "\n"

// layoutCheckTime differs from Go's reference time in every field, so a layout with
// any time element formats it to something other than the layout itself.
var layoutCheckTime = time.Date(1999, 12, 31, 23, 59, 58, 0, time.UTC)

// Formatter turns records into tview-tagged lines. It is immutable and safe for
// concurrent use.
type Formatter struct {
	colors config.Colors
	layout string
}

// NewFormatter validates colors and layout. Invalid values fall back to the defaults
// and are reported once through fallback.
func NewFormatter(colors config.Colors, layout string, fallback *diag.Channel) *Formatter {
	if !ValidLayout(layout) {
		fallback.WarnOnce("format:"+layout, "invalid timestamp format, using default",
			zap.String("layout", layout), zap.String("default", config.DefaultTimestampFormat))
		layout = config.DefaultTimestampFormat
	}
	def := config.DefaultColors()
	colors.Info = checkColor(colors.Info, def.Info, fallback)
	colors.Warning = checkColor(colors.Warning, def.Warning, fallback)
	colors.Error = checkColor(colors.Error, def.Error, fallback)
	return &Formatter{colors: colors, layout: layout}
}

// DefaultFormatter uses the built-in colors and layout.
func DefaultFormatter() *Formatter {
	return &Formatter{colors: config.DefaultColors(), layout: config.DefaultTimestampFormat}
}

// ValidLayout reports whether layout renders at least one time element.
func ValidLayout(layout string) bool {
	return strings.TrimSpace(layout) != "" && layoutCheckTime.Format(layout) != layout
}

func checkColor(name, def string, fallback *diag.Channel) string {
	if colorPattern.MatchString(name) {
		return name
	}
	if name != "" {
		fallback.WarnOnce("color:"+name, "invalid color, using default", zap.String("color", name))
	}
	return def
}

// Layout returns the timestamp layout in use.
func (f *Formatter) Layout() string {
	return f.layout
}

// Format renders r as "[color]time [LEVEL] message[-]". Trace lines follow, indented.
func (f *Formatter) Format(r logging.Record) string {
	var b strings.Builder
	b.Grow(len(r.Message) + len(r.Trace) + 32)
	b.WriteByte('[')
	b.WriteString(f.colors.For(r.Level))
	b.WriteByte(']')
	b.WriteString(tview.Escape(r.Timestamp.Format(f.layout)))
	b.WriteByte(' ')
	b.WriteString(tview.Escape("[" + r.Level.String() + "]"))
	b.WriteByte(' ')
	b.WriteString(tview.Escape(r.Message))
	if trace := strings.TrimRight(r.Trace, "\n"); trace != "" {
		for _, line := range strings.Split(trace, "\n") {
			b.WriteString("\n    ")
			b.WriteString(tview.Escape(line))
		}
	}
	b.WriteString("[-]")
	return b.String()
}

// repairTags fixes the markup around cuts in truncated text: every segment before a
// truncation marker gets its color closed, and a segment starting inside a tag loses
// the fragment.
func repairTags(text string) string {
	if strings.Contains(text, markerBlock) {
		parts := strings.Split(text, markerBlock)
		for i, part := range parts {
			if i > 0 {
				part = dropTagFragment(part)
			}
			if i < len(parts)-1 && !strings.HasSuffix(part, "[-]") {
				part += "[-]"
			}
			parts[i] = part
		}
		text = strings.Join(parts, markerBlock)
	}
	return dropTagFragment(text)
}

func dropTagFragment(s string) string {
	if loc := tagFragment.FindStringIndex(s); loc != nil {
		return s[loc[1]:]
	}
	return s
}
