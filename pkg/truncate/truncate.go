// Package truncate bounds rendered log text by character and line count.
//
// All functions are pure: the same input and parameters always produce the same
// output, and feeding an output back in with the same parameters returns it unchanged.
package truncate

import (
	"math"
	"strings"
	"unicode/utf8"
)

const (
	// AlignWindow is how far, in runes, a cut may move to land on a line boundary.
	AlignWindow = 200
	// DefaultRatio is used when a ratio outside (0, 1] is supplied.
	DefaultRatio = 0.75
	// Marker separates the kept head and tail under RemoveMiddle.
	Marker = "--- truncated ---"
)

var markerBlock = "\n" + Marker + "\n"

// Strategy selects which part of over-limit content is discarded.
type Strategy int

const (
	// RemoveOldest keeps the end of the text.
	RemoveOldest Strategy = iota
	// RemoveNewest keeps the beginning of the text.
	RemoveNewest
	// RemoveMiddle keeps the beginning and the end, joined by Marker.
	RemoveMiddle
)

func (s Strategy) String() string {
	switch s {
	case RemoveOldest:
		return "remove_oldest"
	case RemoveNewest:
		return "remove_newest"
	case RemoveMiddle:
		return "remove_middle"
	default:
		return "unknown"
	}
}

// ParseStrategy accepts "remove_oldest", "oldest", "RemoveOldest" and the like.
func ParseStrategy(name string) (Strategy, bool) {
	key := strings.ToLower(strings.NewReplacer("_", "", "-", "", " ", "").Replace(name))
	switch key {
	case "removeoldest", "oldest":
		return RemoveOldest, true
	case "removenewest", "newest":
		return RemoveNewest, true
	case "removemiddle", "middle":
		return RemoveMiddle, true
	default:
		return RemoveOldest, false
	}
}

// ClampRatio maps NaN and non-positive ratios to DefaultRatio and caps at 1.
func ClampRatio(ratio float64) float64 {
	if math.IsNaN(ratio) || ratio <= 0 {
		return DefaultRatio
	}
	return math.Min(ratio, 1)
}

// Options bundles the parameters of Optimize.
type Options struct {
	MaxChars int
	MaxLines int
	Strategy Strategy
	Ratio    float64
}

// Apply runs Optimize with o.
func (o Options) Apply(text string) string {
	return Optimize(text, o.MaxChars, o.MaxLines, o.Strategy, o.Ratio)
}

// Optimize bounds text to maxChars runes and maxLines lines. A non-positive limit
// disables that pass. When a limit is exceeded, content is cut down to limit*ratio
// according to strategy.
func Optimize(text string, maxChars, maxLines int, strategy Strategy, ratio float64) string {
	ratio = ClampRatio(ratio)

	if maxChars > 0 {
		if n := utf8.RuneCountInString(text); n > maxChars {
			text = cutChars(text, n, target(maxChars, ratio), strategy)
		}
	}
	if maxLines > 0 {
		if lineCount(text) > maxLines {
			text = cutLines(text, max(target(maxLines, ratio), 1), strategy)
		}
	}
	// The line marker can push a short text back over the character limit.
	// A marker-free cut only removes runes, so both limits hold afterwards.
	if maxChars > 0 {
		if n := utf8.RuneCountInString(text); n > maxChars {
			plain := strategy
			if plain == RemoveMiddle {
				plain = RemoveOldest
			}
			text = cutChars(text, n, target(maxChars, ratio), plain)
		}
	}
	return text
}

func target(limit int, ratio float64) int {
	return min(int(math.Round(float64(limit)*ratio)), limit)
}

func lineCount(text string) int {
	if text == "" {
		return 0
	}
	return strings.Count(text, "\n") + 1
}

// cutChars keeps keep of the n runes in text.
func cutChars(text string, n, keep int, strategy Strategy) string {
	if keep <= 0 {
		return ""
	}
	switch strategy {
	case RemoveNewest:
		return text[:alignBackward(text, runeOffset(text, keep))]
	case RemoveMiddle:
		m := utf8.RuneCountInString(markerBlock)
		avail := keep - m
		if avail < 2 {
			return cutChars(text, n, keep, RemoveOldest)
		}
		headRunes := avail / 2
		tailRunes := avail - headRunes
		head := alignBackward(text, runeOffset(text, headRunes))
		tail := alignForward(text, runeOffset(text, n-tailRunes))
		return text[:head] + markerBlock + text[tail:]
	default:
		return text[alignForward(text, runeOffset(text, n-keep)):]
	}
}

// runeOffset returns the byte offset of the k-th rune, or len(s) past the end.
func runeOffset(s string, k int) int {
	if k <= 0 {
		return 0
	}
	i := 0
	for off := range s {
		if i == k {
			return off
		}
		i++
	}
	return len(s)
}

// alignForward moves a suffix start to the beginning of the next line if one
// starts within AlignWindow runes. The cut stays put when it already is at a line
// start or when moving it would leave nothing.
func alignForward(s string, cut int) int {
	if cut <= 0 || cut >= len(s) || s[cut-1] == '\n' {
		return cut
	}
	steps := 0
	for off, r := range s[cut:] {
		if steps == AlignWindow {
			break
		}
		if r == '\n' {
			if next := cut + off + 1; next < len(s) {
				return next
			}
			break
		}
		steps++
	}
	return cut
}

// alignBackward moves a prefix end back to the last line break within AlignWindow
// runes, dropping the break itself.
func alignBackward(s string, end int) int {
	if end <= 0 || end >= len(s) {
		return end
	}
	if s[end] == '\n' {
		return end
	}
	pos := end
	for steps := 0; steps < AlignWindow && pos > 0; steps++ {
		r, size := utf8.DecodeLastRuneInString(s[:pos])
		pos -= size
		if r == '\n' {
			if pos > 0 {
				return pos
			}
			break
		}
	}
	return end
}

// cutLines keeps keep lines according to strategy.
func cutLines(text string, keep int, strategy Strategy) string {
	lines := strings.Split(text, "\n")
	if keep >= len(lines) {
		return text
	}
	switch strategy {
	case RemoveNewest:
		return strings.Join(lines[:keep], "\n")
	case RemoveMiddle:
		if keep < 3 {
			return strings.Join(lines[len(lines)-keep:], "\n")
		}
		head := (keep - 1) / 2
		tail := keep - 1 - head
		kept := make([]string, 0, keep)
		kept = append(kept, lines[:head]...)
		kept = append(kept, Marker)
		kept = append(kept, lines[len(lines)-tail:]...)
		return strings.Join(kept, "\n")
	default:
		return strings.Join(lines[len(lines)-keep:], "\n")
	}
}
