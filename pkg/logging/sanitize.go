package logging

import (
	"html"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/microcosm-cc/bluemonday"
)

const (
	// DefaultMaxMessageLen is the rune limit applied to stored messages.
	DefaultMaxMessageLen = 10000
	// TruncatedSuffix is appended to messages cut at the length limit.
	TruncatedSuffix = " ...(message truncated)"
)

var reANSI = regexp.MustCompile(`\x1b\[[0-9;?]*[ -/]*[@-~]|\x1b[@-Z\\-_]`)

// markupNames lists the HTML and rich-text elements treated as markup. Anything else
// in angle brackets, such as <nil> or vector<int>, is ordinary text.
const markupNames = `script|style|iframe|object|embed|meta|link|a|b|i|u|s|em|strong|span|div|p|br|hr|img|font|code|pre|h[1-6]|` +
	`color|size|material|quad|mark|sup|sub|alpha|align|gradient|sprite|noparse|nobr|voffset|cspace|mspace|` +
	`indent|margin|rotate|width|pos|lowercase|uppercase|smallcaps|allcaps`

// reMarkupTag matches an opening or closing tag of a known element. Attributes must be
// name=value pairs, so prose like "a<b and c>d" is not a tag.
var reMarkupTag = regexp.MustCompile(`(?i)</?(?:` + markupNames + `)` +
	`(?:=(?:"[^"]*"|'[^']*'|[^\s<>"']+))?` +
	`(?:\s+[\w:-]+\s*=\s*(?:"[^"]*"|'[^']*'|[^\s<>"']+))*\s*/?>`)

// policyEntities undoes the escaping the strict policy applies to text.
var policyEntities = strings.NewReplacer("&lt;", "<", "&gt;", ">", "&#34;", `"`, "&#39;", "'", "&amp;", "&")

// Sanitizer strips injection markers from messages and caps their length.
// A Sanitizer is immutable and safe for concurrent use.
type Sanitizer struct {
	maxLen int
	policy *bluemonday.Policy
}

// NewSanitizer returns a sanitizer capping messages at maxLen runes. When stripMarkup
// is set, HTML and rich-text tags (<color=red>, <b>, <script>...) are removed too.
func NewSanitizer(maxLen int, stripMarkup bool) *Sanitizer {
	if maxLen < 1 {
		maxLen = DefaultMaxMessageLen
	}
	s := &Sanitizer{maxLen: maxLen}
	if stripMarkup {
		s.policy = bluemonday.StrictPolicy()
	}
	return s
}

// MaxLen returns the rune limit.
func (s *Sanitizer) MaxLen() int {
	return s.maxLen
}

// Sanitize returns the cleaned message. The result may be empty if msg held nothing
// but markup or control sequences.
func (s *Sanitizer) Sanitize(msg string) string {
	if strings.IndexByte(msg, 0x1b) >= 0 {
		msg = reANSI.ReplaceAllString(msg, "")
	}
	msg = strings.Map(dropControl, msg)
	if s.policy != nil && strings.IndexByte(msg, '<') >= 0 {
		msg = s.stripMarkup(msg)
	}
	if !utf8.ValidString(msg) {
		msg = strings.ToValidUTF8(msg, "�")
	}
	if utf8.RuneCountInString(msg) > s.maxLen {
		msg = cutRunes(msg, s.maxLen) + TruncatedSuffix
	}
	return msg
}

// stripMarkup removes known tags, and the content of script and style elements, while
// leaving every other character of msg as it was.
func (s *Sanitizer) stripMarkup(msg string) string {
	tags := reMarkupTag.FindAllStringIndex(msg, -1)
	if tags == nil {
		return msg
	}
	// Text between tags is escaped so the policy only ever sees the known tags.
	var b strings.Builder
	b.Grow(len(msg) + 16)
	last := 0
	for _, loc := range tags {
		b.WriteString(html.EscapeString(msg[last:loc[0]]))
		b.WriteString(msg[loc[0]:loc[1]])
		last = loc[1]
	}
	b.WriteString(html.EscapeString(msg[last:]))
	return policyEntities.Replace(s.policy.Sanitize(b.String()))
}

func dropControl(r rune) rune {
	if r == '\n' || r == '\t' {
		return r
	}
	if r == '\r' || unicode.IsControl(r) {
		return -1
	}
	return r
}

func cutRunes(s string, n int) string {
	i := 0
	for off := range s {
		if i == n {
			return s[:off]
		}
		i++
	}
	return s
}
