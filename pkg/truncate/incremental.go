package truncate

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/trickstertwo/xclock"
)

// DefaultChunk is the number of runes or bytes a Job processes between deadline checks.
const DefaultChunk = 4096

type jobPhase int

const (
	phaseCount jobPhase = iota
	phaseLocate
	phaseCopy
	phaseDone
)

// Job runs the character-limit pass of Optimize in time-bounded steps, so a caller
// driving a render loop can spread a large cut over several frames. The line-limit
// pass is not part of a Job; callers run Optimize with maxChars disabled afterwards
// if they need it.
//
// A Job is not safe for concurrent use.
type Job struct {
	text     string
	maxChars int
	strategy Strategy
	ratio    float64
	chunk    int
	now      func() time.Time

	phase jobPhase
	pos   int // byte cursor for counting and locating
	runes int // runes counted so far, or the rune index of pos while locating

	n       int
	keep    int
	targets []int // rune indices to locate, ascending
	offsets []int // byte offsets found for targets

	segments []string
	seg      int
	segPos   int
	out      strings.Builder
}

// JobOption configures a Job.
type JobOption func(*Job)

// WithChunk sets how much work happens between deadline checks.
func WithChunk(n int) JobOption {
	return func(j *Job) {
		if n > 0 {
			j.chunk = n
		}
	}
}

// WithNow sets the time source used for budgets.
func WithNow(now func() time.Time) JobOption {
	return func(j *Job) {
		if now != nil {
			j.now = now
		}
	}
}

// NewJob prepares an incremental character-limit pass over text.
func NewJob(text string, maxChars int, strategy Strategy, ratio float64, opts ...JobOption) *Job {
	j := &Job{
		text:     text,
		maxChars: maxChars,
		strategy: strategy,
		ratio:    ClampRatio(ratio),
		chunk:    DefaultChunk,
		now:      xclock.Now,
	}
	for _, opt := range opts {
		opt(j)
	}
	if maxChars <= 0 {
		j.finish(text)
	}
	return j
}

// Done reports whether the job has produced its final result.
func (j *Job) Done() bool {
	return j.phase == phaseDone
}

// Step works until budget has elapsed, always completing at least one chunk. It
// returns the output produced so far and whether it is final.
func (j *Job) Step(budget time.Duration) (string, bool) {
	deadline := j.now().Add(budget)
	for j.phase != phaseDone {
		j.advance()
		if !j.now().Before(deadline) {
			break
		}
	}
	return j.out.String(), j.phase == phaseDone
}

// Run completes the job without a budget.
func (j *Job) Run() string {
	for j.phase != phaseDone {
		j.advance()
	}
	return j.out.String()
}

func (j *Job) advance() {
	switch j.phase {
	case phaseCount:
		j.count()
	case phaseLocate:
		j.locate()
	case phaseCopy:
		j.copyChunk()
	}
}

func (j *Job) count() {
	for i := 0; i < j.chunk && j.pos < len(j.text); i++ {
		_, size := utf8.DecodeRuneInString(j.text[j.pos:])
		j.pos += size
		j.runes++
	}
	if j.pos < len(j.text) {
		return
	}

	j.n = j.runes
	if j.n <= j.maxChars {
		j.finish(j.text)
		return
	}
	j.keep = target(j.maxChars, j.ratio)
	if j.keep <= 0 {
		j.finish("")
		return
	}
	j.plan()
	j.pos, j.runes = 0, 0
	j.phase = phaseLocate
}

// plan picks the rune indices whose byte offsets the cut needs.
func (j *Job) plan() {
	if j.strategy == RemoveMiddle && j.keep-utf8.RuneCountInString(markerBlock) < 2 {
		j.strategy = RemoveOldest
	}
	switch j.strategy {
	case RemoveNewest:
		j.targets = []int{j.keep}
	case RemoveMiddle:
		avail := j.keep - utf8.RuneCountInString(markerBlock)
		head := avail / 2
		j.targets = []int{head, j.n - (avail - head)}
	default:
		j.targets = []int{j.n - j.keep}
	}
}

func (j *Job) locate() {
	for i := 0; i < j.chunk; i++ {
		for len(j.offsets) < len(j.targets) && j.runes == j.targets[len(j.offsets)] {
			j.offsets = append(j.offsets, j.pos)
		}
		if len(j.offsets) == len(j.targets) || j.pos >= len(j.text) {
			break
		}
		_, size := utf8.DecodeRuneInString(j.text[j.pos:])
		j.pos += size
		j.runes++
	}
	for len(j.offsets) < len(j.targets) && j.pos >= len(j.text) {
		j.offsets = append(j.offsets, len(j.text))
	}
	if len(j.offsets) < len(j.targets) {
		return
	}

	t := j.text
	switch j.strategy {
	case RemoveNewest:
		j.segments = []string{t[:alignBackward(t, j.offsets[0])]}
	case RemoveMiddle:
		j.segments = []string{
			t[:alignBackward(t, j.offsets[0])],
			markerBlock,
			t[alignForward(t, j.offsets[1]):],
		}
	default:
		j.segments = []string{t[alignForward(t, j.offsets[0]):]}
	}
	j.out.Grow(len(j.segments[0]) + len(j.segments[len(j.segments)-1]) + len(markerBlock))
	j.phase = phaseCopy
}

func (j *Job) copyChunk() {
	budget := j.chunk
	for budget > 0 && j.seg < len(j.segments) {
		s := j.segments[j.seg]
		end := min(j.segPos+budget, len(s))
		// Partial output never ends inside a multi-byte rune.
		for end < len(s) && end > j.segPos && !utf8.RuneStart(s[end]) {
			end--
		}
		if end == j.segPos {
			_, size := utf8.DecodeRuneInString(s[end:])
			end += size
		}
		j.out.WriteString(s[j.segPos:end])
		budget -= end - j.segPos
		j.segPos = end
		if j.segPos == len(s) {
			j.seg++
			j.segPos = 0
		}
	}
	if j.seg == len(j.segments) {
		j.phase = phaseDone
	}
}

func (j *Job) finish(result string) {
	j.out.Reset()
	j.out.WriteString(result)
	j.phase = phaseDone
}
