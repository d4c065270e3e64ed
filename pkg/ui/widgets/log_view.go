package widgets

import (
	"sync/atomic"

	"github.com/rivo/tview"
)

// LogView is a scrollable text view used as the render sink. SetContent must be
// called from the tview event loop, which is where the scheduler ticks.
type LogView struct {
	*tview.TextView
	follow  bool
	visible atomic.Bool
}

// NewLogView creates a LogView that follows new output.
func NewLogView() *LogView {
	v := &LogView{
		TextView: tview.NewTextView().
			SetDynamicColors(true).
			SetScrollable(true).
			SetWrap(true),
		follow: true,
	}
	v.visible.Store(true)
	return v
}

// SetContent replaces the text and keeps the view at the bottom while following.
func (v *LogView) SetContent(text string) {
	v.TextView.SetText(text)
	if v.follow {
		v.TextView.ScrollToEnd()
	}
}

// Available reports whether the view is currently shown. Hidden views skip updates.
func (v *LogView) Available() bool {
	return v.visible.Load()
}

// SetVisible marks the view as shown or hidden.
func (v *LogView) SetVisible(visible bool) {
	v.visible.Store(visible)
}

// SetFollow toggles automatic scrolling to the newest line.
func (v *LogView) SetFollow(follow bool) {
	v.follow = follow
	if follow {
		v.TextView.ScrollToEnd()
	}
}

// Following reports whether the view scrolls to new output.
func (v *LogView) Following() bool {
	return v.follow
}
