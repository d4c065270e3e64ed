package widgets

import (
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
)

// OccupancyBar is a single-row view of how full a store is. Each cell covers a share
// of the capacity and takes the color of the most severe record in it.
type OccupancyBar struct {
	*tview.Box
	levels   []logging.LogLevel
	capacity int
}

// NewOccupancyBar creates an empty bar.
func NewOccupancyBar() *OccupancyBar {
	return &OccupancyBar{Box: tview.NewBox()}
}

// UpdateState provides the bar with the records currently stored, oldest first.
func (w *OccupancyBar) UpdateState(records []logging.Record, capacity int) {
	levels := w.levels[:0]
	for _, r := range records {
		levels = append(levels, r.Level)
	}
	w.levels = levels
	w.capacity = max(capacity, len(records))
}

// Draw implements tview.Primitive.
func (w *OccupancyBar) Draw(screen tcell.Screen) {
	w.Box.Draw(screen)
	x, y, width, _ := w.GetInnerRect()
	if width <= 0 || w.capacity == 0 {
		return
	}

	for i := 0; i < width; i++ {
		start := w.capacity * i / width
		end := w.capacity * (i + 1) / width
		if start >= end {
			end = start + 1
		}
		mid := start + (end-start+1)/2

		// Each cell shows two halves: left as foreground, right as background.
		left := w.colorFor(start, mid)
		right := left
		if mid < end {
			right = w.colorFor(mid, end)
		}
		style := tcell.StyleDefault.Foreground(left).Background(right)
		screen.SetContent(x+i, y, tview.BlockLeftHalfBlock, nil, style)
	}
}

// colorFor returns the color of slots [start, end).
func (w *OccupancyBar) colorFor(start, end int) tcell.Color {
	if start >= len(w.levels) {
		return tcell.ColorDarkSlateGray
	}
	worst := logging.LevelInfo
	for _, l := range w.levels[start:min(end, len(w.levels))] {
		if l > worst {
			worst = l
		}
	}
	switch worst {
	case logging.LevelError:
		return tcell.ColorRed
	case logging.LevelWarning:
		return tcell.ColorYellow
	default:
		return tcell.ColorSteelBlue
	}
}
