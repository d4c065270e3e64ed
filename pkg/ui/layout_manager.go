package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/logging"
	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/ui/widgets"
)

// LayoutManager handles the overall visual structure of the demo.
type LayoutManager struct {
	app        AppInterface
	root       *tview.Flex
	header     *tview.Flex
	statusText *tview.TextView
	footer     *tview.Flex
	logView    *widgets.LogView
	logFrame   *widgets.TitleFrame
	occupancy  *widgets.OccupancyBar

	errorCounters    *tview.TextView
	prevErrorCount   int
	prevWarningCount int
}

// NewLayoutManager creates and initializes the layout.
func NewLayoutManager(app AppInterface) *LayoutManager {
	lm := &LayoutManager{
		app:              app,
		root:             tview.NewFlex().SetDirection(tview.FlexRow),
		header:           tview.NewFlex(),
		statusText:       tview.NewTextView().SetDynamicColors(true),
		footer:           tview.NewFlex(),
		logView:          widgets.NewLogView(),
		occupancy:        widgets.NewOccupancyBar(),
		errorCounters:    tview.NewTextView().SetDynamicColors(true).SetTextAlign(tview.AlignRight),
		prevErrorCount:   -1,
		prevWarningCount: -1,
	}
	lm.logFrame = widgets.NewTitleFrame(lm.logView, "Logs")
	lm.setupLayout()
	return lm
}

// RootPrimitive returns the primitive to set as the application root.
func (lm *LayoutManager) RootPrimitive() tview.Primitive {
	return lm.root
}

// LogView returns the sink widget.
func (lm *LayoutManager) LogView() *widgets.LogView {
	return lm.logView
}

func (lm *LayoutManager) setupLayout() {
	// Use boxes instead of padding to avoid transparent gap
	lm.header.AddItem(tview.NewBox(), 1, 0, false).
		AddItem(lm.statusText, 0, 1, false).
		AddItem(tview.NewBox(), 1, 0, false).
		AddItem(lm.errorCounters, 30, 0, false).
		AddItem(tview.NewBox(), 1, 0, false)

	lm.root.SetBorder(true).
		SetTitle(" Scrollback Demo ").
		SetTitleAlign(tview.AlignLeft)

	lm.root.AddItem(lm.header, 1, 0, false).
		AddItem(lm.occupancy, 1, 0, false).
		AddItem(lm.logFrame, 0, 1, true).
		AddItem(lm.footer, 1, 0, false)

	lm.SetErrorCounters(0, 0)
}

// StartPolling refreshes counters and the occupancy bar until ctx is done.
func (lm *LayoutManager) StartPolling(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			lm.app.QueueUpdateDraw(lm.Refresh)
		case <-ctx.Done():
			return
		}
	}
}

// Refresh reads the console state into the widgets. Call it on the UI goroutine.
func (lm *LayoutManager) Refresh() {
	c := lm.app.Console()
	if c == nil {
		return
	}
	records := c.Store().Snapshot()
	capacity := c.Store().Capacity()

	var warnings, errors int
	for _, r := range records {
		switch r.Level {
		case logging.LevelError:
			errors++
		case logging.LevelWarning:
			warnings++
		}
	}
	lm.SetErrorCounters(warnings, errors)
	lm.occupancy.UpdateState(records, capacity)

	st := c.Scheduler().Stats()
	follow := "follow"
	if !lm.logView.Following() {
		follow = "paused"
	}
	lm.logFrame.SetStatus(fmt.Sprintf("%d/%d | %s | %s", len(records), capacity, st.State, follow))
}

// SetErrorCounters updates the error and warning counters.
func (lm *LayoutManager) SetErrorCounters(warnCount, errorCount int) {
	if lm.prevErrorCount == errorCount && lm.prevWarningCount == warnCount {
		return
	}
	lm.prevErrorCount = errorCount
	lm.prevWarningCount = warnCount

	warnBgColor := tcell.ColorYellow
	warnFgColor := tcell.ColorBlack
	errorBgColor := tcell.ColorRed
	errorFgColor := tcell.ColorBlack
	if warnCount == 0 {
		warnBgColor = tcell.ColorBlack
		warnFgColor = tcell.ColorWhite
	}
	if errorCount == 0 {
		errorBgColor = tcell.ColorBlack
		errorFgColor = tcell.ColorWhite
	}
	lm.errorCounters.SetText(fmt.Sprintf("[yellow]Warnings: [%s:%s]%d[-:-:-] [red]Errors: [%s:%s]%d[-:-:-]",
		warnFgColor.Name(), warnBgColor.Name(), warnCount, errorFgColor.Name(), errorBgColor.Name(), errorCount))
}

// SetFooter updates the action hints.
func (lm *LayoutManager) SetFooter(prompts []ActionPrompt) {
	lm.footer.Clear()
	var sb strings.Builder
	for i, prompt := range prompts {
		sb.WriteString(fmt.Sprintf("[darkcyan::b]%s[-:-:-]: %s", prompt.Input, prompt.Action))
		if i != len(prompts)-1 {
			sb.WriteString(" | ")
		}
	}
	lm.footer.AddItem(tview.NewTextView().SetDynamicColors(true).SetText(sb.String()), 0, 1, false)
}

// SetStatusText updates the header status.
func (lm *LayoutManager) SetStatusText(text string) {
	lm.statusText.SetText(text)
}

// Counters returns the last warning and error counts shown.
func (lm *LayoutManager) Counters() (warnings, errors int) {
	return lm.prevWarningCount, lm.prevErrorCount
}
