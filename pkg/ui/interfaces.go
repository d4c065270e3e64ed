package ui

import (
	"github.com/rivo/tview"

	"github.com/CodeTeaBooker/unity-logging-system-sub001/pkg/console"
)

// AppInterface defines what the UI layer needs from the host application.
type AppInterface interface {
	QueueUpdateDraw(f func()) *tview.Application
	Stop()
	Console() *console.Console
}
