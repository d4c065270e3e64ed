package widgets

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// TitleFrame is a primitive that wraps another primitive, adding a horizontal
// rule at the top with an optional title on the left and a status on the right.
type TitleFrame struct {
	*tview.Box
	content tview.Primitive // The primitive being wrapped
	title   string
	status  string
	color   tcell.Color // Color for the horizontal line and title
}

// NewTitleFrame creates a new TitleFrame.
func NewTitleFrame(content tview.Primitive, title string) *TitleFrame {
	f := &TitleFrame{
		Box:     tview.NewBox().SetBorder(false), // No default border drawing from Box, we'll draw it.
		content: content,
		title:   title,
		color:   tcell.ColorWhite, // Default color for the separator
	}
	return f
}

// Draw draws the rule, the title and the status, then the content below them.
func (f *TitleFrame) Draw(screen tcell.Screen) {
	f.Box.Draw(screen)
	x, y, width, height := f.GetRect()
	focused := f.HasFocus()

	lineRune := tview.BoxDrawingsLightHorizontal
	if focused {
		lineRune = tview.BoxDrawingsHeavyHorizontal
	}
	style := tcell.StyleDefault.Background(tview.Styles.PrimitiveBackgroundColor).Foreground(f.color)
	for i := 0; i < width; i++ {
		screen.SetContent(x+i, y, lineRune, nil, style)
	}

	if f.title != "" {
		titleText := " " + tview.Escape(f.title) + " "
		if focused {
			titleText = fmt.Sprintf("%s[::ur]%s[-:-:-]%s", string(tview.BlockRightHalfBlock), tview.Escape(f.title), string(tview.BlockLeftHalfBlock))
		}
		tview.Print(screen, titleText, x+1, y, width-2, tview.AlignLeft, f.color)
	}
	// The status is trusted markup, e.g. colored counters.
	if f.status != "" && width > 4 {
		tview.Print(screen, " "+f.status+" ", x+1, y, width-2, tview.AlignRight, f.color)
	}

	if height <= 1 || f.content == nil {
		return
	}
	f.content.SetRect(x, y+1, width, height-1)
	f.content.Draw(screen)
}

// SetTitle changes the title.
func (f *TitleFrame) SetTitle(title string) *TitleFrame {
	f.title = title
	return f
}

// SetStatus changes the text drawn at the right end of the rule. It may contain
// color tags.
func (f *TitleFrame) SetStatus(status string) *TitleFrame {
	f.status = status
	return f
}

// Status returns the current status text.
func (f *TitleFrame) Status() string {
	return f.status
}

// SetColor changes the color of the rule and title.
func (f *TitleFrame) SetColor(color tcell.Color) *TitleFrame {
	f.color = color
	return f
}

// Focus is called when this primitive receives focus.
func (f *TitleFrame) Focus(delegate func(p tview.Primitive)) {
	if f.content != nil {
		delegate(f.content)
	} else {
		f.Box.Focus(delegate)
	}
}

// HasFocus returns whether or not this primitive has focus.
func (f *TitleFrame) HasFocus() bool {
	if f.content == nil {
		return f.Box.HasFocus()
	}
	return f.content.HasFocus()
}

// MouseHandler returns the mouse handler for this primitive.
func (f *TitleFrame) MouseHandler() func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
	return f.WrapMouseHandler(func(action tview.MouseAction, event *tcell.EventMouse, setFocus func(p tview.Primitive)) (consumed bool, capture tview.Primitive) {
		if !f.InRect(event.Position()) {
			return false, nil
		}

		// Pass mouse events on to contained primitive.
		if f.content != nil {
			consumed, capture = f.content.MouseHandler()(action, event, setFocus)
			if consumed {
				return true, capture
			}
		}

		// Clicking on the frame parts.
		if action == tview.MouseLeftDown {
			setFocus(f)
			consumed = true
		}

		return
	})
}

// InputHandler returns the handler for this primitive.
func (f *TitleFrame) InputHandler() func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
	return f.WrapInputHandler(func(event *tcell.EventKey, setFocus func(p tview.Primitive)) {
		if f.content == nil {
			return
		}
		if handler := f.content.InputHandler(); handler != nil {
			handler(event, setFocus)
			return
		}
	})
}

// PasteHandler returns the handler for this primitive.
func (f *TitleFrame) PasteHandler() func(pastedText string, setFocus func(p tview.Primitive)) {
	return f.WrapPasteHandler(func(pastedText string, setFocus func(p tview.Primitive)) {
		if f.content == nil {
			return
		}
		if handler := f.content.PasteHandler(); handler != nil {
			handler(pastedText, setFocus)
			return
		}
	})
}
