package views

import (
	"fmt"
	"time"

	"github.com/fastyr/fastyr/internal/lifecycle"
	"github.com/fastyr/fastyr/internal/tui/ui"
	"github.com/rivo/tview"
)

// StatusBar shows the page, the request state of both slices and the clock.
type StatusBar struct {
	*tview.TextView
	theme *ui.Theme
	page  string
	auth  lifecycle.Status
	chat  lifecycle.Status
	now   func() time.Time
}

// NewStatusBar creates a new status bar.
func NewStatusBar(theme *ui.Theme) *StatusBar {
	tv := tview.NewTextView().
		SetDynamicColors(true)
	tv.SetBackgroundColor(tview.Styles.MoreContrastBackgroundColor)

	return &StatusBar{TextView: tv, theme: theme, auth: lifecycle.Idle, chat: lifecycle.Idle, now: time.Now}
}

// SetPage updates the page name.
func (sb *StatusBar) SetPage(name string) {
	sb.page = name
	sb.render()
}

// SetAuth updates the auth request status.
func (sb *StatusBar) SetAuth(s lifecycle.Status) {
	sb.auth = s
	sb.render()
}

// SetChat updates the chat request status.
func (sb *StatusBar) SetChat(s lifecycle.Status) {
	sb.chat = s
	sb.render()
}

// Loading reports whether either slice has a request in flight.
func (sb *StatusBar) Loading() bool {
	return sb.auth == lifecycle.Loading || sb.chat == lifecycle.Loading
}

func (sb *StatusBar) render() {
	sb.Clear()
	activity := "idle"
	if sb.Loading() {
		activity = fmt.Sprintf("[%s]loading...[-]", ui.ColorTag(sb.theme.CounterColor))
	}
	_, _ = fmt.Fprintf(sb, " [::b]%s[-:-:-] | auth %s | chat %s | %s | %s",
		sb.page, sb.auth, sb.chat, activity, sb.now().Format("15:04"))
}
