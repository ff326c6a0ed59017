package views

import (
	"fmt"

	"github.com/fastyr/fastyr/internal/tui/ui"
	"github.com/rivo/tview"
)

// HelpView displays the key and command reference.
type HelpView struct {
	*tview.TextView
	theme *ui.Theme
}

// NewHelpView creates a new help view.
func NewHelpView(theme *ui.Theme) *HelpView {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true)
	tv.SetBorder(true)
	tv.SetBorderColor(theme.BorderColor)
	tv.SetBackgroundColor(theme.BgColor)
	tv.SetTextColor(theme.FgColor)
	tv.SetTitle(" Help ")
	tv.SetTitleColor(theme.TitleColor)

	hv := &HelpView{
		TextView: tv,
		theme:    theme,
	}
	hv.render()
	return hv
}

// Name implements ui.Component.
func (hv *HelpView) Name() string { return PageHelp }

// Entry implements ui.Component.
func (hv *HelpView) Entry() tview.Primitive { return hv.TextView }

// Hints implements ui.Component.
func (hv *HelpView) Hints() []ui.MenuHint {
	return []ui.MenuHint{{Key: "Esc", Description: "Back"}}
}

func (hv *HelpView) render() {
	kc := ui.ColorTag(hv.theme.MenuKeyColor)
	rows := []struct{ key, desc string }{
		{"Ctrl-P", "Command prompt (also ':' outside text fields)"},
		{"Esc", "Back"},
		{"Tab", "Next field"},
		{"F1", "Help"},
		{"Ctrl-C", "Quit"},
		{"", ""},
		{":signin", "Sign in"},
		{":signup", "Create an account"},
		{":forgot", "Reset a forgotten password"},
		{":attach <path>...", "Attach files to the next message"},
		{":upload <path>...", "Upload files now"},
		{":clear", "Clear chat history"},
		{":logout", "Sign out"},
		{":help", "Show this help"},
		{":quit", "Quit"},
	}

	_, _ = fmt.Fprint(hv, "\n  [::b]Keys and commands[-:-:-]\n\n")
	for _, r := range rows {
		if r.key == "" {
			_, _ = fmt.Fprintln(hv)
			continue
		}
		_, _ = fmt.Fprintf(hv, "  [%s]%-20s[-] %s\n", kc, tview.Escape(r.key), r.desc)
	}
	_, _ = fmt.Fprint(hv, "\n  In the chat composer, a line starting with ':' runs a command.\n")
}
