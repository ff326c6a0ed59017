package views

import (
	"fmt"

	"github.com/fastyr/fastyr/internal/tui/ui"
	"github.com/rivo/tview"
)

// Form is an auth page: a tview form with an inline error line and links
// to the neighbouring pages.
type Form struct {
	*tview.Flex
	theme  *ui.Theme
	name   string
	form   *tview.Form
	status *tview.TextView
	links  []ui.MenuHint
	busy   bool
	err    string
}

func newForm(theme *ui.Theme, name, title string) *Form {
	form := tview.NewForm()
	form.SetBorder(true)
	form.SetBorderColor(theme.BorderColor)
	form.SetBackgroundColor(theme.BgColor)
	form.SetTitle(" " + title + " ")
	form.SetTitleColor(theme.TitleColor)
	form.SetLabelColor(theme.FgColor)
	form.SetFieldBackgroundColor(theme.FieldBgColor)
	form.SetFieldTextColor(theme.FgColor)
	form.SetButtonBackgroundColor(theme.ButtonBgColor)
	form.SetButtonTextColor(theme.ButtonFgColor)

	status := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignCenter)
	status.SetBackgroundColor(theme.BgColor)

	column := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(nil, 0, 1, false).
		AddItem(form, 0, 3, true).
		AddItem(status, 2, 0, false).
		AddItem(nil, 0, 1, false)

	flex := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(column, 60, 0, true).
		AddItem(nil, 0, 1, false)

	return &Form{
		Flex:   flex,
		theme:  theme,
		name:   name,
		form:   form,
		status: status,
	}
}

// Name implements ui.Component.
func (f *Form) Name() string { return f.name }

// Entry implements ui.Component.
func (f *Form) Entry() tview.Primitive { return f.form }

// Hints implements ui.Component.
func (f *Form) Hints() []ui.MenuHint {
	return append([]ui.MenuHint{{Key: "Tab", Description: "Next field"}}, f.links...)
}

// SetError shows msg under the form. An empty msg clears it.
func (f *Form) SetError(msg string) {
	f.err = msg
	f.render()
}

// SetBusy marks a request as in flight.
func (f *Form) SetBusy(busy bool) {
	f.busy = busy
	f.render()
}

// Busy reports whether a request is marked in flight.
func (f *Form) Busy() bool { return f.busy }

// Error returns the error currently shown.
func (f *Form) Error() string { return f.err }

// Clear empties every field and the error line.
func (f *Form) Clear() {
	for i := 0; i < f.form.GetFormItemCount(); i++ {
		if in, ok := f.form.GetFormItem(i).(*tview.InputField); ok {
			in.SetText("")
		}
	}
	f.form.SetFocus(0)
	f.err = ""
	f.render()
}

func (f *Form) render() {
	f.status.Clear()
	switch {
	case f.busy:
		_, _ = fmt.Fprintf(f.status, "[%s]Please wait...[-]", ui.ColorTag(f.theme.MutedColor))
	case f.err != "":
		_, _ = fmt.Fprintf(f.status, "[%s]%s[-]", ui.ColorTag(f.theme.ErrorColor), tview.Escape(f.err))
	}
}

func (f *Form) text(label string) string {
	if in, ok := f.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		return in.GetText()
	}
	return ""
}

func (f *Form) setText(label, v string) {
	if in, ok := f.form.GetFormItemByLabel(label).(*tview.InputField); ok {
		in.SetText(v)
	}
}

// submit wraps a button handler so it does nothing while a request is in
// flight.
func (f *Form) submit(fn func()) func() {
	return func() {
		if !f.busy {
			fn()
		}
	}
}
