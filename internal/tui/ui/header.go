package ui

import (
	"fmt"

	"github.com/rivo/tview"
)

// HeaderData is what the header shows about the current session.
type HeaderData struct {
	Profile  string
	APIURL   string
	Name     string
	Initials string
	SignedIn bool
}

// Header shows the product mark, the profile and the signed-in user.
type Header struct {
	*tview.Flex
	theme   *Theme
	logo    *tview.TextView
	account *tview.TextView
}

// NewHeader creates the header bar.
func NewHeader(theme *Theme) *Header {
	logo := tview.NewTextView().
		SetDynamicColors(true)
	logo.SetBackgroundColor(theme.BgColor)
	logo.SetBorderPadding(0, 0, 1, 0)
	_, _ = fmt.Fprintf(logo, "[%s::b]FASTYR[-:-:-] [%s]chat[-]",
		ColorTag(theme.TitleColor), ColorTag(theme.MutedColor))

	account := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignRight)
	account.SetBackgroundColor(theme.BgColor)
	account.SetBorderPadding(0, 0, 0, 1)

	flex := tview.NewFlex().
		AddItem(logo, 0, 1, false).
		AddItem(account, 0, 2, false)

	return &Header{
		Flex:    flex,
		theme:   theme,
		logo:    logo,
		account: account,
	}
}

// Update renders d.
func (h *Header) Update(d HeaderData) {
	h.account.Clear()
	muted := ColorTag(h.theme.MutedColor)
	counter := ColorTag(h.theme.CounterColor)

	_, _ = fmt.Fprintf(h.account, "[%s]%s[-] [%s]@ %s[-]  ", counter, tview.Escape(d.Profile), muted, tview.Escape(d.APIURL))
	if !d.SignedIn {
		_, _ = fmt.Fprintf(h.account, "[%s]not signed in[-]", muted)
		return
	}
	_, _ = fmt.Fprintf(h.account, "[%s:%s:b] %s [-:-:-] %s",
		ColorTag(h.theme.AvatarFg), ColorTag(h.theme.AvatarBg), tview.Escape(d.Initials), tview.Escape(d.Name))
}
