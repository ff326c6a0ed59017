package views

import (
	"fmt"
	"strings"

	"github.com/fastyr/fastyr/internal/chat"
	"github.com/fastyr/fastyr/internal/tui/ui"
	"github.com/rivo/tview"
)

// Suggestions are offered on an empty conversation.
var Suggestions = []string{
	"Write a to-do list for a personal project or task",
	"Generate an email to job offer",
	"Upload a document to analyze its content",
}

// RenderGreeting renders the empty-conversation screen for name.
func RenderGreeting(theme *ui.Theme, name string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "\n[%s::b]Hi %s[-:-:-]\n", ui.ColorTag(theme.TitleColor), tview.Escape(name))
	fmt.Fprintf(&b, "[%s]What would you like to know?[-]\n\n", ui.ColorTag(theme.FgColor))
	for i, s := range Suggestions {
		fmt.Fprintf(&b, "  [%s::b]%d[-:-:-] %s\n", ui.ColorTag(theme.MenuKeyColor), i+1, tview.Escape(s))
	}
	fmt.Fprintf(&b, "\n[%s]Type a number and press Enter to use a suggestion.[-]", ui.ColorTag(theme.MutedColor))
	return b.String()
}

// RenderMessages renders the conversation, oldest first.
func RenderMessages(theme *ui.Theme, msgs []chat.Message) string {
	var b strings.Builder
	muted := ui.ColorTag(theme.MutedColor)
	for _, m := range msgs {
		sender, color := "You", ui.ColorTag(theme.UserColor)
		if m.FromBot() {
			sender, color = "Fastyr", ui.ColorTag(theme.BotColor)
		}
		fmt.Fprintf(&b, "[%s::b]%s[-:-:-] [%s]%s[-]\n", color, sender, muted, m.Timestamp.Local().Format("15:04"))
		fmt.Fprintf(&b, "%s\n", tview.Escape(sanitizeForTerminal(m.Content)))
		for _, f := range m.Files {
			fmt.Fprintf(&b, "[%s]  📎 %s (%s)[-]\n", muted, tview.Escape(f.Name), tview.Escape(f.Type))
		}
		b.WriteString("\n")
	}
	return b.String()
}
