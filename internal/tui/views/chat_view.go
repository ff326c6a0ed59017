package views

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/fastyr/fastyr/internal/chat"
	"github.com/fastyr/fastyr/internal/tui/ui"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

// ChatView shows the conversation and the composer.
type ChatView struct {
	*tview.Flex
	theme    *ui.Theme
	messages *tview.TextView
	errLine  *tview.TextView
	composer *tview.InputField

	name     string
	empty    bool
	attached []string

	// OnSend receives a prompt and the staged attachment paths.
	OnSend func(prompt string, paths []string)
	// OnCommand receives composer input starting with ':' without it.
	OnCommand func(line string)
}

// NewChatView creates the chat page.
func NewChatView(theme *ui.Theme) *ChatView {
	messages := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)
	messages.SetBorder(true)
	messages.SetBorderColor(theme.BorderColor)
	messages.SetBackgroundColor(theme.BgColor)
	messages.SetTextColor(theme.FgColor)
	messages.SetTitle(" Chat ")
	messages.SetTitleColor(theme.TitleColor)

	errLine := tview.NewTextView().
		SetDynamicColors(true)
	errLine.SetBackgroundColor(theme.BgColor)
	errLine.SetBorderPadding(0, 0, 1, 0)

	composer := tview.NewInputField().
		SetLabel(" > ").
		SetFieldWidth(0).
		SetPlaceholder("Ask anything, or :help")
	composer.SetBorder(true)
	composer.SetBorderColor(theme.BorderFocusColor)
	composer.SetBackgroundColor(theme.BgColor)
	composer.SetFieldBackgroundColor(theme.BgColor)
	composer.SetFieldTextColor(theme.FgColor)
	composer.SetLabelColor(theme.MenuKeyColor)
	composer.SetTitleColor(theme.TitleColor)

	flex := tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(messages, 0, 1, false).
		AddItem(errLine, 1, 0, false).
		AddItem(composer, 3, 0, true)

	cv := &ChatView{
		Flex:     flex,
		theme:    theme,
		messages: messages,
		errLine:  errLine,
		composer: composer,
		empty:    true,
	}
	cv.renderTitle()

	composer.SetDoneFunc(func(key tcell.Key) {
		if key == tcell.KeyEnter {
			cv.submit(composer.GetText())
		}
	})
	return cv
}

// Name implements ui.Component.
func (cv *ChatView) Name() string { return PageChat }

// Entry implements ui.Component.
func (cv *ChatView) Entry() tview.Primitive { return cv.composer }

// Hints implements ui.Component.
func (cv *ChatView) Hints() []ui.MenuHint {
	return []ui.MenuHint{
		{Key: "Enter", Description: "Send"},
		{Key: ":attach", Description: "Attach"},
		{Key: ":upload", Description: "Upload"},
		{Key: ":clear", Description: "Clear"},
		{Key: ":logout", Description: "Logout"},
	}
}

// Update renders the conversation for the user called name.
func (cv *ChatView) Update(st chat.State, name string) {
	cv.name = name
	cv.empty = len(st.Messages) == 0
	cv.messages.Clear()
	if cv.empty {
		_, _ = fmt.Fprint(cv.messages, RenderGreeting(cv.theme, name))
		cv.messages.ScrollToBeginning()
	} else {
		_, _ = fmt.Fprint(cv.messages, RenderMessages(cv.theme, st.Messages))
		cv.messages.ScrollToEnd()
	}

	cv.errLine.Clear()
	if st.Error != "" {
		_, _ = fmt.Fprintf(cv.errLine, "[%s]%s[-]", ui.ColorTag(cv.theme.ErrorColor), tview.Escape(st.Error))
	}
}

// Attach stages paths for the next send.
func (cv *ChatView) Attach(paths ...string) {
	cv.attached = append(cv.attached, paths...)
	cv.renderTitle()
}

// Attached returns the staged paths.
func (cv *ChatView) Attached() []string {
	return append([]string(nil), cv.attached...)
}

// Reset clears the composer and the staged attachments.
func (cv *ChatView) Reset() {
	cv.composer.SetText("")
	cv.attached = nil
	cv.renderTitle()
}

func (cv *ChatView) submit(text string) {
	line := strings.TrimSpace(text)
	if strings.HasPrefix(line, ":") {
		cv.composer.SetText("")
		if cv.OnCommand != nil {
			cv.OnCommand(strings.TrimPrefix(line, ":"))
		}
		return
	}
	if s, ok := cv.suggestion(line); ok {
		cv.composer.SetText(s)
		return
	}
	if line == "" && len(cv.attached) == 0 {
		return
	}
	paths := cv.attached
	cv.Reset()
	if cv.OnSend != nil {
		cv.OnSend(line, paths)
	}
}

// suggestion maps "1".."n" to a suggestion while the conversation is empty.
func (cv *ChatView) suggestion(line string) (string, bool) {
	if !cv.empty {
		return "", false
	}
	n, err := strconv.Atoi(line)
	if err != nil || n < 1 || n > len(Suggestions) {
		return "", false
	}
	return Suggestions[n-1], true
}

func (cv *ChatView) renderTitle() {
	if len(cv.attached) == 0 {
		cv.composer.SetTitle(" Message ")
		return
	}
	names := make([]string, len(cv.attached))
	for i, p := range cv.attached {
		names[i] = filepath.Base(p)
	}
	cv.composer.SetTitle(" Message + " + tview.Escape(strings.Join(names, ", ")) + " ")
}
