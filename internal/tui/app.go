package tui

import (
	"context"
	"strings"
	"time"

	"github.com/fastyr/fastyr/internal/app"
	"github.com/fastyr/fastyr/internal/auth"
	"github.com/fastyr/fastyr/internal/bus"
	"github.com/fastyr/fastyr/internal/chat"
	"github.com/fastyr/fastyr/internal/lifecycle"
	"github.com/fastyr/fastyr/internal/tui/keys"
	"github.com/fastyr/fastyr/internal/tui/ui"
	"github.com/fastyr/fastyr/internal/tui/views"
	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
	"go.uber.org/zap"
)

// Toast texts.
const (
	msgOTPSent        = "OTP sent to your email!"
	msgOTPVerified    = "OTP verified successfully!"
	msgPasswordReset  = "Password reset successfully!"
	msgHistoryCleared = "Chat history cleared!"
	msgLoggedOut      = "Logged out successfully!"
	msgSelectFile     = "Please select at least one file."
)

// Options configures the shell.
type Options struct {
	Profile string
	APIURL  string
}

// App is the terminal UI shell. Every widget is touched only on the tview
// goroutine; operations run on their own goroutines and hand results back
// through QueueUpdateDraw.
type App struct {
	tv       *tview.Application
	theme    *ui.Theme
	ctrl     *app.Controller
	bus      *bus.Bus
	logger   *zap.Logger
	opts     Options
	registry *keys.Registry

	root     *tview.Flex
	pages    *ui.Pages
	header   *ui.Header
	menu     *ui.Menu
	flash    *ui.FlashModel
	flashBar *ui.FlashBar
	prompt   *ui.Prompt
	status   *views.StatusBar

	signIn *views.SignInForm
	signUp *views.SignUpForm
	forgot *views.ForgotForm
	otp    *views.OTPForm
	reset  *views.ResetForm
	chat   *views.ChatView
	help   *views.HelpView

	components map[string]ui.Component
	promptOpen bool
	lastFocus  tview.Primitive

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp builds the shell over ctrl. Slice changes arrive on b.
func NewApp(ctrl *app.Controller, b *bus.Bus, logger *zap.Logger, opts Options) *App {
	ctx, cancel := context.WithCancel(context.Background())
	theme := ui.DefaultTheme()

	a := &App{
		tv:       tview.NewApplication(),
		theme:    theme,
		ctrl:     ctrl,
		bus:      b,
		logger:   logger,
		opts:     opts,
		registry: keys.NewRegistry(),
		pages:    ui.NewPages(),
		header:   ui.NewHeader(theme),
		menu:     ui.NewMenu(theme),
		flash:    ui.NewFlashModel(),
		flashBar: ui.NewFlashBar(theme),
		prompt:   ui.NewPrompt(theme, Commands),
		status:   views.NewStatusBar(theme),
		signIn:   views.NewSignInForm(theme),
		signUp:   views.NewSignUpForm(theme),
		forgot:   views.NewForgotForm(theme),
		otp:      views.NewOTPForm(theme),
		reset:    views.NewResetForm(theme),
		chat:     views.NewChatView(theme),
		help:     views.NewHelpView(theme),
		ctx:      ctx,
		cancel:   cancel,
	}

	a.setupRoutes()
	a.setupBindings()
	a.setupCallbacks()
	a.setupLayout()
	return a
}

func (a *App) setupRoutes() {
	a.components = map[string]ui.Component{}
	for _, r := range []struct {
		c         ui.Component
		protected bool
	}{
		{a.signIn, false},
		{a.signUp, false},
		{a.forgot, false},
		{a.otp, false},
		{a.reset, false},
		{a.chat, true},
		{a.help, false},
	} {
		a.components[r.c.Name()] = r.c
		a.pages.AddRoute(r.c.Name(), r.c, r.protected)
	}
	a.pages.SetGuard(func() bool { return a.ctrl.Auth().State().IsAuthenticated }, views.PageSignIn)
	a.pages.SetOnChange(a.onPageChange)
}

func (a *App) setupBindings() {
	a.registry.AddGlobal("prompt", &keys.Action{
		Key: tcell.KeyCtrlP, Label: "Ctrl-P", Description: "Command", Visible: true,
		Handler: a.openPrompt,
	})
	a.registry.AddGlobal("command", &keys.Action{
		Key: tcell.KeyRune, Rune: ':', Typing: true,
		Handler: a.openPrompt,
	})
	a.registry.AddGlobal("help", &keys.Action{
		Key: tcell.KeyF1, Label: "F1", Description: "Help", Visible: true,
		Handler: func() { a.navigate(views.PageHelp) },
	})
	a.registry.AddGlobal("back", &keys.Action{
		Key: tcell.KeyEscape,
		Handler: func() { a.back() },
	})
}

func (a *App) setupCallbacks() {
	a.signIn.OnSubmit = func(email, password string) {
		a.run(func(ctx context.Context) error {
			_, err := a.ctrl.Login(ctx, strings.TrimSpace(email), password)
			return err
		}, func(err error) {
			if err == nil {
				a.signIn.Clear()
				a.pages.Reset(views.PageChat)
			}
		})
	}
	a.signIn.OnSignUp = func() { a.navigate(views.PageSignUp) }
	a.signIn.OnForgot = func() { a.navigate(views.PageForgot) }

	a.signUp.OnSubmit = func(userName, email, password, confirm string) {
		a.run(func(ctx context.Context) error {
			return a.ctrl.Signup(ctx, strings.TrimSpace(userName), strings.TrimSpace(email), password, confirm)
		}, func(err error) {
			if err == nil {
				a.signUp.Clear()
				a.pages.Reset(views.PageSignIn)
			}
		})
	}
	a.signUp.OnSignIn = func() { a.pages.Reset(views.PageSignIn) }

	a.forgot.OnSubmit = func(email string) {
		email = strings.TrimSpace(email)
		a.run(func(ctx context.Context) error {
			return a.ctrl.ForgotPassword(ctx, email)
		}, func(err error) {
			if err == nil {
				a.flash.Success(msgOTPSent)
				a.otp.SetEmail(email)
				a.navigate(views.PageOTP)
			}
		})
	}
	a.forgot.OnSignIn = func() { a.pages.Reset(views.PageSignIn) }

	a.otp.OnSubmit = func(pin string) {
		a.run(func(ctx context.Context) error {
			return a.ctrl.VerifyOTP(ctx, pin)
		}, func(err error) {
			if err == nil {
				a.flash.Success(msgOTPVerified)
				a.navigate(views.PageReset)
			}
		})
	}
	a.otp.OnResend = func() {
		email := a.ctrl.Auth().State().ResetEmail
		if email == "" {
			a.navigate(views.PageForgot)
			return
		}
		a.run(func(ctx context.Context) error {
			return a.ctrl.ForgotPassword(ctx, email)
		}, func(err error) {
			if err == nil {
				a.flash.Success(msgOTPSent)
			}
		})
	}

	a.reset.OnSubmit = func(password, confirm string) {
		a.run(func(ctx context.Context) error {
			return a.ctrl.ResetPassword(ctx, password, confirm)
		}, func(err error) {
			if err == nil {
				a.flash.Success(msgPasswordReset)
				a.forgot.Clear()
				a.otp.Clear()
				a.reset.Clear()
				a.pages.Reset(views.PageSignIn)
			}
		})
	}

	a.chat.OnSend = func(prompt string, paths []string) {
		var res app.SendResult
		a.run(func(ctx context.Context) error {
			var err error
			res, err = a.ctrl.SendPaths(ctx, prompt, paths)
			return err
		}, func(err error) {
			if len(res.Notices) > 0 {
				a.flash.Success(strings.Join(res.Notices, " "))
			}
			if err != nil && !lifecycle.IsLocal(err) && res.Message.ID == "" {
				// The files could not be read; nothing reached the slice.
				a.flash.Err(err.Error())
			}
		})
	}
	a.chat.OnCommand = a.execute

	a.prompt.SetOnSubmit(func(text string) {
		a.closePrompt()
		a.execute(text)
	})
	a.prompt.SetOnCancel(a.closePrompt)
}

func (a *App) setupLayout() {
	a.root = tview.NewFlex().
		SetDirection(tview.FlexRow).
		AddItem(a.header, 1, 0, false).
		AddItem(a.pages, 0, 1, true).
		AddItem(a.prompt, 0, 0, false).
		AddItem(a.flashBar, 1, 0, false).
		AddItem(a.menu, 1, 0, false).
		AddItem(a.status, 1, 0, false)

	a.tv.SetRoot(a.root, true)
	a.tv.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if a.promptOpen {
			return event
		}
		_, typing := a.tv.GetFocus().(*tview.InputField)
		if a.registry.HandleEvent(a.pages.Current(), event, typing) {
			return nil
		}
		return event
	})
}

// run executes op off the UI goroutine and delivers its error to done on
// the UI goroutine. Local errors that never reached a slice become toasts.
func (a *App) run(op func(ctx context.Context) error, done func(err error)) {
	go func() {
		err := op(a.ctx)
		a.tv.QueueUpdateDraw(func() {
			if err != nil && lifecycle.IsLocal(err) && isToastOnly(err) {
				a.flash.Err(err.Error())
			}
			done(err)
		})
	}()
}

// isToastOnly reports errors the controller returns without touching a
// slice.
func isToastOnly(err error) bool {
	switch err.Error() {
	case app.ErrSignInToSend, app.ErrSignInToUpload, app.ErrSignInToClear:
		return true
	}
	return false
}

// execute runs a command line typed at the prompt or in the composer.
func (a *App) execute(line string) {
	cmd := ParseCommand(line)
	switch cmd.Name {
	case "":
	case CmdQuit:
		a.Stop()
	case CmdHelp:
		a.navigate(views.PageHelp)
	case CmdSignIn:
		a.pages.Reset(views.PageSignIn)
	case CmdSignUp:
		a.navigate(views.PageSignUp)
	case CmdForgot:
		a.navigate(views.PageForgot)
	case CmdLogout:
		a.logout()
	case CmdClear:
		a.run(a.ctrl.ClearHistory, func(err error) {
			if err == nil {
				a.flash.Success(msgHistoryCleared)
			}
		})
	case CmdAttach, CmdUpload:
		if a.ctrl.Auth().State().User == nil {
			a.flash.Err(app.ErrSignInToUpload)
			return
		}
		if len(cmd.Args) == 0 {
			a.flash.Err(msgSelectFile)
			return
		}
		a.chat.Attach(cmd.Args...)
		if cmd.Name == CmdUpload {
			paths := a.chat.Attached()
			a.chat.Reset()
			a.chat.OnSend("", paths)
		}
	default:
		a.flash.Err("Unknown command: " + cmd.Name)
	}
}

func (a *App) logout() {
	a.ctrl.SignOut()
	a.chat.Reset()
	a.pages.Reset(views.PageSignIn)
	a.flash.Success(msgLoggedOut)
}

func (a *App) navigate(name string) {
	if a.pages.Current() == name {
		return
	}
	a.pages.Push(name)
}

func (a *App) back() {
	a.pages.Pop()
}

func (a *App) openPrompt() {
	a.promptOpen = true
	a.lastFocus = a.tv.GetFocus()
	a.root.ResizeItem(a.prompt, 3, 0)
	a.tv.SetFocus(a.prompt)
}

func (a *App) closePrompt() {
	a.promptOpen = false
	a.root.ResizeItem(a.prompt, 0, 0)
	if a.lastFocus != nil {
		a.tv.SetFocus(a.lastFocus)
	}
}

func (a *App) onPageChange(name string) {
	c := a.components[name]
	if c == nil {
		return
	}
	hints := c.Hints()
	for _, h := range a.registry.Hints(name) {
		hints = append(hints, ui.MenuHint{Key: h.Key, Description: h.Description})
	}
	a.menu.Update(hints)
	a.status.SetPage(name)
	a.renderAuth(a.ctrl.Auth().State())
	if name == views.PageChat {
		a.chat.Update(a.ctrl.Chat().State(), a.ctrl.DisplayName())
	}
	a.tv.SetFocus(c.Entry())
}

func (a *App) renderAuth(st auth.State) {
	a.status.SetAuth(st.Status)
	name := app.DisplayName(st.User)
	a.header.Update(ui.HeaderData{
		Profile:  a.opts.Profile,
		APIURL:   a.opts.APIURL,
		Name:     name,
		Initials: app.Initials(name),
		SignedIn: st.IsAuthenticated,
	})

	if f := a.currentForm(); f != nil {
		f.SetBusy(st.Status == lifecycle.Loading)
		f.SetError(st.Error)
	}
	if !st.IsAuthenticated && a.pages.Current() == views.PageChat {
		a.pages.Reset(views.PageSignIn)
	}
}

func (a *App) renderChat(st chat.State) {
	a.status.SetChat(st.Status)
	if a.pages.Current() == views.PageChat {
		a.chat.Update(st, a.ctrl.DisplayName())
	}
}

// resync redraws both slices from their current state.
func (a *App) resync() {
	a.renderAuth(a.ctrl.Auth().State())
	a.renderChat(a.ctrl.Chat().State())
}

func (a *App) currentForm() *views.Form {
	switch a.pages.Current() {
	case views.PageSignIn:
		return a.signIn.Form
	case views.PageSignUp:
		return a.signUp.Form
	case views.PageForgot:
		return a.forgot.Form
	case views.PageOTP:
		return a.otp.Form
	case views.PageReset:
		return a.reset.Form
	}
	return nil
}

// watch forwards slice changes and toasts to the UI goroutine.
func (a *App) watch() {
	events, cancel := a.bus.Subscribe(64, auth.EventChanged, chat.EventChanged)
	defer cancel()
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-a.ctx.Done():
			return
		case evt, ok := <-events:
			if !ok {
				return
			}
			// Render the latest snapshot, not the payload, which may be
			// older than one already drawn.
			a.tv.QueueUpdateDraw(func() {
				switch evt.Kind {
				case auth.EventChanged:
					a.renderAuth(a.ctrl.Auth().State())
				case chat.EventChanged:
					a.renderChat(a.ctrl.Chat().State())
				}
			})
		case <-a.flash.Watch():
			a.tv.QueueUpdateDraw(func() { a.flashBar.Update(a.flash.Current()) })
		case <-ticker.C:
			// The bus drops events for a full buffer; resync on every tick.
			a.tv.QueueUpdateDraw(func() {
				a.flashBar.Update(a.flash.Current())
				a.status.SetPage(a.pages.Current())
				a.resync()
			})
		}
	}
}

// Run shows the chat page when a session exists, the sign in page
// otherwise, and blocks until the user quits.
func (a *App) Run() error {
	a.pages.Reset(views.PageChat)
	go a.watch()
	a.logger.Info("terminal UI started", zap.String("page", a.pages.Current()))
	err := a.tv.Run()
	a.cancel()
	return err
}

// Stop shuts the UI down. Operations in flight are cancelled.
func (a *App) Stop() {
	a.cancel()
	a.tv.Stop()
}
