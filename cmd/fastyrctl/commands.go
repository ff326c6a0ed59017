package main

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fastyr/fastyr/internal/app"
	"github.com/fastyr/fastyr/internal/auth"
	"github.com/fastyr/fastyr/internal/lock"
	"github.com/fastyr/fastyr/internal/profile"
	"github.com/fastyr/fastyr/internal/store"
)

func usage(format string) error {
	return errors.New("usage: fastyrctl " + format)
}

func (c *cli) cmdSignup(ctx context.Context, args []string) error {
	if len(args) < 3 || len(args) > 4 {
		return usage("signup <name> <email> <password> [confirm]")
	}
	confirm := args[2]
	if len(args) == 4 {
		confirm = args[3]
	}
	if err := c.ctrl.Signup(ctx, args[0], args[1], args[2], confirm); err != nil {
		return err
	}
	return c.done("Account created. Sign in with: fastyrctl login " + args[1] + " <password>")
}

func (c *cli) cmdLogin(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("login <email> <password>")
	}
	session, err := c.ctrl.Login(ctx, args[0], args[1])
	if err != nil {
		return err
	}
	if c.jsonOut {
		outputJSON(session.User)
		return nil
	}
	fmt.Printf("Signed in as %s.\n", app.DisplayName(&session.User))
	return nil
}

func (c *cli) cmdLogout() error {
	c.ctrl.SignOut()
	return c.done("Logged out successfully!")
}

type statusOutput struct {
	Profile      string     `json:"profile"`
	APIURL       string     `json:"api_url"`
	SignedIn     bool       `json:"signed_in"`
	Email        string     `json:"email,omitempty"`
	TokenExpires *time.Time `json:"token_expires,omitempty"`
	TokenExpired bool       `json:"token_expired"`
	TerminalOpen bool       `json:"terminal_open"`
	TerminalPID  int        `json:"terminal_pid,omitempty"`
	DatabasePath string     `json:"database_path"`
	LogPath      string     `json:"log_path"`
}

func (c *cli) cmdStatus() error {
	st := c.ctrl.Auth().State()
	out := statusOutput{
		Profile:      c.profile,
		APIURL:       c.cfg.APIURL,
		SignedIn:     st.Token != "",
		Email:        auth.TokenSubject(st.Token),
		DatabasePath: profile.DBPath(c.profile),
		LogPath:      profile.LogPath(c.profile),
	}
	if exp, ok := auth.TokenExpiry(st.Token); ok {
		out.TokenExpires = &exp
		out.TokenExpired = !time.Now().Before(exp)
	}
	out.TerminalPID, out.TerminalOpen = lock.Holder(profile.LockPath(c.profile))

	if c.jsonOut {
		outputJSON(out)
		return nil
	}
	fmt.Printf("Profile:  %s\n", out.Profile)
	fmt.Printf("API:      %s\n", out.APIURL)
	switch {
	case !out.SignedIn:
		fmt.Println("Session:  signed out")
	case out.TokenExpired:
		fmt.Printf("Session:  %s (token expired %s)\n", out.Email, out.TokenExpires.Local().Format(time.RFC822))
	case out.TokenExpires != nil:
		fmt.Printf("Session:  %s (until %s)\n", out.Email, out.TokenExpires.Local().Format(time.RFC822))
	default:
		fmt.Printf("Session:  %s\n", out.Email)
	}
	if out.TerminalOpen {
		fmt.Printf("Terminal: open (PID %d)\n", out.TerminalPID)
	} else {
		fmt.Println("Terminal: closed")
	}
	return nil
}

func (c *cli) cmdForgot(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return usage("forgot <email>")
	}
	if err := c.ctrl.ForgotPassword(ctx, args[0]); err != nil {
		return err
	}
	return c.done("OTP sent to your email!")
}

func (c *cli) cmdVerify(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return usage("verify <email> <code>")
	}
	c.ctrl.Auth().SetResetEmail(args[0])
	if err := c.ctrl.VerifyOTP(ctx, args[1]); err != nil {
		return err
	}
	return c.done("OTP verified successfully!")
}

func (c *cli) cmdReset(ctx context.Context, args []string) error {
	if len(args) != 3 {
		return usage("reset <email> <password> <confirm>")
	}
	c.ctrl.Auth().SetResetEmail(args[0])
	if err := c.ctrl.ResetPassword(ctx, args[1], args[2]); err != nil {
		return err
	}
	return c.done("Password reset successfully!")
}

// resume signs in from the stored token. Each invocation is a new process,
// so chat commands need the session back.
func (c *cli) resume() error {
	if _, err := c.ctrl.Auth().RestoreSession(time.Now()); err != nil {
		return fmt.Errorf("%s: %w", app.ErrSignInToSend, err)
	}
	return nil
}

func (c *cli) cmdSend(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return usage("send <prompt> [file...]")
	}
	if err := c.resume(); err != nil {
		return err
	}
	return c.send(ctx, args[0], args[1:])
}

func (c *cli) cmdUpload(ctx context.Context, args []string) error {
	if len(args) < 1 {
		return errors.New("Please select at least one file.")
	}
	if err := c.resume(); err != nil {
		return err
	}
	return c.send(ctx, "", args)
}

func (c *cli) send(ctx context.Context, prompt string, paths []string) error {
	res, err := c.ctrl.SendPaths(ctx, prompt, paths)
	if c.jsonOut {
		outputJSON(struct {
			app.SendResult
			Error string `json:"error,omitempty"`
		}{res, c.ctrl.Chat().State().Error})
		return err
	}
	if res.Reply != nil {
		fmt.Println(res.Reply.Content)
	}
	for _, n := range res.Notices {
		fmt.Println(n)
	}
	return err
}

func (c *cli) cmdClear(ctx context.Context) error {
	if err := c.resume(); err != nil {
		return err
	}
	if err := c.ctrl.ClearHistory(ctx); err != nil {
		return err
	}
	return c.done("Chat history cleared!")
}

func (c *cli) cmdUploads(args []string) error {
	limit := 20
	if len(args) > 0 {
		n, err := strconv.Atoi(args[0])
		if err != nil || n <= 0 {
			return usage("uploads [limit]")
		}
		limit = n
	}
	entries, err := c.db.ListUploads(auth.TokenSubject(c.ctrl.Auth().State().Token), limit)
	if err != nil {
		return err
	}
	if c.jsonOut {
		if entries == nil {
			entries = []store.UploadEntry{}
		}
		outputJSON(entries)
		return nil
	}
	if len(entries) == 0 {
		fmt.Println("No uploads recorded.")
		return nil
	}
	for _, e := range entries {
		detail := e.Notice
		if e.Status == store.UploadFailed {
			detail = e.ErrorMessage
		}
		fmt.Printf("%s  %-8s %-30s %8d  %s\n", e.CreatedAt.Local().Format("2006-01-02 15:04"), e.Status, e.FileName, e.SizeBytes, detail)
	}
	return nil
}

func (c *cli) cmdProfiles() error {
	names, err := profile.List()
	if err != nil {
		return err
	}
	if c.jsonOut {
		outputJSON(names)
		return nil
	}
	for _, n := range names {
		marker := " "
		if n == c.profile {
			marker = "*"
		}
		fmt.Printf("%s %s\n", marker, n)
	}
	return nil
}

func (c *cli) done(msg string) error {
	if c.jsonOut {
		outputJSON(map[string]string{"message": msg})
		return nil
	}
	fmt.Println(msg)
	return nil
}
