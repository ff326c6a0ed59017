package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/fastyr/fastyr/internal/api"
	"github.com/fastyr/fastyr/internal/auth"
	"github.com/fastyr/fastyr/internal/chat"
	"github.com/fastyr/fastyr/internal/lifecycle"
	"go.uber.org/zap"
)

// Messages shown when a chat action is attempted without a session.
const (
	ErrSignInToSend   = "Please sign in to send messages."
	ErrSignInToUpload = "Please sign in to upload files."
	ErrSignInToClear  = "Please sign in to clear chat history."
)

// Controller runs the multi-step flows that span both slices. It is the
// only place where the auth user is handed to chat operations.
type Controller struct {
	auth   *auth.Store
	chat   *chat.Store
	logger *zap.Logger
}

// NewController creates a controller over the two slices.
func NewController(a *auth.Store, c *chat.Store, logger *zap.Logger) *Controller {
	return &Controller{auth: a, chat: c, logger: logger}
}

// Auth returns the auth slice.
func (c *Controller) Auth() *auth.Store { return c.auth }

// Chat returns the chat slice.
func (c *Controller) Chat() *chat.Store { return c.chat }

// SendResult describes one submission.
type SendResult struct {
	// Message is the user message appended before any network call.
	Message chat.Message `json:"message"`
	// Reply is the bot response, nil when no prompt was sent or it failed.
	Reply *chat.Message `json:"reply,omitempty"`
	// Notices are the confirmations for each uploaded file, in order.
	Notices []string `json:"notices,omitempty"`
}

// Send submits a prompt and attachments. The user message is appended
// first and stays even if a later step fails. The prompt is sent before the
// files, and files are uploaded one at a time in order. The first failure
// stops the remaining steps; its message is already in the chat error.
func (c *Controller) Send(ctx context.Context, prompt string, files []api.File) (SendResult, error) {
	user := c.auth.State().User
	if user == nil {
		return SendResult{}, lifecycle.Local(ErrSignInToSend)
	}
	prompt = strings.TrimSpace(prompt)
	if prompt == "" && len(files) == 0 {
		return SendResult{}, nil
	}

	res := SendResult{Message: chat.NewUserMessage(user.Email, prompt, chat.Meta(files))}
	c.chat.AddMessage(res.Message)

	if prompt != "" {
		reply, err := c.chat.SendChatMessage(ctx, user.Email, prompt)
		if err != nil {
			return res, err
		}
		res.Reply = &reply
	}

	for _, f := range files {
		if _, err := c.chat.UploadChatFile(ctx, user.Email, f); err != nil {
			return res, err
		}
		res.Notices = append(res.Notices, fmt.Sprintf("File %q uploaded successfully!", f.Name))
	}
	return res, nil
}

// SendPaths reads the files at paths and submits them with prompt. A file
// that cannot be read aborts the submission before anything is appended.
func (c *Controller) SendPaths(ctx context.Context, prompt string, paths []string) (SendResult, error) {
	if c.auth.State().User == nil {
		if len(paths) > 0 && strings.TrimSpace(prompt) == "" {
			return SendResult{}, lifecycle.Local(ErrSignInToUpload)
		}
		return SendResult{}, lifecycle.Local(ErrSignInToSend)
	}
	files := make([]api.File, 0, len(paths))
	for _, p := range paths {
		f, err := chat.OpenFile(p)
		if err != nil {
			return SendResult{}, err
		}
		files = append(files, f)
	}
	return c.Send(ctx, prompt, files)
}

// ClearHistory clears the signed-in user's history.
func (c *Controller) ClearHistory(ctx context.Context) error {
	user := c.auth.State().User
	if user == nil {
		return lifecycle.Local(ErrSignInToClear)
	}
	return c.chat.ClearUserChatHistory(ctx, user.Email)
}

// Login signs in. Chat state left over from a previous session is dropped.
func (c *Controller) Login(ctx context.Context, email, password string) (auth.Session, error) {
	session, err := c.auth.Login(ctx, email, password)
	if err != nil {
		return session, err
	}
	c.chat.Reset()
	c.logger.Info("signed in", zap.String("email", session.User.Email))
	return session, nil
}

// Signup registers a new account. confirm must match password.
func (c *Controller) Signup(ctx context.Context, userName, email, password, confirm string) error {
	return c.auth.SignupWithConfirm(ctx, userName, email, password, confirm)
}

// ForgotPassword requests a reset passcode and stages email for the next
// steps of the reset flow.
func (c *Controller) ForgotPassword(ctx context.Context, email string) error {
	if err := c.auth.SendForgotPassword(ctx, email); err != nil {
		return err
	}
	c.auth.SetResetEmail(email)
	return nil
}

// VerifyOTP checks pin against the staged reset email.
func (c *Controller) VerifyOTP(ctx context.Context, pin string) error {
	return c.auth.VerifyOTP(ctx, c.auth.State().ResetEmail, strings.TrimSpace(pin))
}

// ResetPassword sets a new password for the staged reset email.
func (c *Controller) ResetPassword(ctx context.Context, newPassword, confirm string) error {
	return c.auth.ResetUserPassword(ctx, c.auth.State().ResetEmail, newPassword, confirm)
}

// SignOut cancels chat operations in flight, empties the conversation and
// ends the session.
func (c *Controller) SignOut() {
	c.chat.Reset()
	c.auth.SignOut()
	c.logger.Info("signed out")
}

// DisplayName returns the first name of the signed-in user, the local part
// of their email, or "Guest".
func (c *Controller) DisplayName() string {
	return DisplayName(c.auth.State().User)
}

// DisplayName returns the header name for u.
func DisplayName(u *auth.User) string {
	if u == nil {
		return "Guest"
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	local, _, _ := strings.Cut(u.Email, "@")
	return local
}

// Initials returns up to two upper-case initials for name.
func Initials(name string) string {
	parts := strings.Fields(name)
	switch {
	case len(parts) > 1:
		return strings.ToUpper(firstRune(parts[0]) + firstRune(parts[1]))
	case len(parts) == 1:
		r := []rune(parts[0])
		if len(r) > 2 {
			r = r[:2]
		}
		return strings.ToUpper(string(r))
	}
	return ""
}

func firstRune(s string) string {
	for _, r := range s {
		return string(r)
	}
	return ""
}
