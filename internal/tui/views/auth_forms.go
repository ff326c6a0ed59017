package views

import (
	"unicode"

	"github.com/fastyr/fastyr/internal/tui/ui"
	"github.com/rivo/tview"
)

// Page names.
const (
	PageSignIn = "signin"
	PageSignUp = "signup"
	PageForgot = "forgot"
	PageOTP    = "otp"
	PageReset  = "reset"
	PageChat   = "chat"
	PageHelp   = "help"
)

// OTPLength is the number of digits in a reset passcode.
const OTPLength = 4

const (
	labelEmail    = "Email"
	labelPassword = "Password"
	labelConfirm  = "Confirm password"
	labelName     = "Full name"
	labelCode     = "Code"
	labelNew      = "New password"
)

// SignInForm collects credentials.
type SignInForm struct {
	*Form
	OnSubmit func(email, password string)
	OnSignUp func()
	OnForgot func()
}

// NewSignInForm creates the sign in page.
func NewSignInForm(theme *ui.Theme) *SignInForm {
	f := &SignInForm{Form: newForm(theme, PageSignIn, "Sign in")}
	f.links = []ui.MenuHint{{Key: ":signup", Description: "Create account"}, {Key: ":forgot", Description: "Forgot password"}}
	f.form.
		AddInputField(labelEmail, "", 40, nil, nil).
		AddPasswordField(labelPassword, "", 40, '*', nil).
		AddButton("Sign in", f.submit(func() {
			if f.OnSubmit != nil {
				f.OnSubmit(f.text(labelEmail), f.text(labelPassword))
			}
		})).
		AddButton("Sign up", func() { call(f.OnSignUp) }).
		AddButton("Forgot password?", func() { call(f.OnForgot) })
	return f
}

// SignUpForm collects a new account.
type SignUpForm struct {
	*Form
	OnSubmit func(userName, email, password, confirm string)
	OnSignIn func()
}

// NewSignUpForm creates the sign up page.
func NewSignUpForm(theme *ui.Theme) *SignUpForm {
	f := &SignUpForm{Form: newForm(theme, PageSignUp, "Create account")}
	f.links = []ui.MenuHint{{Key: ":signin", Description: "Sign in"}}
	f.form.
		AddInputField(labelName, "", 40, nil, nil).
		AddInputField(labelEmail, "", 40, nil, nil).
		AddPasswordField(labelPassword, "", 40, '*', nil).
		AddPasswordField(labelConfirm, "", 40, '*', nil).
		AddButton("Sign up", f.submit(func() {
			if f.OnSubmit != nil {
				f.OnSubmit(f.text(labelName), f.text(labelEmail), f.text(labelPassword), f.text(labelConfirm))
			}
		})).
		AddButton("Back to sign in", func() { call(f.OnSignIn) })
	return f
}

// ForgotForm requests a reset passcode.
type ForgotForm struct {
	*Form
	OnSubmit func(email string)
	OnSignIn func()
}

// NewForgotForm creates the forgot password page.
func NewForgotForm(theme *ui.Theme) *ForgotForm {
	f := &ForgotForm{Form: newForm(theme, PageForgot, "Forgot password")}
	f.links = []ui.MenuHint{{Key: "Esc", Description: "Back"}}
	f.form.
		AddInputField(labelEmail, "", 40, nil, nil).
		AddButton("Send code", f.submit(func() {
			if f.OnSubmit != nil {
				f.OnSubmit(f.text(labelEmail))
			}
		})).
		AddButton("Back to sign in", func() { call(f.OnSignIn) })
	return f
}

// OTPForm collects the emailed passcode.
type OTPForm struct {
	*Form
	OnSubmit func(pin string)
	OnResend func()
}

// NewOTPForm creates the passcode page.
func NewOTPForm(theme *ui.Theme) *OTPForm {
	f := &OTPForm{Form: newForm(theme, PageOTP, "Enter code")}
	f.links = []ui.MenuHint{{Key: "Esc", Description: "Back"}}
	f.form.
		AddInputField(labelCode, "", OTPLength+2, AcceptDigits(OTPLength), nil).
		AddButton("Verify", f.submit(func() {
			if f.OnSubmit != nil {
				f.OnSubmit(f.text(labelCode))
			}
		})).
		AddButton("Resend code", f.submit(func() { call(f.OnResend) }))
	return f
}

// SetEmail shows which address the code was sent to.
func (f *OTPForm) SetEmail(email string) {
	f.form.SetTitle(" Enter the code sent to " + tview.Escape(email) + " ")
}

// ResetForm collects the new password.
type ResetForm struct {
	*Form
	OnSubmit func(password, confirm string)
}

// NewResetForm creates the reset password page.
func NewResetForm(theme *ui.Theme) *ResetForm {
	f := &ResetForm{Form: newForm(theme, PageReset, "Reset password")}
	f.links = []ui.MenuHint{{Key: "Esc", Description: "Back"}}
	f.form.
		AddPasswordField(labelNew, "", 40, '*', nil).
		AddPasswordField(labelConfirm, "", 40, '*', nil).
		AddButton("Reset password", f.submit(func() {
			if f.OnSubmit != nil {
				f.OnSubmit(f.text(labelNew), f.text(labelConfirm))
			}
		}))
	return f
}

// AcceptDigits returns an input filter admitting at most n digits.
func AcceptDigits(n int) func(text string, last rune) bool {
	return func(text string, last rune) bool {
		if len([]rune(text)) > n {
			return false
		}
		return unicode.IsDigit(last)
	}
}

func call(fn func()) {
	if fn != nil {
		fn()
	}
}
