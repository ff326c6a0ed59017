package auth

// Operation names, used in logs and carried by Pending and Rejected.
const (
	OpSignup         = "auth/signup"
	OpLogin          = "auth/login"
	OpForgotPassword = "auth/forgotPassword"
	OpVerifyOTP      = "auth/verifyOTP"
	OpResetPassword  = "auth/resetPassword"
)

// Action is a state transition request. The set is closed: only the types
// in this file implement it.
type Action interface {
	authAction()
}

// Pending marks the start of an asynchronous operation.
type Pending struct{ Op string }

// Rejected carries the failure message of an operation. Local is set for
// validation failures detected before any network call.
type Rejected struct {
	Op    string
	Err   string
	Local bool
}

type SignupFulfilled struct{}

type LoginFulfilled struct{ Session Session }

type ForgotPasswordFulfilled struct{ Email string }

type OTPVerified struct{}

type PasswordReset struct{}

type SignedOut struct{}

type TokenHydrated struct{ Token string }

type ResetEmailStaged struct{ Email string }

// SessionRestored authenticates from a persisted token without a network
// call. The status is left as is.
type SessionRestored struct{ Session Session }

func (Pending) authAction()                 {}
func (Rejected) authAction()                {}
func (SignupFulfilled) authAction()         {}
func (LoginFulfilled) authAction()          {}
func (ForgotPasswordFulfilled) authAction() {}
func (OTPVerified) authAction()             {}
func (PasswordReset) authAction()           {}
func (SignedOut) authAction()               {}
func (TokenHydrated) authAction()           {}
func (ResetEmailStaged) authAction()        {}
func (SessionRestored) authAction()         {}
