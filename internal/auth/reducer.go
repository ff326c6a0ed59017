package auth

import "fmt"

// Reduce returns the state that results from applying a to s.
func Reduce(s State, a Action) State {
	switch a := a.(type) {
	case Pending:
		s.Tracker = s.Tracker.Begin()
	case Rejected:
		s.Tracker = s.Tracker.Fail(a.Err, a.Local)
	case SignupFulfilled:
		s.Tracker = s.Tracker.Succeed()
	case LoginFulfilled:
		user := a.Session.User
		s.IsAuthenticated = true
		s.User = &user
		s.Token = a.Session.Token
		s.Tracker = s.Tracker.Succeed()
	case ForgotPasswordFulfilled:
		s.OTPSent = true
		s.ResetEmail = a.Email
		s.Tracker = s.Tracker.Succeed()
	case OTPVerified:
		s.IsVerified = true
		s.Tracker = s.Tracker.Succeed()
	case PasswordReset:
		s.OTPSent = false
		s.IsVerified = false
		s.ResetEmail = ""
		s.Tracker = s.Tracker.Succeed()
	case SignedOut:
		s.IsAuthenticated = false
		s.User = nil
		s.OTPSent = false
		s.IsVerified = false
		s.Token = ""
		s.ResetEmail = ""
	case TokenHydrated:
		if a.Token != "" {
			s.Token = a.Token
		}
	case ResetEmailStaged:
		s.ResetEmail = a.Email
		s.OTPSent = true
	case SessionRestored:
		user := a.Session.User
		s.IsAuthenticated = true
		s.User = &user
		s.Token = a.Session.Token
	default:
		panic(fmt.Sprintf("auth: unhandled action %T", a))
	}
	return s
}
