package auth

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/fastyr/fastyr/internal/api"
	"github.com/fastyr/fastyr/internal/bus"
	"github.com/fastyr/fastyr/internal/lifecycle"
	"go.uber.org/zap"
)

// EventChanged is published on the bus after every transition. The payload
// is the new State.
const EventChanged = "auth.changed"

// Local validation messages.
const (
	ErrNoResetEmail     = "No email found for reset"
	ErrPasswordMismatch = "Passwords do not match"
)

// Backend is the subset of the REST API used by the auth slice.
type Backend interface {
	Register(ctx context.Context, req api.RegisterRequest) error
	Login(ctx context.Context, email, password string) (*api.LoginResponse, error)
	ForgotPassword(ctx context.Context, email string) error
	VerifyPin(ctx context.Context, email, pin string) error
	ResetPassword(ctx context.Context, req api.ResetRequest) error
}

// TokenStore persists the bearer token across runs.
type TokenStore interface {
	Load() (string, error)
	Save(token string) error
	Remove() error
}

// Store owns the auth State. All mutation goes through Dispatch.
type Store struct {
	mu     sync.RWMutex
	state  State
	api    Backend
	tokens TokenStore
	bus    *bus.Bus
	logger *zap.Logger
}

// NewStore creates an auth store in its initial state. b may be nil.
func NewStore(backend Backend, tokens TokenStore, b *bus.Bus, logger *zap.Logger) *Store {
	return &Store{
		state:  InitialState(),
		api:    backend,
		tokens: tokens,
		bus:    b,
		logger: logger,
	}
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Dispatch applies a to the state, runs its persistence side effect, and
// publishes the result. Persistence and publishing happen under the lock so
// the stored token and published snapshots follow reduction order.
func (s *Store) Dispatch(a Action) {
	s.mu.Lock()
	prev := s.state
	next := Reduce(prev, a)
	s.state = next
	s.persist(a)
	if s.bus != nil {
		s.bus.Publish(EventChanged, next)
	}
	s.mu.Unlock()

	if prev.Status != next.Status && !lifecycle.CanTransition(prev.Status, next.Status) {
		s.logger.Warn("unexpected status transition",
			zap.String("from", prev.Status.String()),
			zap.String("to", next.Status.String()),
			zap.String("action", actionName(a)),
		)
	}
}

// persist mirrors the token into durable storage. Failures are logged and
// never fail the transition.
func (s *Store) persist(a Action) {
	if s.tokens == nil {
		return
	}
	switch a := a.(type) {
	case LoginFulfilled:
		if err := s.tokens.Save(a.Session.Token); err != nil {
			s.logger.Warn("persist access token", zap.Error(err))
		}
	case SignedOut:
		if err := s.tokens.Remove(); err != nil {
			s.logger.Warn("remove access token", zap.Error(err))
		}
	}
}

// reject records a local validation failure without contacting the backend.
func (s *Store) reject(op, msg string) error {
	s.Dispatch(Rejected{Op: op, Err: msg, Local: true})
	s.logger.Debug("auth rejected locally", zap.String("op", op), zap.String("error", msg))
	return lifecycle.Local(msg)
}

func rejected(op string) func(string) Action {
	return func(msg string) Action { return Rejected{Op: op, Err: msg} }
}

// Signup registers an account. Success changes only the status.
func (s *Store) Signup(ctx context.Context, userName, email, password string) error {
	_, err := lifecycle.Run(ctx, s.logger, s.Dispatch, lifecycle.Op[struct{}, Action]{
		Name: OpSignup,
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.Register(ctx, api.RegisterRequest{UserName: userName, Email: email, Password: password})
		},
		Pending:   Pending{Op: OpSignup},
		Fulfilled: func(struct{}) Action { return SignupFulfilled{} },
		Rejected:  rejected(OpSignup),
		Fallback:  api.FallbackRegister,
	})
	return err
}

// SignupWithConfirm checks the password confirmation locally before
// registering.
func (s *Store) SignupWithConfirm(ctx context.Context, userName, email, password, confirm string) error {
	if password != confirm {
		return s.reject(OpSignup, ErrPasswordMismatch)
	}
	return s.Signup(ctx, userName, email, password)
}

// Login exchanges credentials for a session and persists the token.
func (s *Store) Login(ctx context.Context, email, password string) (Session, error) {
	return lifecycle.Run(ctx, s.logger, s.Dispatch, lifecycle.Op[Session, Action]{
		Name: OpLogin,
		Call: func(ctx context.Context) (Session, error) {
			resp, err := s.api.Login(ctx, email, password)
			if err != nil {
				return Session{}, err
			}
			return Session{
				Token: resp.AccessToken,
				User:  User{Email: resp.UserEmail, FirstName: resp.FirstName, LastName: resp.LastName},
			}, nil
		},
		Pending:   Pending{Op: OpLogin},
		Fulfilled: func(v Session) Action { return LoginFulfilled{Session: v} },
		Rejected:  rejected(OpLogin),
		Fallback:  api.FallbackLogin,
	})
}

// SendForgotPassword requests a reset passcode and stages email for the
// rest of the reset flow.
func (s *Store) SendForgotPassword(ctx context.Context, email string) error {
	_, err := lifecycle.Run(ctx, s.logger, s.Dispatch, lifecycle.Op[string, Action]{
		Name: OpForgotPassword,
		Call: func(ctx context.Context) (string, error) {
			return email, s.api.ForgotPassword(ctx, email)
		},
		Pending:   Pending{Op: OpForgotPassword},
		Fulfilled: func(v string) Action { return ForgotPasswordFulfilled{Email: v} },
		Rejected:  rejected(OpForgotPassword),
		Fallback:  api.FallbackForgot,
	})
	return err
}

// VerifyOTP checks pin for email. It fails locally when no reset email is
// staged.
func (s *Store) VerifyOTP(ctx context.Context, email, pin string) error {
	if s.State().ResetEmail == "" {
		return s.reject(OpVerifyOTP, ErrNoResetEmail)
	}
	_, err := lifecycle.Run(ctx, s.logger, s.Dispatch, lifecycle.Op[struct{}, Action]{
		Name: OpVerifyOTP,
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.VerifyPin(ctx, email, pin)
		},
		Pending:   Pending{Op: OpVerifyOTP},
		Fulfilled: func(struct{}) Action { return OTPVerified{} },
		Rejected:  rejected(OpVerifyOTP),
		Fallback:  api.FallbackVerifyPin,
	})
	return err
}

// ResetUserPassword sets a new password. It fails locally when no reset
// email is staged or the confirmation does not match.
func (s *Store) ResetUserPassword(ctx context.Context, email, newPassword, confirm string) error {
	if s.State().ResetEmail == "" {
		return s.reject(OpResetPassword, ErrNoResetEmail)
	}
	if newPassword != confirm {
		return s.reject(OpResetPassword, ErrPasswordMismatch)
	}
	_, err := lifecycle.Run(ctx, s.logger, s.Dispatch, lifecycle.Op[struct{}, Action]{
		Name: OpResetPassword,
		Call: func(ctx context.Context) (struct{}, error) {
			return struct{}{}, s.api.ResetPassword(ctx, api.ResetRequest{Email: email, NewPassword: newPassword, ConfirmPassword: confirm})
		},
		Pending:   Pending{Op: OpResetPassword},
		Fulfilled: func(struct{}) Action { return PasswordReset{} },
		Rejected:  rejected(OpResetPassword),
		Fallback:  api.FallbackReset,
	})
	return err
}

// SignOut clears the session and removes the persisted token.
func (s *Store) SignOut() {
	s.Dispatch(SignedOut{})
}

// HydrateToken loads a previously persisted token. It does not authenticate.
func (s *Store) HydrateToken() {
	if s.tokens == nil {
		return
	}
	token, err := s.tokens.Load()
	if err != nil {
		s.logger.Warn("load access token", zap.Error(err))
		return
	}
	s.Dispatch(TokenHydrated{Token: token})
}

// ErrNoSession is returned by RestoreSession when the persisted token cannot
// identify a user.
var ErrNoSession = errors.New("no usable session, sign in again")

// RestoreSession authenticates from the hydrated token when it names a
// subject and has not expired at now. Tokens without exp are accepted.
// The user carries only the email the token names.
func (s *Store) RestoreSession(now time.Time) (Session, error) {
	token := s.State().Token
	email := TokenSubject(token)
	if email == "" {
		return Session{}, ErrNoSession
	}
	if exp, ok := TokenExpiry(token); ok && !now.Before(exp) {
		return Session{}, fmt.Errorf("token expired at %s: %w", exp.Format(time.RFC3339), ErrNoSession)
	}
	session := Session{Token: token, User: User{Email: email}}
	s.Dispatch(SessionRestored{Session: session})
	return session, nil
}

// SetResetEmail stages email for the reset flow without a network call.
func (s *Store) SetResetEmail(email string) {
	s.Dispatch(ResetEmailStaged{Email: email})
}

func actionName(a Action) string {
	switch a := a.(type) {
	case Pending:
		return a.Op + "/pending"
	case Rejected:
		return a.Op + "/rejected"
	case SignupFulfilled:
		return OpSignup + "/fulfilled"
	case LoginFulfilled:
		return OpLogin + "/fulfilled"
	case ForgotPasswordFulfilled:
		return OpForgotPassword + "/fulfilled"
	case OTPVerified:
		return OpVerifyOTP + "/fulfilled"
	case PasswordReset:
		return OpResetPassword + "/fulfilled"
	case SignedOut:
		return "auth/signOut"
	case TokenHydrated:
		return "auth/hydrateToken"
	case ResetEmailStaged:
		return "auth/setResetEmail"
	case SessionRestored:
		return "auth/restoreSession"
	}
	return "unknown"
}
