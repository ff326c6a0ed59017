// Package auth holds the authentication slice: sign up, sign in, the
// password-reset workflow and the bearer token.
package auth

import "github.com/fastyr/fastyr/internal/lifecycle"

// User is the signed-in account.
type User struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// Session is the payload of a successful login.
type Session struct {
	Token string
	User  User
}

// State is the auth slice. Empty strings stand for absent values.
// IsAuthenticated and User always change together.
type State struct {
	IsAuthenticated bool
	User            *User
	OTPSent         bool
	IsVerified      bool
	Token           string
	ResetEmail      string
	lifecycle.Tracker
}

// InitialState returns the state of a fresh process.
func InitialState() State {
	return State{Tracker: lifecycle.NewTracker()}
}
