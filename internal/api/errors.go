package api

import (
	"encoding/json"
	"fmt"
)

// Fallback messages used when the backend response carries no detail.
const (
	FallbackRegister     = "Registration failed"
	FallbackLogin        = "Login failed"
	FallbackForgot       = "Failed to send reset email"
	FallbackVerifyPin    = "Invalid OTP"
	FallbackReset        = "Failed to reset password"
	FallbackUpload       = "File upload failed"
	FallbackChat         = "Chat creation failed"
	FallbackClearHistory = "Failed to clear chat history"
)

// Error is a failed backend call. Status is zero for transport failures.
type Error struct {
	Op       string
	Status   int
	Detail   string
	Fallback string
	Err      error
}

func (e *Error) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("%s: %d: %s", e.Op, e.Status, e.UserMessage())
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return e.Op + ": " + e.UserMessage()
}

// UserMessage returns the backend detail, or the operation fallback when the
// response carried none.
func (e *Error) UserMessage() string {
	if e.Detail != "" {
		return e.Detail
	}
	return e.Fallback
}

func (e *Error) Unwrap() error { return e.Err }

// errorBody is the backend error envelope. Validation errors carry a list in
// detail rather than a string; those fall back.
type errorBody struct {
	Detail json.RawMessage `json:"detail"`
}

func parseDetail(body []byte) string {
	var eb errorBody
	if err := json.Unmarshal(body, &eb); err != nil || len(eb.Detail) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(eb.Detail, &s); err != nil {
		return ""
	}
	return s
}
