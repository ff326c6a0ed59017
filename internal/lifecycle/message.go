package lifecycle

import "errors"

// Messenger is implemented by errors that carry a message meant for the user.
type Messenger interface {
	error
	UserMessage() string
}

// LocalError is a validation failure detected before any network call.
type LocalError struct {
	Msg string
}

func (e *LocalError) Error() string       { return e.Msg }
func (e *LocalError) UserMessage() string { return e.Msg }

// Local returns a LocalError with the given message.
func Local(msg string) error {
	return &LocalError{Msg: msg}
}

// IsLocal reports whether err is a local validation failure.
func IsLocal(err error) bool {
	var le *LocalError
	return errors.As(err, &le)
}

// Message returns the user-facing message carried by err, or fallback when
// err carries none.
func Message(err error, fallback string) string {
	var m Messenger
	if errors.As(err, &m) {
		if msg := m.UserMessage(); msg != "" {
			return msg
		}
	}
	return fallback
}
