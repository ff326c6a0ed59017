package lifecycle

import (
	"context"
	"errors"

	"go.uber.org/zap"
)

// Op describes one asynchronous operation on a slice whose actions have type
// A. Call produces the payload handed to Fulfilled.
type Op[T, A any] struct {
	Name      string
	Call      func(ctx context.Context) (T, error)
	Pending   A
	Fulfilled func(T) A
	Rejected  func(msg string) A
	// Fallback is the message stored when the error carries none.
	Fallback string
}

// Run drives op through its three phases, dispatching each one. The error is
// returned to the caller after the rejected phase has been dispatched; the
// caller is free to ignore it.
func Run[T, A any](ctx context.Context, logger *zap.Logger, dispatch func(A), op Op[T, A]) (T, error) {
	dispatch(op.Pending)

	v, err := op.Call(ctx)
	if err != nil {
		msg := Message(err, op.Fallback)
		if errors.Is(err, context.Canceled) {
			logger.Debug("operation cancelled", zap.String("op", op.Name))
		} else {
			logger.Warn("operation rejected", zap.String("op", op.Name), zap.String("error", msg))
		}
		dispatch(op.Rejected(msg))
		var zero T
		return zero, err
	}

	logger.Debug("operation fulfilled", zap.String("op", op.Name))
	dispatch(op.Fulfilled(v))
	return v, nil
}
