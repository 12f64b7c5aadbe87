package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/ce-fello/festival-teams-service/src/internal/api/apiErrors"

	"go.uber.org/zap"
)

// Notifier receives the human-readable outcome of every operation.
type Notifier interface {
	Success(ctx context.Context, msg string)
	Error(ctx context.Context, msg string)
}

// Callbacks adapts a pair of functions to Notifier. Nil callbacks are
// skipped.
type Callbacks struct {
	OnSuccess func(msg string)
	OnError   func(msg string)
}

func (c Callbacks) Success(_ context.Context, msg string) {
	if c.OnSuccess != nil {
		c.OnSuccess(msg)
	}
}

func (c Callbacks) Error(_ context.Context, msg string) {
	if c.OnError != nil {
		c.OnError(msg)
	}
}

type logNotifier struct {
	log *zap.Logger
}

func (n logNotifier) Success(_ context.Context, msg string) {
	n.log.Debug("notify: success", zap.String("message", msg))
}

func (n logNotifier) Error(_ context.Context, msg string) {
	n.log.Debug("notify: error", zap.String("message", msg))
}

// ErrorMessage turns anything that was raised or returned into a message for
// the user. It never panics.
func ErrorMessage(v any) string {
	var apiErr apiErrors.APIError
	switch e := v.(type) {
	case nil:
		return "unknown error"
	case string:
		return e
	case error:
		if errors.As(e, &apiErr) {
			return apiErr.Message
		}
		return e.Error()
	case fmt.Stringer:
		return e.String()
	}
	return fmt.Sprintf("%v", v)
}

type notifierKey struct{}

// ContextWithNotifier attaches a notifier for one call. It is told about the
// outcome in addition to the service-wide notifier.
func ContextWithNotifier(ctx context.Context, n Notifier) context.Context {
	return context.WithValue(ctx, notifierKey{}, n)
}

func (s *Service) notifySuccess(ctx context.Context, msg string) {
	s.notify.Success(ctx, msg)
	if n, ok := ctx.Value(notifierKey{}).(Notifier); ok {
		n.Success(ctx, msg)
	}
}

func (s *Service) notifyError(ctx context.Context, msg string) {
	s.notify.Error(ctx, msg)
	if n, ok := ctx.Value(notifierKey{}).(Notifier); ok {
		n.Error(ctx, msg)
	}
}
