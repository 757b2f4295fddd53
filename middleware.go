package xfanout

import (
	"context"
	"fmt"

	"github.com/trickstertwo/xlog"
)

// RecoveryMiddleware converts a panicking Handler into an error. The fanout
// never recovers listener panics itself; wrap handlers that must not take
// down an instrumented call path.
func RecoveryMiddleware() Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, name string, args ...any) (err error) {
			defer func() {
				if r := recover(); r != nil {
					err = fmt.Errorf("xfanout: listener panic recovered on %q: %v", name, r)
				}
			}()
			return next.Call(ctx, name, args...)
		})
	}
}

// IsolationMiddleware swallows listener errors after logging them, so one
// failing handler does not abort dispatch to the ones after it.
func IsolationMiddleware(l *xlog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, name string, args ...any) error {
			if err := next.Call(ctx, name, args...); err != nil {
				lg := l
				if lg == nil {
					lg, _ = LoggerFromContext(ctx)
				}
				if lg != nil {
					lg.Warn().Str("event_name", name).Err(err).Msg("xfanout listener error isolated")
				}
			}
			return nil
		})
	}
}

// LoggingMiddleware logs every call at debug level; timed span completions
// carry their duration.
func LoggingMiddleware(l *xlog.Logger) Middleware {
	return func(next Handler) Handler {
		return HandlerFunc(func(ctx context.Context, name string, args ...any) error {
			err := next.Call(ctx, name, args...)
			if e, ok := NewEvent(name, args...); ok {
				l.Debug().
					Str("event_name", name).
					Str("id", e.TransactionID).
					Str("duration", e.Duration().String()).
					Err(err).
					Msg("xfanout span finished")
				return err
			}
			l.Debug().
				Str("event_name", name).
				Err(err).
				Msg("xfanout event published")
			return err
		})
	}
}

// Chain composes middlewares around a handler in order.
func Chain(h Handler, mws ...Middleware) Handler {
	if len(mws) == 0 {
		return h
	}
	wrapped := h
	// Apply in reverse so that first middleware wraps last.
	for i := len(mws) - 1; i >= 0; i-- {
		if mws[i] == nil {
			continue
		}
		wrapped = mws[i](wrapped)
	}
	return wrapped
}
