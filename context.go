package xfanout

import (
	"context"

	"github.com/trickstertwo/xlog"
)

// ctxKey is the base for all context keys in xfanout (prevents collisions).
type ctxKey string

const (
	timelineCtxKey ctxKey = "xfanout:timeline"
	loggerCtxKey   ctxKey = "xfanout:logger"
	clockCtxKey    ctxKey = "xfanout:clock"
)

// WithTimeline returns a context carrying a fresh, empty Timeline. Use it when
// handing instrumented work to a new goroutine.
func WithTimeline(ctx context.Context) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, timelineCtxKey, &Timeline{})
}

// TimelineFromContext retrieves the Timeline attached to ctx.
func TimelineFromContext(ctx context.Context) (*Timeline, bool) {
	if ctx == nil {
		return nil, false
	}
	if v := ctx.Value(timelineCtxKey); v != nil {
		if tl, ok := v.(*Timeline); ok && tl != nil {
			return tl, true
		}
	}
	return nil, false
}

// ensureTimeline attaches a Timeline lazily, on the first Start of a context.
func ensureTimeline(ctx context.Context) context.Context {
	if _, ok := TimelineFromContext(ctx); ok {
		return ctx
	}
	return WithTimeline(ctx)
}

func injectLogger(ctx context.Context, l *xlog.Logger) context.Context {
	if l == nil {
		return ctx
	}
	if cur, ok := LoggerFromContext(ctx); ok && cur == l {
		return ctx
	}
	return context.WithValue(ctx, loggerCtxKey, l)
}

// LoggerFromContext returns the fanout logger handed to listeners.
func LoggerFromContext(ctx context.Context) (*xlog.Logger, bool) {
	if v := ctx.Value(loggerCtxKey); v != nil {
		if l, ok := v.(*xlog.Logger); ok && l != nil {
			return l, true
		}
	}
	return nil, false
}

func injectClock(ctx context.Context, c Clock) context.Context {
	if c == nil {
		return ctx
	}
	return context.WithValue(ctx, clockCtxKey, c)
}

// ClockFromContext returns the fanout clock handed to listeners.
func ClockFromContext(ctx context.Context) (Clock, bool) {
	if v := ctx.Value(clockCtxKey); v != nil {
		if c, ok := v.(Clock); ok && c != nil {
			return c, true
		}
	}
	return nil, false
}

// InjectAll is a convenience helper to attach a Timeline, logger and clock.
func InjectAll(ctx context.Context, logger *xlog.Logger, clock Clock) context.Context {
	ctx = ensureTimeline(ctx)
	ctx = injectLogger(ctx, logger)
	ctx = injectClock(ctx, clock)
	return ctx
}
