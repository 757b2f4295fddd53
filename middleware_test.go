package xfanout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/trickstertwo/xlog"
)

func TestRecoveryMiddleware(t *testing.T) {
	h := Chain(HandlerFunc(func(context.Context, string, ...any) error {
		panic("kaboom")
	}), RecoveryMiddleware())

	err := h.Call(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "kaboom")
}

func TestIsolationMiddleware_KeepsDispatchGoing(t *testing.T) {
	f := newTestFanout(t, nil)
	log := &callLog{}

	failing := Chain(HandlerFunc(func(context.Context, string, ...any) error { return errBoom }), IsolationMiddleware(nil))
	_, err := f.Subscribe("x", failing)
	require.NoError(t, err)
	_, err = f.Subscribe("x", log.handler("after"))
	require.NoError(t, err)

	require.NoError(t, f.Publish(context.Background(), "x"))
	assert.Equal(t, []string{"after"}, log.list())
	assert.Zero(t, f.GetMetrics().ListenerErrors)
}

func TestChain_Order(t *testing.T) {
	log := &callLog{}
	mw := func(label string) Middleware {
		return func(next Handler) Handler {
			return HandlerFunc(func(ctx context.Context, name string, args ...any) error {
				log.add(label)
				return next.Call(ctx, name, args...)
			})
		}
	}

	h := Chain(log.handler("handler"), mw("first"), nil, mw("second"))
	require.NoError(t, h.Call(context.Background(), "x"))
	assert.Equal(t, []string{"first", "second", "handler"}, log.list())

	base := log.handler("bare")
	assert.NotNil(t, Chain(base))
}

func TestLoggingMiddleware_PassesThrough(t *testing.T) {
	h := Chain(HandlerFunc(func(context.Context, string, ...any) error { return errBoom }), LoggingMiddleware(xlog.Default()))

	t0 := time.Unix(0, 0)
	assert.ErrorIs(t, h.Call(context.Background(), "op", t0, t0.Add(time.Second), "id", nil), errBoom)
	assert.ErrorIs(t, h.Call(context.Background(), "op", "published"), errBoom)
}
