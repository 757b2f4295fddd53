package xfanout

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zoobzio/clockz"
)

func TestInstrumenter_Instrument(t *testing.T) {
	clock := clockz.NewFakeClock()
	f := newTestFanout(t, func(b *FanoutBuilder) { b.WithClock(clock) })

	var got []*Event
	_, err := f.Subscribe(nil, HandlerFunc(func(_ context.Context, name string, args ...any) error {
		if e, ok := NewEvent(name, args...); ok {
			got = append(got, e)
		}
		return nil
	}))
	require.NoError(t, err)

	inst := NewInstrumenter(f)
	err = inst.Instrument(context.Background(), "render", map[string]any{"view": "index"}, func(ctx context.Context, payload map[string]any) error {
		clock.Advance(10 * time.Millisecond)
		payload["rows"] = 3
		return inst.Instrument(ctx, "sql", nil, func(context.Context, map[string]any) error {
			clock.Advance(20 * time.Millisecond)
			return nil
		})
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, "sql", got[0].Name)
	assert.Equal(t, 20*time.Millisecond, got[0].Duration())
	assert.Equal(t, "render", got[1].Name)
	assert.Equal(t, 30*time.Millisecond, got[1].Duration())
	assert.Equal(t, inst.ID(), got[1].TransactionID)
	assert.Equal(t, map[string]any{"view": "index", "rows": 3}, got[1].Payload)
}

func TestInstrumenter_RecordsErrorAndFinishes(t *testing.T) {
	f := newTestFanout(t, nil)

	var payloads []any
	_, err := f.Subscribe("job", HandlerFunc(func(_ context.Context, name string, args ...any) error {
		if e, ok := NewEvent(name, args...); ok {
			payloads = append(payloads, e.Payload)
		}
		return nil
	}))
	require.NoError(t, err)

	err = NewInstrumenter(f).Instrument(context.Background(), "job", nil, func(context.Context, map[string]any) error {
		return errBoom
	})
	assert.ErrorIs(t, err, errBoom)
	require.Len(t, payloads, 1)
	assert.Equal(t, map[string]any{ErrorKey: "boom"}, payloads[0])
}

func TestInstrumenter_StartFailureSkipsBlock(t *testing.T) {
	f := newTestFanout(t, nil)
	_, err := f.Subscribe("job", &failingStart{})
	require.NoError(t, err)

	ran := false
	err = NewInstrumenter(f).Instrument(context.Background(), "job", nil, func(context.Context, map[string]any) error {
		ran = true
		return nil
	})
	assert.ErrorIs(t, err, errBoom)
	assert.False(t, ran)
}

type failingStart struct{}

func (failingStart) Start(context.Context, string, string, any) error  { return errBoom }
func (failingStart) Finish(context.Context, string, string, any) error { return nil }

func TestInstrumenter_IDs(t *testing.T) {
	f := newTestFanout(t, nil)
	a, b := NewInstrumenter(f), NewInstrumenter(f)

	assert.Len(t, a.ID(), 20)
	assert.NotEqual(t, a.ID(), b.ID())
}
