package xfanout

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
)

// ErrorKey is the payload key Instrument stores a failed block's error under.
const ErrorKey = "error"

// Instrumenter wraps blocks of work in start/finish spans on a Fanout, using
// its own id as the correlation id.
type Instrumenter struct {
	fanout *Fanout
	id     string
}

// NewInstrumenter creates an instrumenter with a random id.
func NewInstrumenter(f *Fanout) *Instrumenter {
	return &Instrumenter{fanout: f, id: newID(f)}
}

// ID returns the correlation id passed with every span.
func (i *Instrumenter) ID() string { return i.id }

// Instrument runs fn inside a span named name. fn may add to payload; its
// error is recorded under ErrorKey before Finish and returned. Finish runs
// even when fn fails. A Start failure is returned without running fn.
func (i *Instrumenter) Instrument(ctx context.Context, name string, payload map[string]any, fn func(ctx context.Context, payload map[string]any) error) error {
	if payload == nil {
		payload = make(map[string]any)
	}

	ctx, err := i.fanout.Start(ctx, name, i.id, payload)
	if err != nil {
		return err
	}

	var runErr error
	if fn != nil {
		runErr = fn(ctx, payload)
		if runErr != nil {
			payload[ErrorKey] = runErr.Error()
		}
	}

	finishErr := i.fanout.Finish(ctx, name, i.id, payload)
	return errors.Join(runErr, finishErr)
}

// newID returns 10 random bytes hex encoded, falling back to the clock when
// crypto/rand fails.
func newID(f *Fanout) string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		return hex.EncodeToString([]byte(f.clock.Now().Format("150405.000000000")))
	}
	return hex.EncodeToString(b)
}
