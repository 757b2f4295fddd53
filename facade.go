package xfanout

import (
	"context"
	"fmt"
	"sync"
)

var (
	defaultFanout   *Fanout
	defaultFanoutMu sync.Mutex
)

// Default returns the process-wide singleton Fanout.
func Default() *Fanout {
	defaultFanoutMu.Lock()
	defer defaultFanoutMu.Unlock()

	if defaultFanout != nil {
		return defaultFanout
	}

	f, err := NewFanoutBuilder().Build()
	if err != nil {
		panic(fmt.Sprintf("xfanout: failed to initialize default fanout: %v", err))
	}
	defaultFanout = f
	return defaultFanout
}

// SetDefault replaces the process-wide default Fanout.
func SetDefault(f *Fanout) {
	if f == nil {
		panic("xfanout: SetDefault called with nil Fanout")
	}
	defaultFanoutMu.Lock()
	defaultFanout = f
	defaultFanoutMu.Unlock()
}

// Subscribe is the Facade using the default fanout.
func Subscribe(pattern any, listener any) (Subscriber, error) {
	return Default().Subscribe(pattern, listener)
}

// Unsubscribe is the Facade using the default fanout.
func Unsubscribe(s Subscriber) {
	Default().Unsubscribe(s)
}

// UnsubscribeName is the Facade using the default fanout.
func UnsubscribeName(name string) {
	Default().UnsubscribeName(name)
}

// Start is the Facade using the default fanout.
func Start(ctx context.Context, name, id string, payload any) (context.Context, error) {
	return Default().Start(ctx, name, id, payload)
}

// Finish is the Facade using the default fanout.
func Finish(ctx context.Context, name, id string, payload any) error {
	return Default().Finish(ctx, name, id, payload)
}

// Publish is the Facade using the default fanout.
func Publish(ctx context.Context, name string, args ...any) error {
	return Default().Publish(ctx, name, args...)
}

// Listening is the Facade using the default fanout.
func Listening(name string) bool {
	return Default().Listening(name)
}
