package xfanout

import (
	"context"
	"time"
)

// Clock is the time source used for span timing. xclock.Clock and
// clockz.Clock both satisfy it.
type Clock interface {
	Now() time.Time
}

// SpanListener receives paired span notifications. Listeners implementing it
// are wrapped as evented subscribers and get Start/Finish calls verbatim.
type SpanListener interface {
	Start(ctx context.Context, name, id string, payload any) error
	Finish(ctx context.Context, name, id string, payload any) error
}

// PublishListener is the optional fire-and-forget capability of a SpanListener.
type PublishListener interface {
	Publish(ctx context.Context, name string, args ...any) error
}

// Handler is a single-call listener. Handlers are wrapped as timed subscribers:
// on Finish they receive (name, started, finished, id, payload), on Publish
// they receive (name, args...).
type Handler interface {
	Call(ctx context.Context, name string, args ...any) error
}

// HandlerFunc is an Adapter that lets a plain function satisfy Handler.
type HandlerFunc func(ctx context.Context, name string, args ...any) error

func (f HandlerFunc) Call(ctx context.Context, name string, args ...any) error {
	return f(ctx, name, args...)
}

// Middleware composes concerns around a Handler before it is subscribed.
type Middleware func(next Handler) Handler

// Subscriber is the handle returned by Subscribe. It adapts one registered
// listener to the uniform start/finish/publish capability set.
type Subscriber interface {
	Start(ctx context.Context, name, id string, payload any) error
	Finish(ctx context.Context, name, id string, payload any) error
	Publish(ctx context.Context, name string, args ...any) error
	// SubscribedTo reports whether the subscriber's pattern accepts name.
	SubscribedTo(name string) bool
	// Matches is SubscribedTo for patterned subscribers and always true for
	// catch-all ones.
	Matches(name string) bool
	// Pattern returns the pattern given to Subscribe (nil, string or *regexp.Regexp).
	Pattern() any
}

// Observer receives fanout lifecycle notices. Implementations should be non-blocking.
type Observer interface {
	OnNotice(n Notice)
}

// HealthChecker provides health status for production monitoring.
type HealthChecker interface {
	Health(ctx context.Context) HealthStatus
}

// API represents the complete xfanout surface.
type API interface {
	Subscribe(pattern any, listener any) (Subscriber, error)
	Unsubscribe(s Subscriber)
	UnsubscribeName(name string)
	Start(ctx context.Context, name, id string, payload any) (context.Context, error)
	Finish(ctx context.Context, name, id string, payload any) error
	Publish(ctx context.Context, name string, args ...any) error
	Listening(name string) bool
	Wait()
	Close(ctx context.Context) error
	GetMetrics() Metrics
	Health(ctx context.Context) HealthStatus
	AddObserver(obs Observer)
	RemoveObserver(obs Observer)
}

var _ API = (*Fanout)(nil)
var _ HealthChecker = (*Fanout)(nil)
