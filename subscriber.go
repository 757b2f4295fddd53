package xfanout

import (
	"context"
)

// compiledPattern is implemented by the built-in subscriber variants so the
// registry can find the bucket a handle lives in.
type compiledPattern interface {
	compiled() pattern
}

// newSubscriber picks the subscriber variant once, from the capabilities the
// listener declares. Catch-all subscriptions get the allMessages decorator as
// the outermost wrapper.
func newSubscriber(p pattern, listener any, clock Clock) (Subscriber, error) {
	if listener == nil {
		return nil, ErrNilListener
	}
	if f, ok := listener.(HandlerFunc); ok && f == nil {
		return nil, ErrNilListener
	}

	var s Subscriber
	switch l := listener.(type) {
	case SpanListener:
		e := &evented{pattern: p, delegate: l}
		e.publisher, _ = l.(PublishListener)
		s = e
	case Handler:
		s = &timed{pattern: p, handler: l, clock: clock}
	default:
		return nil, ErrInvalidListener
	}

	if p.kind == patternAll {
		return &allMessages{delegate: s}, nil
	}
	return s, nil
}

// evented forwards span notifications to a SpanListener.
type evented struct {
	pattern   pattern
	delegate  SpanListener
	publisher PublishListener // nil when the listener cannot publish
}

func (e *evented) Start(ctx context.Context, name, id string, payload any) error {
	return e.delegate.Start(ctx, name, id, payload)
}

func (e *evented) Finish(ctx context.Context, name, id string, payload any) error {
	return e.delegate.Finish(ctx, name, id, payload)
}

func (e *evented) Publish(ctx context.Context, name string, args ...any) error {
	if e.publisher == nil {
		return nil
	}
	return e.publisher.Publish(ctx, name, args...)
}

func (e *evented) SubscribedTo(name string) bool { return e.pattern.matches(name) }

func (e *evented) Matches(name string) bool {
	return e.pattern.kind != patternAll && e.pattern.matches(name)
}

func (e *evented) Pattern() any      { return e.pattern.value() }
func (e *evented) compiled() pattern { return e.pattern }

// timed measures spans on the context Timeline and reports them to a Handler
// as (name, started, finished, id, payload).
type timed struct {
	pattern pattern
	handler Handler
	clock   Clock
}

func (t *timed) Start(ctx context.Context, _, _ string, _ any) error {
	tl, ok := TimelineFromContext(ctx)
	if !ok {
		return ErrNoTimeline
	}
	tl.push(t.clock.Now())
	return nil
}

func (t *timed) Finish(ctx context.Context, name, id string, payload any) error {
	tl, ok := TimelineFromContext(ctx)
	if !ok {
		return ErrNoTimeline
	}
	started, err := tl.pop()
	if err != nil {
		return err
	}
	return t.handler.Call(ctx, name, started, t.clock.Now(), id, payload)
}

func (t *timed) Publish(ctx context.Context, name string, args ...any) error {
	return t.handler.Call(ctx, name, args...)
}

func (t *timed) SubscribedTo(name string) bool { return t.pattern.matches(name) }

func (t *timed) Matches(name string) bool {
	return t.pattern.kind != patternAll && t.pattern.matches(name)
}

func (t *timed) Pattern() any      { return t.pattern.value() }
func (t *timed) compiled() pattern { return t.pattern }

// allMessages decorates a catch-all subscriber.
type allMessages struct {
	delegate Subscriber
}

func (a *allMessages) Start(ctx context.Context, name, id string, payload any) error {
	return a.delegate.Start(ctx, name, id, payload)
}

func (a *allMessages) Finish(ctx context.Context, name, id string, payload any) error {
	return a.delegate.Finish(ctx, name, id, payload)
}

func (a *allMessages) Publish(ctx context.Context, name string, args ...any) error {
	return a.delegate.Publish(ctx, name, args...)
}

func (a *allMessages) SubscribedTo(string) bool { return true }
func (a *allMessages) Matches(string) bool      { return true }
func (a *allMessages) Pattern() any             { return nil }
func (a *allMessages) compiled() pattern        { return pattern{kind: patternAll} }
