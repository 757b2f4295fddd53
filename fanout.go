package xfanout

import (
	"context"
	"reflect"
	"sync"
	"sync/atomic"
	"time"

	"github.com/trickstertwo/xlog"
)

// Fanout is the central Facade routing named events to every matching
// subscriber. It is safe for concurrent use; dispatch is synchronous and runs
// on the caller's goroutine.
type Fanout struct {
	registry     *registry
	clock        Clock
	logger       *xlog.Logger
	observerPool *ObserverPool
	observersMu  sync.RWMutex
	observers    []Observer
	metrics      *fanoutMetrics
	closed       atomic.Bool
	closeOnce    sync.Once
}

// fanoutMetrics uses lock-free atomics for production-grade telemetry.
type fanoutMetrics struct {
	subscribed     atomic.Uint64
	unsubscribed   atomic.Uint64
	started        atomic.Uint64
	finished       atomic.Uint64
	published      atomic.Uint64
	pruned         atomic.Uint64
	listenerErrors atomic.Uint64
}

// Subscribe registers listener for events matching pattern and returns the
// handle to pass to Unsubscribe.
//
// pattern is nil (every event), a string (exact name) or a *regexp.Regexp.
// listener is a SpanListener (evented) or a Handler (timed); the variant is
// chosen here, once.
func (f *Fanout) Subscribe(pattern any, listener any) (Subscriber, error) {
	if f.closed.Load() {
		return nil, ErrFanoutClosed
	}

	p, err := compilePattern(pattern)
	if err != nil {
		return nil, err
	}
	s, err := newSubscriber(p, listener, f.clock)
	if err != nil {
		return nil, err
	}

	f.registry.add(p, s)
	f.metrics.subscribed.Add(1)
	f.notify(Notice{Type: Subscribed, Pattern: p.String(), Count: 1})
	return s, nil
}

// Unsubscribe removes a handle previously returned by Subscribe. Unknown
// handles are ignored.
func (f *Fanout) Unsubscribe(s Subscriber) {
	if s == nil {
		return
	}
	if !f.registry.remove(s) {
		return
	}
	f.metrics.unsubscribed.Add(1)
	pat := "*"
	if cp, ok := s.(compiledPattern); ok {
		pat = cp.compiled().String()
	}
	f.notify(Notice{Type: Unsubscribed, Pattern: pat, Count: 1})
}

// UnsubscribeName drops every subscriber registered under the exact name.
// Regex and catch-all subscribers are unaffected even if they match name.
func (f *Fanout) UnsubscribeName(name string) {
	n := f.registry.clearName(name)
	if n == 0 {
		return
	}
	f.metrics.unsubscribed.Add(uint64(n))
	f.notify(Notice{Type: NameCleared, EventName: name, Pattern: name, Count: n})
}

// Start opens a span on every subscriber for name, in resolution order. The
// returned context carries the Timeline used for timing and must be passed to
// the matching Finish. The first listener error aborts the dispatch.
func (f *Fanout) Start(ctx context.Context, name, id string, payload any) (context.Context, error) {
	ctx = f.listenerContext(ctx, true)
	f.metrics.started.Add(1)

	for _, s := range f.listenersFor(name) {
		if err := s.Start(ctx, name, id, payload); err != nil {
			return ctx, f.listenerFailed(name, err)
		}
	}
	return ctx, nil
}

// Finish closes a span on every subscriber for name. Listeners are resolved
// again, so the set may differ from the one seen by Start.
func (f *Fanout) Finish(ctx context.Context, name, id string, payload any) error {
	ctx = f.listenerContext(ctx, true)
	f.metrics.finished.Add(1)

	for _, s := range f.listenersFor(name) {
		if err := s.Finish(ctx, name, id, payload); err != nil {
			return f.listenerFailed(name, err)
		}
	}
	return nil
}

// Publish delivers a fire-and-forget event to every subscriber for name.
func (f *Fanout) Publish(ctx context.Context, name string, args ...any) error {
	ctx = f.listenerContext(ctx, false)
	f.metrics.published.Add(1)

	for _, s := range f.listenersFor(name) {
		if err := s.Publish(ctx, name, args...); err != nil {
			return f.listenerFailed(name, err)
		}
	}
	return nil
}

// Listening reports whether any subscriber would receive name. It resolves
// like a dispatch does, regex pruning included.
func (f *Fanout) Listening(name string) bool {
	return len(f.listenersFor(name)) > 0
}

// Wait is a no-op: this fanout delivers synchronously.
func (f *Fanout) Wait() {}

// Subscribed registers listener for the duration of fn.
func (f *Fanout) Subscribed(pattern any, listener any, fn func() error) error {
	s, err := f.Subscribe(pattern, listener)
	if err != nil {
		return err
	}
	defer f.Unsubscribe(s)
	return fn()
}

// listenersFor snapshots the subscribers for name under the registry lock.
// Listeners run on the returned copy, outside the lock.
func (f *Fanout) listenersFor(name string) []Subscriber {
	subs, pruned := f.registry.resolve(name)
	if pruned > 0 {
		f.metrics.pruned.Add(uint64(pruned))
		f.notify(Notice{Type: RegexPruned, EventName: name, Count: pruned})
	}
	return subs
}

func (f *Fanout) listenerContext(ctx context.Context, timed bool) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	if timed {
		ctx = ensureTimeline(ctx)
	}
	ctx = injectLogger(ctx, f.logger)
	return injectClock(ctx, f.clock)
}

func (f *Fanout) listenerFailed(name string, err error) error {
	f.metrics.listenerErrors.Add(1)
	f.notify(Notice{Type: ListenerFailed, EventName: name, Err: err})
	return err
}

// GetMetrics returns current fanout metrics.
func (f *Fanout) GetMetrics() Metrics {
	m := Metrics{
		Subscriptions:  f.registry.count(),
		Subscribed:     f.metrics.subscribed.Load(),
		Unsubscribed:   f.metrics.unsubscribed.Load(),
		Started:        f.metrics.started.Load(),
		Finished:       f.metrics.finished.Load(),
		Published:      f.metrics.published.Load(),
		Pruned:         f.metrics.pruned.Load(),
		ListenerErrors: f.metrics.listenerErrors.Load(),
	}
	if f.observerPool != nil {
		m.NoticesDropped = f.observerPool.Stats().Dropped
	}
	return m
}

// Health checks fanout health for Kubernetes probes.
func (f *Fanout) Health(_ context.Context) HealthStatus {
	if f.closed.Load() {
		return HealthStatus{
			Status:    "unhealthy",
			Timestamp: f.clock.Now(),
			Message:   "fanout is closed",
		}
	}

	metrics := f.GetMetrics()
	status := "healthy"

	// Degraded if listener error rate > 5%
	dispatched := metrics.Started + metrics.Finished + metrics.Published
	if metrics.ListenerErrors > 0 && dispatched > 0 {
		errorRate := float64(metrics.ListenerErrors) / float64(dispatched)
		if errorRate > 0.05 {
			status = "degraded"
		}
	}

	return HealthStatus{
		Status:    status,
		Metrics:   metrics,
		Timestamp: f.clock.Now(),
	}
}

// Close drains the observer pool and stops accepting subscriptions.
// Dispatch keeps working so instrumented code never fails on shutdown.
func (f *Fanout) Close(ctx context.Context) error {
	var closeErr error

	f.closeOnce.Do(func() {
		f.closed.Store(true)

		if f.observerPool != nil {
			timeout := 5 * time.Second
			if dl, ok := deadline(ctx); ok {
				timeout = time.Until(dl)
			}
			if err := f.observerPool.Close(timeout); err != nil {
				f.logger.Warn().Err(err).Msg("xfanout: observer pool shutdown timeout")
				closeErr = err
			}
		}
	})

	return closeErr
}

// AddObserver registers an observer (thread-safe).
func (f *Fanout) AddObserver(obs Observer) {
	if obs == nil {
		return
	}
	f.observersMu.Lock()
	f.observers = append(f.observers, obs)
	f.observersMu.Unlock()
}

// RemoveObserver removes an observer. Observers of non-comparable types
// (ObserverFunc) cannot be identified and stay registered.
func (f *Fanout) RemoveObserver(obs Observer) {
	if obs == nil {
		return
	}
	f.observersMu.Lock()
	defer f.observersMu.Unlock()

	if !reflect.TypeOf(obs).Comparable() {
		return
	}
	for i, o := range f.observers {
		if reflect.TypeOf(o).Comparable() && o == obs {
			f.observers = append(f.observers[:i:i], f.observers[i+1:]...)
			break
		}
	}
}

// notify hands a notice to observers, through the pool when one is configured.
func (f *Fanout) notify(n Notice) {
	f.observersMu.RLock()
	if len(f.observers) == 0 {
		f.observersMu.RUnlock()
		return
	}
	observers := make([]Observer, len(f.observers))
	copy(observers, f.observers)
	f.observersMu.RUnlock()

	if f.observerPool != nil {
		if f.closed.Load() {
			return
		}
		f.observerPool.Notify(n, observers)
		return
	}
	dispatchNotice(&n, observers)
}

func deadline(ctx context.Context) (time.Time, bool) {
	if ctx == nil {
		return time.Time{}, false
	}
	return ctx.Deadline()
}
