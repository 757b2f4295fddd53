package xfanout

import (
	"context"

	"github.com/trickstertwo/xclock"
	"github.com/trickstertwo/xlog"
)

// FanoutBuilder constructs Fanout instances (Builder pattern).
type FanoutBuilder struct {
	observers   []Observer
	logger      *xlog.Logger
	clock       Clock
	poolWorkers int
	poolBuffer  int
	retainRegex bool
	noLogging   bool
}

// NewFanoutBuilder returns a new builder with sensible defaults.
func NewFanoutBuilder() *FanoutBuilder {
	return &FanoutBuilder{}
}

func (fb *FanoutBuilder) WithLogger(l *xlog.Logger) *FanoutBuilder {
	fb.logger = l
	return fb
}

// WithClock sets the span clock. Any xclock.Clock or clockz.Clock works.
func (fb *FanoutBuilder) WithClock(c Clock) *FanoutBuilder {
	fb.clock = c
	return fb
}

func (fb *FanoutBuilder) WithObserver(obs ...Observer) *FanoutBuilder {
	for _, o := range obs {
		if o != nil {
			fb.observers = append(fb.observers, o)
		}
	}
	return fb
}

// WithObserverPool delivers notices asynchronously through an ObserverPool.
// Without it observers run inline on the dispatching goroutine.
func (fb *FanoutBuilder) WithObserverPool(workers, bufferSize int) *FanoutBuilder {
	fb.poolWorkers = workers
	fb.poolBuffer = bufferSize
	if fb.poolWorkers < 1 {
		fb.poolWorkers = 4
	}
	return fb
}

// WithRegexRetention keeps regex subscribers that fail to match a dispatched
// name instead of dropping them from the registry.
func (fb *FanoutBuilder) WithRegexRetention(retain bool) *FanoutBuilder {
	fb.retainRegex = retain
	return fb
}

// WithoutLoggingObserver skips the default LoggingObserver.
func (fb *FanoutBuilder) WithoutLoggingObserver() *FanoutBuilder {
	fb.noLogging = true
	return fb
}

func (fb *FanoutBuilder) Build() (*Fanout, error) {
	var clk Clock
	if fb.clock != nil {
		clk = fb.clock
	} else {
		clk = xclock.Default()
	}
	var lg *xlog.Logger
	if fb.logger != nil {
		lg = fb.logger
	} else {
		lg = xlog.Default()
	}

	f := &Fanout{
		registry: newRegistry(fb.retainRegex),
		clock:    clk,
		logger:   lg,
		metrics:  &fanoutMetrics{},
	}
	if fb.poolWorkers > 0 {
		f.observerPool = NewObserverPool(context.Background(), fb.poolWorkers, fb.poolBuffer)
	}

	// Attach logging observer first unless already supplied externally.
	hasLoggingObserver := false
	for _, o := range fb.observers {
		if _, ok := o.(LoggingObserver); ok {
			hasLoggingObserver = true
			break
		}
	}
	if !hasLoggingObserver && !fb.noLogging && lg != nil {
		f.AddObserver(LoggingObserver{Logger: lg})
	}

	for _, o := range fb.observers {
		f.AddObserver(o)
	}

	return f, nil
}

// New constructs a Fanout via Builder and returns a close func for convenience.
func New(init func(b *FanoutBuilder)) (*Fanout, func() error, error) {
	b := NewFanoutBuilder()
	if init != nil {
		init(b)
	}
	f, err := b.Build()
	if err != nil {
		return nil, nil, err
	}
	closeFn := func() error { return f.Close(context.Background()) }
	return f, closeFn, nil
}
