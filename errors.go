package xfanout

import "errors"

var (
	// ErrTimelineUnderflow is returned when a timed subscriber finishes a span
	// that was never started on the same Timeline.
	ErrTimelineUnderflow = errors.New("xfanout: finish without matching start on timeline")

	// ErrNoTimeline is returned when a timed subscriber is driven directly with
	// a context that carries no Timeline.
	ErrNoTimeline = errors.New("xfanout: context carries no timeline")

	// ErrUnsupportedPattern is returned by Subscribe for patterns that are not
	// nil, a string or a *regexp.Regexp.
	ErrUnsupportedPattern = errors.New("xfanout: unsupported pattern type")

	// ErrInvalidListener is returned by Subscribe for listeners that implement
	// neither SpanListener nor Handler.
	ErrInvalidListener = errors.New("xfanout: listener implements neither SpanListener nor Handler")

	ErrNilListener = errors.New("xfanout: listener must not be nil")

	ErrFanoutClosed = errors.New("xfanout: fanout is closed")

	ErrObserverPoolShutdownTimeout = errors.New("xfanout: observer pool shutdown timeout")
)
