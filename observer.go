package xfanout

import (
	"strconv"

	"github.com/trickstertwo/xlog"
)

// ObserverFunc is an Adapter that lets a plain function satisfy Observer.
type ObserverFunc func(n Notice)

func (f ObserverFunc) OnNotice(n Notice) { f(n) }

// LoggingObserver is an Adapter that emits notices via xlog.
type LoggingObserver struct {
	Logger *xlog.Logger
}

func (o LoggingObserver) OnNotice(n Notice) {
	if o.Logger == nil {
		return
	}
	ev := o.Logger.With(
		xlog.Str("type", string(n.Type)),
		xlog.Str("event_name", n.EventName),
		xlog.Str("pattern", n.Pattern),
	)
	switch n.Type {
	case ListenerFailed:
		ev.Warn().Err(n.Err).Msg("xfanout listener failed")
	default:
		if n.Count > 0 {
			ev = ev.With(xlog.Str("count", strconv.Itoa(n.Count)))
		}
		ev.Debug().Msg("xfanout notice")
	}
}
