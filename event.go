package xfanout

import "time"

// Event is a finished timed span, rebuilt from the arguments a timed
// Handler receives on Finish.
type Event struct {
	Name          string
	Start         time.Time
	End           time.Time
	TransactionID string
	Payload       any
	// Children are spans that ran nested inside this one.
	Children []*Event
}

// NewEvent decodes (started, finished, id, payload) handler arguments.
// It reports false for publish-style arguments of any other shape.
func NewEvent(name string, args ...any) (*Event, bool) {
	if len(args) != 4 {
		return nil, false
	}
	start, ok := args[0].(time.Time)
	if !ok {
		return nil, false
	}
	end, ok := args[1].(time.Time)
	if !ok {
		return nil, false
	}
	id, ok := args[2].(string)
	if !ok {
		return nil, false
	}
	return &Event{
		Name:          name,
		Start:         start,
		End:           end,
		TransactionID: id,
		Payload:       args[3],
	}, true
}

func (e *Event) Duration() time.Duration {
	return e.End.Sub(e.Start)
}

// ParentOf reports whether other ran entirely within e.
func (e *Event) ParentOf(other *Event) bool {
	if other == nil || other == e {
		return false
	}
	return !other.Start.Before(e.Start) && !other.End.After(e.End)
}

// SelfTime is the span duration minus the time spent in direct children.
func (e *Event) SelfTime() time.Duration {
	self := e.Duration()
	for _, c := range e.Children {
		self -= c.Duration()
	}
	if self < 0 {
		return 0
	}
	return self
}
