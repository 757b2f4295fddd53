// Package recorder provides an xfanout Handler that keeps every timed span it
// sees as an xfanout.Event tree, so nested spans expose their self time.
//
//	rec := recorder.New()
//	_, _ = fanout.Subscribe(nil, rec)
//	...
//	for _, e := range rec.Events() {
//	    fmt.Println(e.Name, e.Duration(), e.SelfTime())
//	}
//
// Recorded events are held until Reset; it is meant for tests and diagnostics.
package recorder

import (
	"context"
	"sync"

	"github.com/trickstertwo/xfanout"
)

// Message is a publish-style call seen by the recorder.
type Message struct {
	Name string
	Args []any
}

type entry struct {
	timeline *xfanout.Timeline
	event    *xfanout.Event
}

// Recorder implements xfanout.Handler. Safe for concurrent use.
type Recorder struct {
	mu        sync.Mutex
	roots     []entry
	published []Message
}

var _ xfanout.Handler = (*Recorder)(nil)

func New() *Recorder {
	return &Recorder{}
}

// Call records a finished span, adopting earlier spans from the same
// Timeline that ran inside it, or records a publish.
func (r *Recorder) Call(ctx context.Context, name string, args ...any) error {
	ev, ok := xfanout.NewEvent(name, args...)
	if !ok {
		r.mu.Lock()
		r.published = append(r.published, Message{Name: name, Args: append([]any(nil), args...)})
		r.mu.Unlock()
		return nil
	}

	tl, _ := xfanout.TimelineFromContext(ctx)

	r.mu.Lock()
	defer r.mu.Unlock()

	kept := r.roots[:0]
	for _, e := range r.roots {
		if e.timeline == tl && ev.ParentOf(e.event) {
			ev.Children = append(ev.Children, e.event)
			continue
		}
		kept = append(kept, e)
	}
	for i := len(kept); i < len(r.roots); i++ {
		r.roots[i] = entry{}
	}
	r.roots = append(kept, entry{timeline: tl, event: ev})
	return nil
}

// Events returns the outermost recorded spans in finish order.
func (r *Recorder) Events() []*xfanout.Event {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*xfanout.Event, len(r.roots))
	for i, e := range r.roots {
		out[i] = e.event
	}
	return out
}

// Published returns the publish-style calls in arrival order.
func (r *Recorder) Published() []Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Message, len(r.published))
	copy(out, r.published)
	return out
}

// Reset drops everything recorded so far.
func (r *Recorder) Reset() {
	r.mu.Lock()
	r.roots = nil
	r.published = nil
	r.mu.Unlock()
}
