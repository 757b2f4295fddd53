package xfanout

import "time"

// Timeline is the per-execution-context stack of span start timestamps used
// by timed subscribers. Each Start pushes, each Finish pops, so well-nested
// spans resolve by LIFO discipline.
//
// A Timeline is not synchronized and belongs to a single goroutine. Work
// handed to another goroutine should carry its own Timeline (see WithTimeline).
type Timeline struct {
	stamps []time.Time
}

func (t *Timeline) push(ts time.Time) {
	t.stamps = append(t.stamps, ts)
}

func (t *Timeline) pop() (time.Time, error) {
	n := len(t.stamps)
	if n == 0 {
		return time.Time{}, ErrTimelineUnderflow
	}
	ts := t.stamps[n-1]
	t.stamps[n-1] = time.Time{}
	t.stamps = t.stamps[:n-1]
	return ts, nil
}

// Depth returns the number of open timed spans on the timeline.
func (t *Timeline) Depth() int {
	return len(t.stamps)
}
