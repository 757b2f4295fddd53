package xfanout

import (
	"sync"
)

// registry is the subscription store. Every subscriber lives in exactly one
// bucket, chosen by its pattern kind; insertion order is dispatch order.
type registry struct {
	mu     sync.Mutex
	byName map[string][]Subscriber
	regex  []Subscriber
	all    []Subscriber

	// retainRegex disables the destructive prune in resolve.
	retainRegex bool
}

func newRegistry(retainRegex bool) *registry {
	return &registry{
		byName:      make(map[string][]Subscriber),
		retainRegex: retainRegex,
	}
}

func (r *registry) add(p pattern, s Subscriber) {
	r.mu.Lock()
	defer r.mu.Unlock()

	switch p.kind {
	case patternExact:
		r.byName[p.name] = append(r.byName[p.name], s)
	case patternRegexp:
		r.regex = append(r.regex, s)
	default:
		r.all = append(r.all, s)
	}
}

// remove deletes a handle from the bucket keyed by its original pattern.
func (r *registry) remove(s Subscriber) bool {
	cp, ok := s.(compiledPattern)
	if !ok {
		return false
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	p := cp.compiled()
	switch p.kind {
	case patternExact:
		subs, removed := without(r.byName[p.name], s)
		if removed {
			r.byName[p.name] = subs
		}
		return removed
	case patternRegexp:
		var removed bool
		r.regex, removed = without(r.regex, s)
		return removed
	default:
		var removed bool
		r.all, removed = without(r.all, s)
		return removed
	}
}

// clearName empties the exact-name bucket for name and reports how many
// subscribers were dropped.
func (r *registry) clearName(name string) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.byName[name])
	if _, ok := r.byName[name]; ok {
		r.byName[name] = nil
	}
	return n
}

// resolve returns a fresh slice of the subscribers for name: exact-name
// first, then catch-all, then matching regex subscribers. Unless retainRegex
// is set, regex subscribers that do not match name are dropped for good.
// The second result is the number of regex subscribers pruned.
func (r *registry) resolve(name string) ([]Subscriber, int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		regex  []Subscriber
		pruned int
	)
	if r.retainRegex {
		for _, s := range r.regex {
			if s.Matches(name) {
				regex = append(regex, s)
			}
		}
	} else {
		kept := r.regex[:0]
		for _, s := range r.regex {
			if s.Matches(name) {
				kept = append(kept, s)
			}
		}
		pruned = len(r.regex) - len(kept)
		for i := len(kept); i < len(r.regex); i++ {
			r.regex[i] = nil
		}
		r.regex = kept
		regex = kept
	}

	exact := r.byName[name]
	out := make([]Subscriber, 0, len(exact)+len(r.all)+len(regex))
	out = append(out, exact...)
	out = append(out, r.all...)
	out = append(out, regex...)
	return out, pruned
}

func (r *registry) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	n := len(r.all) + len(r.regex)
	for _, subs := range r.byName {
		n += len(subs)
	}
	return n
}

// without returns subs minus the first occurrence of s, preserving order.
// It never aliases the input so snapshots handed out earlier stay intact.
func without(subs []Subscriber, s Subscriber) ([]Subscriber, bool) {
	for i, cur := range subs {
		if cur == s {
			out := make([]Subscriber, 0, len(subs)-1)
			out = append(out, subs[:i]...)
			out = append(out, subs[i+1:]...)
			return out, true
		}
	}
	return subs, false
}
