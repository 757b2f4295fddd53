package xfanout

import (
	"fmt"
	"regexp"
)

type patternKind uint8

const (
	patternAll patternKind = iota
	patternExact
	patternRegexp
)

// pattern is the compiled matching rule of one subscription.
type pattern struct {
	kind patternKind
	name string
	re   *regexp.Regexp
}

// compilePattern classifies a Subscribe pattern. A nil *regexp.Regexp is
// treated like an absent pattern.
func compilePattern(p any) (pattern, error) {
	switch v := p.(type) {
	case nil:
		return pattern{kind: patternAll}, nil
	case string:
		return pattern{kind: patternExact, name: v}, nil
	case *regexp.Regexp:
		if v == nil {
			return pattern{kind: patternAll}, nil
		}
		return pattern{kind: patternRegexp, re: v}, nil
	default:
		return pattern{}, fmt.Errorf("%w: %T", ErrUnsupportedPattern, p)
	}
}

func (p pattern) matches(name string) bool {
	switch p.kind {
	case patternExact:
		return p.name == name
	case patternRegexp:
		return p.re.MatchString(name)
	default:
		return true
	}
}

// value returns the pattern in the shape it was given to Subscribe.
func (p pattern) value() any {
	switch p.kind {
	case patternExact:
		return p.name
	case patternRegexp:
		return p.re
	default:
		return nil
	}
}

func (p pattern) String() string {
	switch p.kind {
	case patternExact:
		return p.name
	case patternRegexp:
		return "/" + p.re.String() + "/"
	default:
		return "*"
	}
}
