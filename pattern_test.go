package xfanout

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompilePattern(t *testing.T) {
	re := regexp.MustCompile(`^sql\.`)

	tests := []struct {
		name    string
		in      any
		kind    patternKind
		match   []string
		noMatch []string
		str     string
	}{
		{name: "absent", in: nil, kind: patternAll, match: []string{"", "a", "sql.query"}, str: "*"},
		{name: "exact", in: "sql.query", kind: patternExact, match: []string{"sql.query"}, noMatch: []string{"sql.query2", "sql"}, str: "sql.query"},
		{name: "regexp", in: re, kind: patternRegexp, match: []string{"sql.query", "sql."}, noMatch: []string{"nosql.query"}, str: `/^sql\./`},
		{name: "nil regexp", in: (*regexp.Regexp)(nil), kind: patternAll, match: []string{"x"}, str: "*"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			p, err := compilePattern(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.kind, p.kind)
			assert.Equal(t, tc.str, p.String())
			for _, n := range tc.match {
				assert.True(t, p.matches(n), n)
			}
			for _, n := range tc.noMatch {
				assert.False(t, p.matches(n), n)
			}
		})
	}
}

func TestCompilePattern_Unsupported(t *testing.T) {
	for _, in := range []any{42, []string{"a"}, struct{}{}} {
		_, err := compilePattern(in)
		assert.ErrorIs(t, err, ErrUnsupportedPattern)
	}
}

func TestPatternValue(t *testing.T) {
	re := regexp.MustCompile(`x`)
	for _, in := range []any{nil, "x", re} {
		p, err := compilePattern(in)
		require.NoError(t, err)
		assert.Equal(t, in, p.value())
	}
}
