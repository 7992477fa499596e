// Package origins evaluates request origins against a policy's allow-list.
package origins

import (
	"regexp"

	"github.com/pathcors/cors/internal/util"
	"github.com/pathcors/cors/internal/wildcard"
)

// A Matcher reports whether an origin matches some pattern in full.
type Matcher = wildcard.Matcher

// CompileRegexp compiles expr, a regular expression in [RE2 syntax],
// into a Matcher that only accepts origins matched by expr in their entirety.
//
// [RE2 syntax]: https://github.com/google/re2/wiki/Syntax
func CompileRegexp(expr string) (Matcher, error) {
	re, err := regexp.Compile(`^(?:` + expr + `)$`)
	if err != nil {
		return nil, err
	}
	return regexpMatcher{re}, nil
}

type regexpMatcher struct {
	re *regexp.Regexp
}

func (m regexpMatcher) Match(s string) bool {
	return m.re.MatchString(s)
}

// An AllowList represents the set of origins a policy allows.
// The zero value allows no origin.
type AllowList struct {
	all      bool
	exact    util.Set
	patterns []Matcher
	// single is the only allowed origin, if the list consists of exactly one
	// exact origin.
	single string
}

// All returns an AllowList that allows every origin.
func All() AllowList {
	return AllowList{all: true}
}

// NewAllowList returns an AllowList consisting of the exact origins and
// patterns provided.
// The list is deemed single only if exact has exactly one element;
// duplicates count as distinct elements.
func NewAllowList(exact []string, patterns []Matcher) AllowList {
	l := AllowList{
		exact:    util.NewSet(exact...),
		patterns: patterns,
	}
	if len(patterns) == 0 && len(exact) == 1 {
		l.single = exact[0]
	}
	return l
}

// AllowsAll reports whether l allows every origin.
func (l *AllowList) AllowsAll() bool {
	return l.all
}

// Single returns the only origin l allows and true,
// if l allows exactly one origin; otherwise, it returns "" and false.
func (l *AllowList) Single() (string, bool) {
	if l.all || len(l.patterns) > 0 || l.single == "" {
		return "", false
	}
	return l.single, true
}

// Contains reports whether l allows origin.
func (l *AllowList) Contains(origin string) bool {
	if l.all {
		return true
	}
	if l.exact.Contains(origin) {
		return true
	}
	for _, p := range l.patterns {
		if p.Match(origin) {
			return true
		}
	}
	return false
}
