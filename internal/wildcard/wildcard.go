// Package wildcard compiles the asterisk patterns that policies use for
// paths and origins.
package wildcard

import (
	"regexp"
	"strings"

	"github.com/gobwas/glob"
)

// Asterisk stands for any (possibly empty) sequence of characters.
const Asterisk = "*"

// glob's lexer reads NUL as the end of the pattern.
const nul = "\x00"

// A Matcher reports whether a string matches a pattern in full.
type Matcher interface {
	Match(s string) bool
}

// Compile compiles pattern into a Matcher.
// Every character of pattern other than an asterisk matches itself only;
// the match is anchored at both ends of the subject.
func Compile(pattern string) (Matcher, error) {
	if strings.Contains(pattern, nul) {
		return compileRegexp(pattern)
	}
	// QuoteMeta escapes asterisks along with the other metacharacters;
	// unescaping \* afterwards leaves a quoted backslash (\\) intact.
	quoted := strings.ReplaceAll(glob.QuoteMeta(pattern), `\`+Asterisk, Asterisk)
	g, err := glob.Compile(quoted)
	if err != nil {
		return nil, err
	}
	m := globMatcher{
		glob:   g,
		minLen: len(pattern) - strings.Count(pattern, Asterisk),
	}
	return &m, nil
}

// globMatcher rejects subjects shorter than the literal part of the
// pattern; glob alone lets the prefix and suffix of "p*s" overlap.
type globMatcher struct {
	glob   glob.Glob
	minLen int
}

func (m *globMatcher) Match(s string) bool {
	return len(s) >= m.minLen && m.glob.Match(s)
}

func compileRegexp(pattern string) (Matcher, error) {
	quoted := strings.ReplaceAll(regexp.QuoteMeta(pattern), `\`+Asterisk, ".*")
	re, err := regexp.Compile(`(?s)^` + quoted + `$`)
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

// Contains reports whether pattern contains at least one asterisk.
func Contains(pattern string) bool {
	return strings.Contains(pattern, Asterisk)
}
