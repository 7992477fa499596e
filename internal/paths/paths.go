// Package paths decides which request paths a policy applies to.
package paths

import (
	"net"
	"strings"

	"github.com/pathcors/cors/internal/wildcard"
)

const (
	sep  = "/"
	root = "/"
)

// Normalize trims leading and trailing slashes from path;
// a path consisting only of slashes (or an empty path) becomes "/".
func Normalize(path string) string {
	path = strings.Trim(path, sep)
	if path == "" {
		return root
	}
	return path
}

// normalizePattern is like Normalize, except that it leaves any pattern
// other than "/" empty if trimming empties it.
func normalizePattern(pattern string) string {
	if pattern == root {
		return root
	}
	return strings.Trim(pattern, sep)
}

type rule struct {
	literal string
	matcher wildcard.Matcher // nil if literal contains no asterisk
}

func (r *rule) match(path string) bool {
	return r.literal == path || r.matcher != nil && r.matcher.Match(path)
}

func compileRules(host string, patterns []string) ([]rule, []*Error) {
	var (
		rules = make([]rule, 0, len(patterns))
		errs  []*Error
	)
	for _, p := range patterns {
		r := rule{literal: normalizePattern(p)}
		if wildcard.Contains(r.literal) {
			m, err := wildcard.Compile(r.literal)
			if err != nil {
				errs = append(errs, &Error{Host: host, Pattern: p, Err: err})
				continue
			}
			r.matcher = m
		}
		rules = append(rules, r)
	}
	return rules, errs
}

// A Table holds the path rules of a policy.
// The zero value matches no path.
type Table struct {
	global []rule
	hosts  map[string][]rule
}

// An Error reports a path pattern that could not be compiled.
type Error struct {
	Host    string // empty for global patterns
	Pattern string
	Err     error
}

func (e *Error) Error() string {
	return e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Compile compiles global and host-scoped path patterns into a Table.
// It reports every pattern that fails to compile.
func Compile(global []string, hosts map[string][]string) (Table, []*Error) {
	var t Table
	rules, errs := compileRules("", global)
	t.global = rules
	if len(hosts) == 0 {
		return t, errs
	}
	t.hosts = make(map[string][]rule, len(hosts))
	for host, patterns := range hosts {
		rules, hostErrs := compileRules(host, patterns)
		errs = append(errs, hostErrs...)
		t.hosts[host] = rules
	}
	return t, errs
}

// Match reports whether the request path rawPath, addressed to host,
// is covered by t.
//
// The rules registered for host take precedence over the global ones;
// if there are none for host verbatim, the rules registered for host
// stripped of its port are used instead, if any.
func (t *Table) Match(host, rawPath string) bool {
	path := Normalize(rawPath)
	for _, r := range t.rulesFor(host) {
		if r.match(path) {
			return true
		}
	}
	return false
}

func (t *Table) rulesFor(host string) []rule {
	if rules, found := t.hosts[host]; found {
		return rules
	}
	if hostname, _, err := net.SplitHostPort(host); err == nil {
		if rules, found := t.hosts[hostname]; found {
			return rules
		}
	}
	return t.global
}
