/*
Package cfgerrors provides functionalities for programmatically handling
configuration errors produced by package [github.com/pathcors/cors].

Policies are deliberately permissive: most malformed settings silently fall
back to safe defaults. The few settings that cannot be given a sensible
meaning are rejected when the policy is built, never while requests are
being processed; this package describes those rejections.
*/
package cfgerrors

import (
	"fmt"
	"iter"
)

// An InvalidOriginPatternError indicates an origin pattern that could not
// be compiled. The Kind field may take one of two values:
//   - "regexp": an element of AllowedOriginsPatterns is not a valid
//     regular expression;
//   - "wildcard": an element of AllowedOrigins that contains an asterisk
//     could not be compiled.
//
// For more details, see [github.com/pathcors/cors.Config].
type InvalidOriginPatternError struct {
	Value string // the unacceptable value that was specified
	Kind  string // regexp | wildcard
	Err   error  // the underlying compilation error
}

func (err *InvalidOriginPatternError) Error() string {
	const tmpl = "cors: invalid %s origin pattern %q: %v"
	return fmt.Sprintf(tmpl, err.Kind, err.Value, err.Err)
}

func (err *InvalidOriginPatternError) Unwrap() error {
	return err.Err
}

// An InvalidPathPatternError indicates a path pattern that could not be
// compiled. Host is empty for patterns that apply to all hosts.
type InvalidPathPatternError struct {
	Value string // the unacceptable value that was specified
	Host  string // the host the pattern is scoped to, if any
	Err   error  // the underlying compilation error
}

func (err *InvalidPathPatternError) Error() string {
	if err.Host == "" {
		const tmpl = "cors: invalid path pattern %q: %v"
		return fmt.Sprintf(tmpl, err.Value, err.Err)
	}
	const tmpl = "cors: invalid path pattern %q for host %q: %v"
	return fmt.Sprintf(tmpl, err.Value, err.Host, err.Err)
}

func (err *InvalidPathPatternError) Unwrap() error {
	return err.Err
}

// An InvalidMaxAgeError indicates a max-age value that cannot be used.
// The Reason field may take one of two values:
//   - "type": the value cannot be coerced to an integer;
//   - "negative": the value is a negative integer.
//
// For more details, see [github.com/pathcors/cors.Config.MaxAge].
type InvalidMaxAgeError struct {
	Value  any    // the unacceptable value that was specified
	Reason string // type | negative
}

func (err *InvalidMaxAgeError) Error() string {
	if err.Reason == "negative" {
		const tmpl = "cors: max-age must be non-negative, got %v"
		return fmt.Sprintf(tmpl, err.Value)
	}
	const tmpl = "cors: max-age value %#v (%T) is not an integer"
	return fmt.Sprintf(tmpl, err.Value, err.Value)
}

// All returns an iterator over the CORS-configuration errors contained in
// err's error tree. The order is unspecified and may change from one release
// to the next. All only supports error values returned by
// [github.com/pathcors/cors.NewMiddleware],
// [github.com/pathcors/cors.Middleware.Reconfigure], and
// [github.com/pathcors/cors.FromMap]; it should not be called on
// any other error value.
func All(err error) iter.Seq[error] {
	return func(yield func(error) bool) {
		every(err, yield)
	}
}

func every(err error, f func(error) bool) bool {
	switch err := err.(type) {
	// Errors of this package wrap their cause, but they are the leaves
	// callers care about; only joined errors need descending into.
	case interface{ Unwrap() []error }:
		for _, err := range err.Unwrap() {
			if !every(err, f) {
				return false
			}
		}
		return true
	default:
		return f(err)
	}
}
