package cors

import (
	"encoding/json"
	"errors"
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/pathcors/cors/cfgerrors"
	"github.com/pathcors/cors/internal/headers"
	"github.com/pathcors/cors/internal/methods"
	"github.com/pathcors/cors/internal/origins"
	"github.com/pathcors/cors/internal/paths"
	"github.com/pathcors/cors/internal/util"
	"github.com/pathcors/cors/internal/wildcard"
)

// A Config configures a Middleware. The mechanics of and interplay between
// this type's various fields are explained below.
// Settings are interpreted permissively: apart from the few errors described
// in package [github.com/pathcors/cors/cfgerrors], nothing prevents the
// creation of a middleware.
//
// # Paths
//
// Paths restricts the middleware to the requests whose path matches one of
// the specified path patterns; the middleware lets all other requests
// through untouched. Leading and trailing slashes are irrelevant, and
// an asterisk stands for any (possibly empty) sequence of characters:
//
//	Paths: cors.Paths{
//	  Global: []string{"/api/*", "/health"},
//	},
//
// Note that "/api/*" covers "/api/v1" but not "/api" itself.
// The root pattern "/" covers the root path only.
//
// Path patterns can also be scoped to a host, in which case they replace
// the global ones for requests addressed to that host:
//
//	Paths: cors.Paths{
//	  Global: []string{"api/*"},
//	  Hosts: map[string][]string{
//	    "admin.example.com": {"admin/*"},
//	  },
//	},
//
// Hosts are looked up verbatim (port included, as in [http.Request.Host])
// and then without their port.
//
// # AllowedOrigins
//
// AllowedOrigins lists the [Web origins] allowed to access resources.
// Origins are compared case-sensitively against the Origin request header.
//
//	AllowedOrigins: []string{
//	  "https://example.com",
//	  "https://*.example.com",
//	},
//
// An asterisk within an origin stands for any sequence of characters;
// "https://*.example.com" covers "https://api.example.com" but neither
// "https://example.com" nor "https://evilexample.com".
// A single asterisk denotes all origins.
//
// If exactly one origin (and no pattern) is allowed, the middleware
// unconditionally responds with that origin, whatever the request's origin:
// browsers then enforce the restriction themselves.
//
// When credentialed access is enabled, browsers reject a wildcard
// Access-Control-Allow-Origin header; the middleware then echoes the
// request's origin instead, even if all origins are allowed.
//
// # AllowedOriginsPatterns
//
// AllowedOriginsPatterns lists regular expressions, in [RE2 syntax],
// that an origin must match in its entirety to be allowed.
// It is ignored when all origins are allowed.
//
// # AllowedMethods
//
// AllowedMethods lists the methods announced in the
// Access-Control-Allow-Methods header. Method names are byte-uppercased.
// A single asterisk causes the middleware to reflect the method requested
// by preflight requests.
//
// # AllowedHeaders
//
// AllowedHeaders lists the request headers announced in the
// Access-Control-Allow-Headers header. Header names are byte-lowercased.
// A single asterisk causes the middleware to reflect the request headers
// listed by preflight requests.
//
// # ExposedHeaders
//
// ExposedHeaders lists, verbatim, the response headers exposed to clients
// via the Access-Control-Expose-Headers header. If empty, that header is
// omitted.
//
// # SupportsCredentials
//
// SupportsCredentials, when set, configures the middleware to allow
// [credentialed access] (e.g. with [cookies]).
//
// # MaxAge
//
// MaxAge, if non-nil, is the number of seconds (0 included) that browsers
// may cache preflight responses for, as announced by the
// Access-Control-Max-Age header. If nil, that header is omitted.
// Negative values are prohibited.
//
// [RE2 syntax]: https://github.com/google/re2/wiki/Syntax
// [Web origins]: https://developer.mozilla.org/en-US/docs/Glossary/Origin
// [cookies]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Cookies
// [credentialed access]: https://fetch.spec.whatwg.org/#concept-request-credentials-mode
type Config struct {
	// Precludes comparability, unkeyed struct literals, and conversion to and
	// from third-party types.
	_ [0]func()

	Paths                  Paths    `json:"paths" yaml:"paths"`
	AllowedOrigins         []string `json:"allowed_origins" yaml:"allowed_origins"`
	AllowedOriginsPatterns []string `json:"allowed_origins_patterns" yaml:"allowed_origins_patterns"`
	AllowedMethods         []string `json:"allowed_methods" yaml:"allowed_methods"`
	AllowedHeaders         []string `json:"allowed_headers" yaml:"allowed_headers"`
	ExposedHeaders         []string `json:"exposed_headers" yaml:"exposed_headers"`
	SupportsCredentials    bool     `json:"supports_credentials" yaml:"supports_credentials"`
	MaxAge                 *int     `json:"max_age" yaml:"max_age"`
}

// Paths holds the path patterns of a [Config].
// See the [Config] documentation for details.
type Paths struct {
	// Global holds the patterns that apply to every host
	// without patterns of its own.
	Global []string
	// Hosts maps hosts to the patterns that apply to them.
	Hosts map[string][]string
}

// encode represents p the way configuration files do: a sequence of global
// patterns followed by single-entry mappings of host to patterns,
// sorted by host.
func (p Paths) encode() []any {
	out := make([]any, 0, len(p.Global)+len(p.Hosts))
	for _, pattern := range p.Global {
		out = append(out, pattern)
	}
	for _, host := range slices.Sorted(maps.Keys(p.Hosts)) {
		patterns := p.Hosts[host]
		if patterns == nil {
			patterns = []string{}
		}
		out = append(out, map[string][]string{host: patterns})
	}
	return out
}

// MarshalJSON implements [json.Marshaler].
func (p Paths) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.encode())
}

// MarshalYAML implements the Marshaler interface of [gopkg.in/yaml.v3].
func (p Paths) MarshalYAML() (any, error) {
	return p.encode(), nil
}

func (p Paths) clone() Paths {
	var c Paths
	c.Global = slices.Clone(p.Global)
	if p.Hosts != nil {
		c.Hosts = make(map[string][]string, len(p.Hosts))
		for host, patterns := range p.Hosts {
			c.Hosts[host] = slices.Clone(patterns)
		}
	}
	return c
}

type internalConfig struct {
	paths          paths.Table
	origins        origins.AllowList
	credentialed   bool
	allowAnyMethod bool
	allowAnyHeader bool
	acam           string // empty if allowAnyMethod
	acah           string // empty if allowAnyHeader
	aceh           string
	acma           string
	maxAgeSet      bool // distinguishes an unset max age from a zero one
	// normalized is the configuration icfg was built from, after
	// normalization; it is never exposed without defensive copying.
	normalized Config
}

func newInternalConfig(cfg *Config) (*internalConfig, error) {
	if cfg == nil {
		return nil, nil
	}
	icfg := internalConfig{
		credentialed: cfg.SupportsCredentials,
	}
	icfg.normalized.Paths = cfg.Paths.clone()
	icfg.normalized.AllowedOrigins = slices.Clone(cfg.AllowedOrigins)
	icfg.normalized.AllowedOriginsPatterns = slices.Clone(cfg.AllowedOriginsPatterns)
	icfg.normalized.ExposedHeaders = slices.Clone(cfg.ExposedHeaders)
	icfg.normalized.SupportsCredentials = cfg.SupportsCredentials

	// Accumulate errors in a slice so as to call errors.Join at most once.
	errs := icfg.compilePaths(cfg.Paths)
	errs = icfg.compileOrigins(errs, cfg.AllowedOrigins, cfg.AllowedOriginsPatterns)
	icfg.normalizeMethods(cfg.AllowedMethods)
	icfg.normalizeRequestHeaders(cfg.AllowedHeaders)
	icfg.normalizeResponseHeaders(cfg.ExposedHeaders)
	errs = icfg.validateMaxAge(errs, cfg.MaxAge)

	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return &icfg, nil
}

func (icfg *internalConfig) compilePaths(p Paths) []error {
	table, pathErrs := paths.Compile(p.Global, p.Hosts)
	var errs []error
	for _, e := range pathErrs {
		err := &cfgerrors.InvalidPathPatternError{
			Value: e.Pattern,
			Host:  e.Host,
			Err:   e.Err,
		}
		errs = append(errs, err)
	}
	icfg.paths = table
	return errs
}

func (icfg *internalConfig) compileOrigins(errs []error, exact, exprs []string) []error {
	var ps []origins.Matcher
	for _, expr := range exprs {
		m, err := origins.CompileRegexp(expr)
		if err != nil {
			err := &cfgerrors.InvalidOriginPatternError{
				Value: expr,
				Kind:  "regexp",
				Err:   err,
			}
			errs = append(errs, err)
			continue
		}
		ps = append(ps, m)
	}
	if slices.Contains(exact, headers.ValueWildcard) {
		// Neither exact origins nor patterns matter any longer.
		icfg.origins = origins.All()
		return errs
	}
	for _, origin := range exact {
		if !wildcard.Contains(origin) {
			continue
		}
		m, err := wildcard.Compile(origin)
		if err != nil {
			err := &cfgerrors.InvalidOriginPatternError{
				Value: origin,
				Kind:  "wildcard",
				Err:   err,
			}
			errs = append(errs, err)
			continue
		}
		ps = append(ps, m)
	}
	icfg.origins = origins.NewAllowList(exact, ps)
	return errs
}

func (icfg *internalConfig) normalizeMethods(names []string) {
	normalized := mapStrings(names, methods.Normalize)
	icfg.normalized.AllowedMethods = normalized
	if slices.Contains(normalized, headers.ValueWildcard) {
		icfg.allowAnyMethod = true
		return
	}
	icfg.acam = strings.Join(normalized, headers.ValueSep)
}

func (icfg *internalConfig) normalizeRequestHeaders(names []string) {
	normalized := mapStrings(names, util.ByteLowercase)
	icfg.normalized.AllowedHeaders = normalized
	if slices.Contains(normalized, headers.ValueWildcard) {
		icfg.allowAnyHeader = true
		return
	}
	icfg.acah = strings.Join(normalized, headers.ValueSep)
}

func mapStrings(strs []string, f func(string) string) []string {
	if strs == nil {
		return nil
	}
	out := make([]string, len(strs))
	for i, s := range strs {
		out[i] = f(s)
	}
	return out
}

func (icfg *internalConfig) normalizeResponseHeaders(names []string) {
	icfg.aceh = strings.Join(names, headers.ValueSep)
}

func (icfg *internalConfig) validateMaxAge(errs []error, maxAge *int) []error {
	if maxAge == nil {
		return errs
	}
	delta := *maxAge
	if delta < 0 {
		err := &cfgerrors.InvalidMaxAgeError{
			Value:  delta,
			Reason: "negative",
		}
		return append(errs, err)
	}
	icfg.maxAgeSet = true
	icfg.acma = strconv.Itoa(delta)
	icfg.normalized.MaxAge = &delta
	return errs
}

// newConfig returns a Config on the basis of icfg.
// The result shares no mutable state with icfg.
func newConfig(icfg *internalConfig) *Config {
	if icfg == nil {
		return nil
	}
	n := &icfg.normalized
	cfg := Config{
		Paths:                  n.Paths.clone(),
		AllowedOrigins:         slices.Clone(n.AllowedOrigins),
		AllowedOriginsPatterns: slices.Clone(n.AllowedOriginsPatterns),
		AllowedMethods:         slices.Clone(n.AllowedMethods),
		AllowedHeaders:         slices.Clone(n.AllowedHeaders),
		ExposedHeaders:         slices.Clone(n.ExposedHeaders),
		SupportsCredentials:    n.SupportsCredentials,
	}
	if n.MaxAge != nil {
		maxAge := *n.MaxAge
		cfg.MaxAge = &maxAge
	}
	return &cfg
}
