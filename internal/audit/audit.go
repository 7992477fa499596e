// Package audit reports CORS configurations that are legal but likely
// to be dysfunctional or insecure.
package audit

import (
	"fmt"
	"net"
	"slices"
	"strings"

	"golang.org/x/net/idna"
	"golang.org/x/net/publicsuffix"

	"github.com/pathcors/cors"
	"github.com/pathcors/cors/internal/headers"
	"github.com/pathcors/cors/internal/methods"
	"github.com/pathcors/cors/internal/util"
	"github.com/pathcors/cors/internal/wildcard"
)

// Severity grades findings.
type Severity string

const (
	Warning Severity = "warning"
	Info    Severity = "info"
)

// Finding codes.
const (
	CodeNoPaths               = "no-paths"
	CodeCredentialedAllowAll  = "credentialed-allow-all"
	CodeSingleOrigin          = "single-origin"
	CodePublicSuffixWildcard  = "public-suffix-wildcard"
	CodeNonASCIIOrigin        = "non-ascii-origin"
	CodeInvalidOrigin         = "invalid-origin"
	CodeInsecureOrigin        = "insecure-origin"
	CodeInvalidMethod         = "invalid-method"
	CodeForbiddenMethod       = "forbidden-method"
	CodeInvalidHeader         = "invalid-header"
	CodeForbiddenHeader       = "forbidden-header"
	CodeProhibitedHeader      = "prohibited-header"
	CodeSafelistedHeader      = "safelisted-header"
	CodeCredentialedExposeAll = "credentialed-expose-all"
	CodeLongMaxAge            = "long-max-age"
)

// maxAgeUpperBound is the highest max-age value, in seconds, that any
// major browser honors.
const maxAgeUpperBound = 86_400

// A Finding describes one questionable setting of a configuration.
type Finding struct {
	Severity Severity `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Field    string   `json:"field" yaml:"field"`
	Value    string   `json:"value,omitempty" yaml:"value,omitempty"`
	Message  string   `json:"message" yaml:"message"`
}

func (f Finding) String() string {
	if f.Value == "" {
		return fmt.Sprintf("%s [%s] %s: %s", f.Severity, f.Code, f.Field, f.Message)
	}
	return fmt.Sprintf("%s [%s] %s %q: %s", f.Severity, f.Code, f.Field, f.Value, f.Message)
}

// Check audits cfg. It does not validate cfg: settings that
// [cors.NewMiddleware] rejects are not reported.
func Check(cfg *cors.Config) []Finding {
	var c checker
	c.paths(cfg.Paths)
	c.origins(cfg)
	c.methods(cfg.AllowedMethods)
	c.requestHeaders(cfg.AllowedHeaders)
	c.responseHeaders(cfg.ExposedHeaders, cfg.SupportsCredentials)
	c.maxAge(cfg.MaxAge)
	return c.findings
}

// Warnings returns the number of findings of severity Warning.
func Warnings(findings []Finding) int {
	var n int
	for _, f := range findings {
		if f.Severity == Warning {
			n++
		}
	}
	return n
}

type checker struct {
	findings []Finding
}

func (c *checker) add(sev Severity, code, field, value, msg string) {
	f := Finding{
		Severity: sev,
		Code:     code,
		Field:    field,
		Value:    value,
		Message:  msg,
	}
	c.findings = append(c.findings, f)
}

func (c *checker) paths(p cors.Paths) {
	if len(p.Global) > 0 {
		return
	}
	for _, patterns := range p.Hosts {
		if len(patterns) > 0 {
			return
		}
	}
	c.add(Warning, CodeNoPaths, "paths", "", "the middleware covers no path and lets every request through")
}

func (c *checker) origins(cfg *cors.Config) {
	const field = "allowed_origins"
	if slices.Contains(cfg.AllowedOrigins, headers.ValueWildcard) {
		if cfg.SupportsCredentials {
			const msg = "all origins are allowed with credentials: the middleware reflects any origin, which lets any site read credentialed responses"
			c.add(Warning, CodeCredentialedAllowAll, field, headers.ValueWildcard, msg)
		}
		return
	}
	if len(cfg.AllowedOrigins) == 1 && len(cfg.AllowedOriginsPatterns) == 0 &&
		!wildcard.Contains(cfg.AllowedOrigins[0]) {
		const msg = "the single allowed origin is sent to every client without checking the request's origin; browsers enforce it, other clients do not"
		c.add(Info, CodeSingleOrigin, field, cfg.AllowedOrigins[0], msg)
	}
	for _, origin := range cfg.AllowedOrigins {
		c.origin(origin, cfg.SupportsCredentials)
	}
}

func (c *checker) origin(origin string, credentialed bool) {
	const field = "allowed_origins"
	scheme, hostport, found := strings.Cut(origin, "://")
	if !found || scheme == "" || hostport == "" {
		c.add(Warning, CodeInvalidOrigin, field, origin, "not of the form scheme://host[:port]; it can never match a browser's origin")
		return
	}
	host := hostport
	if h, _, err := net.SplitHostPort(hostport); err == nil {
		host = h
	}
	if wildcard.Contains(host) {
		c.wildcardHost(origin, host)
	} else if !isASCII(host) {
		ascii, err := idna.Lookup.ToASCII(host)
		if err != nil {
			c.add(Warning, CodeInvalidOrigin, field, origin, "the host is not a valid internationalized domain name")
		} else {
			msg := fmt.Sprintf("browsers send origins in ASCII form; use %q", scheme+"://"+strings.Replace(hostport, host, ascii, 1))
			c.add(Warning, CodeNonASCIIOrigin, field, origin, msg)
		}
	}
	if credentialed && scheme == "http" && !isLoopback(host) {
		c.add(Warning, CodeInsecureOrigin, field, origin, "credentialed access is granted to an insecure origin, exposed to network attackers")
	}
}

// wildcardHost checks the domain that follows the last asterisk of host.
func (c *checker) wildcardHost(origin, host string) {
	const field = "allowed_origins"
	domain := strings.TrimPrefix(host[strings.LastIndex(host, wildcard.Asterisk)+1:], ".")
	if domain == "" {
		c.add(Warning, CodePublicSuffixWildcard, field, origin, "the pattern covers hosts of any domain")
		return
	}
	if suffix, _ := publicsuffix.PublicSuffix(domain); suffix == domain {
		msg := fmt.Sprintf("the pattern covers every registrable domain under public suffix %q", domain)
		c.add(Warning, CodePublicSuffixWildcard, field, origin, msg)
	}
}

func (c *checker) methods(names []string) {
	const field = "allowed_methods"
	for _, name := range names {
		switch {
		case name == headers.ValueWildcard:
		case !methods.IsValid(name):
			c.add(Warning, CodeInvalidMethod, field, name, "not a valid method name")
		case methods.IsForbidden(name):
			c.add(Warning, CodeForbiddenMethod, field, name, "browsers never send requests with this method")
		}
	}
}

func (c *checker) requestHeaders(names []string) {
	const field = "allowed_headers"
	for _, name := range names {
		lower := util.ByteLowercase(name)
		switch {
		case name == headers.ValueWildcard:
		case !headers.IsValid(name):
			c.add(Warning, CodeInvalidHeader, field, name, "not a valid header name")
		case headers.IsForbiddenRequestHeaderName(lower):
			c.add(Warning, CodeForbiddenHeader, field, name, "browsers never let scripts set this header")
		case headers.IsProhibitedRequestHeaderName(lower):
			c.add(Warning, CodeProhibitedHeader, field, name, "this is a response header; clients have no reason to send it")
		}
	}
}

func (c *checker) responseHeaders(names []string, credentialed bool) {
	const field = "exposed_headers"
	for _, name := range names {
		lower := util.ByteLowercase(name)
		switch {
		case name == headers.ValueWildcard:
			if credentialed {
				c.add(Warning, CodeCredentialedExposeAll, field, name, "browsers treat the wildcard literally in credentialed responses")
			}
		case !headers.IsValid(name):
			c.add(Warning, CodeInvalidHeader, field, name, "not a valid header name")
		case headers.IsForbiddenResponseHeaderName(lower):
			c.add(Warning, CodeForbiddenHeader, field, name, "browsers never expose this header to scripts")
		case headers.IsProhibitedResponseHeaderName(lower):
			c.add(Warning, CodeProhibitedHeader, field, name, "this header never accompanies actual responses")
		case headers.IsSafelistedResponseHeaderName(lower):
			c.add(Info, CodeSafelistedHeader, field, name, "this header is exposed whether or not it is listed")
		}
	}
}

func (c *checker) maxAge(maxAge *int) {
	if maxAge == nil || *maxAge <= maxAgeUpperBound {
		return
	}
	msg := fmt.Sprintf("browsers cap the max age at %d seconds or less", maxAgeUpperBound)
	c.add(Info, CodeLongMaxAge, "max_age", fmt.Sprint(*maxAge), msg)
}

func isASCII(s string) bool {
	for i := range len(s) {
		if s[i] >= 0x80 {
			return false
		}
	}
	return true
}

func isLoopback(host string) bool {
	if host == "localhost" || strings.HasSuffix(host, ".localhost") {
		return true
	}
	ip := net.ParseIP(strings.Trim(host, "[]"))
	return ip != nil && ip.IsLoopback()
}
