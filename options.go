package cors

import (
	"encoding/json"
	"fmt"
	"maps"
	"math"
	"slices"
	"strconv"
	"strings"

	"github.com/pathcors/cors/cfgerrors"
)

// Keys recognized by [FromMap].
const (
	KeyPaths                  = "paths"
	KeyAllowedOrigins         = "allowed_origins"
	KeyAllowedOriginsPatterns = "allowed_origins_patterns"
	KeyAllowedMethods         = "allowed_methods"
	KeyAllowedHeaders         = "allowed_headers"
	KeyExposedHeaders         = "exposed_headers"
	KeySupportsCredentials    = "supports_credentials"
	KeyMaxAge                 = "max_age"
)

// FromMap builds a [Config] from a loosely typed mapping of options,
// such as one decoded from a JSON or YAML document.
//
// FromMap is permissive. Missing keys take their default value;
// unknown keys are ignored. A list option may be a sequence of strings
// (other elements are skipped) or a single string; a value of any other
// type falls back to the default. The paths option may be
//   - a sequence whose elements are either path patterns or mappings of
//     a host to a sequence of path patterns, or
//   - a mapping whose string values are path patterns and whose sequence
//     values are the path patterns of the host named by their key.
//
// An absent max_age stands for 0 and a null one leaves MaxAge unset.
// Any other max_age must be an integer (possibly in the form of an integral
// float or a decimal string); otherwise FromMap returns a
// [*cfgerrors.InvalidMaxAgeError]. Negative values are left for
// [NewMiddleware] to reject.
func FromMap(opts map[string]any) (Config, error) {
	cfg := Config{
		Paths:                  parsePaths(opts[KeyPaths]),
		AllowedOrigins:         stringList(opts[KeyAllowedOrigins]),
		AllowedOriginsPatterns: stringList(opts[KeyAllowedOriginsPatterns]),
		AllowedMethods:         stringList(opts[KeyAllowedMethods]),
		AllowedHeaders:         stringList(opts[KeyAllowedHeaders]),
		ExposedHeaders:         stringList(opts[KeyExposedHeaders]),
	}
	cfg.SupportsCredentials, _ = opts[KeySupportsCredentials].(bool)
	raw, found := opts[KeyMaxAge]
	if !found {
		var zero int
		cfg.MaxAge = &zero
		return cfg, nil
	}
	if raw == nil {
		return cfg, nil
	}
	maxAge, ok := coerceMaxAge(raw)
	if !ok {
		return Config{}, &cfgerrors.InvalidMaxAgeError{Value: raw, Reason: "type"}
	}
	cfg.MaxAge = &maxAge
	return cfg, nil
}

func stringList(v any) []string {
	switch v := v.(type) {
	case string:
		return []string{v}
	case []string:
		return slices.Clone(v)
	case []any:
		var out []string
		for _, elem := range v {
			if s, ok := elem.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

func parsePaths(v any) Paths {
	var p Paths
	switch v := v.(type) {
	case string:
		p.Global = []string{v}
	case []string:
		p.Global = slices.Clone(v)
	case []any:
		for _, elem := range v {
			switch elem := elem.(type) {
			case string:
				p.Global = append(p.Global, elem)
			case map[string]any:
				p.addHosts(elem)
			case map[any]any:
				p.addHosts(stringKeys(elem))
			}
		}
	case map[string]any:
		p.addEntries(v)
	case map[any]any:
		p.addEntries(stringKeys(v))
	}
	return p
}

// addEntries adds the entries of m, in key order, as global patterns
// (string values) or host-scoped patterns (sequence values).
func (p *Paths) addEntries(m map[string]any) {
	for _, k := range slices.Sorted(maps.Keys(m)) {
		switch v := m[k].(type) {
		case string:
			p.Global = append(p.Global, v)
		case []string, []any:
			p.addHost(k, stringList(v))
		}
	}
}

func (p *Paths) addHosts(m map[string]any) {
	for _, host := range slices.Sorted(maps.Keys(m)) {
		p.addHost(host, stringList(m[host]))
	}
}

func (p *Paths) addHost(host string, patterns []string) {
	if p.Hosts == nil {
		p.Hosts = make(map[string][]string)
	}
	p.Hosts[host] = append(p.Hosts[host], patterns...)
}

// stringKeys converts a mapping with arbitrary keys, as produced by some
// YAML decoders, by discarding the entries whose key is not a string.
func stringKeys(m map[any]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		if s, ok := k.(string); ok {
			out[s] = v
		}
	}
	return out
}

func coerceMaxAge(v any) (int, bool) {
	switch v := v.(type) {
	case int:
		return v, true
	case int8:
		return int(v), true
	case int16:
		return int(v), true
	case int32:
		return int(v), true
	case int64:
		return fitInt(v)
	case uint:
		return fitUint(uint64(v))
	case uint8:
		return int(v), true
	case uint16:
		return int(v), true
	case uint32:
		return fitUint(uint64(v))
	case uint64:
		return fitUint(v)
	case float32:
		return fitFloat(float64(v))
	case float64:
		return fitFloat(v)
	case json.Number:
		return parseInt(string(v))
	case string:
		return parseInt(v)
	default:
		return 0, false
	}
}

func fitInt(n int64) (int, bool) {
	if n < math.MinInt || n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func fitUint(n uint64) (int, bool) {
	if n > math.MaxInt {
		return 0, false
	}
	return int(n), true
}

func fitFloat(f float64) (int, bool) {
	// float64(math.MaxInt) rounds up to -math.MinInt, which is out of range.
	if f != math.Trunc(f) || f < math.MinInt || f >= -math.MinInt {
		return 0, false
	}
	return int(f), true
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		return n, true
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	return fitFloat(f)
}

// String returns a short human-readable representation of p.
func (p Paths) String() string {
	var b strings.Builder
	b.WriteString("[")
	for i, pattern := range p.Global {
		if i > 0 {
			b.WriteString(" ")
		}
		b.WriteString(strconv.Quote(pattern))
	}
	for _, host := range slices.Sorted(maps.Keys(p.Hosts)) {
		if b.Len() > 1 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s:%q", host, p.Hosts[host])
	}
	b.WriteString("]")
	return b.String()
}
