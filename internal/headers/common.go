package headers

import (
	"net/http"

	"golang.org/x/net/http/httpguts"
)

// header names in canonical format
const (
	// request headers
	Origin = "Origin"
	ACRM   = "Access-Control-Request-Method"
	ACRH   = "Access-Control-Request-Headers"

	// response headers, in the order in which they get applied
	ACAO = "Access-Control-Allow-Origin"
	ACAC = "Access-Control-Allow-Credentials"
	ACAM = "Access-Control-Allow-Methods"
	ACAH = "Access-Control-Allow-Headers"
	ACEH = "Access-Control-Expose-Headers"
	ACMA = "Access-Control-Max-Age"
)

const (
	ValueTrue     = "true"
	ValueWildcard = "*"
)

// ValueSep separates the elements of the list-based values
// this library writes.
const ValueSep = ", "

// IsValid reports whether name is a valid header name,
// [per the Fetch standard].
//
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#header-name
func IsValid(name string) bool {
	return httpguts.ValidHeaderFieldName(name)
}

// First returns the first value associated to k in hdrs, if any and
// non-empty, and true; otherwise, it returns "" and false.
// Precondition: k is in canonical format (see [http.CanonicalHeaderKey]).
//
// Contrary to [http.Header.Get], First spares the canonicalization of k.
func First(hdrs http.Header, k string) (string, bool) {
	v, found := hdrs[k]
	if !found || len(v) == 0 || v[0] == "" {
		return "", false
	}
	return v[0], true
}
