package headers

import "github.com/pathcors/cors/internal/util"

// IsForbiddenResponseHeaderName reports whether name is a
// forbidden response-header name [per the Fetch standard],
// i.e. one that browsers never expose to scripts.
//
// Precondition: name is a valid and [byte-lowercase] header name.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#forbidden-response-header-name
func IsForbiddenResponseHeaderName(name string) bool {
	return name == "set-cookie" || name == "set-cookie2"
}

// IsProhibitedResponseHeaderName reports whether name is a request header
// or a preflight-only response header. Attempts to expose such headers
// almost always stem from some misunderstanding of CORS.
//
// Precondition: name is a valid and [byte-lowercase] header name.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
func IsProhibitedResponseHeaderName(name string) bool {
	return prohibitedResponseHeaderNames.Contains(name)
}

var prohibitedResponseHeaderNames = util.NewSet(
	"origin",
	"access-control-request-method",
	"access-control-request-headers",
	"access-control-allow-methods",
	"access-control-allow-headers",
	"access-control-max-age",
)

// IsSafelistedResponseHeaderName reports whether name is a
// safelisted response-header name [per the Fetch standard];
// such headers are exposed whether or not they are listed.
//
// Precondition: name is a valid and [byte-lowercase] header name.
//
// [byte-lowercase]: https://infra.spec.whatwg.org/#byte-lowercase
// [per the Fetch standard]: https://fetch.spec.whatwg.org/#cors-safelisted-response-header-name
func IsSafelistedResponseHeaderName(name string) bool {
	return safelistedResponseHeaderNames.Contains(name)
}

var safelistedResponseHeaderNames = util.NewSet(
	"cache-control",
	"content-language",
	"content-length",
	"content-type",
	"expires",
	"last-modified",
	"pragma",
)
