/*
Package cors provides [net/http] middleware for
[Cross-Origin Resource Sharing (CORS)] that is scoped to paths and hosts.

A [Middleware] only acts on requests whose path is covered by its
configuration. For those, it answers [CORS-preflight requests] itself
with a 204 (No Content) response and decorates the responses of all other
requests with the CORS response headers its configuration calls for.
Requests whose path is not covered reach the wrapped handler untouched.

Configurations are interpreted permissively, in the manner of
configuration files: see [Config] and [FromMap]. Package
[github.com/pathcors/cors/configfile] loads them from YAML or JSON files.

Care is required for CORS middleware to work as intended.
Follow the rules listed below:

  - Because [CORS-preflight requests] use [OPTIONS] as their method,
    you [SHOULD NOT] prevent OPTIONS requests from reaching your CORS
    middleware.
  - Because [CORS-preflight requests are not authenticated], authentication
    [SHOULD NOT] take place "ahead of" a CORS middleware.
    However, a CORS middleware [MAY] wrap an authentication middleware.
  - Intermediaries [SHOULD NOT] alter or augment the [CORS response headers]
    that are set by this library's middleware.
  - Multiple CORS middleware [MUST NOT] be stacked.

[CORS response headers]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS#the_http_response_headers
[CORS-preflight requests are not authenticated]: https://fetch.spec.whatwg.org/#cors-protocol-and-credentials
[CORS-preflight requests]: https://developer.mozilla.org/en-US/docs/Glossary/Preflight_request
[Cross-Origin Resource Sharing (CORS)]: https://developer.mozilla.org/en-US/docs/Web/HTTP/CORS
[MAY]: https://www.ietf.org/rfc/rfc2119.txt
[MUST NOT]: https://www.ietf.org/rfc/rfc2119.txt
[OPTIONS]: https://developer.mozilla.org/en-US/docs/Web/HTTP/Methods/OPTIONS
[SHOULD NOT]: https://www.ietf.org/rfc/rfc2119.txt
*/
package cors
