package cors

import (
	"net/http"

	"github.com/pathcors/cors/internal/headers"
	"github.com/pathcors/cors/internal/methods"
	"github.com/pathcors/cors/internal/util"
)

// A rule computes the value of one CORS response header from the request
// headers. It reports false if the header must be omitted.
type rule struct {
	name  string
	value func(icfg *internalConfig, reqHdrs http.Header) (string, bool)
}

// rules are applied, in this order, only once
// Access-Control-Allow-Origin has been set.
var rules = [...]rule{
	{headers.ACAC, (*internalConfig).allowCredentials},
	{headers.ACAM, (*internalConfig).allowMethods},
	{headers.ACAH, (*internalConfig).allowHeaders},
	{headers.ACEH, (*internalConfig).exposeHeaders},
	{headers.ACMA, (*internalConfig).maxAge},
}

// applyHeaders sets the CORS response headers in resHdrs and reports
// whether it set Access-Control-Allow-Origin. Headers are set rather than
// added, so applying them twice is the same as applying them once.
func (icfg *internalConfig) applyHeaders(resHdrs, reqHdrs http.Header) bool {
	acao, ok := icfg.allowOrigin(reqHdrs)
	if !ok {
		return false
	}
	resHdrs.Set(headers.ACAO, acao)
	for _, r := range rules {
		if v, ok := r.value(icfg, reqHdrs); ok {
			resHdrs.Set(r.name, v)
		}
	}
	return true
}

func (icfg *internalConfig) allowOrigin(reqHdrs http.Header) (string, bool) {
	if icfg.origins.AllowsAll() && !icfg.credentialed {
		return headers.ValueWildcard, true
	}
	// Note that the request's origin is deliberately not checked here:
	// with a single allowed origin, browsers do the checking.
	if origin, ok := icfg.origins.Single(); ok {
		return origin, true
	}
	origin, ok := corsOrigin(reqHdrs)
	if !ok || !icfg.origins.Contains(origin) {
		return "", false
	}
	return origin, true
}

// corsOrigin returns the value of the Origin header and true,
// if reqHdrs belong to a CORS request; otherwise it returns "" and false.
func corsOrigin(reqHdrs http.Header) (string, bool) {
	origin, found := headers.First(reqHdrs, headers.Origin)
	if !found || !util.IsFieldValue(origin) {
		return "", false
	}
	return origin, true
}

func (icfg *internalConfig) allowCredentials(http.Header) (string, bool) {
	return headers.ValueTrue, icfg.credentialed
}

func (icfg *internalConfig) allowMethods(reqHdrs http.Header) (string, bool) {
	if !icfg.allowAnyMethod {
		return icfg.acam, icfg.acam != ""
	}
	acrm, found := headers.First(reqHdrs, headers.ACRM)
	if !found {
		return "", false
	}
	acrm = methods.Normalize(acrm)
	return acrm, util.IsFieldValue(acrm)
}

func (icfg *internalConfig) allowHeaders(reqHdrs http.Header) (string, bool) {
	if !icfg.allowAnyHeader {
		return icfg.acah, icfg.acah != ""
	}
	acrh, found := headers.First(reqHdrs, headers.ACRH)
	if !found {
		return "", false
	}
	return acrh, util.IsFieldValue(acrh)
}

func (icfg *internalConfig) exposeHeaders(http.Header) (string, bool) {
	return icfg.aceh, icfg.aceh != ""
}

func (icfg *internalConfig) maxAge(http.Header) (string, bool) {
	return icfg.acma, icfg.maxAgeSet
}

// isPreflight reports whether r is a CORS-preflight request.
// The method comparison is case-sensitive, as methods are.
func isPreflight(r *http.Request) bool {
	_, found := headers.First(r.Header, headers.ACRM)
	return r.Method == http.MethodOptions && found
}
