// Package corsmetrics exposes the decisions of CORS middleware as
// Prometheus metrics.
//
//	m := corsmetrics.New(prometheus.DefaultRegisterer)
//	mw.SetObserver(m.Observe)
package corsmetrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pathcors/cors"
)

// Label values of the scope label.
const (
	ScopeIn  = "in"
	ScopeOut = "out"
)

// Label values of the kind label.
const (
	KindPreflight = "preflight"
	KindActual    = "actual"
)

// Metrics counts the requests processed by CORS middleware.
type Metrics struct {
	requestsTotal *prometheus.CounterVec
}

// New creates the metrics and registers them with reg,
// or with the default registerer if reg is nil.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "cors",
			Name:      "requests_total",
			Help:      "Total requests processed by the CORS middleware.",
		}, []string{"scope", "kind", "allowed"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.requestsTotal)
	return m
}

// Observe records d. Its signature matches [cors.Observer].
func (m *Metrics) Observe(_ *http.Request, d cors.Decision) {
	if m == nil {
		return
	}
	scope := ScopeOut
	if d.InScope {
		scope = ScopeIn
	}
	kind := KindActual
	if d.Preflight {
		kind = KindPreflight
	}
	m.requestsTotal.WithLabelValues(scope, kind, strconv.FormatBool(d.Allowed)).Inc()
}

// RequestsTotal returns the counter of requests with the given labels.
func (m *Metrics) RequestsTotal(scope, kind string, allowed bool) prometheus.Counter {
	return m.requestsTotal.WithLabelValues(scope, kind, strconv.FormatBool(allowed))
}
