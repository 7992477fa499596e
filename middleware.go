package cors

import (
	"log/slog"
	"net/http"
	"sync/atomic"

	"github.com/pathcors/cors/internal/headers"
)

// A Middleware is a CORS middleware.
// Call its [*Middleware.Wrap] method to apply it to a [http.Handler].
//
// The zero value is ready to use but is a mere "passthrough" middleware,
// i.e. a middleware that simply delegates to the handler(s) it wraps.
// To obtain a proper CORS middleware, you should call [NewMiddleware]
// and pass it a [Config].
//
// For every request whose path is covered by its configuration,
// a Middleware
//   - answers CORS-preflight requests itself, with a 204 (No Content)
//     response, without invoking the wrapped handler;
//   - sets the CORS response headers of all other requests before
//     invoking the wrapped handler.
//
// Requests whose path is not covered are passed to the wrapped handler
// untouched.
//
// Middleware have a debug mode,
// which can be toggled by calling their [*Middleware.SetDebug] method
// and queried by calling their [*Middleware.Debug] method.
// When debug mode is on, the middleware logs every decision it makes
// at [slog.LevelDebug], via the logger set by [*Middleware.SetLogger].
//
// A Middleware must not be copied after first use.
//
// Middleware are safe for concurrent use by multiple goroutines.
type Middleware struct {
	icfg     atomic.Pointer[internalConfig]
	debug    atomic.Bool
	logger   atomic.Pointer[slog.Logger]
	observer atomic.Pointer[Observer]
}

// A Decision summarizes how a [Middleware] handled a request.
type Decision struct {
	// InScope reports whether the request's path is covered by
	// the middleware's configuration.
	InScope bool
	// Preflight reports whether the request was a CORS-preflight request
	// answered by the middleware itself.
	Preflight bool
	// Allowed reports whether the response grants access, i.e. whether it
	// carries an Access-Control-Allow-Origin header.
	Allowed bool
}

// An Observer is notified of every decision a [Middleware] makes.
// It must be safe for concurrent use and must not modify r.
type Observer func(r *http.Request, d Decision)

// NewMiddleware creates a CORS middleware that behaves in accordance with cfg.
// If cfg is invalid, it returns a nil [*Middleware] and some non-nil error.
// Otherwise, it returns a pointer to a CORS [Middleware] and a nil error.
//
// The debug mode of the resulting middleware is off.
//
// Mutating the fields of cfg after NewMiddleware has returned a functioning
// middleware does not alter the latter's behavior.
// However, you can reconfigure a [Middleware] via its
// [*Middleware.Reconfigure] method.
//
// If you need to programmatically handle the configuration errors constitutive
// of the resulting error, rely on package [github.com/pathcors/cors/cfgerrors].
func NewMiddleware(cfg Config) (*Middleware, error) {
	icfg, err := newInternalConfig(&cfg)
	if err != nil {
		return nil, err
	}
	var m Middleware
	m.icfg.Store(icfg)
	return &m, nil
}

// Reconfigure reconfigures m in accordance with cfg,
// leaving m's debug mode, logger, and observer unchanged.
// If cfg is nil, it turns m into a passthrough middleware.
// If *cfg is invalid, it leaves m unchanged and returns some non-nil error.
// Otherwise, it successfully reconfigures m and returns a nil error.
// The following statement is guaranteed to be a no-op
// (albeit a relatively expensive one):
//
//	m.Reconfigure(m.Config())
//
// You can safely reconfigure a middleware
// even as it's concurrently processing requests.
func (m *Middleware) Reconfigure(cfg *Config) error {
	icfg, err := newInternalConfig(cfg)
	if err != nil {
		return err
	}
	m.icfg.Store(icfg)
	return nil
}

// Wrap applies the CORS middleware to the specified handler.
func (m *Middleware) Wrap(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		icfg := m.icfg.Load()
		if icfg == nil { // passthrough middleware
			h.ServeHTTP(w, r)
			return
		}
		if !icfg.paths.Match(r.Host, r.URL.Path) {
			m.report(r, Decision{})
			h.ServeHTTP(w, r)
			return
		}
		if isPreflight(r) {
			allowed := icfg.applyHeaders(w.Header(), r.Header)
			w.WriteHeader(http.StatusNoContent)
			m.report(r, Decision{InScope: true, Preflight: true, Allowed: allowed})
			return
		}
		// Headers must be in place before h gets a chance to write
		// the response.
		allowed := icfg.applyHeaders(w.Header(), r.Header)
		m.report(r, Decision{InScope: true, Allowed: allowed})
		h.ServeHTTP(w, r)
	})
}

func (m *Middleware) report(r *http.Request, d Decision) {
	if o := m.observer.Load(); o != nil {
		(*o)(r, d)
	}
	if !m.debug.Load() {
		return
	}
	origin, _ := headers.First(r.Header, headers.Origin)
	m.Logger().LogAttrs(r.Context(), slog.LevelDebug, "cors decision",
		slog.String("method", r.Method),
		slog.String("host", r.Host),
		slog.String("path", r.URL.Path),
		slog.String("origin", origin),
		slog.Bool("in_scope", d.InScope),
		slog.Bool("preflight", d.Preflight),
		slog.Bool("allowed", d.Allowed),
	)
}

// SetDebug turns debug mode on (if b is true) or off (otherwise).
func (m *Middleware) SetDebug(b bool) {
	m.debug.Store(b)
}

// Debug reports whether m's debug mode is on.
func (m *Middleware) Debug() bool {
	return m.debug.Load()
}

// SetLogger sets the logger m uses in debug mode.
// A nil logger restores the default, [slog.Default].
func (m *Middleware) SetLogger(l *slog.Logger) {
	m.logger.Store(l)
}

// Logger returns the logger m uses in debug mode.
func (m *Middleware) Logger() *slog.Logger {
	if l := m.logger.Load(); l != nil {
		return l
	}
	return slog.Default()
}

// SetObserver registers o to be notified of m's decisions,
// replacing any observer registered earlier. A nil o unregisters it.
func (m *Middleware) SetObserver(o Observer) {
	if o == nil {
		m.observer.Store(nil)
		return
	}
	m.observer.Store(&o)
}

// Config returns a pointer to a deep copy of m's current configuration,
// after normalization; if m is a passthrough middleware,
// it simply returns nil.
// The following statement is guaranteed to be a no-op
// (albeit a relatively expensive one):
//
//	m.Reconfigure(m.Config())
//
// Mutating the fields of the result does not alter m's behavior.
// However, you can reconfigure a [Middleware] via its
// [*Middleware.Reconfigure] method.
func (m *Middleware) Config() *Config {
	return newConfig(m.icfg.Load())
}
