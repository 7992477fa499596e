package cors_test

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pathcors/cors"
)

func BenchmarkMiddleware(b *testing.B) {
	cases := []MiddlewareTestCase{
		{
			desc:       "no CORS",
			newHandler: newDummyHandler(),
			cases: []ReqTestCase{
				{
					desc:      "preflight",
					reqMethod: http.MethodOptions,
					reqPath:   "/api/users",
					reqHeaders: http.Header{
						headerOrigin: {"https://example.com"},
						headerACRM:   {http.MethodGet},
						headerACRH:   {"authorization"},
					},
				}, {
					desc:      "actual",
					reqMethod: http.MethodGet,
					reqPath:   "/api/users",
					reqHeaders: http.Header{
						headerOrigin: {"https://example.com"},
					},
				},
			},
		}, {
			desc:       "single origin some req headers",
			newHandler: newDummyHandler(),
			cfg: &cors.Config{
				Paths:          cors.Paths{Global: []string{"api/*"}},
				AllowedOrigins: []string{"https://example.com"},
				AllowedHeaders: []string{"Accept", "Content-Type", "X-Requested-With"},
			},
			cases: []ReqTestCase{
				{
					desc:      "preflight",
					reqMethod: http.MethodOptions,
					reqPath:   "/api/users",
					reqHeaders: http.Header{
						headerOrigin: {"https://example.com"},
						headerACRM:   {http.MethodGet},
						headerACRH:   {"content-type"},
					},
				}, {
					desc:      "actual",
					reqMethod: http.MethodGet,
					reqPath:   "/api/users",
					reqHeaders: http.Header{
						headerOrigin: {"https://example.com"},
					},
				}, {
					desc:      "actual out of scope",
					reqMethod: http.MethodGet,
					reqPath:   "/index.html",
					reqHeaders: http.Header{
						headerOrigin: {"https://example.com"},
					},
				},
			},
		}, {
			desc:       "credentialed allow all",
			newHandler: newDummyHandler(),
			cfg: &cors.Config{
				Paths:               cors.Paths{Global: []string{"*"}},
				AllowedOrigins:      []string{"*"},
				AllowedMethods:      []string{"*"},
				AllowedHeaders:      []string{"*"},
				SupportsCredentials: true,
				MaxAge:              ptr(30),
			},
			cases: []ReqTestCase{
				{
					desc:      "preflight",
					reqMethod: http.MethodOptions,
					reqPath:   "/api/users",
					reqHeaders: http.Header{
						headerOrigin: {"https://example.com"},
						headerACRM:   {http.MethodPut},
						headerACRH:   {"authorization,content-type"},
					},
				}, {
					desc:      "actual",
					reqMethod: http.MethodGet,
					reqPath:   "/api/users",
					reqHeaders: http.Header{
						headerOrigin: {"https://example.com"},
					},
				},
			},
		}, {
			desc:       "many origins many paths",
			newHandler: newDummyHandler(),
			cfg: &cors.Config{
				Paths:          cors.Paths{Global: manyPaths},
				AllowedOrigins: manyOrigins,
				AllowedMethods: []string{http.MethodGet, http.MethodPost},
			},
			cases: []ReqTestCase{
				{
					desc:      "preflight from allowed",
					reqMethod: http.MethodOptions,
					reqPath:   "/v99/users/42",
					reqHeaders: http.Header{
						headerOrigin: {"https://99.foo.bar.example.com:9090"},
						headerACRM:   {http.MethodPost},
					},
				}, {
					desc:      "actual from allowed by pattern",
					reqMethod: http.MethodGet,
					reqPath:   "/v99/users/42",
					reqHeaders: http.Header{
						headerOrigin: {"https://qux.foo.bar.example.com:7070"},
					},
				}, {
					desc:      "actual from disallowed",
					reqMethod: http.MethodGet,
					reqPath:   "/v99/users/42",
					reqHeaders: http.Header{
						headerOrigin: {"https://foo.example.org"},
					},
				},
			},
		},
	}

	for _, mwbc := range cases {
		if mwbc.cfg == nil {
			continue
		}
		var mw *cors.Middleware
		// benchmark initialization
		f := func(b *testing.B) {
			b.ReportAllocs()
			var err error
			for range b.N {
				mw, err = cors.NewMiddleware(*mwbc.cfg)
				if err != nil {
					b.Fatal(err)
				}
			}
		}
		b.Run("initialization "+mwbc.desc, f)

		// benchmark config
		f = func(b *testing.B) {
			if mw == nil { // in case subbenchmark 'initialization' wasn't run
				var err error
				mw, err = cors.NewMiddleware(*mwbc.cfg)
				if err != nil {
					b.Fatal(err)
				}
			}
			b.ReportAllocs()
			b.ResetTimer()
			for range b.N {
				mw.Config()
			}
		}
		b.Run("config         "+mwbc.desc, f)
	}

	// benchmark execution
	for _, mwbc := range cases {
		var handler http.Handler = mwbc.newHandler()
		var mw *cors.Middleware
		if mwbc.cfg != nil {
			var err error
			mw, err = cors.NewMiddleware(*mwbc.cfg)
			if err != nil {
				b.Fatal(err)
			}
			mw.SetLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
			handler = mw.Wrap(handler)
		}
		for _, bc := range mwbc.cases {
			f := func(b *testing.B) {
				req := newRequest(bc.reqMethod, bc.reqHost, bc.reqPath, bc.reqHeaders)
				b.ReportAllocs()
				b.ResetTimer()
				// We run benchmarks in parallel because typical workloads
				// for HTTP handlers are concurrent.
				b.RunParallel(func(pb *testing.PB) {
					for pb.Next() {
						rec := httptest.NewRecorder()
						handler.ServeHTTP(rec, req)
					}
				})
			}
			desc := fmt.Sprintf("exec       %s vs %s", mwbc.desc, bc.desc)
			if mw == nil {
				b.Run(desc, f)
				continue
			}
			mw.SetDebug(false)
			b.Run(desc, f)
			desc = fmt.Sprintf("exec debug %s vs %s", mwbc.desc, bc.desc)
			mw.SetDebug(true)
			b.Run(desc, f)
		}
	}
}

var (
	manyOrigins []string
	manyPaths   []string
)

func init() {
	const n = 100
	for i := range n {
		manyOrigins = append(
			manyOrigins,
			fmt.Sprintf("https://%d.example.com", i),
			fmt.Sprintf("https://%d.example.com:8080", i),
			fmt.Sprintf("https://%d.foo.bar.example.com:9090", i),
		)
		manyPaths = append(
			manyPaths,
			fmt.Sprintf("v%d/users/*", i),
			fmt.Sprintf("v%d/health", i),
		)
	}
	manyOrigins = append(manyOrigins, "https://*.foo.bar.example.com:7070")
}

var dummyHandler = http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
	io.WriteString(w, "Hello, World!")
})

func newDummyHandler() func() http.Handler {
	return func() http.Handler {
		return dummyHandler
	}
}
