package main

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pathcors/cors"
	"github.com/pathcors/cors/internal/logging"
)

type probeOptions struct {
	method  string
	url     string
	origin  string
	acrm    string
	acrh    string
	verbose bool
}

func newProbeCmd() *cobra.Command {
	var opts probeOptions
	cmd := &cobra.Command{
		Use:   "probe <config-file>",
		Short: "Show how the middleware responds to a synthetic request",
		Example: `  corsctl probe cors.yaml --url https://example.com/api/users --origin https://app.example.com
  corsctl probe cors.yaml --method OPTIONS --url https://example.com/api/users \
    --origin https://app.example.com --request-method PUT`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, mw, err := loadMiddleware(args[0])
			if err != nil {
				return err
			}
			if opts.verbose {
				mw.SetLogger(logging.New(cmd.ErrOrStderr(), "debug", "text"))
				mw.SetDebug(true)
			}
			return probe(cmd.OutOrStdout(), mw, &opts)
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.method, "method", http.MethodGet, "Request method")
	f.StringVar(&opts.url, "url", "http://localhost/", "Request URL; its host and path drive path matching")
	f.StringVar(&opts.origin, "origin", "", "Origin header")
	f.StringVar(&opts.acrm, "request-method", "", "Access-Control-Request-Method header")
	f.StringVar(&opts.acrh, "request-headers", "", "Access-Control-Request-Headers header")
	f.BoolVar(&opts.verbose, "verbose", false, "Log the middleware's decision")
	return cmd
}

func probe(w io.Writer, mw *cors.Middleware, opts *probeOptions) error {
	req, err := http.NewRequest(opts.method, opts.url, nil)
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	setIfNotEmpty(req.Header, "Origin", opts.origin)
	setIfNotEmpty(req.Header, "Access-Control-Request-Method", opts.acrm)
	setIfNotEmpty(req.Header, "Access-Control-Request-Headers", opts.acrh)

	var decision cors.Decision
	mw.SetObserver(func(_ *http.Request, d cors.Decision) { decision = d })
	defer mw.SetObserver(nil)

	var downstream bool
	next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		downstream = true
		w.WriteHeader(http.StatusOK)
	})
	rec := httptest.NewRecorder()
	mw.Wrap(next).ServeHTTP(rec, req)

	fmt.Fprintf(w, "%s %s (host %s)\n", req.Method, req.URL.Path, req.Host)
	fmt.Fprintf(w, "  in scope:   %t\n", decision.InScope)
	fmt.Fprintf(w, "  preflight:  %t\n", decision.Preflight)
	fmt.Fprintf(w, "  allowed:    %t\n", decision.Allowed)
	fmt.Fprintf(w, "  downstream: %t\n", downstream)
	fmt.Fprintf(w, "  status:     %d\n", rec.Code)
	names := slices.Sorted(func(yield func(string) bool) {
		for name := range rec.Header() {
			if strings.HasPrefix(name, "Access-Control-") && !yield(name) {
				return
			}
		}
	})
	for _, name := range names {
		fmt.Fprintf(w, "  %s: %s\n", name, rec.Header().Get(name))
	}
	return nil
}

func setIfNotEmpty(h http.Header, name, value string) {
	if value != "" {
		h.Set(name, value)
	}
}
