package main

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/pathcors/cors"
	"github.com/pathcors/cors/configfile"
	"github.com/pathcors/cors/corsmetrics"
)

func newServeCmd() *cobra.Command {
	var (
		addr  string
		debug bool
	)
	cmd := &cobra.Command{
		Use:   "serve <config-file>",
		Short: "Run a demo server behind the configured CORS middleware",
		Long: `Run a demo server behind the configured CORS middleware.
Every path answers with a description of the request; /metrics exposes
Prometheus metrics. Send SIGHUP to reload the configuration file.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := args[0]
			_, mw, err := loadMiddleware(path)
			if err != nil {
				return err
			}
			mw.SetDebug(debug)
			return serve(cmd.Context(), addr, path, mw, slog.Default())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":8080", "Listen address")
	cmd.Flags().BoolVar(&debug, "debug", false, "Log every CORS decision at debug level")
	return cmd
}

func serve(ctx context.Context, addr, path string, mw *cors.Middleware, logger *slog.Logger) error {
	if ctx == nil {
		ctx = context.Background()
	}
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	metrics := corsmetrics.New(reg)
	mw.SetObserver(metrics.Observe)

	srv := &http.Server{
		Addr:              addr,
		Handler:           newRouter(mw, reg),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go watchReload(ctx, hup, path, mw, logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("shutdown failed", "error", err)
		}
	}()

	logger.Info("listening", "addr", addr, "config", path)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	logger.Info("server stopped")
	return nil
}

// newRouter builds the demo server's router.
func newRouter(mw *cors.Middleware, reg *prometheus.Registry) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(mw.Wrap)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	r.HandleFunc("/*", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]string{
			"method":     r.Method,
			"host":       r.Host,
			"path":       r.URL.Path,
			"request_id": middleware.GetReqID(r.Context()),
		})
	})
	return r
}

func watchReload(ctx context.Context, hup <-chan os.Signal, path string, mw *cors.Middleware, logger *slog.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			logReload(logger, path, reload(path, mw))
		}
	}
}

// reload reconfigures mw from the file at path. On failure,
// mw keeps its current configuration.
func reload(path string, mw *cors.Middleware) error {
	cfg, err := configfile.Load(path)
	if err != nil {
		return err
	}
	return mw.Reconfigure(&cfg)
}
