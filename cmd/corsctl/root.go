package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/pathcors/cors"
	"github.com/pathcors/cors/cfgerrors"
	"github.com/pathcors/cors/configfile"
	"github.com/pathcors/cors/internal/logging"
)

func newRootCmd() *cobra.Command {
	var logLevel, logFormat string
	root := &cobra.Command{
		Use:          "corsctl",
		Short:        "Check, normalize and exercise CORS configuration files",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Setup(cmd.ErrOrStderr(), logLevel, logFormat)
		},
	}
	root.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn or error")
	root.PersistentFlags().StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	root.AddCommand(
		newCheckCmd(),
		newProbeCmd(),
		newNormalizeCmd(),
		newServeCmd(),
	)
	return root
}

// loadMiddleware loads the configuration file at path and builds
// a middleware from it.
func loadMiddleware(path string) (*cors.Config, *cors.Middleware, error) {
	cfg, err := configfile.Load(path)
	if err != nil {
		return nil, nil, err
	}
	mw, err := cors.NewMiddleware(cfg)
	if err != nil {
		return &cfg, nil, err
	}
	return &cfg, mw, nil
}

// describeErrors lists the configuration errors contained in err,
// one per line.
func describeErrors(err error) []string {
	var msgs []string
	for err := range cfgerrors.All(err) {
		msgs = append(msgs, err.Error())
	}
	return msgs
}

func logReload(logger *slog.Logger, path string, err error) {
	if err != nil {
		logger.Error("config reload failed", "path", path, "error", err)
		return
	}
	logger.Info("config reloaded", "path", path)
}

func formatFlagValue(format string) (configfile.Format, error) {
	switch configfile.Format(format) {
	case configfile.FormatYAML, configfile.FormatJSON:
		return configfile.Format(format), nil
	default:
		return "", fmt.Errorf("unsupported format %q: use yaml or json", format)
	}
}
