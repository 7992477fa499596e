package main

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pathcors/cors/internal/audit"
)

var errCheckFailed = errors.New("check failed")

func newCheckCmd() *cobra.Command {
	var (
		strict bool
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:   "check <config-file>",
		Short: "Validate a CORS configuration file and audit it for risky settings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, _, err := loadMiddleware(args[0])
			if cfg == nil {
				return err
			}
			if err != nil {
				fmt.Fprintln(out, "✗ Config is invalid")
				for _, msg := range describeErrors(err) {
					fmt.Fprintf(out, "  %s\n", msg)
				}
				return errCheckFailed
			}
			findings := audit.Check(cfg)
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if findings == nil {
					findings = []audit.Finding{}
				}
				if err := enc.Encode(findings); err != nil {
					return err
				}
			} else {
				fmt.Fprintln(out, "✓ Config is valid")
				fmt.Fprintf(out, "  Paths:    %s\n", cfg.Paths)
				fmt.Fprintf(out, "  Origins:  %d exact or wildcard, %d regexp\n",
					len(cfg.AllowedOrigins), len(cfg.AllowedOriginsPatterns))
				fmt.Fprintf(out, "  Findings: %d\n", len(findings))
				for _, f := range findings {
					fmt.Fprintf(out, "  - %s\n", f)
				}
			}
			if strict && audit.Warnings(findings) > 0 {
				return errCheckFailed
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&strict, "strict", false, "Fail if the audit reports any warning")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print findings as JSON")
	return cmd
}
