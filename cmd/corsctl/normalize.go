package main

import (
	"github.com/spf13/cobra"

	"github.com/pathcors/cors/configfile"
)

func newNormalizeCmd() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "normalize <config-file>",
		Short: "Print a configuration file as the middleware interprets it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			f, err := formatFlagValue(format)
			if err != nil {
				return err
			}
			_, mw, err := loadMiddleware(args[0])
			if err != nil {
				return err
			}
			data, err := configfile.Marshal(mw.Config(), f)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
	cmd.Flags().StringVar(&format, "format", "yaml", "Output format: yaml or json")
	return cmd
}
