package main

import (
	"github.com/spf13/cobra"
)

// newCmdConfig returns a command that validates and prints the effective configuration.
func newCmdConfig() *cobra.Command {
	var partial bool
	c := &cobra.Command{
		Use:   "config",
		Short: "Validate and print the effective configuration (token redacted)",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			if err := cfg.Validate(!partial); err != nil {
				return err
			}
			out, err := cfg.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
	c.Flags().BoolVar(&partial, "partial", false, "Skip balancer validation (token and ids may be missing)")
	return c
}
