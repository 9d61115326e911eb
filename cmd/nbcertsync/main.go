package main

import (
	"context"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	_ "github.com/kompox/nbcertsync/adapters/drivers/balancer/linode"
	"github.com/kompox/nbcertsync/config/nbcfg"
	"github.com/kompox/nbcertsync/internal/logging"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "nbcertsync",
		Short:   "Push cert-manager TLS Secrets to a Linode NodeBalancer",
		Long:    "nbcertsync receives certificate issuance webhooks, reads the referenced TLS Secret and updates the HTTPS configuration of a Linode NodeBalancer.",
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			// Show help by default when no subcommand is provided.
			return cmd.Help()
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringP("config", "c", os.Getenv("NBCERTSYNC_CONFIG"), "Path to nbcertsync.yml (env NBCERTSYNC_CONFIG)")
	cmd.PersistentFlags().String("log-format", "", "Log format (human|text|json) (env LOG_FORMAT)")
	cmd.PersistentFlags().String("log-level", "", "Log level (DEBUG|INFO|WARN|ERROR) (env LOG_LEVEL)")
	nbcfg.BindFlags(cmd.PersistentFlags())

	cmd.PersistentPreRunE = func(c *cobra.Command, _ []string) error {
		cfg, err := loadConfig(c)
		if err != nil {
			return err
		}
		level, err := logging.ParseLevel(cfg.Log.Level)
		if err != nil {
			return err
		}
		l, err := logging.New(cfg.Log.Format, level)
		if err != nil {
			return err
		}
		l = l.With("runId", uuid.NewString())
		ctx := logging.WithLogger(c.Context(), l)
		ctx = withConfig(ctx, cfg)
		c.SetContext(ctx)
		quietKlog()
		return nil
	}

	// Add subcommands
	cmd.AddCommand(newCmdVersion())
	cmd.AddCommand(newCmdConfig())
	cmd.AddCommand(newCmdServe())
	cmd.AddCommand(newCmdSync())
	cmd.AddCommand(newCmdCheck())
	return cmd
}

func main() {
	root := newRootCmd()
	root.SetContext(context.Background())
	executed, err := root.ExecuteC()
	if err != nil {
		ctx := root.Context()
		if executed != nil {
			ctx = executed.Context()
		}
		logging.FromContext(ctx).Errorf(ctx, "Failed: %s", err)
		os.Exit(1)
	}
}
