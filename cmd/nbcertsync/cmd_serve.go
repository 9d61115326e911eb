package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	balancerdrv "github.com/kompox/nbcertsync/adapters/drivers/balancer"
	"github.com/kompox/nbcertsync/adapters/webhook"
	"github.com/kompox/nbcertsync/domain"
	"github.com/kompox/nbcertsync/internal/logging"
	"github.com/kompox/nbcertsync/internal/metrics"
)

// newCmdServe returns the long-running webhook server command.
func newCmdServe() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the certificate sync webhook",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "serve", cfg.Target().String())
			defer func() { cleanup(err) }()

			comp, err := buildComponents(cfg, metrics.New())
			if err != nil {
				return err
			}
			defer comp.Close()

			ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			srv := webhook.New(comp.UseCase, logging.FromContext(ctx), webhook.Options{
				Addr:           cfg.Server.Addr,
				Path:           cfg.Server.WebhookPath,
				HealthTimeout:  cfg.Server.HealthTimeout,
				ShutdownPeriod: cfg.Server.ShutdownTimeout,
				Metrics:        comp.Metrics,
				Checkers: []domain.HealthChecker{
					comp.Kube,
					&balancerdrv.TargetChecker{Driver: comp.Driver, Target: cfg.Target()},
				},
			})
			return srv.ListenAndServe(ctx)
		},
	}
}
