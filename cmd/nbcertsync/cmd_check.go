package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	balancerdrv "github.com/kompox/nbcertsync/adapters/drivers/balancer"
	"github.com/kompox/nbcertsync/domain"
	"github.com/kompox/nbcertsync/internal/naming"
)

// newCmdCheck runs the deep health checks once and reports each result.
func newCmdCheck() *cobra.Command {
	var namespace string
	c := &cobra.Command{
		Use:   "check",
		Short: "Verify cluster and NodeBalancer access",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "check", cfg.Target().String())
			defer func() { cleanup(err) }()

			comp, err := buildComponents(cfg, nil)
			if err != nil {
				return err
			}
			defer comp.Close()

			ctx, cancel := context.WithTimeout(ctx, cfg.Server.HealthTimeout)
			defer cancel()

			out := cmd.OutOrStdout()
			var errs []error
			checkers := []domain.HealthChecker{
				comp.Kube,
				&balancerdrv.TargetChecker{Driver: comp.Driver, Target: cfg.Target()},
			}
			for _, hc := range checkers {
				if err := hc.Check(ctx); err != nil {
					fmt.Fprintf(out, "FAIL %s: %v\n", hc.Name(), err)
					errs = append(errs, fmt.Errorf("%s: %w", hc.Name(), err))
					continue
				}
				fmt.Fprintf(out, "ok   %s\n", hc.Name())
			}

			if namespace != "" {
				if err := naming.ValidateNamespace(namespace); err != nil {
					return err
				}
				allowed, err := comp.Kube.CanGetSecrets(ctx, namespace)
				switch {
				case err != nil:
					fmt.Fprintf(out, "FAIL rbac: %v\n", err)
					errs = append(errs, err)
				case !allowed:
					fmt.Fprintf(out, "FAIL rbac: cannot get secrets in %s\n", namespace)
					errs = append(errs, fmt.Errorf("cannot get secrets in namespace %s", namespace))
				default:
					fmt.Fprintf(out, "ok   rbac: get secrets in %s\n", namespace)
				}
			}
			return errors.Join(errs...)
		},
	}
	c.Flags().StringVarP(&namespace, "namespace", "n", "", "Also verify that secrets can be read in this namespace")
	return c
}
