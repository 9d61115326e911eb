package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/naming"
)

// newCmdSync runs one sync outside the webhook, e.g. after a manual renewal.
func newCmdSync() *cobra.Command {
	var namespace, secret string
	c := &cobra.Command{
		Use:   "sync",
		Short: "Push one TLS Secret to the NodeBalancer once",
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			cfg, err := configFromContext(cmd.Context())
			if err != nil {
				return err
			}
			req := model.TriggerRequest{SecretNamespace: namespace, SecretName: secret, Source: "cli"}
			ctx, cleanup := withCmdRunLogger(cmd.Context(), "sync", req.Key())
			defer func() { cleanup(err) }()

			comp, err := buildComponents(cfg, nil)
			if err != nil {
				return err
			}
			defer comp.Close()

			res := comp.UseCase.Sync(ctx, req)
			if res.Err != nil {
				return fmt.Errorf("sync failed at %s stage: %w", res.Stage, res.Err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "ok secret=%s target=%s fingerprint=%s fetchAttempts=%d pushAttempts=%d\n",
				req.Key(), res.Target, naming.ShortHash(res.Fingerprint, 12), res.FetchAttempts, res.PushAttempts)
			return nil
		},
	}
	c.Flags().StringVarP(&namespace, "namespace", "n", "default", "Namespace of the TLS Secret")
	c.Flags().StringVarP(&secret, "secret", "s", "", "Name of the TLS Secret")
	_ = c.MarkFlagRequired("secret")
	return c
}
