package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	balancerdrv "github.com/kompox/nbcertsync/adapters/drivers/balancer"
	"github.com/kompox/nbcertsync/adapters/kube"
	"github.com/kompox/nbcertsync/config/nbcfg"
	"github.com/kompox/nbcertsync/internal/metrics"
	"github.com/kompox/nbcertsync/usecase/certsync"
)

type configKey struct{}

func withConfig(ctx context.Context, cfg *nbcfg.Config) context.Context {
	return context.WithValue(ctx, configKey{}, cfg)
}

// configFromContext returns the configuration loaded in PersistentPreRunE.
func configFromContext(ctx context.Context) (*nbcfg.Config, error) {
	if cfg, ok := ctx.Value(configKey{}).(*nbcfg.Config); ok && cfg != nil {
		return cfg, nil
	}
	return nil, fmt.Errorf("configuration not loaded")
}

// loadConfig layers defaults, the YAML file, environment and flags.
// It does not validate; commands validate what they need.
func loadConfig(cmd *cobra.Command) (*nbcfg.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := nbcfg.Load(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.ApplyFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	if f := cmd.Flags().Lookup("log-format"); f != nil && f.Changed {
		cfg.Log.Format = f.Value.String()
	}
	if f := cmd.Flags().Lookup("log-level"); f != nil && f.Changed {
		cfg.Log.Level = f.Value.String()
	}
	if err := cfg.ResolveToken(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// components is everything a sync needs, built from one configuration.
type components struct {
	Config  *nbcfg.Config
	Kube    *kube.Client
	Driver  balancerdrv.Driver
	UseCase *certsync.UseCase
	Metrics *metrics.Recorder
}

// buildComponents validates cfg and wires the kube client, the balancer
// driver and the orchestrator. Call Close on the result.
func buildComponents(cfg *nbcfg.Config, rec *metrics.Recorder) (*components, error) {
	if err := cfg.Validate(true); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	kc, err := kube.NewClient(cfg.KubeOptions(userAgent()))
	if err != nil {
		return nil, fmt.Errorf("failed to create kube client: %w", err)
	}
	factory, ok := balancerdrv.GetDriverFactory(cfg.Balancer.Driver)
	if !ok {
		return nil, fmt.Errorf("unknown balancer driver %q (available: %v)", cfg.Balancer.Driver, balancerdrv.Names())
	}
	drv, err := factory(cfg.DriverSettings(userAgent(), rec))
	if err != nil {
		return nil, fmt.Errorf("failed to create %s driver: %w", cfg.Balancer.Driver, err)
	}
	fetcher := kube.NewSecretFetcher(kc.Clientset, cfg.Kube.CertKey, cfg.Kube.KeyKey)
	uc := certsync.New(fetcher, drv, cfg.Target(), cfg.SyncPolicy(), rec)
	return &components{Config: cfg, Kube: kc, Driver: drv, UseCase: uc, Metrics: rec}, nil
}

func (c *components) Close() {
	c.UseCase.Close()
}
