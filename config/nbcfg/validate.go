package nbcfg

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strconv"
	"strings"

	"github.com/kompox/nbcertsync/internal/logging"
	"github.com/kompox/nbcertsync/internal/naming"
	"github.com/kompox/nbcertsync/internal/retry"
)

// Validate performs semantic validation. requireBalancer is false for
// commands that never talk to the provider.
func (c *Config) Validate(requireBalancer bool) error {
	var errs []error
	if err := c.Server.validate(); err != nil {
		errs = append(errs, fmt.Errorf("server: %w", err))
	}
	if err := c.Log.validate(); err != nil {
		errs = append(errs, fmt.Errorf("log: %w", err))
	}
	if err := c.Kube.validate(); err != nil {
		errs = append(errs, fmt.Errorf("kube: %w", err))
	}
	if requireBalancer {
		if err := c.Balancer.validate(); err != nil {
			errs = append(errs, fmt.Errorf("balancer: %w", err))
		}
	}
	if err := c.Sync.validate(); err != nil {
		errs = append(errs, fmt.Errorf("sync: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Server) validate() error {
	_, port, err := net.SplitHostPort(s.Addr)
	if err != nil {
		return fmt.Errorf("addr %q: %w", s.Addr, err)
	}
	if n, err := strconv.Atoi(port); err != nil || n < 1 || n > 65535 {
		return fmt.Errorf("addr %q: invalid port", s.Addr)
	}
	if !strings.HasPrefix(s.WebhookPath, "/") {
		return fmt.Errorf("webhookPath %q must start with /", s.WebhookPath)
	}
	switch s.WebhookPath {
	case "/health", "/health/deep", "/metrics":
		return fmt.Errorf("webhookPath %q collides with a built-in route", s.WebhookPath)
	}
	if s.HealthTimeout < 0 || s.ShutdownTimeout < 0 {
		return fmt.Errorf("timeouts must not be negative")
	}
	return nil
}

func (l *Log) validate() error {
	switch strings.ToLower(l.Format) {
	case "", "human", "text", "json":
	default:
		return fmt.Errorf("unsupported format %q", l.Format)
	}
	if _, err := logging.ParseLevel(l.Level); err != nil {
		return err
	}
	return nil
}

func (k *Kube) validate() error {
	if k.CertKey == "" || k.KeyKey == "" {
		return fmt.Errorf("certKey and keyKey must not be empty")
	}
	if k.CertKey == k.KeyKey {
		return fmt.Errorf("certKey and keyKey must differ")
	}
	return nil
}

func (b *Balancer) validate() error {
	var errs []error
	if b.Driver == "" {
		errs = append(errs, fmt.Errorf("driver is required"))
	}
	if strings.TrimSpace(b.Token) == "" {
		errs = append(errs, fmt.Errorf("API token is required (%s or %s)", EnvToken, EnvTokenFile))
	}
	if err := naming.ValidateNumericID(b.ID, "nodebalancer id ("+EnvBalancerID+")"); err != nil {
		errs = append(errs, err)
	}
	if err := naming.ValidateNumericID(b.ConfigID, "https config id ("+EnvConfigID+")"); err != nil {
		errs = append(errs, err)
	}
	if b.APIURL != "" {
		if u, err := url.Parse(b.APIURL); err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("invalid apiURL %q", b.APIURL))
		}
	}
	if b.Timeout < 0 || b.RateLimit < 0 || b.RateBurst < 0 {
		errs = append(errs, fmt.Errorf("timeout and rate settings must not be negative"))
	}
	if err := validatePolicy(b.Retry); err != nil {
		errs = append(errs, fmt.Errorf("retry: %w", err))
	}
	return errors.Join(errs...)
}

func (s *Sync) validate() error {
	if s.FetchTimeout < 0 || s.DedupTTL < 0 {
		return fmt.Errorf("fetchTimeout and dedupTTL must not be negative")
	}
	if err := validatePolicy(s.FetchRetry); err != nil {
		return fmt.Errorf("fetchRetry: %w", err)
	}
	return nil
}

func validatePolicy(p retry.Policy) error {
	if p.Attempts < 1 {
		return fmt.Errorf("attempts must be at least 1")
	}
	if p.InitialDelay < 0 || p.MaxDelay < 0 || p.Factor < 0 || p.Jitter < 0 {
		return fmt.Errorf("delays, factor and jitter must not be negative")
	}
	return nil
}
