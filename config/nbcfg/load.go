package nbcfg

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Environment variable names.
const (
	EnvToken       = "LINODE_TOKEN"
	EnvTokenFile   = "LINODE_TOKEN_FILE"
	EnvAPIURL      = "LINODE_API_URL"
	EnvBalancerID  = "NODEBALANCER_ID"
	EnvConfigID    = "HTTPS_CONFIG_ID"
	EnvPort        = "PORT"
	EnvLogLevel    = "LOG_LEVEL"
	EnvLogFormat   = "LOG_FORMAT"
	EnvDedupTTL    = "DEDUP_TTL"
	EnvWebhookPath = "WEBHOOK_PATH"
)

// Load reads a YAML file over the defaults. An empty path returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal YAML: %w", err)
	}
	return cfg, nil
}

// ApplyEnv overlays environment variables. lookup is os.LookupEnv outside tests.
// KUBECONFIG is not read here; the kube client resolves it itself.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	get := func(key string) (string, bool) {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		return v, ok && v != ""
	}
	if v, ok := get(EnvToken); ok {
		c.Balancer.Token = v
	}
	if v, ok := get(EnvTokenFile); ok {
		c.Balancer.TokenFile = v
	}
	if v, ok := get(EnvAPIURL); ok {
		c.Balancer.APIURL = v
	}
	if v, ok := get(EnvBalancerID); ok {
		c.Balancer.ID = v
	}
	if v, ok := get(EnvConfigID); ok {
		c.Balancer.ConfigID = v
	}
	if v, ok := get(EnvPort); ok {
		port, err := strconv.Atoi(v)
		if err != nil || port < 1 || port > 65535 {
			return fmt.Errorf("%s: invalid port %q", EnvPort, v)
		}
		c.Server.Addr = ":" + v
	}
	if v, ok := get(EnvWebhookPath); ok {
		c.Server.WebhookPath = v
	}
	if v, ok := get(EnvLogLevel); ok {
		c.Log.Level = v
	}
	if v, ok := get(EnvLogFormat); ok {
		c.Log.Format = v
	}
	if v, ok := get(EnvDedupTTL); ok {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("%s: %w", EnvDedupTTL, err)
		}
		c.Sync.DedupTTL = d
	}
	return nil
}

// ResolveToken reads Balancer.TokenFile when no inline token is set.
func (c *Config) ResolveToken() error {
	if c.Balancer.Token != "" || c.Balancer.TokenFile == "" {
		return nil
	}
	data, err := os.ReadFile(c.Balancer.TokenFile)
	if err != nil {
		return fmt.Errorf("failed to read token file: %w", err)
	}
	c.Balancer.Token = strings.TrimSpace(string(data))
	return nil
}

// Redacted returns a copy safe to print.
func (c *Config) Redacted() *Config {
	cp := *c
	if cp.Balancer.Token != "" {
		cp.Balancer.Token = "REDACTED"
	}
	return &cp
}

// YAML renders the configuration with the token redacted.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c.Redacted())
}
