// Package nbcfg defines the nbcertsync process configuration.
//
// Values are layered: built-in defaults, an optional YAML file, environment
// variables, then command-line flags. Validate is called once before serving.
package nbcfg

import (
	"time"

	"github.com/kompox/nbcertsync/internal/retry"
)

// Config is the root of nbcertsync.yml.
type Config struct {
	Server   Server   `yaml:"server"`
	Log      Log      `yaml:"log"`
	Kube     Kube     `yaml:"kube"`
	Balancer Balancer `yaml:"balancer"`
	Sync     Sync     `yaml:"sync"`
}

// Server configures the webhook listener.
type Server struct {
	Addr            string        `yaml:"addr"`            // e.g. ":8080"
	WebhookPath     string        `yaml:"webhookPath"`     // trigger route
	HealthTimeout   time.Duration `yaml:"healthTimeout"`   // bound for /health/deep
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout"` // graceful drain
}

// Log selects the logger format and level.
type Log struct {
	Format string `yaml:"format"` // human | text | json
	Level  string `yaml:"level"`  // DEBUG | INFO | WARN | ERROR
}

// Kube configures cluster access. Empty Kubeconfig falls back to
// $KUBECONFIG, ~/.kube/config, then in-cluster config.
type Kube struct {
	Kubeconfig string  `yaml:"kubeconfig,omitempty"`
	Context    string  `yaml:"context,omitempty"`
	QPS        float32 `yaml:"qps,omitempty"`
	Burst      int     `yaml:"burst,omitempty"`
	CertKey    string  `yaml:"certKey"` // Secret data key holding the certificate
	KeyKey     string  `yaml:"keyKey"`  // Secret data key holding the private key
}

// Balancer identifies the provider API and the HTTPS listener to update.
type Balancer struct {
	Driver    string        `yaml:"driver"`
	Token     string        `yaml:"token,omitempty"`
	TokenFile string        `yaml:"tokenFile,omitempty"`
	APIURL    string        `yaml:"apiURL,omitempty"`
	ID        string        `yaml:"id"`
	ConfigID  string        `yaml:"configID"`
	Timeout   time.Duration `yaml:"timeout"`
	RateLimit float64       `yaml:"rateLimit"`
	RateBurst int           `yaml:"rateBurst"`
	Retry     retry.Policy  `yaml:"retry"`
}

// Sync holds orchestrator knobs.
type Sync struct {
	FetchRetry   retry.Policy  `yaml:"fetchRetry"`
	FetchTimeout time.Duration `yaml:"fetchTimeout"`
	DedupTTL     time.Duration `yaml:"dedupTTL"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Server: Server{
			Addr:            ":8080",
			WebhookPath:     "/update-nodebalancer-cert",
			HealthTimeout:   5 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Log: Log{Format: "human", Level: "INFO"},
		Kube: Kube{
			CertKey: "tls.crt",
			KeyKey:  "tls.key",
		},
		Balancer: Balancer{
			Driver:    "linode",
			Timeout:   30 * time.Second,
			RateLimit: 10,
			RateBurst: 5,
			Retry:     retry.Policy{Attempts: 3, InitialDelay: 500 * time.Millisecond, Factor: 2, MaxDelay: 10 * time.Second},
		},
		Sync: Sync{
			FetchRetry:   retry.Policy{Attempts: 3, InitialDelay: 500 * time.Millisecond, Factor: 2, MaxDelay: 5 * time.Second},
			FetchTimeout: 10 * time.Second,
		},
	}
}
