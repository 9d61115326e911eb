package balancerdrv

import (
	"context"
	"net/http"
	"sort"
	"time"

	"github.com/kompox/nbcertsync/domain"
	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/metrics"
	"github.com/kompox/nbcertsync/internal/retry"
)

// Driver abstracts a load-balancer provider API.
// Implementations live under adapters/drivers/balancer/<name> and register
// themselves from init().
type Driver interface {
	// ID returns the driver identifier (e.g., "linode").
	ID() string

	// PushCertificate replaces the TLS material of the target listener.
	domain.CertificatePusher

	// Check verifies that the credentials can see the target balancer.
	Check(ctx context.Context, target model.LoadBalancerTarget) error
}

// Settings carries the process-wide, immutable driver configuration.
type Settings struct {
	Token     string
	APIURL    string        // empty means the provider default
	Timeout   time.Duration // per API call
	Retry     retry.Policy
	RateLimit float64 // requests per second, 0 disables limiting
	RateBurst int
	UserAgent string
	// HTTPClient overrides the default client; tests point it at httptest servers.
	HTTPClient *http.Client
	Metrics    *metrics.Recorder
}

// driverFactory is a constructor function for a balancer driver.
type driverFactory func(settings *Settings) (Driver, error)

// registry holds registered drivers by name.
var registry = map[string]driverFactory{}

// Register makes a driver available by the given name. Drivers should call
// this from their init() function.
func Register(name string, factory driverFactory) {
	registry[name] = factory
}

// GetDriverFactory returns the driver factory function for the given name.
func GetDriverFactory(name string) (driverFactory, bool) {
	factory, exists := registry[name]
	return factory, exists
}

// Names lists registered drivers in sorted order.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// TargetChecker binds a driver to the configured target as a domain.HealthChecker.
type TargetChecker struct {
	Driver Driver
	Target model.LoadBalancerTarget
}

func (c *TargetChecker) Name() string { return c.Driver.ID() }

func (c *TargetChecker) Check(ctx context.Context) error {
	return c.Driver.Check(ctx, c.Target)
}
