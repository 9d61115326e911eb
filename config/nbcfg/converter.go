package nbcfg

import (
	balancerdrv "github.com/kompox/nbcertsync/adapters/drivers/balancer"
	"github.com/kompox/nbcertsync/adapters/kube"
	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/metrics"
	"github.com/kompox/nbcertsync/usecase/certsync"
)

// Target returns the load balancer listener the process updates.
func (c *Config) Target() model.LoadBalancerTarget {
	return model.LoadBalancerTarget{BalancerID: c.Balancer.ID, HTTPSConfigID: c.Balancer.ConfigID}
}

// KubeOptions converts the kube section into client options.
func (c *Config) KubeOptions(userAgent string) *kube.Options {
	return &kube.Options{
		Kubeconfig: c.Kube.Kubeconfig,
		Context:    c.Kube.Context,
		UserAgent:  userAgent,
		QPS:        c.Kube.QPS,
		Burst:      c.Kube.Burst,
	}
}

// DriverSettings converts the balancer section into driver settings.
func (c *Config) DriverSettings(userAgent string, rec *metrics.Recorder) *balancerdrv.Settings {
	return &balancerdrv.Settings{
		Token:     c.Balancer.Token,
		APIURL:    c.Balancer.APIURL,
		Timeout:   c.Balancer.Timeout,
		Retry:     c.Balancer.Retry,
		RateLimit: c.Balancer.RateLimit,
		RateBurst: c.Balancer.RateBurst,
		UserAgent: userAgent,
		Metrics:   rec,
	}
}

// SyncPolicy converts the sync section into orchestrator policy.
func (c *Config) SyncPolicy() certsync.Policy {
	return certsync.Policy{
		FetchRetry:   c.Sync.FetchRetry,
		FetchTimeout: c.Sync.FetchTimeout,
		DedupTTL:     c.Sync.DedupTTL,
	}
}
