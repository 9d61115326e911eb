package certsync

import (
	"sync"
	"time"

	"github.com/jellydator/ttlcache/v3"
	"golang.org/x/sync/semaphore"

	"github.com/kompox/nbcertsync/domain"
	"github.com/kompox/nbcertsync/domain/model"
	"github.com/kompox/nbcertsync/internal/metrics"
	"github.com/kompox/nbcertsync/internal/retry"
)

// Policy holds the orchestrator's retry and timing knobs.
type Policy struct {
	// FetchRetry bounds fetch attempts while the Secret is not found yet
	// (issuance may race the trigger) or a fetch call times out.
	FetchRetry retry.Policy
	// FetchTimeout bounds each Secret read. Zero means no per-call bound.
	FetchTimeout time.Duration
	// DedupTTL, when positive, skips pushes whose material fingerprint equals
	// the last successful push to the same target within this window.
	DedupTTL time.Duration
}

// UseCase orchestrates one certificate sync per trigger.
type UseCase struct {
	Fetcher domain.SecretFetcher
	Pusher  domain.CertificatePusher
	Target  model.LoadBalancerTarget
	Policy  Policy
	Metrics *metrics.Recorder

	// serial admits one run at a time against Target. Every run still
	// fetches for itself, so a trigger queued behind an in-flight push reads
	// the Secret after that push and never reports stale material.
	serial    *semaphore.Weighted
	recent    *ttlcache.Cache[string, string]
	closeOnce sync.Once
}

// New wires a UseCase. Call Close when done to stop the dedup cache janitor.
func New(fetcher domain.SecretFetcher, pusher domain.CertificatePusher, target model.LoadBalancerTarget, policy Policy, rec *metrics.Recorder) *UseCase {
	u := &UseCase{
		Fetcher: fetcher,
		Pusher:  pusher,
		Target:  target,
		Policy:  policy,
		Metrics: rec,
		serial:  semaphore.NewWeighted(1),
	}
	if policy.DedupTTL > 0 {
		u.recent = ttlcache.New[string, string](
			ttlcache.WithTTL[string, string](policy.DedupTTL),
			ttlcache.WithDisableTouchOnHit[string, string](),
		)
		go u.recent.Start()
	}
	return u
}

// Close releases background resources. Safe to call more than once.
func (u *UseCase) Close() {
	u.closeOnce.Do(func() {
		if u.recent != nil {
			u.recent.Stop()
		}
	})
}
