package domain

import (
	"context"

	"github.com/kompox/nbcertsync/domain/model"
)

// SecretFetcher reads certificate material from the cluster.
// Errors are *model.FetchError. Implementations must not retry.
type SecretFetcher interface {
	Fetch(ctx context.Context, namespace, name string) (*model.CredentialMaterial, error)
}

// PushResult reports how a successful push went.
type PushResult struct {
	Attempts   int
	StatusCode int
}

// CertificatePusher applies certificate material to a load-balancer listener.
// Pushing identical material twice must be safe. Implementations own the
// transient retry budget; terminal errors are *model.PushError.
type CertificatePusher interface {
	PushCertificate(ctx context.Context, target model.LoadBalancerTarget, material *model.CredentialMaterial) (*PushResult, error)
}

// HealthChecker is a dependency probe used by the deep health endpoint.
type HealthChecker interface {
	Name() string
	Check(ctx context.Context) error
}
