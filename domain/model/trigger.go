package model

import (
	"fmt"

	"github.com/kompox/nbcertsync/internal/naming"
)

// TriggerRequest identifies the Secret holding freshly issued certificate material.
// Issuer and Source are carried for logging only.
type TriggerRequest struct {
	SecretName      string `json:"secretName"`
	SecretNamespace string `json:"secretNamespace"`
	Issuer          string `json:"issuer,omitempty"`
	Source          string `json:"source,omitempty"`
}

// Key returns "<namespace>/<name>".
func (r TriggerRequest) Key() string {
	return r.SecretNamespace + "/" + r.SecretName
}

// Validate rejects structurally invalid triggers. The returned error wraps ErrInvalidTrigger.
func (r TriggerRequest) Validate() error {
	if err := naming.ValidateNamespace(r.SecretNamespace); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
	}
	if err := naming.ValidateSecretName(r.SecretName); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidTrigger, err)
	}
	return nil
}

// LoadBalancerTarget is the provider-side identity of the HTTPS listener to update.
// It is built once from configuration and never mutated.
type LoadBalancerTarget struct {
	BalancerID    string
	HTTPSConfigID string
}

func (t LoadBalancerTarget) String() string {
	return "nodebalancer/" + t.BalancerID + "/config/" + t.HTTPSConfigID
}

// Validate requires both identifiers to be decimal ids.
func (t LoadBalancerTarget) Validate() error {
	if err := naming.ValidateNumericID(t.BalancerID, "balancer id"); err != nil {
		return err
	}
	return naming.ValidateNumericID(t.HTTPSConfigID, "https config id")
}
