package naming

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"
)

func validateDNS1123Label(name, kind string) error {
	if name == "" {
		return fmt.Errorf("%s must not be empty", kind)
	}
	if errs := utilvalidation.IsDNS1123Label(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s %q: %s", kind, name, strings.Join(errs, ", "))
	}
	return nil
}

func validateDNS1123Subdomain(name, kind string) error {
	if name == "" {
		return fmt.Errorf("%s must not be empty", kind)
	}
	if errs := utilvalidation.IsDNS1123Subdomain(name); len(errs) > 0 {
		return fmt.Errorf("invalid %s %q: %s", kind, name, strings.Join(errs, ", "))
	}
	return nil
}

// ValidateNamespace checks a Kubernetes namespace name (DNS-1123 label).
func ValidateNamespace(name string) error {
	return validateDNS1123Label(name, "namespace")
}

// ValidateSecretName checks a Kubernetes Secret name (DNS-1123 subdomain).
func ValidateSecretName(name string) error {
	return validateDNS1123Subdomain(name, "secret name")
}

// ValidateNumericID checks a provider object identifier such as a NodeBalancer
// or config id: non-empty and decimal digits only.
func ValidateNumericID(id, kind string) error {
	if id == "" {
		return fmt.Errorf("%s must not be empty", kind)
	}
	for _, r := range id {
		if r < '0' || r > '9' {
			return fmt.Errorf("invalid %s %q: must be a decimal number", kind, id)
		}
	}
	return nil
}
