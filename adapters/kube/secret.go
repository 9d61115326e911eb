package kube

import (
	"bytes"
	"context"
	"encoding/base64"
	"fmt"

	authorizationv1 "k8s.io/api/authorization/v1"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"

	"github.com/kompox/nbcertsync/domain/model"
)

var pemPrefix = []byte("-----BEGIN ")

// SecretFetcher reads TLS material from Secrets. It never retries.
type SecretFetcher struct {
	Client kubernetes.Interface
	// CertKey and KeyKey name the data keys; defaults are tls.crt and tls.key.
	CertKey string
	KeyKey  string
}

// NewSecretFetcher returns a fetcher with the standard kubernetes.io/tls keys
// unless overridden.
func NewSecretFetcher(client kubernetes.Interface, certKey, keyKey string) *SecretFetcher {
	if certKey == "" {
		certKey = corev1.TLSCertKey
	}
	if keyKey == "" {
		keyKey = corev1.TLSPrivateKeyKey
	}
	return &SecretFetcher{Client: client, CertKey: certKey, KeyKey: keyKey}
}

// Fetch implements domain.SecretFetcher.
func (f *SecretFetcher) Fetch(ctx context.Context, namespace, name string) (*model.CredentialMaterial, error) {
	fail := func(kind model.FetchErrorKind, err error) error {
		return &model.FetchError{Kind: kind, Namespace: namespace, Name: name, Err: err}
	}

	secret, err := f.Client.CoreV1().Secrets(namespace).Get(ctx, name, metav1.GetOptions{})
	if err != nil {
		if apierrors.IsNotFound(err) {
			return nil, fail(model.FetchNotFound, nil)
		}
		return nil, fail(model.FetchUnavailable, err)
	}

	cert, err := decodeField(secret, f.CertKey)
	if err != nil {
		return nil, fail(model.FetchMalformed, err)
	}
	key, err := decodeField(secret, f.KeyKey)
	if err != nil {
		return nil, fail(model.FetchMalformed, err)
	}

	m := &model.CredentialMaterial{
		Namespace:      namespace,
		SecretName:     name,
		CertificatePEM: cert,
		PrivateKeyPEM:  key,
	}
	if err := m.Validate(); err != nil {
		return nil, fail(model.FetchMalformed, err)
	}
	return m, nil
}

// decodeField returns the PEM bytes stored under key. client-go already undoes
// the API's base64 transport encoding; values that are base64 text of PEM
// (double-encoded by some tooling) are decoded once more.
func decodeField(secret *corev1.Secret, key string) ([]byte, error) {
	raw, ok := secret.Data[key]
	if !ok || len(raw) == 0 {
		return nil, fmt.Errorf("field %q missing", key)
	}
	raw = bytes.TrimSpace(raw)
	if bytes.Contains(raw, pemPrefix) {
		return raw, nil
	}
	decoded := make([]byte, base64.StdEncoding.DecodedLen(len(raw)))
	n, err := base64.StdEncoding.Decode(decoded, raw)
	if err != nil {
		return nil, fmt.Errorf("field %q is neither PEM nor base64: %w", key, err)
	}
	decoded = bytes.TrimSpace(decoded[:n])
	if !bytes.Contains(decoded, pemPrefix) {
		return nil, fmt.Errorf("field %q does not contain PEM data", key)
	}
	return decoded, nil
}

func selfSubjectAccessReview(namespace string) *authorizationv1.SelfSubjectAccessReview {
	return &authorizationv1.SelfSubjectAccessReview{
		Spec: authorizationv1.SelfSubjectAccessReviewSpec{
			ResourceAttributes: &authorizationv1.ResourceAttributes{
				Namespace: namespace,
				Verb:      "get",
				Resource:  "secrets",
			},
		},
	}
}
