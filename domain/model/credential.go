package model

import (
	"encoding/pem"
	"errors"
	"strings"

	"github.com/kompox/nbcertsync/internal/naming"
)

// CredentialMaterial is the decoded TLS pair read from a Secret.
// It lives for one sync run only.
type CredentialMaterial struct {
	Namespace      string
	SecretName     string
	CertificatePEM []byte
	PrivateKeyPEM  []byte
}

// Validate checks that both fields are present and contain the expected PEM blocks.
func (m *CredentialMaterial) Validate() error {
	if m == nil {
		return errors.New("credential material is nil")
	}
	if len(m.CertificatePEM) == 0 {
		return errors.New("certificate is empty")
	}
	if len(m.PrivateKeyPEM) == 0 {
		return errors.New("private key is empty")
	}
	if !hasPEMBlock(m.CertificatePEM, func(t string) bool { return t == "CERTIFICATE" }) {
		return errors.New("certificate has no CERTIFICATE PEM block")
	}
	if !hasPEMBlock(m.PrivateKeyPEM, func(t string) bool { return strings.HasSuffix(t, "PRIVATE KEY") }) {
		return errors.New("private key has no PRIVATE KEY PEM block")
	}
	return nil
}

// Fingerprint identifies the material without revealing it.
func (m *CredentialMaterial) Fingerprint() string {
	return naming.Fingerprint(m.CertificatePEM, m.PrivateKeyPEM)
}

func hasPEMBlock(data []byte, match func(string) bool) bool {
	rest := data
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			return false
		}
		if match(block.Type) {
			return true
		}
	}
}
