package naming

import (
	"strings"
	"testing"
)

func TestValidateNamespace(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: "default", wantErr: false},
		{name: "valid with hyphen", value: "cert-manager", wantErr: false},
		{name: "valid max length", value: strings.Repeat("a", 63), wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "too long", value: strings.Repeat("a", 64), wantErr: true},
		{name: "contains dot", value: "my.ns", wantErr: true},
		{name: "contains uppercase", value: "Default", wantErr: true},
		{name: "starts with hyphen", value: "-ns", wantErr: true},
		{name: "contains slash", value: "a/b", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateNamespace(tc.value)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error but got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateSecretName(t *testing.T) {
	cases := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{name: "valid", value: "wildcard-mydomain-tls", wantErr: false},
		{name: "valid with dots", value: "www.example.com-tls", wantErr: false},
		{name: "empty", value: "", wantErr: true},
		{name: "underscore", value: "my_secret", wantErr: true},
		{name: "trailing dot", value: "secret.", wantErr: true},
		{name: "path traversal", value: "../secret", wantErr: true},
		{name: "too long", value: strings.Repeat("a", 254), wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSecretName(tc.value)
			if tc.wantErr && err == nil {
				t.Fatalf("expected error but got nil")
			}
			if !tc.wantErr && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestValidateNumericID(t *testing.T) {
	if err := ValidateNumericID("12345", "id"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, v := range []string{"", "12a", "-1", " 1"} {
		if err := ValidateNumericID(v, "id"); err == nil {
			t.Errorf("expected error for %q", v)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("ab"), []byte("c"))
	b := Fingerprint([]byte("a"), []byte("bc"))
	if a == b {
		t.Fatalf("fingerprints must differ for different splits")
	}
	if a != Fingerprint([]byte("ab"), []byte("c")) {
		t.Fatalf("fingerprint must be deterministic")
	}
	if len(a) != 64 {
		t.Fatalf("unexpected length %d", len(a))
	}
	if got := ShortHash(a, 6); got != a[:6] {
		t.Fatalf("ShortHash = %q", got)
	}
}
