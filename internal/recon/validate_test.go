package recon_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/DavidJovino/deivao-recon/internal/recon"
)

func TestValidateDomain(t *testing.T) {
	longLabel := strings.Repeat("a", 63)
	tooLong := strings.Repeat("a", 64)

	tests := []struct {
		domain string
		valid  bool
	}{
		{"example.com", true},
		{"sub.example.com", true},
		{"deep.sub.example.co.uk", true},
		{"xn--bcher-kva.example", true},
		{"a1-b2.example.com", true},
		{longLabel + ".com", true},
		{"EXAMPLE.COM", true},

		{"", false},
		{"localhost", false},
		{"-bad.example.com", false},
		{"bad-.example.com", false},
		{".example.com", false},
		{"example.com.", false},
		{"exa mple.com", false},
		{"under_score.example.com", false},
		{"example.c", false},
		{"example.123", false},
		{tooLong + ".com", false},
		{"http://example.com", false},
	}

	for _, tt := range tests {
		err := recon.ValidateDomain(tt.domain)
		if tt.valid && err != nil {
			t.Errorf("ValidateDomain(%q) = %v, want nil", tt.domain, err)
		}
		if !tt.valid && err == nil {
			t.Errorf("ValidateDomain(%q) = nil, want error", tt.domain)
		}
	}
}

func TestValidateDomainErrorType(t *testing.T) {
	err := recon.ValidateDomain("not a domain")
	var verr *recon.ValidationError
	if !errors.As(err, &verr) {
		t.Fatalf("error = %T, want *recon.ValidationError", err)
	}
	if verr.Domain != "not a domain" {
		t.Errorf("Domain = %q, want the rejected input", verr.Domain)
	}
}
