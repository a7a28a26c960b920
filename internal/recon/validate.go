package recon

import (
	"fmt"
	"regexp"
)

var domainPattern = regexp.MustCompile(`^([a-zA-Z0-9]([a-zA-Z0-9-]{0,61}[a-zA-Z0-9])?\.)+[a-zA-Z]{2,}$`)

// ValidationError reports a malformed target domain. It is returned before
// any external process is spawned.
type ValidationError struct {
	Domain string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid domain %q: %s", e.Domain, e.Reason)
}

// ValidateDomain checks that a target is a syntactically well-formed DNS
// name: dot-separated labels of up to 63 characters that neither start nor
// end with a hyphen, under a top-level label of two or more letters.
func ValidateDomain(domain string) error {
	if domain == "" {
		return &ValidationError{Domain: domain, Reason: "empty"}
	}
	if !domainPattern.MatchString(domain) {
		return &ValidationError{Domain: domain, Reason: "not a well-formed domain name"}
	}
	return nil
}
