package model

import (
	"fmt"
	"strings"

	utilvalidation "k8s.io/apimachinery/pkg/util/validation"

	"github.com/netguru/dotty-dns/pkg/errors"
)

// NormalizeDomain lowercases domain, drops a trailing dot and checks that the
// result is a valid DNS subdomain.
func NormalizeDomain(domain string) (string, error) {
	d := strings.TrimSuffix(strings.ToLower(strings.TrimSpace(domain)), ".")
	if d == "" {
		return "", errors.Validation("domain is required")
	}
	if errs := utilvalidation.IsDNS1123Subdomain(d); len(errs) > 0 {
		return "", errors.Validation(fmt.Sprintf("invalid domain %q: %s", domain, strings.Join(errs, ", ")))
	}
	return d, nil
}
