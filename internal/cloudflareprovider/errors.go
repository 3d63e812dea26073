package cloudflareprovider

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/cloudflare/cloudflare-go"

	"github.com/netguru/dotty-dns/pkg/errors"
)

var (
	// ErrMissingAPIKey is returned when Cloudflare credentials are not provided
	ErrMissingAPIKey = errors.ErrMissingAPIKey

	// ErrDomainNotFound is returned when the specified domain has no zone
	ErrDomainNotFound = errors.ErrDomainNotFound
)

// classifyError maps a cloudflare-go error onto the service error taxonomy.
func classifyError(op string, err error) error {
	if err == nil {
		return nil
	}
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	var (
		rateLimit    cloudflare.RatelimitError
		rateLimitPtr *cloudflare.RatelimitError
		authn        cloudflare.AuthenticationError
		authnPtr     *cloudflare.AuthenticationError
		authz        cloudflare.AuthorizationError
		authzPtr     *cloudflare.AuthorizationError
		notFound     cloudflare.NotFoundError
		notFoundPtr  *cloudflare.NotFoundError
	)

	// The SDK has returned these both by value and by pointer across releases.
	switch {
	case stderrors.As(err, &rateLimit), stderrors.As(err, &rateLimitPtr):
		return errors.Upstream(errors.ReasonRateLimited, op+": Cloudflare rate limit exceeded", err)
	case stderrors.As(err, &authn), stderrors.As(err, &authnPtr):
		return errors.Upstream(errors.ReasonAuthInvalid, op+": Cloudflare rejected the credentials", err)
	case stderrors.As(err, &authz), stderrors.As(err, &authzPtr):
		return errors.Upstream(errors.ReasonAuthInvalid, op+": Cloudflare denied access", err)
	case stderrors.As(err, &notFound), stderrors.As(err, &notFoundPtr):
		return errors.NotFound(op+": resource not found", err)
	}

	return errors.Upstream(errors.ReasonNone, fmt.Sprintf("%s: Cloudflare API request failed", op), err)
}

