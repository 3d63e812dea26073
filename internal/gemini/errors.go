package gemini

import (
	"context"
	stderrors "errors"
	"net/http"
	"strings"

	"google.golang.org/api/googleapi"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/netguru/dotty-dns/pkg/errors"
)

// classifyError maps a Gemini API failure onto the service error taxonomy.
func classifyError(err error) error {
	if stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded) {
		return err
	}

	msg := err.Error()
	if strings.Contains(msg, "API_KEY_INVALID") {
		return errors.Upstream(errors.ReasonAuthInvalid, "invalid Gemini API key", err)
	}
	if strings.Contains(msg, "SERVICE_DISABLED") {
		return errors.Upstream(errors.ReasonAuthInvalid, "Generative Language API is not enabled", err)
	}

	var apiErr *googleapi.Error
	if stderrors.As(err, &apiErr) {
		return fromHTTPStatus(apiErr.Code, err)
	}

	if st, ok := status.FromError(err); ok {
		switch st.Code() {
		case codes.ResourceExhausted:
			return errors.Upstream(errors.ReasonRateLimited, "Gemini API rate limit exceeded", err)
		case codes.PermissionDenied, codes.Unauthenticated:
			return errors.Upstream(errors.ReasonAuthInvalid, "access denied to Gemini API", err)
		}
	}

	return errors.Upstream(errors.ReasonNone, "Gemini API error", err)
}

func fromHTTPStatus(code int, err error) error {
	switch {
	case code == http.StatusTooManyRequests:
		return errors.Upstream(errors.ReasonRateLimited, "Gemini API rate limit exceeded", err)
	case code == http.StatusForbidden || code == http.StatusUnauthorized:
		return errors.Upstream(errors.ReasonAuthInvalid, "access denied to Gemini API", err)
	case code >= http.StatusInternalServerError:
		return errors.Upstream(errors.ReasonNone, "Gemini API server error", err)
	default:
		return errors.Upstream(errors.ReasonNone, "Gemini API error", err)
	}
}
