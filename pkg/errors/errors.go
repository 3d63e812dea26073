package errors

import (
	"errors"
	"fmt"
)

// Kind classifies an error for callers and for the HTTP surface.
type Kind string

const (
	KindAuthentication Kind = "authentication"
	KindValidation     Kind = "validation"
	KindConfiguration  Kind = "configuration"
	KindNotFound       Kind = "not_found"
	KindUpstream       Kind = "upstream"
	KindModelOutput    Kind = "model_output"
	KindInternal       Kind = "internal"
)

// Reason refines an upstream error into the sub-cases users see differently.
type Reason string

const (
	ReasonNone        Reason = ""
	ReasonRateLimited Reason = "rate_limited"
	ReasonAuthInvalid Reason = "auth_invalid"
)

// Error is the typed error returned across component boundaries.
type Error struct {
	Kind    Kind
	Reason  Reason
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches another *Error by kind and reason so that sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Reason == t.Reason && e.Message == t.Message
}

var (
	// ErrMissingAPIKey is returned when no DNS provider credentials are configured
	ErrMissingAPIKey = &Error{Kind: KindConfiguration, Message: "DNS provider credentials are not configured"}

	// ErrMissingModelKey is returned when no language model API key is configured
	ErrMissingModelKey = &Error{Kind: KindConfiguration, Message: "language model API key is not configured"}

	// ErrMissingAuthKey is returned when no token verification key is configured
	ErrMissingAuthKey = &Error{Kind: KindConfiguration, Message: "token verification key is not configured"}

	// ErrDomainNotFound is returned when the specified domain has no provider zone
	ErrDomainNotFound = &Error{Kind: KindNotFound, Message: "domain not found"}

	// ErrUnauthenticated is returned when the request carries no valid caller identity
	ErrUnauthenticated = &Error{Kind: KindAuthentication, Message: "authentication required"}

	// ErrInvalidJSONFormat is returned when the JSON payload cannot be parsed
	ErrInvalidJSONFormat = &Error{Kind: KindValidation, Message: "invalid JSON format in request"}
)

func Authentication(msg string, err error) *Error {
	return &Error{Kind: KindAuthentication, Message: msg, Err: err}
}

func Validation(msg string) *Error {
	return &Error{Kind: KindValidation, Message: msg}
}

func Configuration(msg string) *Error {
	return &Error{Kind: KindConfiguration, Message: msg}
}

func NotFound(msg string, err error) *Error {
	return &Error{Kind: KindNotFound, Message: msg, Err: err}
}

func Upstream(reason Reason, msg string, err error) *Error {
	return &Error{Kind: KindUpstream, Reason: reason, Message: msg, Err: err}
}

func ModelOutput(msg string, err error) *Error {
	return &Error{Kind: KindModelOutput, Message: msg, Err: err}
}

// KindOf returns the kind of the first *Error in err's chain, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// ReasonOf returns the reason of the first *Error in err's chain.
func ReasonOf(err error) Reason {
	var e *Error
	if errors.As(err, &e) {
		return e.Reason
	}
	return ReasonNone
}

// MessageOf returns the message of the first *Error in err's chain, without
// the wrapped cause.
func MessageOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Message
	}
	return err.Error()
}

func IsKind(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
