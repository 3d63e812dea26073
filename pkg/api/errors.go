package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/netguru/dotty-dns/pkg/errors"
)

const (
	statusUnauthenticated = "unauthenticated"
	statusInvalidArgument = "invalid-argument"
	statusInternal        = "internal"
)

// errorStatus maps an error to its HTTP code, status string and the message
// shown to the caller. Only validation messages are passed through verbatim.
func errorStatus(err error) (int, string, string) {
	switch errors.KindOf(err) {
	case errors.KindAuthentication:
		return fiber.StatusUnauthorized, statusUnauthenticated, "authentication failed, please sign in again"
	case errors.KindValidation:
		return fiber.StatusBadRequest, statusInvalidArgument, errors.MessageOf(err)
	case errors.KindNotFound:
		return fiber.StatusInternalServerError, statusInternal, "domain not found, check the domain name"
	case errors.KindConfiguration:
		return fiber.StatusInternalServerError, statusInternal, "service temporarily unavailable"
	case errors.KindModelOutput:
		return fiber.StatusInternalServerError, statusInternal, "could not interpret the command, please retry"
	case errors.KindUpstream:
		switch errors.ReasonOf(err) {
		case errors.ReasonRateLimited:
			return fiber.StatusInternalServerError, statusInternal, "rate limit exceeded, please try again later"
		case errors.ReasonAuthInvalid:
			return fiber.StatusInternalServerError, statusInternal, "service temporarily unavailable"
		}
		return fiber.StatusInternalServerError, statusInternal, "an upstream service failed, please try again"
	}
	return fiber.StatusInternalServerError, statusInternal, "internal error"
}

func writeError(ctx *fiber.Ctx, err error) error {
	code, status, msg := errorStatus(err)
	return ctx.Status(code).JSON(errorResponse{Error: errorBody{Status: status, Message: msg}})
}

func statusForCode(code int) string {
	switch {
	case code == fiber.StatusUnauthorized:
		return statusUnauthenticated
	case code >= 400 && code < 500:
		return statusInvalidArgument
	}
	return statusInternal
}
