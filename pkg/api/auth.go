package api

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/internal/auth"
	"github.com/netguru/dotty-dns/internal/model"
	"github.com/netguru/dotty-dns/pkg/errors"
)

// authenticate resolves the bearer token into an identity stored in Locals.
func (h handlers) authenticate(ctx *fiber.Ctx) error {
	token, ok := auth.BearerToken(ctx.Get(fiber.HeaderAuthorization))
	if !ok {
		return writeError(ctx, errors.ErrUnauthenticated)
	}
	if h.Verifier == nil {
		h.logger.Error("No token verifier configured", zap.String("hint", "set AUTH_JWT_SECRET or AUTH_JWT_PUBLIC_KEY_FILE"))
		return writeError(ctx, errors.ErrMissingAuthKey)
	}
	identity, err := h.Verifier.Verify(token)
	if err != nil {
		h.logger.Info("Token rejected",
			zap.String("remote_ip", ctx.IP()),
			zap.String(logFieldError, err.Error()))
		return writeError(ctx, err)
	}
	ctx.Locals(localsIdentity, &identity)
	return ctx.Next()
}

func identityFrom(ctx *fiber.Ctx) *model.Identity {
	id, _ := ctx.Locals(localsIdentity).(*model.Identity)
	return id
}
