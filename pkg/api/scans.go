package api

import (
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/pkg/errors"
)

func (h handlers) RunHealthScan(ctx *fiber.Ctx) error {
	h.logCall(ctx, "RunHealthScan")

	var req ScanRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		return writeError(ctx, errors.ErrInvalidJSONFormat)
	}

	report, err := h.Scanner.Scan(ctx.UserContext(), identityFrom(ctx), req.Domain)
	if err != nil {
		h.logger.Warn("Health scan failed", zap.String("domain", req.Domain), zap.String(logFieldError, err.Error()))
		return writeError(ctx, err)
	}
	return ctx.JSON(report)
}
