package api

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/netguru/dotty-dns/pkg/errors"
)

func (h handlers) ExecuteCommand(ctx *fiber.Ctx) error {
	h.logCall(ctx, "ExecuteCommand")

	var req CommandRequest
	if err := json.Unmarshal(ctx.Body(), &req); err != nil {
		h.logger.Debug("Failed to parse command request", zap.String(logFieldError, err.Error()))
		return writeError(ctx, errors.ErrInvalidJSONFormat)
	}

	result, err := h.Commands.ExecuteCommand(ctx.UserContext(), identityFrom(ctx), req.Command, req.Domain)
	if err != nil {
		h.logger.Warn("Command failed",
			zap.String("domain", req.Domain),
			zap.String("kind", string(errors.KindOf(err))),
			zap.String(logFieldError, err.Error()))
		return writeError(ctx, err)
	}
	return ctx.JSON(result)
}

func (h handlers) ListHistory(ctx *fiber.Ctx) error {
	h.logCall(ctx, "ListHistory")

	domain := ctx.Query("domain")
	limit := 0
	if raw := ctx.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return writeError(ctx, errors.Validation("limit must be a non-negative integer"))
		}
		limit = n
	}

	entries, err := h.Commands.ListHistory(ctx.UserContext(), identityFrom(ctx), domain, limit)
	if err != nil {
		h.logger.Warn("History lookup failed", zap.String("domain", domain), zap.String(logFieldError, err.Error()))
		return writeError(ctx, err)
	}
	return ctx.JSON(HistoryResponse{Domain: domain, Entries: entries})
}
