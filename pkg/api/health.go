package api

import "github.com/gofiber/fiber/v2"

// Health reports liveness only; it does not probe upstream services.
func (h handlers) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(fiber.Map{"status": "ok"})
}
