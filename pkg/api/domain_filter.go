package api

import (
	"github.com/gofiber/fiber/v2"
	"sigs.k8s.io/external-dns/endpoint"
)

func (h handlers) GetDomainFilter(ctx *fiber.Ctx) error {
	h.logCall(ctx, "GetDomainFilter")

	if h.DomainFilter == nil {
		return ctx.JSON(endpoint.DomainFilter{})
	}
	return ctx.JSON(h.DomainFilter.GetDomainFilter())
}
