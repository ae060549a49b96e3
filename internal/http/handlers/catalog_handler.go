package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "scanlane/internal/log"
	"scanlane/internal/repos"
	"scanlane/internal/services"
	"scanlane/internal/validate"
)

type CatalogHandler struct {
	Catalog *repos.CatalogRepo
	Avail   *services.AvailabilityService
}

func (h *CatalogHandler) List(c *fiber.Ctx) error {
	products, err := h.Catalog.ListAll()
	if err != nil {
		applog.Error(c, "catalog.list.fail", err, nil)
		return jsonFail(c, err)
	}
	return c.JSON(fiber.Map{"products": products})
}

func (h *CatalogHandler) Availability(c *fiber.Ctx) error {
	productID, ok := validate.ID(c.Query("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing productId"})
	}
	avail, err := h.Avail.Check(productID)
	if err != nil {
		applog.Error(c, "availability.fail", err, map[string]any{"product": productID})
		return jsonFail(c, err)
	}
	return c.JSON(avail)
}
