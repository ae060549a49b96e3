package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"scanlane/internal/domain"
	applog "scanlane/internal/log"
	"scanlane/internal/repos"
	"scanlane/internal/validate"
)

// AdminHandler is the external catalog-management surface. The engines only
// ever decrement stock; absolute stock and product rows change here.
type AdminHandler struct {
	Catalog *repos.CatalogRepo
}

// POST /admin/catalog
func (h *AdminHandler) UpsertProduct(c *fiber.Ctx) error {
	id, okID := validate.ID(c.FormValue("id"))
	barcode := validate.Barcode(c.FormValue("barcode"))
	name, okName := validate.Text(c.FormValue("name"), 80)
	price, okPrice := validate.Price(c.FormValue("basePrice"))
	stock := validate.Qty(c.FormValue("stock"))
	if !okID || !okPrice || !okName || barcode == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}

	p := domain.Product{
		ID: id, Barcode: barcode, Name: name,
		BasePrice: price, Stock: stock,
		Expiry: strings.TrimSpace(c.FormValue("expiry")),
	}
	if offer, ok := validate.Price(c.FormValue("offerPrice")); ok && c.FormValue("offerPrice") != "" {
		if offer >= price {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "offerPrice must be below basePrice"})
		}
		p.HasOffer = true
		p.OfferPrice = &offer
	}

	if err := h.Catalog.UpsertProduct(p); err != nil {
		applog.Error(c, "admin.catalog.save.fail", err, map[string]any{"product": id})
		return jsonFail(c, err)
	}
	applog.Audit(c, "admin.catalog.save", map[string]any{"product": id, "stock": stock})
	return c.JSON(p)
}

// POST /admin/stock
func (h *AdminHandler) UpsertStock(c *fiber.Ctx) error {
	id, okID := validate.ID(c.FormValue("product_id"))
	stock := validate.Qty(c.FormValue("stock"))
	if !okID {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid input"})
	}
	if err := h.Catalog.UpsertStock(id, stock); err != nil {
		applog.Error(c, "admin.stock.save.fail", err, map[string]any{"product": id, "stock": stock})
		return jsonFail(c, err)
	}
	applog.Audit(c, "admin.stock.save", map[string]any{"product": id, "stock": stock})
	return c.JSON(fiber.Map{"productId": id, "stock": stock})
}
