package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "scanlane/internal/log"
	"scanlane/internal/repos"
	"scanlane/internal/services"
	"scanlane/internal/validate"
)

type CheckoutHandler struct {
	Settle    *services.SettlementService
	Purchases *repos.PurchaseRepo
}

// Place settles the current cart. The returned PurchaseRecord is final and
// immutable; an invoice renderer may consume it as-is.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	user := laneUser(c)
	rec, err := h.Settle.Settle(user)
	if err != nil {
		applog.Security(c, "settle.reject", map[string]any{"reason": err.Error()})
		return jsonFail(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(rec)
}

// History lists the user's purchases, newest first.
func (h *CheckoutHandler) History(c *fiber.Ctx) error {
	user := laneUser(c)
	recs, err := h.Purchases.ListByUser(user, 50)
	if err != nil {
		applog.Error(c, "purchase.list.fail", err, nil)
		return jsonFail(c, err)
	}
	return c.JSON(fiber.Map{"purchases": recs})
}

// View returns one purchase record; only its owner can read it.
func (h *CheckoutHandler) View(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "purchase not found"})
	}
	rec, err := h.Purchases.Get(id)
	if err != nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "purchase not found"})
	}
	if rec.UserID != laneUser(c) {
		applog.Security(c, "access.denied.purchase", map[string]any{"purchase_id": id})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "purchase not found"})
	}
	return c.JSON(rec)
}
