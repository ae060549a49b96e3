package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "scanlane/internal/log"
	"scanlane/internal/services"
	"scanlane/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(laneUser(c))
	if err != nil {
		applog.Error(c, "cart.view.fail", err, nil)
		return jsonFail(c, err)
	}
	return c.JSON(cv)
}

func (h *CartHandler) Increase(c *fiber.Ctx) error {
	user := laneUser(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId"})
	}
	if err := h.Cart.Increase(user, productID); err != nil {
		applog.Info(c, "cart.increase.reject", map[string]any{"product": productID, "reason": err.Error()})
		return jsonFail(c, err)
	}
	return h.View(c)
}

func (h *CartHandler) Decrease(c *fiber.Ctx) error {
	user := laneUser(c)
	productID, ok := validate.ID(c.FormValue("productId"))
	if !ok {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid productId"})
	}
	if err := h.Cart.Decrease(user, productID); err != nil {
		applog.Error(c, "cart.decrease.fail", err, map[string]any{"product": productID})
		return jsonFail(c, err)
	}
	return h.View(c)
}

func (h *CartHandler) Clear(c *fiber.Ctx) error {
	user := laneUser(c)
	if err := h.Cart.Clear(user); err != nil {
		applog.Error(c, "cart.clear.fail", err, nil)
		return jsonFail(c, err)
	}
	applog.Audit(c, "cart.clear", nil)
	return h.View(c)
}
