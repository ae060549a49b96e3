package handlers

import (
	"github.com/gofiber/fiber/v2"

	"scanlane/internal/domain"
	applog "scanlane/internal/log"
	"scanlane/internal/repos"
	"scanlane/internal/services"
)

type ScanHandler struct {
	Cart  *services.CartService
	Scans *repos.ScanRepo
}

// Submit accepts a raw decoded barcode from a camera decoder or
// keyboard-wedge scanner. The outcome (added / not found / ignored) is a
// JSON body, not an error status; only engine failures map to 4xx/5xx.
func (h *ScanHandler) Submit(c *fiber.Ctx) error {
	user := laneUser(c)
	raw := c.FormValue("code")

	out, err := h.Cart.Scan(user, raw)
	if err != nil {
		applog.Error(c, "scan.fail", err, map[string]any{"code": raw})
		return jsonFail(c, err)
	}
	switch out.Status {
	case domain.ScanAdded:
		applog.Audit(c, "scan.added", map[string]any{"product": out.ProductName})
	case domain.ScanNotFound:
		applog.Info(c, "scan.miss", map[string]any{"code": raw})
	}
	return c.JSON(out)
}

// History lists the user's recent scan attempts, newest first.
func (h *ScanHandler) History(c *fiber.Ctx) error {
	user := laneUser(c)
	entries, err := h.Scans.ListRecent(user, 50)
	if err != nil {
		applog.Error(c, "scan.history.list", err, nil)
		return jsonFail(c, err)
	}
	return c.JSON(fiber.Map{"scans": entries})
}
