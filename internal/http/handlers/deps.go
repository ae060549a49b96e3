package handlers

import (
	"database/sql"
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanlane/internal/config"
	"scanlane/internal/notify"
	"scanlane/internal/repos"
	"scanlane/internal/services"
	"scanlane/internal/validate"
)

type Deps struct {
	ScanHandler     *ScanHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
	CatalogHandler  *CatalogHandler
	EventsHandler   *EventsHandler
	AdminHandler    *AdminHandler
}

func NewDeps(db *sqlx.DB, cfg config.Config, broker *notify.Broker) *Deps {
	catalogRepo := repos.NewCatalogRepo(db)
	cartRepo := repos.NewCartRepo(db)
	purchaseRepo := repos.NewPurchaseRepo(db)
	scanRepo := repos.NewScanRepo(db)

	cartSvc := services.NewCartService(db, cartRepo, catalogRepo, scanRepo, broker)
	settleSvc := services.NewSettlementService(db, cartRepo, catalogRepo, purchaseRepo, broker)
	availSvc := services.NewAvailabilityService(catalogRepo, cfg.LowStockAt)

	return &Deps{
		ScanHandler:     &ScanHandler{Cart: cartSvc, Scans: scanRepo},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Settle: settleSvc, Purchases: purchaseRepo},
		CatalogHandler:  &CatalogHandler{Catalog: catalogRepo, Avail: availSvc},
		EventsHandler:   &EventsHandler{Broker: broker, Cart: cartSvc, Catalog: catalogRepo},
		AdminHandler:    &AdminHandler{Catalog: catalogRepo},
	}
}

// laneUser resolves the cart key for this request: explicit header or
// param from a paired scanner, else an anonymous lane cookie.
func laneUser(c *fiber.Ctx) string {
	if u, ok := validate.UserID(c.Get("X-Lane-User")); ok {
		c.Locals("lane_user", u)
		return u
	}
	if u, ok := validate.UserID(c.FormValue("user")); ok {
		c.Locals("lane_user", u)
		return u
	}
	sid := c.Cookies("lane")
	if sid == "" {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{Name: "lane", Value: sid, Path: "/", HTTPOnly: true})
	}
	c.Locals("lane_user", sid)
	return sid
}

// failStatus maps the engine's typed failures onto HTTP statuses.
func failStatus(err error) int {
	switch {
	case services.IsInsufficientStock(err):
		return fiber.StatusConflict
	case errors.Is(err, services.ErrEmptyCart):
		return fiber.StatusBadRequest
	case errors.Is(err, sql.ErrNoRows):
		return fiber.StatusNotFound
	case errors.Is(err, services.ErrConflict):
		return fiber.StatusServiceUnavailable
	default:
		return fiber.StatusInternalServerError
	}
}

// jsonFail hides internals on 5xx; recoverable conditions keep their message.
func jsonFail(c *fiber.Ctx, err error) error {
	status := failStatus(err)
	msg := err.Error()
	switch status {
	case fiber.StatusNotFound:
		msg = "product not found"
	case fiber.StatusInternalServerError:
		msg = "storage unavailable, please retry"
	}
	return c.Status(status).JSON(fiber.Map{"error": msg})
}
