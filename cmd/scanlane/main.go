package main

import (
	"io"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"scanlane/internal/config"
	"scanlane/internal/http/handlers"
	applog "scanlane/internal/log"
	"scanlane/internal/notify"
	"scanlane/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			mw := io.MultiWriter(os.Stdout, f)
			log.SetOutput(mw)
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}

	broker := notify.NewBroker()

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			// Log and keep internals out of the response
			applog.Error(c, "server.error", err, nil)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "something went wrong, please retry",
			})
		},
	})
	// Global body size guard
	app.Server().MaxRequestBodySize = 1 << 20 // 1 MiB

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	app.Use(logger.New())
	app.Use(helmet.New())
	app.Use(limiter.New(limiter.Config{
		Max:        240,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			// Scan bursts and the event stream must not trip the limiter
			p := string(c.Request().URI().Path())
			return p == "/events" || p == "/healthz"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))

	// ---------- App handlers ----------
	deps := handlers.NewDeps(db, cfg, broker)

	// Inbound scan events
	app.Post("/scan", deps.ScanHandler.Submit)
	app.Get("/scans", deps.ScanHandler.History)

	// Cart
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/increase", deps.CartHandler.Increase)
	app.Post("/cart/decrease", deps.CartHandler.Decrease)
	app.Post("/cart/clear", deps.CartHandler.Clear)

	// Settlement & purchase records
	app.Post("/checkout", deps.CheckoutHandler.Place)
	app.Get("/purchases", deps.CheckoutHandler.History)
	app.Get("/purchase/:id", deps.CheckoutHandler.View)

	// Catalog readback
	app.Get("/catalog", deps.CatalogHandler.List)
	api := app.Group("/api/v1")
	availLimiter := limiter.New(limiter.Config{
		Max:        15,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|avail"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.availability.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Get("/availability", availLimiter, deps.CatalogHandler.Availability)

	// State notifications for displays
	app.Get("/events", deps.EventsHandler.Stream)

	// Catalog management (external collaborator surface)
	app.Post("/admin/catalog", deps.AdminHandler.UpsertProduct)
	app.Post("/admin/stock", deps.AdminHandler.UpsertStock)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "not found"})
	})

	addr := cfg.Port
	if !strings.Contains(addr, ":") {
		addr = ":" + addr
	}
	log.Fatal(app.Listen(addr))
}
