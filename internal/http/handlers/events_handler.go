package handlers

import (
	"bufio"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"scanlane/internal/notify"
	"scanlane/internal/repos"
	"scanlane/internal/services"
)

type EventsHandler struct {
	Broker  *notify.Broker
	Cart    *services.CartService
	Catalog *repos.CatalogRepo
}

// Stream is the outbound state-notification contract: a Server-Sent Events
// feed of cart+catalog snapshots. Each update carries its owning userId;
// displays take the catalog from every event and the cart only from their
// own. Delivery is at-least-once and newest-wins (stale snapshots are
// dropped by the broker, never reordered).
func (h *EventsHandler) Stream(c *fiber.Ctx) error {
	user := laneUser(c)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	first, err := h.snapshot(user)
	if err != nil {
		return jsonFail(c, err)
	}

	sub := h.Broker.Subscribe()
	ctx := c.Context()
	ctx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		defer h.Broker.Unsubscribe(sub)

		if writeEvent(w, first) != nil {
			return
		}
		keep := time.NewTicker(15 * time.Second)
		defer keep.Stop()
		for {
			select {
			case u, ok := <-sub.C():
				if !ok {
					return
				}
				if writeEvent(w, u) != nil {
					return
				}
			case <-keep.C:
				if _, err := w.WriteString(": keep-alive\n\n"); err != nil {
					return
				}
				if w.Flush() != nil {
					return
				}
			case <-ctx.Done():
				return
			}
		}
	}))
	return nil
}

func (h *EventsHandler) snapshot(user string) (notify.Update, error) {
	cv, err := h.Cart.View(user)
	if err != nil {
		return notify.Update{}, err
	}
	cat, err := h.Catalog.ListAll()
	if err != nil {
		return notify.Update{}, err
	}
	return notify.Update{UserID: user, Cart: cv, Catalog: cat}, nil
}

func writeEvent(w *bufio.Writer, u notify.Update) error {
	b, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(w, "data: %s\n\n", b); err != nil {
		return err
	}
	return w.Flush()
}
