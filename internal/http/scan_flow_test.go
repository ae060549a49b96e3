package handlers_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	"scanlane/internal/config"
	"scanlane/internal/domain"
	"scanlane/internal/http/handlers"
	"scanlane/internal/notify"
	"scanlane/internal/repos"
)

// Minimal app setup mirroring cmd/scanlane wiring.
func newApp(t *testing.T) *fiber.App {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := repos.NewCatalogRepo(db).UpsertProduct(domain.Product{
		ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 10.0, Stock: 5,
	}); err != nil {
		t.Fatal(err)
	}

	app := fiber.New()
	app.Use(requestid.New())

	deps := handlers.NewDeps(db, config.Config{LowStockAt: 5}, notify.NewBroker())
	app.Post("/scan", deps.ScanHandler.Submit)
	app.Get("/scans", deps.ScanHandler.History)
	app.Get("/cart", deps.CartHandler.View)
	app.Post("/cart/increase", deps.CartHandler.Increase)
	app.Post("/cart/decrease", deps.CartHandler.Decrease)
	app.Post("/checkout", deps.CheckoutHandler.Place)
	api := app.Group("/api/v1")
	api.Get("/availability", deps.CatalogHandler.Availability)

	return app
}

func formReq(method, target, body, user string) *http.Request {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("X-Lane-User", user)
	return req
}

func decode(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal(b, v); err != nil {
		t.Fatalf("bad json %q: %v", b, err)
	}
}

func TestScanCheckoutFlow(t *testing.T) {
	app := newApp(t)

	// Two scans of the same barcode
	for i := 0; i < 2; i++ {
		resp, err := app.Test(formReq("POST", "/scan", "code=000111222333", "lane-9"))
		if err != nil {
			t.Fatal(err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("scan #%d: status %d", i+1, resp.StatusCode)
		}
		var out domain.ScanOutcome
		decode(t, resp, &out)
		if out.Status != domain.ScanAdded || out.ProductName != "Widget" {
			t.Fatalf("scan #%d outcome: %+v", i+1, out)
		}
	}

	// Cart reflects both scans
	resp, err := app.Test(formReq("GET", "/cart", "", "lane-9"))
	if err != nil {
		t.Fatal(err)
	}
	var cv domain.CartView
	decode(t, resp, &cv)
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 2 || cv.Total != 20.0 {
		t.Fatalf("bad cart: %+v", cv)
	}

	// Checkout commits and returns the final record
	resp, err = app.Test(formReq("POST", "/checkout", "", "lane-9"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusCreated {
		t.Fatalf("checkout status %d", resp.StatusCode)
	}
	var rec domain.PurchaseRecord
	decode(t, resp, &rec)
	if rec.Total != 20.0 || len(rec.Lines) != 1 {
		t.Fatalf("bad record: %+v", rec)
	}

	// Cart is empty; a second checkout is rejected with no side effects
	resp, _ = app.Test(formReq("POST", "/checkout", "", "lane-9"))
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("empty-cart checkout should be 400, got %d", resp.StatusCode)
	}
}

func TestScanUnknownCodeIsAnOutcome(t *testing.T) {
	app := newApp(t)

	resp, err := app.Test(formReq("POST", "/scan", "code=759999999999", "lane-9"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != 200 {
		t.Fatalf("a miss is informational, not an error status: %d", resp.StatusCode)
	}
	var out domain.ScanOutcome
	decode(t, resp, &out)
	if out.Status != domain.ScanNotFound {
		t.Fatalf("want NOT_FOUND, got %+v", out)
	}

	// The miss shows up in scan history
	resp, _ = app.Test(formReq("GET", "/scans", "", "lane-9"))
	var hist struct {
		Scans []domain.ScanHistoryEntry `json:"scans"`
	}
	decode(t, resp, &hist)
	if len(hist.Scans) != 1 || hist.Scans[0].OK {
		t.Fatalf("want one failed entry, got %+v", hist.Scans)
	}
}

func TestScanBeyondStockConflicts(t *testing.T) {
	app := newApp(t)

	for i := 0; i < 5; i++ {
		resp, err := app.Test(formReq("POST", "/scan", "code=000111222333", "lane-9"))
		if err != nil {
			t.Fatalf("scan #%d: %v", i+1, err)
		}
		if resp.StatusCode != 200 {
			t.Fatalf("scan #%d: status %d", i+1, resp.StatusCode)
		}
	}
	resp, err := app.Test(formReq("POST", "/scan", "code=000111222333", "lane-9"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusConflict {
		t.Fatalf("sixth scan of stock-5 product should be 409, got %d", resp.StatusCode)
	}
}

func TestIncreaseUnknownProductNotFound(t *testing.T) {
	app := newApp(t)

	resp, err := app.Test(formReq("POST", "/cart/increase", "productId=ghost", "lane-9"))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusNotFound {
		t.Fatalf("unknown product should be 404, got %d", resp.StatusCode)
	}
	var body struct {
		Error string `json:"error"`
	}
	decode(t, resp, &body)
	if body.Error != "product not found" {
		t.Fatalf("miss must not read as a transient storage fault: %q", body.Error)
	}
}

func TestAvailabilityValidation(t *testing.T) {
	app := newApp(t)

	resp, err := app.Test(httptest.NewRequest("GET", "/api/v1/availability", nil))
	if err != nil {
		t.Fatal(err)
	}
	if resp.StatusCode != fiber.StatusBadRequest {
		t.Fatalf("missing productId should be 400, got %d", resp.StatusCode)
	}

	resp, _ = app.Test(httptest.NewRequest("GET", "/api/v1/availability?productId=p1", nil))
	var avail domain.Availability
	decode(t, resp, &avail)
	if avail.Status != "IN_STOCK" || avail.Qty != 5 {
		t.Fatalf("want IN_STOCK(5), got %+v", avail)
	}
}
