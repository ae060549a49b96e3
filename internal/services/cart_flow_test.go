package services_test

import (
	"testing"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // pure-Go SQLite driver

	"scanlane/internal/domain"
	"scanlane/internal/repos"
	"scanlane/internal/services"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func fp(v float64) *float64 { return &v }

func seedProduct(t *testing.T, db *sqlx.DB, p domain.Product) {
	t.Helper()
	if err := repos.NewCatalogRepo(db).UpsertProduct(p); err != nil {
		t.Fatal(err)
	}
}

func newCartService(db *sqlx.DB) *services.CartService {
	return services.NewCartService(db,
		repos.NewCartRepo(db), repos.NewCatalogRepo(db), repos.NewScanRepo(db), nil)
}

func TestScanAddsAndIncrements(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 10.0, Stock: 5})
	svc := newCartService(db)

	out, err := svc.Scan("lane-1", "000111222333")
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != domain.ScanAdded || out.ProductName != "Widget" {
		t.Fatalf("bad outcome: %+v", out)
	}

	cv, err := svc.View("lane-1")
	if err != nil {
		t.Fatal(err)
	}
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 1 || cv.Lines[0].Subtotal != 10.0 || cv.Total != 10.0 {
		t.Fatalf("bad cart after first scan: %+v", cv)
	}

	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}
	cv, _ = svc.View("lane-1")
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 2 || cv.Total != 20.0 {
		t.Fatalf("bad cart after second scan: %+v", cv)
	}
}

func TestScanTrimsAndIgnoresEmpty(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 10.0, Stock: 5})
	svc := newCartService(db)

	out, err := svc.Scan("lane-1", "   ")
	if err != nil || out.Status != domain.ScanIgnored {
		t.Fatalf("empty scan should be a silent no-op, got %+v %v", out, err)
	}

	out, err = svc.Scan("lane-1", "  000111222333\n")
	if err != nil || out.Status != domain.ScanAdded {
		t.Fatalf("whitespace around the code should be trimmed, got %+v %v", out, err)
	}
}

func TestScanUnknownBarcode(t *testing.T) {
	db := memdb(t)
	svc := newCartService(db)

	out, err := svc.Scan("lane-1", "999999999999")
	if err != nil {
		t.Fatal(err)
	}
	if out.Status != domain.ScanNotFound {
		t.Fatalf("want NOT_FOUND, got %+v", out)
	}

	cv, _ := svc.View("lane-1")
	if len(cv.Lines) != 0 {
		t.Fatalf("cart should be untouched: %+v", cv)
	}

	scans, err := repos.NewScanRepo(db).ListRecent("lane-1", 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(scans) != 1 || scans[0].OK || scans[0].Barcode != "999999999999" {
		t.Fatalf("want one failed history entry, got %+v", scans)
	}
}

func TestScanRejectsBeyondStock(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 10.0, Stock: 1})
	svc := newCartService(db)

	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}
	_, err := svc.Scan("lane-1", "000111222333")
	if !services.IsInsufficientStock(err) {
		t.Fatalf("want insufficient stock, got %v", err)
	}

	cv, _ := svc.View("lane-1")
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 1 {
		t.Fatalf("rejected scan must leave the cart unchanged: %+v", cv)
	}
}

func TestIncreaseDecreaseRoundTrip(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 3.10, Stock: 9})
	svc := newCartService(db)

	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}
	before, _ := svc.View("lane-1")

	if err := svc.Increase("lane-1", "p1"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Decrease("lane-1", "p1"); err != nil {
		t.Fatal(err)
	}

	after, _ := svc.View("lane-1")
	if after.Total != before.Total || after.Lines[0].Qty != before.Lines[0].Qty {
		t.Fatalf("round trip must restore the exact total: before=%+v after=%+v", before, after)
	}
}

func TestDecreaseDeletesLineAtOne(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 10.0, Stock: 5})
	svc := newCartService(db)

	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}
	if err := svc.Decrease("lane-1", "p1"); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View("lane-1")
	if len(cv.Lines) != 0 {
		t.Fatalf("line should be deleted, not zeroed: %+v", cv)
	}

	// Decreasing a product that is no longer in the cart is a no-op.
	if err := svc.Decrease("lane-1", "p1"); err != nil {
		t.Fatal(err)
	}
}

func TestClearIsIdempotent(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 10.0, Stock: 5})
	seedProduct(t, db, domain.Product{ID: "p2", Barcode: "444555666777", Name: "Gadget", BasePrice: 4.0, Stock: 5})
	svc := newCartService(db)

	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Scan("lane-1", "444555666777"); err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 2; i++ {
		if err := svc.Clear("lane-1"); err != nil {
			t.Fatalf("clear #%d: %v", i+1, err)
		}
		cv, _ := svc.View("lane-1")
		if len(cv.Lines) != 0 || cv.Total != 0 {
			t.Fatalf("clear #%d left lines: %+v", i+1, cv)
		}
	}
}

func TestOfferPricingOnScan(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget",
		BasePrice: 10.0, Stock: 5, HasOffer: true, OfferPrice: fp(7.50)})
	svc := newCartService(db)

	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}
	cv, _ := svc.View("lane-1")
	l := cv.Lines[0]
	if l.Subtotal != 7.50 || cv.Total != 7.50 {
		t.Fatalf("offer price should drive the subtotal: %+v", l)
	}
	if l.UnitPrice != 10.0 {
		t.Fatalf("captured unit price should stay the base price: %+v", l)
	}
	if l.DiscountPercent == nil || *l.DiscountPercent != 25 {
		t.Fatalf("want 25%% discount, got %v", l.DiscountPercent)
	}
}

func TestOfferActivatingBetweenScansReprices(t *testing.T) {
	db := memdb(t)
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget", BasePrice: 10.0, Stock: 5})
	svc := newCartService(db)

	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}
	seedProduct(t, db, domain.Product{ID: "p1", Barcode: "000111222333", Name: "Widget",
		BasePrice: 10.0, Stock: 5, HasOffer: true, OfferPrice: fp(8.0)})
	if _, err := svc.Scan("lane-1", "000111222333"); err != nil {
		t.Fatal(err)
	}

	cv, _ := svc.View("lane-1")
	if len(cv.Lines) != 1 || cv.Lines[0].Qty != 2 || cv.Total != 16.0 {
		t.Fatalf("pricing must be re-resolved on increment: %+v", cv)
	}
}
