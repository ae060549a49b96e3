package services

import (
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"scanlane/internal/domain"
	applog "scanlane/internal/log"
	"scanlane/internal/notify"
	"scanlane/internal/pricing"
	"scanlane/internal/repos"
)

// CartService turns decoded barcodes into cart-line transitions. Every
// mutation runs inside one storage transaction; ordering and atomicity are
// delegated to the transaction layer, never to an in-memory lock.
type CartService struct {
	DB       *sqlx.DB
	Carts    *repos.CartRepo
	Catalog  *repos.CatalogRepo
	Scans    *repos.ScanRepo
	Notifier *notify.Broker
}

func NewCartService(db *sqlx.DB, carts *repos.CartRepo, catalog *repos.CatalogRepo, scans *repos.ScanRepo, n *notify.Broker) *CartService {
	return &CartService{DB: db, Carts: carts, Catalog: catalog, Scans: scans, Notifier: n}
}

// Scan accepts a raw decoded barcode. Empty input (after trimming) is a
// silent no-op; an unknown barcode is an outcome, not an error.
func (s *CartService) Scan(userID, raw string) (domain.ScanOutcome, error) {
	code := strings.TrimSpace(raw)
	if code == "" {
		return domain.ScanOutcome{Status: domain.ScanIgnored}, nil
	}

	p, err := s.Catalog.GetByBarcode(code)
	if errors.Is(err, sql.ErrNoRows) {
		s.record(userID, code, "", false)
		return domain.ScanOutcome{Status: domain.ScanNotFound}, nil
	}
	if err != nil {
		return domain.ScanOutcome{}, err
	}

	if err := s.addOrIncrement(userID, p.ID); err != nil {
		return domain.ScanOutcome{}, err
	}
	s.record(userID, code, p.Name, true)
	s.publish(userID)
	return domain.ScanOutcome{Status: domain.ScanAdded, ProductName: p.Name}, nil
}

// Increase re-runs addOrIncrement semantics, including the stock check.
func (s *CartService) Increase(userID, productID string) error {
	if err := s.addOrIncrement(userID, productID); err != nil {
		return err
	}
	s.publish(userID)
	return nil
}

// Decrease drops quantity by one; at quantity 1 the line is deleted.
// Decreasing a product that is not in the cart is a no-op.
func (s *CartService) Decrease(userID, productID string) error {
	err := repos.RunTx(s.DB, func(tx *sqlx.Tx) error {
		l, err := s.Carts.GetLineX(tx, userID, productID)
		if errors.Is(err, sql.ErrNoRows) {
			return nil
		}
		if err != nil {
			return err
		}
		if l.Qty <= 1 {
			return s.Carts.DeleteLineX(tx, userID, productID)
		}
		l.Qty--
		return s.Carts.UpdateLineX(tx, userID, l)
	})
	if err != nil {
		return err
	}
	s.publish(userID)
	return nil
}

// Clear removes every line in a single batch; repeating it is a no-op.
func (s *CartService) Clear(userID string) error {
	if err := s.Carts.ClearX(s.DB, userID); err != nil {
		return err
	}
	s.publish(userID)
	return nil
}

func (s *CartService) View(userID string) (domain.CartView, error) {
	return s.Carts.View(userID)
}

// addOrIncrement creates or bumps the user's line for a product under one
// transaction. Pricing is always re-resolved from the current product so an
// offer that activated between scans takes effect; the stock check runs
// against live catalog stock, not the add-time ceiling snapshot.
func (s *CartService) addOrIncrement(userID, productID string) error {
	return repos.RunTx(s.DB, func(tx *sqlx.Tx) error {
		p, err := s.Catalog.GetX(tx, productID)
		if err != nil {
			return err
		}
		_, discount := pricing.Resolve(p)

		l, err := s.Carts.GetLineX(tx, userID, productID)
		if errors.Is(err, sql.ErrNoRows) {
			if p.Stock < 1 {
				return &InsufficientStockError{ProductName: p.Name}
			}
			return s.Carts.InsertLineX(tx, userID, domain.CartLine{
				ProductID:       p.ID,
				Qty:             1,
				UnitPrice:       p.BasePrice,
				HasOffer:        p.HasOffer,
				OfferPrice:      p.OfferPrice,
				DiscountPercent: discount,
				StockCeiling:    p.Stock,
				Expiry:          p.Expiry,
			})
		}
		if err != nil {
			return err
		}

		if l.Qty+1 > p.Stock {
			return &InsufficientStockError{ProductName: p.Name}
		}
		l.Qty++
		l.UnitPrice = p.BasePrice
		l.HasOffer = p.HasOffer
		l.OfferPrice = p.OfferPrice
		l.DiscountPercent = discount
		l.Expiry = p.Expiry
		return s.Carts.UpdateLineX(tx, userID, l)
	})
}

// record appends scan history; history is informational, so a failure here
// only gets logged.
func (s *CartService) record(userID, barcode, label string, ok bool) {
	if s.Scans == nil {
		return
	}
	if err := s.Scans.Append(userID, barcode, label, ok); err != nil {
		applog.Error(nil, "scan.history.append", err, map[string]any{"barcode": barcode})
	}
}

// publish pushes the post-commit snapshot to subscribers. Subscribers only
// ever need the newest state, so a failed load is logged and skipped.
func (s *CartService) publish(userID string) {
	if s.Notifier == nil {
		return
	}
	cv, err := s.Carts.View(userID)
	if err != nil {
		applog.Error(nil, "notify.cart.load", err, nil)
		return
	}
	cat, err := s.Catalog.ListAll()
	if err != nil {
		applog.Error(nil, "notify.catalog.load", err, nil)
		return
	}
	s.Notifier.Publish(notify.Update{UserID: userID, Cart: cv, Catalog: cat})
}
