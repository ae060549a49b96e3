package services

import (
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"scanlane/internal/domain"
	applog "scanlane/internal/log"
	"scanlane/internal/notify"
	"scanlane/internal/pricing"
	"scanlane/internal/repos"
)

// SettlementService converts a cart into a stock decrement plus an
// append-only purchase record. The whole settlement is one storage
// transaction: stock checks, decrements, the purchase write, and the cart
// clear commit together or not at all.
type SettlementService struct {
	DB        *sqlx.DB
	Carts     *repos.CartRepo
	Catalog   *repos.CatalogRepo
	Purchases *repos.PurchaseRepo
	Notifier  *notify.Broker
}

func NewSettlementService(db *sqlx.DB, carts *repos.CartRepo, catalog *repos.CatalogRepo, purchases *repos.PurchaseRepo, n *notify.Broker) *SettlementService {
	return &SettlementService{DB: db, Carts: carts, Catalog: catalog, Purchases: purchases, Notifier: n}
}

// Settle commits the user's cart. If any line cannot be covered by current
// stock the whole settlement aborts and nothing changes, even for lines
// that would have succeeded individually. Each line is charged the
// effective unit price at settlement time.
func (s *SettlementService) Settle(userID string) (domain.PurchaseRecord, error) {
	var rec domain.PurchaseRecord

	err := repos.RunTx(s.DB, func(tx *sqlx.Tx) error {
		lines, err := s.Carts.LinesX(tx, userID)
		if err != nil {
			return err
		}
		if len(lines) == 0 {
			return ErrEmptyCart
		}

		rec = domain.PurchaseRecord{ID: uuid.NewString(), UserID: userID}
		for _, l := range lines {
			p, err := s.Catalog.GetX(tx, l.ProductID)
			if err != nil {
				return err
			}
			ok, err := s.Catalog.DecrementStockX(tx, p.ID, l.Qty)
			if err != nil {
				return err
			}
			if !ok {
				return &InsufficientStockError{ProductName: p.Name}
			}
			unit, _ := pricing.Resolve(p)
			rec.Lines = append(rec.Lines, domain.PurchaseLine{
				ProductID: p.ID,
				Name:      p.Name,
				Qty:       l.Qty,
				UnitPrice: unit,
				Subtotal:  float64(l.Qty) * unit,
			})
			rec.Total += float64(l.Qty) * unit
		}

		if err := s.Purchases.CreateX(tx, rec); err != nil {
			return err
		}
		// Clearing inside the same transaction means a retry can never
		// re-apply an already-settled cart.
		return s.Carts.ClearX(tx, userID)
	})
	if err != nil {
		return domain.PurchaseRecord{}, err
	}

	applog.Audit(nil, "settle.commit", map[string]any{
		"purchase_id": rec.ID, "user": userID, "total": rec.Total, "lines": len(rec.Lines),
	})
	s.publish(userID)
	return rec, nil
}

func (s *SettlementService) publish(userID string) {
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
