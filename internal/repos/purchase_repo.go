package repos

import (
	"scanlane/internal/domain"

	"github.com/jmoiron/sqlx"
)

type PurchaseRepo struct{ db *sqlx.DB }

func NewPurchaseRepo(db *sqlx.DB) *PurchaseRepo { return &PurchaseRepo{db: db} }

// CreateX writes the purchase header and every line inside the caller's
// transaction. Purchases are append-only; there is no update path.
func (r *PurchaseRepo) CreateX(x sqlx.Ext, rec domain.PurchaseRecord) error {
	if _, err := x.Exec(`
	  INSERT INTO purchases(id, user_id, total, created_at)
	  VALUES (?, ?, ?, CURRENT_TIMESTAMP)
	`, rec.ID, rec.UserID, rec.Total); err != nil {
		return err
	}
	for _, l := range rec.Lines {
		if _, err := x.Exec(`
		  INSERT INTO purchase_items(purchase_id, product_id, name, qty, unit_price)
		  VALUES (?, ?, ?, ?, ?)
		`, rec.ID, l.ProductID, l.Name, l.Qty, l.UnitPrice); err != nil {
			return err
		}
	}
	return nil
}

func (r *PurchaseRepo) Get(id string) (domain.PurchaseRecord, error) {
	var rec domain.PurchaseRecord
	if err := r.db.Get(&rec, `
		SELECT id, user_id, total, COALESCE(created_at,'') AS created_at
		FROM purchases WHERE id = ?
	`, id); err != nil {
		return domain.PurchaseRecord{}, err
	}
	if err := r.db.Select(&rec.Lines, `
		SELECT product_id, name, qty, unit_price, (qty * unit_price) AS subtotal
		FROM purchase_items
		WHERE purchase_id = ?
		ORDER BY name
	`, id); err != nil {
		return domain.PurchaseRecord{}, err
	}
	return rec, nil
}

func (r *PurchaseRepo) ListByUser(userID string, limit int) ([]domain.PurchaseRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	out := []domain.PurchaseRecord{}
	err := r.db.Select(&out, `
		SELECT id, user_id, total, COALESCE(created_at,'') AS created_at
		FROM purchases
		WHERE user_id = ?
		ORDER BY datetime(created_at) DESC
		LIMIT ?
	`, userID, limit)
	return out, err
}
