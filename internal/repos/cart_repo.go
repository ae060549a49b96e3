package repos

import (
	"scanlane/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

const lineCols = `
  ci.product_id, p.name, ci.qty, ci.unit_price, ci.has_offer, ci.offer_price,
  ci.discount_percent, ci.stock_ceiling, COALESCE(ci.expiry,'') AS expiry,
  (ci.qty * CASE WHEN ci.has_offer = 1 AND ci.offer_price IS NOT NULL
                 THEN ci.offer_price ELSE ci.unit_price END) AS subtotal`

// View returns the user's lines with derived subtotals and the cart total.
func (r *CartRepo) View(userID string) (domain.CartView, error) {
	lines, err := r.LinesX(r.db, userID)
	if err != nil {
		return domain.CartView{}, err
	}
	total := 0.0
	for _, l := range lines {
		total += l.Subtotal
	}
	return domain.CartView{Lines: lines, Total: total}, nil
}

func (r *CartRepo) LinesX(x sqlx.Ext, userID string) ([]domain.CartLine, error) {
	out := []domain.CartLine{}
	err := sqlx.Select(x, &out, `
	  SELECT `+lineCols+`
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.user_id = ?
	  ORDER BY ci.created_at, ci.product_id
	`, userID)
	return out, err
}

// GetLineX reads one line inside the caller's transaction.
// Returns sql.ErrNoRows when the product is not in the cart.
func (r *CartRepo) GetLineX(x sqlx.Ext, userID, productID string) (domain.CartLine, error) {
	var l domain.CartLine
	err := sqlx.Get(x, &l, `
	  SELECT `+lineCols+`
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.user_id = ? AND ci.product_id = ?
	`, userID, productID)
	return l, err
}

// InsertLineX creates a new line; pricing fields come from the caller.
func (r *CartRepo) InsertLineX(x sqlx.Ext, userID string, l domain.CartLine) error {
	_, err := x.Exec(`
		INSERT INTO cart_items(user_id, product_id, qty, unit_price, has_offer,
		  offer_price, discount_percent, stock_ceiling, expiry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, NULLIF(?,''), CURRENT_TIMESTAMP)
	`, userID, l.ProductID, l.Qty, l.UnitPrice, l.HasOffer, l.OfferPrice,
		l.DiscountPercent, l.StockCeiling, l.Expiry)
	return err
}

// UpdateLineX rewrites quantity and pricing for an existing line.
func (r *CartRepo) UpdateLineX(x sqlx.Ext, userID string, l domain.CartLine) error {
	_, err := x.Exec(`
		UPDATE cart_items
		SET qty = ?, unit_price = ?, has_offer = ?, offer_price = ?,
		    discount_percent = ?, expiry = NULLIF(?,''), updated_at = CURRENT_TIMESTAMP
		WHERE user_id = ? AND product_id = ?
	`, l.Qty, l.UnitPrice, l.HasOffer, l.OfferPrice, l.DiscountPercent, l.Expiry,
		userID, l.ProductID)
	return err
}

func (r *CartRepo) DeleteLineX(x sqlx.Ext, userID, productID string) error {
	_, err := x.Exec(`DELETE FROM cart_items WHERE user_id = ? AND product_id = ?`, userID, productID)
	return err
}

// ClearX removes every line in one statement; a second call is a no-op.
func (r *CartRepo) ClearX(x sqlx.Ext, userID string) error {
	_, err := x.Exec(`DELETE FROM cart_items WHERE user_id = ?`, userID)
	return err
}
