package repos

import (
	"scanlane/internal/domain"

	"github.com/jmoiron/sqlx"
)

type CatalogRepo struct{ db *sqlx.DB }

func NewCatalogRepo(db *sqlx.DB) *CatalogRepo { return &CatalogRepo{db: db} }

const productCols = `
  id, barcode, name, base_price, stock, has_offer, offer_price,
  COALESCE(expiry,'') AS expiry, COALESCE(created_at,'') AS created_at,
  COALESCE(updated_at,'') AS updated_at`

// GetByBarcode does an exact-match point lookup. Returns sql.ErrNoRows on a miss.
func (r *CatalogRepo) GetByBarcode(barcode string) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `SELECT`+productCols+` FROM products WHERE barcode = ?`, barcode)
	return p, err
}

func (r *CatalogRepo) Get(id string) (domain.Product, error) {
	return r.GetX(r.db, id)
}

// GetX reads a product through the given executor so engines can read
// inside their own transaction.
func (r *CatalogRepo) GetX(x sqlx.Ext, id string) (domain.Product, error) {
	var p domain.Product
	err := sqlx.Get(x, &p, `SELECT`+productCols+` FROM products WHERE id = ?`, id)
	return p, err
}

func (r *CatalogRepo) ListAll() ([]domain.Product, error) {
	out := []domain.Product{}
	err := r.db.Select(&out, `SELECT`+productCols+` FROM products ORDER BY name`)
	return out, err
}

// DecrementStockX subtracts "by" units only if enough stock exists.
// Returns false (and changes nothing) when stock would go negative.
func (r *CatalogRepo) DecrementStockX(x sqlx.Ext, id string, by int) (bool, error) {
	res, err := x.Exec(`
		UPDATE products
		SET stock = stock - ?, updated_at = CURRENT_TIMESTAMP
		WHERE id = ? AND stock >= ?
	`, by, id, by)
	if err != nil {
		return false, err
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// UpsertProduct creates or replaces a catalog row. This is the surface for
// external catalog management; the engines never call it.
func (r *CatalogRepo) UpsertProduct(p domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id, barcode, name, base_price, stock, has_offer, offer_price, expiry, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, NULLIF(?,''), CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET
		  barcode = excluded.barcode,
		  name = excluded.name,
		  base_price = excluded.base_price,
		  stock = excluded.stock,
		  has_offer = excluded.has_offer,
		  offer_price = excluded.offer_price,
		  expiry = excluded.expiry,
		  updated_at = CURRENT_TIMESTAMP
	`, p.ID, p.Barcode, p.Name, p.BasePrice, p.Stock, p.HasOffer, p.OfferPrice, p.Expiry)
	return err
}

// UpsertStock sets the absolute stock level for a product.
func (r *CatalogRepo) UpsertStock(id string, stock int) error {
	_, err := r.db.Exec(`
		UPDATE products SET stock = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?
	`, stock, id)
	return err
}
