package repos

import (
	"errors"
	"log"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// ErrBusy is returned when a transaction still conflicts after every retry.
// Callers may retry the whole operation; no partial writes were committed.
var ErrBusy = errors.New("storage busy: transaction retries exhausted")

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}
	// SQLite allows one writer at a time; a single pooled connection
	// serializes transactions FIFO and keeps busy errors rare. It also
	// makes ":memory:" databases behave (each new conn would otherwise
	// get its own empty database).
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON; PRAGMA busy_timeout = 5000;`); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed demo catalog if DB is empty (idempotent; safe to run every start)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}

	return db, nil
}

const txAttempts = 5

// RunTx runs fn inside one transaction, retrying a bounded number of times
// with backoff when SQLite reports a write conflict. Any other error from
// fn rolls back and is returned unchanged.
func RunTx(db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	var last error
	for attempt := 0; attempt < txAttempts; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(attempt) * 20 * time.Millisecond)
		}
		tx, err := db.Beginx()
		if err != nil {
			if conflict(err) {
				last = err
				continue
			}
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			if conflict(err) {
				last = err
				continue
			}
			return err
		}
		if err := tx.Commit(); err != nil {
			if conflict(err) {
				last = err
				continue
			}
			return err
		}
		return nil
	}
	log.Printf("[repos] transaction gave up after %d attempts: %v", txAttempts, last)
	return ErrBusy
}

func conflict(err error) bool {
	if err == nil {
		return false
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "busy") || strings.Contains(s, "locked")
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
-- Catalog
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  barcode TEXT NOT NULL UNIQUE,
  name TEXT NOT NULL,
  base_price NUMERIC NOT NULL CHECK (base_price >= 0),
  stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
  has_offer INTEGER NOT NULL DEFAULT 0,
  offer_price NUMERIC,
  expiry TEXT,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_products_barcode ON products(barcode);

-- Cart ledger (one row per user+product)
CREATE TABLE IF NOT EXISTS cart_items(
  user_id    TEXT NOT NULL,
  product_id TEXT NOT NULL REFERENCES products(id) ON DELETE RESTRICT,
  qty INTEGER NOT NULL CHECK (qty >= 1),
  unit_price NUMERIC NOT NULL,
  has_offer INTEGER NOT NULL DEFAULT 0,
  offer_price NUMERIC,
  discount_percent INTEGER CHECK (discount_percent BETWEEN 0 AND 100),
  stock_ceiling INTEGER NOT NULL,
  expiry TEXT,
  created_at TEXT,
  updated_at TEXT,
  PRIMARY KEY (user_id, product_id)
);
CREATE INDEX IF NOT EXISTS idx_cart_items_user ON cart_items(user_id);

-- Purchases (append-only)
CREATE TABLE IF NOT EXISTS purchases(
  id TEXT PRIMARY KEY,
  user_id TEXT NOT NULL,
  total NUMERIC NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_purchases_user ON purchases(user_id);

CREATE TABLE IF NOT EXISTS purchase_items(
  purchase_id TEXT NOT NULL REFERENCES purchases(id) ON DELETE CASCADE,
  product_id TEXT NOT NULL,
  name TEXT NOT NULL,
  qty INTEGER NOT NULL,
  unit_price NUMERIC NOT NULL,
  PRIMARY KEY (purchase_id, product_id)
);

-- Scan history (informational)
CREATE TABLE IF NOT EXISTS scan_history(
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  user_id TEXT NOT NULL,
  barcode TEXT NOT NULL,
  label TEXT,
  ok INTEGER NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_scan_history_user ON scan_history(user_id);
`
	_, err := db.Exec(schema)
	return err
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}

	log.Println("[seed] inserting demo catalog")

	tx := db.MustBegin()
	tx.MustExec(`INSERT INTO products(id,barcode,name,base_price,stock,has_offer,offer_price) VALUES
	  ('p-cola-330','5449000000996','Cola 330ml',1.20,120,0,NULL),
	  ('p-espresso','8000070025400','Espresso Beans 1kg',18.50,24,1,14.90),
	  ('p-oat-500','7394376616800','Rolled Oats 500g',2.35,60,0,NULL),
	  ('p-choc-85','7622210100483','Dark Chocolate 85%',3.10,15,1,2.49),
	  ('p-sparkle','4066600204404','Sparkling Water 1L',0.95,200,0,NULL)`)

	return tx.Commit()
}
