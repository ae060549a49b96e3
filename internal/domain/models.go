package domain

// Product is the catalog row for one sellable item. Stock is decremented
// only by purchase settlement; everything else is catalog management.
type Product struct {
	ID         string   `db:"id" json:"id"`
	Barcode    string   `db:"barcode" json:"barcode"`
	Name       string   `db:"name" json:"name"`
	BasePrice  float64  `db:"base_price" json:"basePrice"`
	Stock      int      `db:"stock" json:"stock"`
	HasOffer   bool     `db:"has_offer" json:"hasOffer"`
	OfferPrice *float64 `db:"offer_price" json:"offerPrice,omitempty"`
	Expiry     string   `db:"expiry" json:"expiry,omitempty"`
	CreatedAt  string   `db:"created_at" json:"-"`
	UpdatedAt  string   `db:"updated_at" json:"-"`
}

// CartLine is one product's line in a user's cart. UnitPrice is the base
// price captured at the last price-affecting write; StockCeiling is the
// catalog stock snapshot taken when the line was created.
type CartLine struct {
	ProductID       string   `db:"product_id" json:"productId"`
	Name            string   `db:"name" json:"name"`
	Qty             int      `db:"qty" json:"qty"`
	UnitPrice       float64  `db:"unit_price" json:"unitPrice"`
	HasOffer        bool     `db:"has_offer" json:"hasOffer"`
	OfferPrice      *float64 `db:"offer_price" json:"offerPrice,omitempty"`
	DiscountPercent *int     `db:"discount_percent" json:"discountPercent,omitempty"`
	StockCeiling    int      `db:"stock_ceiling" json:"stockCeiling"`
	Expiry          string   `db:"expiry" json:"expiry,omitempty"`
	Subtotal        float64  `db:"subtotal" json:"subtotal"`
}

// CartView is the cart a subscriber renders: lines plus the derived total.
type CartView struct {
	Lines []CartLine `json:"lines"`
	Total float64    `json:"total"`
}

type PurchaseLine struct {
	ProductID string  `db:"product_id" json:"productId"`
	Name      string  `db:"name" json:"name"`
	Qty       int     `db:"qty" json:"qty"`
	UnitPrice float64 `db:"unit_price" json:"unitPrice"`
	Subtotal  float64 `db:"subtotal" json:"subtotal"`
}

// PurchaseRecord is the immutable settlement snapshot. Never mutated after
// creation.
type PurchaseRecord struct {
	ID        string         `db:"id" json:"id"`
	UserID    string         `db:"user_id" json:"userId"`
	Total     float64        `db:"total" json:"total"`
	CreatedAt string         `db:"created_at" json:"createdAt"`
	Lines     []PurchaseLine `json:"lines"`
}

// ScanHistoryEntry is informational only; consistency decisions never read it.
type ScanHistoryEntry struct {
	ID        int64  `db:"id" json:"id"`
	UserID    string `db:"user_id" json:"userId"`
	Barcode   string `db:"barcode" json:"barcode"`
	Label     string `db:"label" json:"label"`
	OK        bool   `db:"ok" json:"ok"`
	CreatedAt string `db:"created_at" json:"createdAt"`
}

// Scan outcomes surfaced to the caller. A miss is an outcome, not an error.
const (
	ScanAdded    = "ADDED"
	ScanNotFound = "NOT_FOUND"
	ScanIgnored  = "IGNORED" // empty input after trimming
)

type ScanOutcome struct {
	Status      string `json:"status"`
	ProductName string `json:"productName,omitempty"`
}

type Availability struct {
	Status string `json:"status"` // IN_STOCK | LOW_STOCK | OUT_OF_STOCK
	Qty    int    `json:"qty"`
}
