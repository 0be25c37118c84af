package market

import "time"

type Category string

const (
	CategoryElectronics Category = "Electronics"
	CategoryClothing    Category = "Clothing"
	CategoryFurniture   Category = "Furniture"
	CategoryBooks       Category = "Books"
	CategoryFood        Category = "Food"
	CategoryOther       Category = "Other"
)

func (c Category) Valid() bool {
	switch c {
	case CategoryElectronics, CategoryClothing, CategoryFurniture, CategoryBooks, CategoryFood, CategoryOther:
		return true
	}
	return false
}

type User struct {
	ID            string
	Firstname     string
	Surname       string
	Email         string
	AverageRating float64
}

type Item struct {
	ID         string
	SellerID   string
	Name       string
	PriceCents int
	Stock      int
	Category   Category
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Rating struct {
	ItemID  string
	RaterID string
	Rating  int
}

// CartLine is a buyer's pending intent to purchase Qty units of one item.
type CartLine struct {
	ItemID string `json:"item_id"`
	Qty    int    `json:"qty"`
}

// ResolvedCartLine carries the live item alongside the line for pricing/display.
type ResolvedCartLine struct {
	CartLine
	Item Item `json:"item"`
}

// OrderLine is a snapshot of one cart line frozen at checkout. Seller identity
// is copied from the item at order time; the item's owner could change later.
type OrderLine struct {
	ID         int64  `json:"id"`
	OrderID    string `json:"order_id"`
	ItemID     string `json:"item_id"`
	SellerID   string `json:"seller_id"`
	Qty        int    `json:"qty"`
	PriceCents int    `json:"price_cents"`
	Confirmed  bool   `json:"confirmed"`
}

type Order struct {
	ID          string      `json:"id"`
	BuyerID     string      `json:"buyer_id"`
	IdemKey     string      `json:"-"`
	Lines       []OrderLine `json:"lines"`
	TotalCents  int         `json:"total_cents"`
	OTPHash     string      `json:"-"`
	IsCompleted bool        `json:"is_completed"`
	CreatedAt   time.Time   `json:"created_at"`
}

// AllConfirmed reports whether every line of the order has been confirmed.
// An order with no lines is never considered confirmed; it gets deleted
// during reconciliation instead.
func AllConfirmed(lines []OrderLine) bool {
	if len(lines) == 0 {
		return false
	}
	for _, l := range lines {
		if !l.Confirmed {
			return false
		}
	}
	return true
}
