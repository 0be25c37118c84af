package orders

import (
	"time"

	"github.com/campuskart/api/internal/market"
)

// LineDetail is an order line enriched with display fields for listings.
type LineDetail struct {
	market.OrderLine
	ItemName   string `json:"item_name"`
	SellerName string `json:"seller_name"`
}

type OrderDetail struct {
	ID          string       `json:"id"`
	BuyerID     string       `json:"buyer_id"`
	BuyerName   string       `json:"buyer_name"`
	TotalCents  int          `json:"total_cents"`
	IsCompleted bool         `json:"is_completed"`
	CreatedAt   time.Time    `json:"created_at"`
	Lines       []LineDetail `json:"lines"`
}
