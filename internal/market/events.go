package market

import (
	"encoding/json"
	"time"
)

const (
	EventOrderCreated   = "OrderCreated"
	EventOrderCompleted = "OrderCompleted"
	EventOrderRemoved   = "OrderRemoved"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // one of the consts above
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "market-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Per-event payloads ----

type LineRef struct {
	ItemID   string `json:"item_id"`
	SellerID string `json:"seller_id"`
	Qty      int    `json:"qty"`
}

type OrderCreatedPayload struct {
	OrderID    string    `json:"order_id"`
	BuyerID    string    `json:"buyer_id"`
	Lines      []LineRef `json:"lines"`
	TotalCents int       `json:"total_cents"`
}

type OrderCompletedPayload struct {
	OrderID string   `json:"order_id"`
	BuyerID string   `json:"buyer_id"`
	Sellers []string `json:"sellers"`
}

type OrderRemovedPayload struct {
	OrderID string `json:"order_id"`
	BuyerID string `json:"buyer_id"`
	Reason  string `json:"reason"` // e.g., ALL_ITEMS_UNAVAILABLE
}
