package httpx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"

	kafkax "github.com/campuskart/api/internal/kafka"
	"github.com/campuskart/api/internal/market"
	"github.com/campuskart/api/internal/orders"
	"github.com/campuskart/api/internal/redisx"
)

// HeaderIdemKey lets a client retry checkout without duplicating the
// purchase: the same key always yields the same order.
const HeaderIdemKey = "Idempotency-Key"

type OrdersHandler struct {
	Service           *orders.Service
	ProducerCreated   *kafkax.Producer
	ProducerCompleted *kafkax.Producer
	ProducerRemoved   *kafkax.Producer
	Redis             *redis.Client
	ServiceName       string
}

type checkoutResp struct {
	OrderID    string `json:"order_id"`
	TotalCents int    `json:"total_cents"`
	Code       string `json:"code,omitempty"`
	Idempotent bool   `json:"idempotent"`
}

type confirmReq struct {
	Code string `json:"code"`
}

type confirmResp struct {
	Success        bool `json:"success"`
	LinesConfirmed int  `json:"lines_confirmed"`
	IsCompleted    bool `json:"is_completed"`
}

type regenResp struct {
	Success        bool     `json:"success"`
	Code           string   `json:"code,omitempty"`
	PrunedItemIDs  []string `json:"pruned_item_ids,omitempty"`
	OrderRemoved   bool     `json:"order_removed,omitempty"`
	OrderCompleted bool     `json:"order_completed,omitempty"`
	Message        string   `json:"message"`
}

// statusDoc is the cached order status. Buyer and sellers ride along so a
// cache hit can still check who is allowed to read it.
type statusDoc struct {
	IsCompleted bool     `json:"is_completed"`
	BuyerID     string   `json:"buyer_id"`
	Sellers     []string `json:"sellers"`
}

func (d statusDoc) visibleTo(userID string) bool {
	if d.BuyerID == userID {
		return true
	}
	for _, s := range d.Sellers {
		if s == userID {
			return true
		}
	}
	return false
}

func statusDocOf(o market.Order) statusDoc {
	return statusDoc{IsCompleted: o.IsCompleted, BuyerID: o.BuyerID, Sellers: distinctSellers(o.Lines)}
}

func distinctSellers(lines []market.OrderLine) []string {
	seen := map[string]bool{}
	var out []string
	for _, l := range lines {
		if !seen[l.SellerID] {
			seen[l.SellerID] = true
			out = append(out, l.SellerID)
		}
	}
	return out
}

func (h *OrdersHandler) Register(r chi.Router) {
	r.Post("/orders", h.checkout)
	r.Get("/orders/pending", h.pending)
	r.Get("/orders/completed", h.completed)
	r.Get("/orders/sold", h.sold)
	r.Get("/orders/{id}", h.status)
	r.Post("/orders/{id}/regenerate-code", h.regenerate)
	r.Post("/orders/{id}/confirm", h.confirm)
	r.Get("/deliveries", h.deliveries)
}

func (h *OrdersHandler) checkout(w http.ResponseWriter, r *http.Request) {
	buyerID := Principal(r.Context())
	idemKey := r.Header.Get(HeaderIdemKey)

	// fast path: a replayed key resolves in redis without touching postgres
	if idemKey != "" {
		rkey := fmt.Sprintf(redisx.KeyIdemCheckout, buyerID, idemKey)
		if ok, _ := redisx.Exists(r.Context(), h.Redis, rkey); ok {
			if orderID, err := h.Redis.Get(r.Context(), rkey).Result(); err == nil {
				o, err := h.Service.GetOrder(r.Context(), orderID)
				if err == nil {
					writeJSON(w, http.StatusOK, checkoutResp{OrderID: o.ID, TotalCents: o.TotalCents, Idempotent: true})
					return
				}
			}
		}
	}

	res, err := h.Service.Checkout(r.Context(), buyerID, idemKey)
	if err != nil {
		writeErr(w, err)
		return
	}

	if idemKey != "" {
		rkey := fmt.Sprintf(redisx.KeyIdemCheckout, buyerID, idemKey)
		_ = h.Redis.Set(r.Context(), rkey, res.OrderID, redisx.TTLIdempotency).Err()
	}
	if !res.Idempotent {
		h.cacheStatusDoc(r.Context(), res.OrderID, statusDoc{BuyerID: buyerID, Sellers: distinctSellers(res.Lines)})
		h.publishCreated(r, buyerID, res)
	}

	writeJSON(w, http.StatusCreated, checkoutResp{
		OrderID:    res.OrderID,
		TotalCents: res.TotalCents,
		Code:       res.Code,
		Idempotent: res.Idempotent,
	})
}

func (h *OrdersHandler) publishCreated(r *http.Request, buyerID string, res orders.CheckoutResult) {
	lines := make([]market.LineRef, 0, len(res.Lines))
	for _, l := range res.Lines {
		lines = append(lines, market.LineRef{ItemID: l.ItemID, SellerID: l.SellerID, Qty: l.Qty})
	}
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventOrderCreated,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: res.OrderID,
		Payload: kafkax.MustMarshal(market.OrderCreatedPayload{
			OrderID:    res.OrderID,
			BuyerID:    buyerID,
			Lines:      lines,
			TotalCents: res.TotalCents,
		}),
	}
	h.ProducerCreated.Publish(market.PartitionKey(res.OrderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventOrderCreated)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) confirm(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	var req confirmReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid json"})
		return
	}
	if req.Code == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing code"})
		return
	}

	sellerID := Principal(r.Context())
	res, err := h.Service.ConfirmDelivery(r.Context(), sellerID, orderID, req.Code)
	if err != nil {
		writeErr(w, err)
		return
	}

	// the guard on LinesConfirmed keeps a retried confirmation of an
	// already-completed order from re-announcing completion
	if res.Completed && res.LinesConfirmed > 0 {
		h.completeSideEffects(r, orderID)
	}

	writeJSON(w, http.StatusOK, confirmResp{Success: true, LinesConfirmed: res.LinesConfirmed, IsCompleted: res.Completed})
}

func (h *OrdersHandler) completeSideEffects(r *http.Request, orderID string) {
	o, err := h.Service.GetOrder(r.Context(), orderID)
	if err != nil {
		return
	}
	h.cacheStatusDoc(r.Context(), o.ID, statusDocOf(o))
	h.publishCompleted(r, o)
}

func (h *OrdersHandler) cacheStatusDoc(ctx context.Context, orderID string, d statusDoc) {
	b, err := json.Marshal(d)
	if err != nil {
		return
	}
	_ = h.Redis.Set(ctx, fmt.Sprintf(redisx.KeyOrderStatus, orderID), b, redisx.TTLStatusCache).Err()
}

func (h *OrdersHandler) publishCompleted(r *http.Request, o market.Order) {
	orderID := o.ID
	sellers := distinctSellers(o.Lines)
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventOrderCompleted,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(market.OrderCompletedPayload{
			OrderID: orderID,
			BuyerID: o.BuyerID,
			Sellers: sellers,
		}),
	}
	h.ProducerCompleted.Publish(market.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventOrderCompleted)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) regenerate(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	buyerID := Principal(r.Context())

	res, err := h.Service.RegenerateCode(r.Context(), buyerID, orderID)
	if err != nil {
		writeErr(w, err)
		return
	}

	switch {
	case res.OrderRemoved:
		_ = h.Redis.Del(r.Context(), fmt.Sprintf(redisx.KeyOrderStatus, orderID)).Err()
		h.publishRemoved(r, buyerID, orderID)
		writeJSON(w, http.StatusOK, regenResp{
			OrderRemoved:  true,
			PrunedItemIDs: res.PrunedItemIDs,
			Message:       "order removed as all items are no longer available",
		})
	case res.Completed:
		h.completeSideEffects(r, orderID)
		writeJSON(w, http.StatusOK, regenResp{
			PrunedItemIDs:  res.PrunedItemIDs,
			OrderCompleted: true,
			Message:        "unavailable items were removed; every remaining item was already handed over",
		})
	case len(res.PrunedItemIDs) > 0:
		writeJSON(w, http.StatusConflict, regenResp{
			PrunedItemIDs: res.PrunedItemIDs,
			Message:       "some items are no longer available and were removed from the order; request a new code once confirmed",
		})
	default:
		writeJSON(w, http.StatusOK, regenResp{
			Success: true,
			Code:    res.Code,
			Message: "code regenerated",
		})
	}
}

func (h *OrdersHandler) publishRemoved(r *http.Request, buyerID, orderID string) {
	ev := market.Envelope{
		EventID:       uuid.NewString(),
		EventType:     market.EventOrderRemoved,
		EventVersion:  1,
		OccurredAt:    time.Now().UTC(),
		Producer:      h.ServiceName,
		TraceID:       r.Header.Get("X-Request-Id"),
		CorrelationID: orderID,
		Payload: kafkax.MustMarshal(market.OrderRemovedPayload{
			OrderID: orderID,
			BuyerID: buyerID,
			Reason:  "ALL_ITEMS_UNAVAILABLE",
		}),
	}
	h.ProducerRemoved.Publish(market.PartitionKey(orderID), kafkax.MustMarshal(ev),
		kafkago.Header{Key: "x-event-type", Value: []byte(market.EventOrderRemoved)},
		kafkago.Header{Key: "x-event-version", Value: []byte("1")},
	)
}

func (h *OrdersHandler) status(w http.ResponseWriter, r *http.Request) {
	orderID := chi.URLParam(r, "id")
	principal := Principal(r.Context())

	key := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
	if s, err := h.Redis.Get(r.Context(), key).Result(); err == nil && s != "" {
		var d statusDoc
		if json.Unmarshal([]byte(s), &d) == nil {
			if !d.visibleTo(principal) {
				writeErr(w, market.ErrOrderNotFound)
				return
			}
			writeJSON(w, http.StatusOK, map[string]bool{"is_completed": d.IsCompleted})
			return
		}
	}

	o, err := h.Service.GetOrder(r.Context(), orderID)
	if err != nil {
		writeErr(w, err)
		return
	}
	d := statusDocOf(o)
	// uninvolved callers get the same answer as for a missing order
	if !d.visibleTo(principal) {
		writeErr(w, market.ErrOrderNotFound)
		return
	}
	h.cacheStatusDoc(r.Context(), orderID, d)
	writeJSON(w, http.StatusOK, map[string]bool{"is_completed": o.IsCompleted})
}

func (h *OrdersHandler) pending(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Service.Pending)
}

func (h *OrdersHandler) completed(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Service.Completed)
}

func (h *OrdersHandler) sold(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Service.Sold)
}

func (h *OrdersHandler) deliveries(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, h.Service.Deliveries)
}

func (h *OrdersHandler) list(w http.ResponseWriter, r *http.Request, f func(ctx context.Context, userID string) ([]orders.OrderDetail, error)) {
	out, err := f(r.Context(), Principal(r.Context()))
	if err != nil {
		writeErr(w, err)
		return
	}
	if out == nil {
		out = []orders.OrderDetail{}
	}
	writeJSON(w, http.StatusOK, out)
}
