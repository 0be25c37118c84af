package httpx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	kafkax "github.com/campuskart/api/internal/kafka"
	"github.com/campuskart/api/internal/market"
	"github.com/campuskart/api/internal/orders"
	"github.com/campuskart/api/internal/redisx"
)

// stubOrderStore pre-seeds a single order. The handler's redis client
// points at a closed port so cache calls fail open and every read goes
// through the store.
type stubOrderStore struct {
	order  market.Order
	stocks map[string]int
}

func (s *stubOrderStore) ResolvedLines(context.Context, string) ([]market.ResolvedCartLine, error) {
	return nil, nil
}

func (s *stubOrderStore) CreateOrder(context.Context, market.Order) error { return nil }

func (s *stubOrderStore) GetOrder(_ context.Context, id string) (market.Order, error) {
	if id != s.order.ID {
		return market.Order{}, market.ErrOrderNotFound
	}
	cp := s.order
	cp.Lines = append([]market.OrderLine(nil), s.order.Lines...)
	return cp, nil
}

func (s *stubOrderStore) FindByIdemKey(context.Context, string, string) (market.Order, error) {
	return market.Order{}, market.ErrOrderNotFound
}

func (s *stubOrderStore) ConfirmSellerLines(_ context.Context, orderID, sellerID string) (orders.ConfirmResult, error) {
	if orderID != s.order.ID {
		return orders.ConfirmResult{}, market.ErrOrderNotFound
	}
	confirmed := 0
	for i, l := range s.order.Lines {
		if l.SellerID != sellerID || l.Confirmed {
			continue
		}
		s.stocks[l.ItemID] -= l.Qty
		s.order.Lines[i].Confirmed = true
		confirmed++
	}
	completed := market.AllConfirmed(s.order.Lines)
	if completed {
		s.order.IsCompleted = true
	}
	return orders.ConfirmResult{LinesConfirmed: confirmed, Completed: completed}, nil
}

func (s *stubOrderStore) RemoveLines(context.Context, string, []int64) error { return nil }
func (s *stubOrderStore) DeleteOrder(context.Context, string) error          { return nil }
func (s *stubOrderStore) SetCodeHash(context.Context, string, string) error  { return nil }
func (s *stubOrderStore) SetCompleted(context.Context, string) error         { return nil }

func (s *stubOrderStore) ItemStocks(context.Context, []string) (map[string]int, error) {
	return s.stocks, nil
}

func (s *stubOrderStore) ListByBuyer(context.Context, string, bool) ([]orders.OrderDetail, error) {
	return nil, nil
}

func (s *stubOrderStore) ListForSeller(context.Context, string, bool) ([]orders.OrderDetail, error) {
	return nil, nil
}

func newOrdersTestRouter(t *testing.T) (*stubOrderStore, *kafkax.Producer, http.Handler) {
	t.Helper()
	ci := market.NewCodeIssuer(bcrypt.MinCost)
	hash, err := ci.Hash("123456")
	require.NoError(t, err)

	st := &stubOrderStore{
		order: market.Order{
			ID:      "order-1",
			BuyerID: "buyer-1",
			OTPHash: hash,
			Lines: []market.OrderLine{
				{ID: 1, OrderID: "order-1", ItemID: "item-1", SellerID: "seller-1", Qty: 2, PriceCents: 100},
			},
			TotalCents: 200,
			CreatedAt:  time.Now(),
		},
		stocks: map[string]int{"item-1": 5},
	}

	svc := &orders.Service{
		Carts: st,
		Store: st,
		Codes: ci,
		NewID: func() string { return "order-2" },
		Now:   time.Now,
	}
	completed := kafkax.NewProducer([]string{"127.0.0.1:1"}, market.TopicOrderCompleted, 8)
	h := &OrdersHandler{
		Service:           svc,
		ProducerCreated:   kafkax.NewProducer([]string{"127.0.0.1:1"}, market.TopicOrderCreated, 8),
		ProducerCompleted: completed,
		ProducerRemoved:   kafkax.NewProducer([]string{"127.0.0.1:1"}, market.TopicOrderRemoved, 8),
		Redis:             redisx.New("127.0.0.1:1"),
		ServiceName:       "test-api",
	}

	r := chi.NewRouter()
	r.Use(RequirePrincipal)
	h.Register(r)
	return st, completed, r
}

func TestConfirmRetryAnnouncesCompletionOnce(t *testing.T) {
	st, completed, router := newOrdersTestRouter(t)

	confirm := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/orders/order-1/confirm", strings.NewReader(`{"code":"123456"}`))
		req.Header.Set(HeaderUserID, "seller-1")
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := confirm()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, st.order.IsCompleted)
	assert.Equal(t, 1, completed.Queued())

	rec = confirm()
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, completed.Queued(), "a retried confirmation must not re-announce completion")
}

func TestOrderStatusVisibility(t *testing.T) {
	_, _, router := newOrdersTestRouter(t)

	status := func(userID string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/orders/order-1", nil)
		req.Header.Set(HeaderUserID, userID)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	rec := status("buyer-1")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"is_completed":false}`, rec.Body.String())

	rec = status("seller-1")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = status("stranger")
	assert.Equal(t, http.StatusNotFound, rec.Code, "order status must stay invisible to uninvolved users")
}
