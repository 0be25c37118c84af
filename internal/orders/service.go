package orders

import (
	"context"
	"errors"
	"time"

	"github.com/campuskart/api/internal/market"
)

// CartReader is the slice of the cart the order factory needs at checkout.
type CartReader interface {
	ResolvedLines(ctx context.Context, buyerID string) ([]market.ResolvedCartLine, error)
}

// ConfirmResult reports what a delivery confirmation changed.
type ConfirmResult struct {
	LinesConfirmed int
	Completed      bool
}

type Store interface {
	// CreateOrder persists the order with its lines and clears the buyer's
	// cart in a single transaction.
	CreateOrder(ctx context.Context, o market.Order) error
	GetOrder(ctx context.Context, id string) (market.Order, error)
	// FindByIdemKey returns the buyer's order created under the given
	// idempotency key, or market.ErrOrderNotFound.
	FindByIdemKey(ctx context.Context, buyerID, key string) (market.Order, error)
	// ConfirmSellerLines marks the seller's unconfirmed lines confirmed and
	// conditionally decrements each line's item stock, all in one
	// transaction. The confirmed=false guard makes retries exactly-once.
	ConfirmSellerLines(ctx context.Context, orderID, sellerID string) (ConfirmResult, error)
	RemoveLines(ctx context.Context, orderID string, lineIDs []int64) error
	DeleteOrder(ctx context.Context, id string) error
	SetCompleted(ctx context.Context, orderID string) error
	SetCodeHash(ctx context.Context, orderID, hash string) error
	ItemStocks(ctx context.Context, itemIDs []string) (map[string]int, error)
	ListByBuyer(ctx context.Context, buyerID string, completed bool) ([]OrderDetail, error)
	ListForSeller(ctx context.Context, sellerID string, completed bool) ([]OrderDetail, error)
}

type Service struct {
	Carts CartReader
	Store Store
	Codes *market.CodeIssuer
	NewID func() string
	Now   func() time.Time
}

type CheckoutResult struct {
	OrderID    string
	TotalCents int
	Lines      []market.OrderLine
	// Code is the plaintext one-time code. It is returned exactly once and
	// never persisted; on an idempotent replay it is empty.
	Code       string
	Idempotent bool
}

// Checkout snapshots the buyer's cart into an order, mints the one-time
// code and clears the cart. idemKey may be empty; when set, a replay with
// the same key returns the already-created order instead of a duplicate.
func (s *Service) Checkout(ctx context.Context, buyerID, idemKey string) (CheckoutResult, error) {
	if idemKey != "" {
		existing, err := s.Store.FindByIdemKey(ctx, buyerID, idemKey)
		if err == nil {
			return CheckoutResult{OrderID: existing.ID, TotalCents: existing.TotalCents, Idempotent: true}, nil
		}
		if !errors.Is(err, market.ErrOrderNotFound) {
			return CheckoutResult{}, err
		}
	}

	cartLines, err := s.Carts.ResolvedLines(ctx, buyerID)
	if err != nil {
		return CheckoutResult{}, err
	}
	if len(cartLines) == 0 {
		return CheckoutResult{}, market.ErrEmptyCart
	}

	code, err := s.Codes.Generate()
	if err != nil {
		return CheckoutResult{}, err
	}
	hash, err := s.Codes.Hash(code)
	if err != nil {
		return CheckoutResult{}, err
	}

	o := market.Order{
		ID:        s.NewID(),
		BuyerID:   buyerID,
		IdemKey:   idemKey,
		OTPHash:   hash,
		CreatedAt: s.Now(),
	}
	for _, cl := range cartLines {
		o.Lines = append(o.Lines, market.OrderLine{
			OrderID:    o.ID,
			ItemID:     cl.ItemID,
			SellerID:   cl.Item.SellerID,
			Qty:        cl.Qty,
			PriceCents: cl.Item.PriceCents,
		})
		o.TotalCents += cl.Item.PriceCents * cl.Qty
	}

	if err := s.Store.CreateOrder(ctx, o); err != nil {
		return CheckoutResult{}, err
	}
	return CheckoutResult{OrderID: o.ID, TotalCents: o.TotalCents, Lines: o.Lines, Code: code}, nil
}

// ConfirmDelivery verifies the presented code and confirms every line of
// the calling seller, decrementing stock for each. A seller with no lines
// in the order is a no-op success.
func (s *Service) ConfirmDelivery(ctx context.Context, sellerID, orderID, code string) (ConfirmResult, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return ConfirmResult{}, err
	}
	if !s.Codes.Verify(o.OTPHash, code) {
		return ConfirmResult{}, market.ErrInvalidCode
	}
	return s.Store.ConfirmSellerLines(ctx, orderID, sellerID)
}

type RegenResult struct {
	// Code is set only when no line was pruned.
	Code          string
	PrunedItemIDs []string
	OrderRemoved  bool
	// Completed is set when pruning left only delivered lines behind and
	// the order was promoted to completed.
	Completed bool
}

// RegenerateCode re-validates the order against live stock. Lines whose
// item is gone or short on stock are dropped; an order left with no lines
// is deleted. A fresh code is minted only on a clean, no-prune pass —
// after any pruning the buyer has to confirm the reduced order first.
func (s *Service) RegenerateCode(ctx context.Context, buyerID, orderID string) (RegenResult, error) {
	o, err := s.Store.GetOrder(ctx, orderID)
	if err != nil {
		return RegenResult{}, err
	}
	if o.BuyerID != buyerID {
		return RegenResult{}, market.ErrNotBuyer
	}

	itemIDs := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		itemIDs = append(itemIDs, l.ItemID)
	}
	stocks, err := s.Store.ItemStocks(ctx, itemIDs)
	if err != nil {
		return RegenResult{}, err
	}

	kept, pruned := PruneUnavailable(o.Lines, stocks)
	if len(kept) == 0 {
		if err := s.Store.DeleteOrder(ctx, orderID); err != nil {
			return RegenResult{}, err
		}
		return RegenResult{PrunedItemIDs: itemIDsOf(pruned), OrderRemoved: true}, nil
	}
	if len(pruned) > 0 {
		if err := s.Store.RemoveLines(ctx, orderID, lineIDsOf(pruned)); err != nil {
			return RegenResult{}, err
		}
		// pruning can leave only delivered lines behind; no further
		// confirmation will ever arrive, so the order completes here
		if market.AllConfirmed(kept) {
			if err := s.Store.SetCompleted(ctx, orderID); err != nil {
				return RegenResult{}, err
			}
			return RegenResult{PrunedItemIDs: itemIDsOf(pruned), Completed: true}, nil
		}
		return RegenResult{PrunedItemIDs: itemIDsOf(pruned)}, nil
	}

	code, err := s.Codes.Generate()
	if err != nil {
		return RegenResult{}, err
	}
	hash, err := s.Codes.Hash(code)
	if err != nil {
		return RegenResult{}, err
	}
	if err := s.Store.SetCodeHash(ctx, orderID, hash); err != nil {
		return RegenResult{}, err
	}
	return RegenResult{Code: code}, nil
}

func (s *Service) GetOrder(ctx context.Context, id string) (market.Order, error) {
	return s.Store.GetOrder(ctx, id)
}

// Pending and Completed list the buyer's orders; Sold and Deliveries list
// the seller's side with lines narrowed to the caller.
func (s *Service) Pending(ctx context.Context, buyerID string) ([]OrderDetail, error) {
	return s.Store.ListByBuyer(ctx, buyerID, false)
}

func (s *Service) Completed(ctx context.Context, buyerID string) ([]OrderDetail, error) {
	return s.Store.ListByBuyer(ctx, buyerID, true)
}

func (s *Service) Sold(ctx context.Context, sellerID string) ([]OrderDetail, error) {
	return s.Store.ListForSeller(ctx, sellerID, true)
}

func (s *Service) Deliveries(ctx context.Context, sellerID string) ([]OrderDetail, error) {
	return s.Store.ListForSeller(ctx, sellerID, false)
}

func itemIDsOf(lines []market.OrderLine) []string {
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ItemID)
	}
	return out
}

func lineIDsOf(lines []market.OrderLine) []int64 {
	out := make([]int64, 0, len(lines))
	for _, l := range lines {
		out = append(out, l.ID)
	}
	return out
}
