package cart

import (
	"context"

	"github.com/campuskart/api/internal/market"
)

// ItemReader is the slice of the catalog the cart needs: current price,
// stock and owner of an item.
type ItemReader interface {
	Get(ctx context.Context, id string) (market.Item, error)
}

type Store interface {
	// AddOrIncrement merges qty into an existing line or appends a new one.
	AddOrIncrement(ctx context.Context, buyerID, itemID string, qty int) error
	// SetQty overwrites a line's quantity; market.ErrLineNotFound if absent.
	SetQty(ctx context.Context, buyerID, itemID string, qty int) error
	// Delete removes a line; removing a non-existent line is not an error.
	Delete(ctx context.Context, buyerID, itemID string) error
	// ResolvedLines returns the cart with each line's item resolved.
	ResolvedLines(ctx context.Context, buyerID string) ([]market.ResolvedCartLine, error)
}

type Service struct {
	Items ItemReader
	Store Store
}

// Add puts qty units of an item into the buyer's cart. An existing line is
// incremented without an upper-bound check; stock is enforced on update,
// at reconciliation and by the conditional decrement at delivery time.
func (s *Service) Add(ctx context.Context, buyerID, itemID string, qty int) error {
	if qty <= 0 {
		return market.ErrInvalidQuantity
	}
	if _, err := s.Items.Get(ctx, itemID); err != nil {
		return err
	}
	return s.Store.AddOrIncrement(ctx, buyerID, itemID, qty)
}

// UpdateQuantity overwrites a line's quantity, rejecting quantities above
// the item's current stock.
func (s *Service) UpdateQuantity(ctx context.Context, buyerID, itemID string, qty int) error {
	if qty <= 0 {
		return market.ErrInvalidQuantity
	}
	it, err := s.Items.Get(ctx, itemID)
	if err != nil {
		return err
	}
	if qty > it.Stock {
		return market.ErrInsufficientStock
	}
	return s.Store.SetQty(ctx, buyerID, itemID, qty)
}

func (s *Service) Remove(ctx context.Context, buyerID, itemID string) error {
	return s.Store.Delete(ctx, buyerID, itemID)
}

func (s *Service) Read(ctx context.Context, buyerID string) ([]market.ResolvedCartLine, error) {
	lines, err := s.Store.ResolvedLines(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if lines == nil {
		lines = []market.ResolvedCartLine{}
	}
	return lines, nil
}
