package ratings

import (
	"context"

	"github.com/campuskart/api/internal/market"
)

type Store interface {
	GetItem(ctx context.Context, id string) (market.Item, error)
	// UpsertAndRecompute replaces the rater's rating on the item (one per
	// rater per item) and rewrites the seller's average over all ratings on
	// all of the seller's items, in one transaction. Returns the new average.
	UpsertAndRecompute(ctx context.Context, sellerID, itemID, raterID string, rating int) (float64, error)
}

type Service struct {
	Store Store
}

// Rate records a 1-5 rating and refreshes the item owner's aggregate score.
// The average is always recomputed from scratch, never maintained
// incrementally, so it cannot drift from the rating records.
func (s *Service) Rate(ctx context.Context, raterID, itemID string, rating int) (float64, error) {
	if rating < 1 || rating > 5 {
		return 0, market.ErrInvalidRating
	}
	it, err := s.Store.GetItem(ctx, itemID)
	if err != nil {
		return 0, err
	}
	return s.Store.UpsertAndRecompute(ctx, it.SellerID, itemID, raterID, rating)
}
