package ratings

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskart/api/internal/market"
)

// fakeRatingStore keeps ratings per (item, rater) and recomputes the
// seller average the way the SQL layer does: over every rating on every
// item the seller owns.
type fakeRatingStore struct {
	items    map[string]market.Item
	ratings  map[[2]string]int // (itemID, raterID) -> rating
	averages map[string]float64
}

func newFakeRatingStore(items ...market.Item) *fakeRatingStore {
	f := &fakeRatingStore{
		items:    map[string]market.Item{},
		ratings:  map[[2]string]int{},
		averages: map[string]float64{},
	}
	for _, it := range items {
		f.items[it.ID] = it
	}
	return f
}

func (f *fakeRatingStore) GetItem(_ context.Context, id string) (market.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return market.Item{}, market.ErrItemNotFound
	}
	return it, nil
}

func (f *fakeRatingStore) UpsertAndRecompute(_ context.Context, sellerID, itemID, raterID string, rating int) (float64, error) {
	f.ratings[[2]string{itemID, raterID}] = rating

	sum, n := 0, 0
	for key, r := range f.ratings {
		it := f.items[key[0]]
		if it.SellerID != sellerID {
			continue
		}
		sum += r
		n++
	}
	avg := 0.0
	if n > 0 {
		avg = float64(sum) / float64(n)
	}
	f.averages[sellerID] = avg
	return avg, nil
}

func TestRateRejectsOutOfRange(t *testing.T) {
	store := newFakeRatingStore(market.Item{ID: "item-1", SellerID: "seller-1"})
	svc := &Service{Store: store}

	for _, r := range []int{0, -1, 6, 100} {
		_, err := svc.Rate(context.Background(), "rater", "item-1", r)
		require.ErrorIs(t, err, market.ErrInvalidRating)
	}
	assert.Empty(t, store.ratings, "invalid ratings never reach storage")
}

func TestRateUnknownItem(t *testing.T) {
	svc := &Service{Store: newFakeRatingStore()}
	_, err := svc.Rate(context.Background(), "rater", "ghost", 3)
	require.ErrorIs(t, err, market.ErrItemNotFound)
}

func TestRateAddsThenReplaces(t *testing.T) {
	store := newFakeRatingStore(market.Item{ID: "item-1", SellerID: "seller-1"})
	svc := &Service{Store: store}

	avg, err := svc.Rate(context.Background(), "rater", "item-1", 4)
	require.NoError(t, err)
	assert.Equal(t, 4.0, avg)
	assert.Len(t, store.ratings, 1)

	// re-rating replaces, never duplicates
	avg, err = svc.Rate(context.Background(), "rater", "item-1", 2)
	require.NoError(t, err)
	assert.Equal(t, 2.0, avg)
	assert.Len(t, store.ratings, 1)
}

func TestAverageSpansAllSellerItems(t *testing.T) {
	store := newFakeRatingStore(
		market.Item{ID: "item-1", SellerID: "seller-1"},
		market.Item{ID: "item-2", SellerID: "seller-1"},
		market.Item{ID: "other", SellerID: "seller-2"},
	)
	svc := &Service{Store: store}

	_, err := svc.Rate(context.Background(), "rater-a", "item-1", 5)
	require.NoError(t, err)
	_, err = svc.Rate(context.Background(), "rater-b", "item-1", 2)
	require.NoError(t, err)
	avg, err := svc.Rate(context.Background(), "rater-a", "item-2", 2)
	require.NoError(t, err)

	assert.InDelta(t, 3.0, avg, 1e-9, "(5+2+2)/3 across both items")

	// another seller's items never feed into this average
	avg, err = svc.Rate(context.Background(), "rater-a", "other", 1)
	require.NoError(t, err)
	assert.Equal(t, 1.0, avg)
	assert.InDelta(t, 3.0, store.averages["seller-1"], 1e-9)
}
