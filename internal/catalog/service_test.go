package catalog

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/campuskart/api/internal/market"
)

type fakeItemStore struct {
	items map[string]market.Item
}

func (f *fakeItemStore) Create(_ context.Context, it market.Item) error {
	f.items[it.ID] = it
	return nil
}

func (f *fakeItemStore) Get(_ context.Context, id string) (market.Item, error) {
	it, ok := f.items[id]
	if !ok {
		return market.Item{}, market.ErrItemNotFound
	}
	return it, nil
}

func (f *fakeItemStore) Update(_ context.Context, sellerID string, it market.Item) error {
	existing, ok := f.items[it.ID]
	if !ok || existing.SellerID != sellerID {
		return market.ErrItemNotFound
	}
	it.SellerID = existing.SellerID
	f.items[it.ID] = it
	return nil
}

func (f *fakeItemStore) Delete(_ context.Context, sellerID, id string) error {
	existing, ok := f.items[id]
	if !ok || existing.SellerID != sellerID {
		return market.ErrItemNotFound
	}
	delete(f.items, id)
	return nil
}

func (f *fakeItemStore) ListBySeller(_ context.Context, sellerID string) ([]market.Item, error) {
	var out []market.Item
	for _, it := range f.items {
		if it.SellerID == sellerID {
			out = append(out, it)
		}
	}
	return out, nil
}

func (f *fakeItemStore) Browse(_ context.Context, exclude string) ([]market.Item, error) {
	var out []market.Item
	for _, it := range f.items {
		if it.SellerID != exclude && it.Stock >= 1 {
			out = append(out, it)
		}
	}
	return out, nil
}

func newCatalogService() (*Service, *fakeItemStore) {
	store := &fakeItemStore{items: map[string]market.Item{}}
	n := 0
	return &Service{Store: store, NewID: func() string { n++; return "item-x" }}, store
}

func TestCreateValidation(t *testing.T) {
	svc, store := newCatalogService()

	_, err := svc.Create(context.Background(), "seller", "  ", 100, 1, market.CategoryBooks)
	require.ErrorIs(t, err, market.ErrInvalidItem)

	_, err = svc.Create(context.Background(), "seller", "Book", -1, 1, market.CategoryBooks)
	require.ErrorIs(t, err, market.ErrInvalidItem)

	_, err = svc.Create(context.Background(), "seller", "Book", 100, -1, market.CategoryBooks)
	require.ErrorIs(t, err, market.ErrInvalidItem)

	_, err = svc.Create(context.Background(), "seller", "Book", 100, 1, market.Category("Gadgets"))
	require.ErrorIs(t, err, market.ErrInvalidCategory)

	assert.Empty(t, store.items)

	it, err := svc.Create(context.Background(), "seller", " Algorithms textbook ", 100, 1, market.CategoryBooks)
	require.NoError(t, err)
	assert.Equal(t, "Algorithms textbook", it.Name)
	assert.Equal(t, "seller", it.SellerID)
}

func TestUpdateOnlyOwnItem(t *testing.T) {
	svc, store := newCatalogService()
	_, err := svc.Create(context.Background(), "seller", "Lamp", 900, 2, market.CategoryFurniture)
	require.NoError(t, err)

	err = svc.Update(context.Background(), "intruder", "item-x", "Lamp", 1, 1, market.CategoryFurniture)
	require.ErrorIs(t, err, market.ErrItemNotFound)
	assert.Equal(t, 900, store.items["item-x"].PriceCents)

	require.NoError(t, svc.Update(context.Background(), "seller", "item-x", "Lamp", 800, 2, market.CategoryFurniture))
	assert.Equal(t, 800, store.items["item-x"].PriceCents)
}

func TestBrowseExcludesOwnAndOutOfStock(t *testing.T) {
	svc, store := newCatalogService()
	store.items["a"] = market.Item{ID: "a", SellerID: "me", Stock: 3}
	store.items["b"] = market.Item{ID: "b", SellerID: "them", Stock: 3}
	store.items["c"] = market.Item{ID: "c", SellerID: "them", Stock: 0}

	items, err := svc.Browse(context.Background(), "me")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "b", items[0].ID)
}
