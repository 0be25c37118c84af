package catalog

import (
	"context"
	"strings"

	"github.com/campuskart/api/internal/market"
)

// Store is the persistence surface the catalog needs.
type Store interface {
	Create(ctx context.Context, it market.Item) error
	Get(ctx context.Context, id string) (market.Item, error)
	Update(ctx context.Context, sellerID string, it market.Item) error
	Delete(ctx context.Context, sellerID, id string) error
	ListBySeller(ctx context.Context, sellerID string) ([]market.Item, error)
	Browse(ctx context.Context, excludeSellerID string) ([]market.Item, error)
}

type Service struct {
	Store Store
	NewID func() string
}

func (s *Service) Create(ctx context.Context, sellerID, name string, priceCents, stock int, cat market.Category) (market.Item, error) {
	if err := validate(name, priceCents, stock, cat); err != nil {
		return market.Item{}, err
	}
	it := market.Item{
		ID:         s.NewID(),
		SellerID:   sellerID,
		Name:       strings.TrimSpace(name),
		PriceCents: priceCents,
		Stock:      stock,
		Category:   cat,
	}
	if err := s.Store.Create(ctx, it); err != nil {
		return market.Item{}, err
	}
	return it, nil
}

func (s *Service) Update(ctx context.Context, sellerID, id, name string, priceCents, stock int, cat market.Category) error {
	if err := validate(name, priceCents, stock, cat); err != nil {
		return err
	}
	return s.Store.Update(ctx, sellerID, market.Item{
		ID:         id,
		Name:       strings.TrimSpace(name),
		PriceCents: priceCents,
		Stock:      stock,
		Category:   cat,
	})
}

func (s *Service) Get(ctx context.Context, id string) (market.Item, error) {
	return s.Store.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, sellerID, id string) error {
	return s.Store.Delete(ctx, sellerID, id)
}

func (s *Service) Mine(ctx context.Context, sellerID string) ([]market.Item, error) {
	return s.Store.ListBySeller(ctx, sellerID)
}

// Browse lists other users' items that still have stock.
func (s *Service) Browse(ctx context.Context, userID string) ([]market.Item, error) {
	return s.Store.Browse(ctx, userID)
}

func validate(name string, priceCents, stock int, cat market.Category) error {
	if strings.TrimSpace(name) == "" {
		return market.ErrInvalidItem
	}
	if priceCents < 0 || stock < 0 {
		return market.ErrInvalidItem
	}
	if !cat.Valid() {
		return market.ErrInvalidCategory
	}
	return nil
}
