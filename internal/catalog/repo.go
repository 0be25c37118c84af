package catalog

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskart/api/internal/market"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) Create(ctx context.Context, it market.Item) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO items(id, seller_id, name, price_cents, stock, category)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, it.ID, it.SellerID, it.Name, it.PriceCents, it.Stock, string(it.Category))
	return err
}

func (r *Repo) Get(ctx context.Context, id string) (market.Item, error) {
	var it market.Item
	var cat string
	err := r.DB.QueryRow(ctx, `
		SELECT id, seller_id, name, price_cents, stock, category, created_at, updated_at
		FROM items WHERE id=$1
	`, id).Scan(&it.ID, &it.SellerID, &it.Name, &it.PriceCents, &it.Stock, &cat, &it.CreatedAt, &it.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Item{}, market.ErrItemNotFound
	}
	if err != nil {
		return market.Item{}, err
	}
	it.Category = market.Category(cat)
	return it, nil
}

func (r *Repo) Update(ctx context.Context, sellerID string, it market.Item) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE items SET name=$3, price_cents=$4, stock=$5, category=$6, updated_at=now()
		WHERE id=$1 AND seller_id=$2
	`, it.ID, sellerID, it.Name, it.PriceCents, it.Stock, string(it.Category))
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return market.ErrItemNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, sellerID, id string) error {
	ct, err := r.DB.Exec(ctx, `DELETE FROM items WHERE id=$1 AND seller_id=$2`, id, sellerID)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return market.ErrItemNotFound
	}
	return nil
}

func (r *Repo) ListBySeller(ctx context.Context, sellerID string) ([]market.Item, error) {
	return r.list(ctx, `
		SELECT id, seller_id, name, price_cents, stock, category, created_at, updated_at
		FROM items WHERE seller_id=$1 ORDER BY created_at DESC
	`, sellerID)
}

func (r *Repo) Browse(ctx context.Context, excludeSellerID string) ([]market.Item, error) {
	return r.list(ctx, `
		SELECT id, seller_id, name, price_cents, stock, category, created_at, updated_at
		FROM items WHERE seller_id <> $1 AND stock >= 1 ORDER BY created_at DESC
	`, excludeSellerID)
}

func (r *Repo) list(ctx context.Context, q string, args ...any) ([]market.Item, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.Item
	for rows.Next() {
		var it market.Item
		var cat string
		if err := rows.Scan(&it.ID, &it.SellerID, &it.Name, &it.PriceCents, &it.Stock, &cat, &it.CreatedAt, &it.UpdatedAt); err != nil {
			return nil, err
		}
		it.Category = market.Category(cat)
		out = append(out, it)
	}
	return out, rows.Err()
}
