package ratings

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskart/api/internal/market"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) GetItem(ctx context.Context, id string) (market.Item, error) {
	var it market.Item
	var cat string
	err := r.DB.QueryRow(ctx, `
		SELECT id, seller_id, name, price_cents, stock, category FROM items WHERE id=$1
	`, id).Scan(&it.ID, &it.SellerID, &it.Name, &it.PriceCents, &it.Stock, &cat)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Item{}, market.ErrItemNotFound
	}
	if err != nil {
		return market.Item{}, err
	}
	it.Category = market.Category(cat)
	return it, nil
}

func (r *Repo) UpsertAndRecompute(ctx context.Context, sellerID, itemID, raterID string, rating int) (float64, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO item_ratings(item_id, rater_id, rating)
		VALUES ($1, $2, $3)
		ON CONFLICT (item_id, rater_id) DO UPDATE SET rating = EXCLUDED.rating
	`, itemID, raterID, rating)
	if err != nil {
		return 0, err
	}

	// mean over every rating on every item the seller owns; 0 when none
	var avg float64
	err = tx.QueryRow(ctx, `
		SELECT COALESCE(AVG(r.rating), 0)
		FROM item_ratings r
		JOIN items i ON i.id = r.item_id
		WHERE i.seller_id = $1
	`, sellerID).Scan(&avg)
	if err != nil {
		return 0, err
	}

	if _, err := tx.Exec(ctx, `UPDATE users SET average_rating=$2 WHERE id=$1`, sellerID, avg); err != nil {
		return 0, err
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, err
	}
	return avg, nil
}
