package cart

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskart/api/internal/market"
)

type Repo struct{ DB *pgxpool.Pool }

func (r *Repo) AddOrIncrement(ctx context.Context, buyerID, itemID string, qty int) error {
	_, err := r.DB.Exec(ctx, `
		INSERT INTO cart_lines(user_id, item_id, qty)
		VALUES ($1, $2, $3)
		ON CONFLICT (user_id, item_id) DO UPDATE SET qty = cart_lines.qty + EXCLUDED.qty
	`, buyerID, itemID, qty)
	return err
}

func (r *Repo) SetQty(ctx context.Context, buyerID, itemID string, qty int) error {
	ct, err := r.DB.Exec(ctx, `
		UPDATE cart_lines SET qty=$3 WHERE user_id=$1 AND item_id=$2
	`, buyerID, itemID, qty)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return market.ErrLineNotFound
	}
	return nil
}

func (r *Repo) Delete(ctx context.Context, buyerID, itemID string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1 AND item_id=$2`, buyerID, itemID)
	return err
}

func (r *Repo) ResolvedLines(ctx context.Context, buyerID string) ([]market.ResolvedCartLine, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT c.item_id, c.qty, i.id, i.seller_id, i.name, i.price_cents, i.stock, i.category
		FROM cart_lines c
		JOIN items i ON i.id = c.item_id
		WHERE c.user_id = $1
		ORDER BY c.item_id
	`, buyerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []market.ResolvedCartLine
	for rows.Next() {
		var l market.ResolvedCartLine
		var cat string
		if err := rows.Scan(&l.ItemID, &l.Qty, &l.Item.ID, &l.Item.SellerID, &l.Item.Name,
			&l.Item.PriceCents, &l.Item.Stock, &cat); err != nil {
			return nil, err
		}
		l.Item.Category = market.Category(cat)
		out = append(out, l)
	}
	return out, rows.Err()
}
