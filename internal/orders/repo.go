package orders

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/campuskart/api/internal/market"
)

type Repo struct{ DB *pgxpool.Pool }

// CreateOrder inserts the order and its lines and clears the buyer's cart.
// All three writes commit together; if any fails the cart stays untouched.
func (r *Repo) CreateOrder(ctx context.Context, o market.Order) error {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO orders(id, buyer_id, idempotency_key, total_cents, otp_hash, is_completed, created_at)
		VALUES ($1, $2, NULLIF($3, ''), $4, $5, FALSE, $6)
	`, o.ID, o.BuyerID, o.IdemKey, o.TotalCents, o.OTPHash, o.CreatedAt)
	if err != nil {
		return err
	}

	for _, l := range o.Lines {
		_, err = tx.Exec(ctx, `
			INSERT INTO order_lines(order_id, item_id, seller_id, qty, price_cents, confirmed)
			VALUES ($1, $2, $3, $4, $5, FALSE)
		`, o.ID, l.ItemID, l.SellerID, l.Qty, l.PriceCents)
		if err != nil {
			return err
		}
	}

	if _, err = tx.Exec(ctx, `DELETE FROM cart_lines WHERE user_id=$1`, o.BuyerID); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (r *Repo) GetOrder(ctx context.Context, id string) (market.Order, error) {
	var o market.Order
	err := r.DB.QueryRow(ctx, `
		SELECT id, buyer_id, COALESCE(idempotency_key, ''), total_cents, otp_hash, is_completed, created_at
		FROM orders WHERE id=$1
	`, id).Scan(&o.ID, &o.BuyerID, &o.IdemKey, &o.TotalCents, &o.OTPHash, &o.IsCompleted, &o.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Order{}, market.ErrOrderNotFound
	}
	if err != nil {
		return market.Order{}, err
	}

	rows, err := r.DB.Query(ctx, `
		SELECT id, order_id, item_id, seller_id, qty, price_cents, confirmed
		FROM order_lines WHERE order_id=$1 ORDER BY id
	`, id)
	if err != nil {
		return market.Order{}, err
	}
	defer rows.Close()
	for rows.Next() {
		var l market.OrderLine
		if err := rows.Scan(&l.ID, &l.OrderID, &l.ItemID, &l.SellerID, &l.Qty, &l.PriceCents, &l.Confirmed); err != nil {
			return market.Order{}, err
		}
		o.Lines = append(o.Lines, l)
	}
	return o, rows.Err()
}

func (r *Repo) FindByIdemKey(ctx context.Context, buyerID, key string) (market.Order, error) {
	var id string
	err := r.DB.QueryRow(ctx, `
		SELECT id FROM orders WHERE buyer_id=$1 AND idempotency_key=$2
	`, buyerID, key).Scan(&id)
	if errors.Is(err, pgx.ErrNoRows) {
		return market.Order{}, market.ErrOrderNotFound
	}
	if err != nil {
		return market.Order{}, err
	}
	return r.GetOrder(ctx, id)
}

// ConfirmSellerLines locks the seller's unconfirmed lines, decrements each
// line's item stock (only while stock covers the quantity) and flips the
// lines to confirmed. The order is promoted to completed once no
// unconfirmed line remains. Everything commits together; a short item
// rolls the whole confirmation back.
func (r *Repo) ConfirmSellerLines(ctx context.Context, orderID, sellerID string) (ConfirmResult, error) {
	tx, err := r.DB.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return ConfirmResult{}, err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	rows, err := tx.Query(ctx, `
		SELECT id, item_id, qty FROM order_lines
		WHERE order_id=$1 AND seller_id=$2 AND confirmed=FALSE
		ORDER BY id
		FOR UPDATE
	`, orderID, sellerID)
	if err != nil {
		return ConfirmResult{}, err
	}
	type line struct {
		id     int64
		itemID string
		qty    int
	}
	var lines []line
	for rows.Next() {
		var l line
		if err := rows.Scan(&l.id, &l.itemID, &l.qty); err != nil {
			rows.Close()
			return ConfirmResult{}, err
		}
		lines = append(lines, l)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return ConfirmResult{}, err
	}

	for _, l := range lines {
		ct, err := tx.Exec(ctx, `
			UPDATE items SET stock = stock - $2, updated_at = now()
			WHERE id=$1 AND stock >= $2
		`, l.itemID, l.qty)
		if err != nil {
			return ConfirmResult{}, err
		}
		if ct.RowsAffected() != 1 {
			return ConfirmResult{}, market.ErrInsufficientStock
		}
		if _, err := tx.Exec(ctx, `UPDATE order_lines SET confirmed=TRUE WHERE id=$1`, l.id); err != nil {
			return ConfirmResult{}, err
		}
	}

	// completion check only after every line write above is applied
	var remaining, total int
	err = tx.QueryRow(ctx, `
		SELECT COUNT(*) FILTER (WHERE confirmed=FALSE), COUNT(*)
		FROM order_lines WHERE order_id=$1
	`, orderID).Scan(&remaining, &total)
	if err != nil {
		return ConfirmResult{}, err
	}

	completed := total > 0 && remaining == 0
	if completed {
		if _, err := tx.Exec(ctx, `
			UPDATE orders SET is_completed=TRUE WHERE id=$1 AND is_completed=FALSE
		`, orderID); err != nil {
			return ConfirmResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return ConfirmResult{}, err
	}
	return ConfirmResult{LinesConfirmed: len(lines), Completed: completed}, nil
}

func (r *Repo) RemoveLines(ctx context.Context, orderID string, lineIDs []int64) error {
	_, err := r.DB.Exec(ctx, `
		DELETE FROM order_lines WHERE order_id=$1 AND id = ANY($2)
	`, orderID, lineIDs)
	return err
}

func (r *Repo) SetCompleted(ctx context.Context, orderID string) error {
	_, err := r.DB.Exec(ctx, `UPDATE orders SET is_completed=TRUE WHERE id=$1 AND is_completed=FALSE`, orderID)
	return err
}

func (r *Repo) DeleteOrder(ctx context.Context, id string) error {
	_, err := r.DB.Exec(ctx, `DELETE FROM orders WHERE id=$1`, id)
	return err
}

func (r *Repo) SetCodeHash(ctx context.Context, orderID, hash string) error {
	ct, err := r.DB.Exec(ctx, `UPDATE orders SET otp_hash=$2 WHERE id=$1`, orderID, hash)
	if err != nil {
		return err
	}
	if ct.RowsAffected() == 0 {
		return market.ErrOrderNotFound
	}
	return nil
}

func (r *Repo) ItemStocks(ctx context.Context, itemIDs []string) (map[string]int, error) {
	rows, err := r.DB.Query(ctx, `SELECT id, stock FROM items WHERE id = ANY($1)`, itemIDs)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	stocks := map[string]int{}
	for rows.Next() {
		var id string
		var stock int
		if err := rows.Scan(&id, &stock); err != nil {
			return nil, err
		}
		stocks[id] = stock
	}
	return stocks, rows.Err()
}

func (r *Repo) ListByBuyer(ctx context.Context, buyerID string, completed bool) ([]OrderDetail, error) {
	return r.listDetails(ctx, `
		SELECT o.id, o.buyer_id, TRIM(u.firstname || ' ' || u.surname), o.total_cents, o.is_completed, o.created_at,
		       l.id, l.order_id, l.item_id, l.seller_id, l.qty, l.price_cents, l.confirmed,
		       COALESCE(i.name, ''), TRIM(s.firstname || ' ' || s.surname)
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		JOIN order_lines l ON l.order_id = o.id
		JOIN users s ON s.id = l.seller_id
		LEFT JOIN items i ON i.id = l.item_id
		WHERE o.buyer_id=$1 AND o.is_completed=$2
		ORDER BY o.created_at DESC, l.id
	`, buyerID, completed)
}

// ListForSeller returns the seller's side of orders: only orders holding at
// least one of the seller's lines, with lines narrowed to that seller.
func (r *Repo) ListForSeller(ctx context.Context, sellerID string, completed bool) ([]OrderDetail, error) {
	return r.listDetails(ctx, `
		SELECT o.id, o.buyer_id, TRIM(u.firstname || ' ' || u.surname), o.total_cents, o.is_completed, o.created_at,
		       l.id, l.order_id, l.item_id, l.seller_id, l.qty, l.price_cents, l.confirmed,
		       COALESCE(i.name, ''), TRIM(s.firstname || ' ' || s.surname)
		FROM orders o
		JOIN users u ON u.id = o.buyer_id
		JOIN order_lines l ON l.order_id = o.id AND l.seller_id = $1
		JOIN users s ON s.id = l.seller_id
		LEFT JOIN items i ON i.id = l.item_id
		WHERE o.is_completed=$2
		ORDER BY o.created_at DESC, l.id
	`, sellerID, completed)
}

func (r *Repo) listDetails(ctx context.Context, q string, args ...any) ([]OrderDetail, error) {
	rows, err := r.DB.Query(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []OrderDetail
	index := map[string]int{}
	for rows.Next() {
		var od OrderDetail
		var ld LineDetail
		if err := rows.Scan(&od.ID, &od.BuyerID, &od.BuyerName, &od.TotalCents, &od.IsCompleted, &od.CreatedAt,
			&ld.ID, &ld.OrderID, &ld.ItemID, &ld.SellerID, &ld.Qty, &ld.PriceCents, &ld.Confirmed,
			&ld.ItemName, &ld.SellerName); err != nil {
			return nil, err
		}
		i, ok := index[od.ID]
		if !ok {
			index[od.ID] = len(out)
			od.Lines = []LineDetail{ld}
			out = append(out, od)
			continue
		}
		out[i].Lines = append(out[i].Lines, ld)
	}
	return out, rows.Err()
}
