package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/dinehq/api/internal/enum"
)

const orderColumns = `id, customer_name, phone, items, entity_token, order_type, table_number, price, status, settled, estimated_time, special_instructions, created_at, updated_at`

type CreateOrderParams struct {
	CustomerName        pgtype.Text
	Phone               pgtype.Text
	Items               []CartItem
	EntityToken         string
	OrderType           string
	TableNumber         string
	Price               pgtype.Numeric
	Status              string
	EstimatedTime       int32
	SpecialInstructions pgtype.Text
}

func (q *Queries) CreateOrder(ctx context.Context, arg CreateOrderParams) (Order, error) {
	payload, err := json.Marshal(arg.Items)
	if err != nil {
		return Order{}, fmt.Errorf("marshal cart: %w", err)
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO orders (customer_name, phone, items, entity_token, order_type, table_number, price, status, estimated_time, special_instructions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING `+orderColumns,
		arg.CustomerName, arg.Phone, payload, arg.EntityToken, arg.OrderType,
		arg.TableNumber, arg.Price, arg.Status, arg.EstimatedTime, arg.SpecialInstructions)
	return scanOrder(row)
}

func (q *Queries) GetOrder(ctx context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(ctx, `SELECT `+orderColumns+` FROM orders WHERE id = $1`, id)
	return scanOrder(row)
}

type ListOrdersParams struct {
	Phone       pgtype.Text
	TableNumber pgtype.Text
	Status      pgtype.Text
	Limit       int32
	Offset      int32
}

func (q *Queries) ListOrders(ctx context.Context, arg ListOrdersParams) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE ($1::text IS NULL OR phone = $1)
		  AND ($2::text IS NULL OR table_number = $2)
		  AND ($3::text IS NULL OR status = $3)
		ORDER BY created_at DESC
		LIMIT $4 OFFSET $5`,
		arg.Phone, arg.TableNumber, arg.Status, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

type UpdateOrderStatusParams struct {
	ID     uuid.UUID
	Status string
}

func (q *Queries) UpdateOrderStatus(ctx context.Context, arg UpdateOrderStatusParams) (Order, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE orders
		SET status = $2, updated_at = now()
		WHERE id = $1
		RETURNING `+orderColumns,
		arg.ID, arg.Status)
	return scanOrder(row)
}

// ListUnsettledOrdersByTableForUpdate selects every unsettled order for the
// table and locks the rows for the duration of the transaction, so concurrent
// bill generations for the same table serialize instead of double-billing.
// Must run inside a transaction.
func (q *Queries) ListUnsettledOrdersByTableForUpdate(ctx context.Context, tableNumber string) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		WHERE table_number = $1 AND NOT settled
		ORDER BY created_at
		FOR UPDATE`,
		tableNumber)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

// MarkOrderSettled flips the settlement flag false -> true. The WHERE clause
// makes the transition one-way; settling an already-settled order returns
// no rows.
func (q *Queries) MarkOrderSettled(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var settled uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE orders
		SET settled = true, updated_at = now()
		WHERE id = $1 AND NOT settled
		RETURNING id`,
		id).Scan(&settled)
	return settled, err
}

// HasActiveOrderByToken reports whether any order for the token is in an open
// status (pending, confirmed, preparing, ready, served).
func (q *Queries) HasActiveOrderByToken(ctx context.Context, token string) (bool, error) {
	var exists bool
	err := q.db.QueryRow(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM orders WHERE entity_token = $1 AND status = ANY($2)
		)`,
		token, enum.OpenOrderStatuses).Scan(&exists)
	return exists, err
}

func (q *Queries) CountOrders(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM orders`).Scan(&count)
	return count, err
}

func (q *Queries) ListRecentOrders(ctx context.Context, limit int32) ([]Order, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+orderColumns+`
		FROM orders
		ORDER BY created_at DESC
		LIMIT $1`,
		limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectOrders(rows)
}

func collectOrders(rows interface {
	Next() bool
	Err() error
	Scan(dest ...interface{}) error
}) ([]Order, error) {
	var orders []Order
	for rows.Next() {
		o, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func scanOrder(row rowScanner) (Order, error) {
	var o Order
	var payload []byte
	err := row.Scan(&o.ID, &o.CustomerName, &o.Phone, &payload, &o.EntityToken,
		&o.OrderType, &o.TableNumber, &o.Price, &o.Status, &o.Settled,
		&o.EstimatedTime, &o.SpecialInstructions, &o.CreatedAt, &o.UpdatedAt)
	if err != nil {
		return Order{}, err
	}
	if err := json.Unmarshal(payload, &o.Items); err != nil {
		return Order{}, fmt.Errorf("unmarshal cart for order %s: %w", o.ID, err)
	}
	return o, nil
}
