package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const menuItemColumns = `id, name, category, description, price, list_order, is_available, created_at`

type ListMenuItemsParams struct {
	IncludeUnavailable bool
}

func (q *Queries) ListMenuItems(ctx context.Context, arg ListMenuItemsParams) ([]MenuItem, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+menuItemColumns+`
		FROM menu_items
		WHERE is_available OR $1
		ORDER BY category, list_order, name`,
		arg.IncludeUnavailable)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []MenuItem
	for rows.Next() {
		m, err := scanMenuItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (q *Queries) GetMenuItem(ctx context.Context, id uuid.UUID) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `SELECT `+menuItemColumns+` FROM menu_items WHERE id = $1`, id)
	return scanMenuItem(row)
}

type CreateMenuItemParams struct {
	Name        string
	Category    string
	Description pgtype.Text
	Price       pgtype.Numeric
	ListOrder   int32
	IsAvailable bool
}

func (q *Queries) CreateMenuItem(ctx context.Context, arg CreateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO menu_items (name, category, description, price, list_order, is_available)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+menuItemColumns,
		arg.Name, arg.Category, arg.Description, arg.Price, arg.ListOrder, arg.IsAvailable)
	return scanMenuItem(row)
}

type UpdateMenuItemParams struct {
	ID          uuid.UUID
	Name        string
	Category    string
	Description pgtype.Text
	Price       pgtype.Numeric
	ListOrder   int32
	IsAvailable bool
}

func (q *Queries) UpdateMenuItem(ctx context.Context, arg UpdateMenuItemParams) (MenuItem, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE menu_items
		SET name = $2, category = $3, description = $4, price = $5, list_order = $6, is_available = $7
		WHERE id = $1
		RETURNING `+menuItemColumns,
		arg.ID, arg.Name, arg.Category, arg.Description, arg.Price, arg.ListOrder, arg.IsAvailable)
	return scanMenuItem(row)
}

func (q *Queries) DeleteMenuItem(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM menu_items WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

func scanMenuItem(row rowScanner) (MenuItem, error) {
	var m MenuItem
	err := row.Scan(&m.ID, &m.Name, &m.Category, &m.Description, &m.Price,
		&m.ListOrder, &m.IsAvailable, &m.CreatedAt)
	return m, err
}
