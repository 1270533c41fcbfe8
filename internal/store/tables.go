package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const tableColumns = `id, table_number, table_name, capacity, is_active, qr_token, visual_x, visual_y, shape, width, height, radius, floor_id, created_at`

type ListTablesParams struct {
	FloorID    pgtype.UUID
	ActiveOnly bool
}

func (q *Queries) ListTables(ctx context.Context, arg ListTablesParams) ([]Table, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+tableColumns+`
		FROM tables
		WHERE ($1::uuid IS NULL OR floor_id = $1)
		  AND (is_active OR NOT $2)
		ORDER BY table_number`,
		arg.FloorID, arg.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tables []Table
	for rows.Next() {
		t, err := scanTable(rows)
		if err != nil {
			return nil, err
		}
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func (q *Queries) GetTable(ctx context.Context, id uuid.UUID) (Table, error) {
	row := q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE id = $1`, id)
	return scanTable(row)
}

// GetTableByToken resolves a QR token to its table.
func (q *Queries) GetTableByToken(ctx context.Context, token string) (Table, error) {
	row := q.db.QueryRow(ctx, `SELECT `+tableColumns+` FROM tables WHERE qr_token = $1`, token)
	return scanTable(row)
}

type CreateTableParams struct {
	TableNumber string
	TableName   pgtype.Text
	Capacity    int32
	QRToken     string
	VisualX     int32
	VisualY     int32
	Shape       string
	Width       int32
	Height      int32
	Radius      int32
	FloorID     pgtype.UUID
}

// CreateTable inserts a table with its QR token. The token is minted exactly
// once here; no update path touches it afterwards.
func (q *Queries) CreateTable(ctx context.Context, arg CreateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO tables (table_number, table_name, capacity, qr_token, visual_x, visual_y, shape, width, height, radius, floor_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+tableColumns,
		arg.TableNumber, arg.TableName, arg.Capacity, arg.QRToken, arg.VisualX, arg.VisualY,
		arg.Shape, arg.Width, arg.Height, arg.Radius, arg.FloorID)
	return scanTable(row)
}

type UpdateTableParams struct {
	ID          uuid.UUID
	TableNumber string
	TableName   pgtype.Text
	Capacity    int32
	IsActive    bool
	Shape       string
	Width       int32
	Height      int32
	Radius      int32
	FloorID     pgtype.UUID
}

func (q *Queries) UpdateTable(ctx context.Context, arg UpdateTableParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables
		SET table_number = $2, table_name = $3, capacity = $4, is_active = $5,
		    shape = $6, width = $7, height = $8, radius = $9, floor_id = $10
		WHERE id = $1
		RETURNING `+tableColumns,
		arg.ID, arg.TableNumber, arg.TableName, arg.Capacity, arg.IsActive,
		arg.Shape, arg.Width, arg.Height, arg.Radius, arg.FloorID)
	return scanTable(row)
}

type UpdateTablePositionParams struct {
	ID      uuid.UUID
	VisualX int32
	VisualY int32
}

func (q *Queries) UpdateTablePosition(ctx context.Context, arg UpdateTablePositionParams) (Table, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE tables
		SET visual_x = $2, visual_y = $3
		WHERE id = $1
		RETURNING `+tableColumns,
		arg.ID, arg.VisualX, arg.VisualY)
	return scanTable(row)
}

func (q *Queries) DeleteTable(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM tables WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

func scanTable(row rowScanner) (Table, error) {
	var t Table
	err := row.Scan(&t.ID, &t.TableNumber, &t.TableName, &t.Capacity, &t.IsActive,
		&t.QRToken, &t.VisualX, &t.VisualY, &t.Shape, &t.Width, &t.Height, &t.Radius,
		&t.FloorID, &t.CreatedAt)
	return t, err
}
