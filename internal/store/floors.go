package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const floorColumns = `id, name, description, is_active, created_at`

type ListFloorsParams struct {
	ActiveOnly bool
}

func (q *Queries) ListFloors(ctx context.Context, arg ListFloorsParams) ([]Floor, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+floorColumns+`
		FROM floors
		WHERE is_active OR NOT $1
		ORDER BY name`,
		arg.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var floors []Floor
	for rows.Next() {
		f, err := scanFloor(rows)
		if err != nil {
			return nil, err
		}
		floors = append(floors, f)
	}
	return floors, rows.Err()
}

func (q *Queries) GetFloor(ctx context.Context, id uuid.UUID) (Floor, error) {
	row := q.db.QueryRow(ctx, `SELECT `+floorColumns+` FROM floors WHERE id = $1`, id)
	return scanFloor(row)
}

type CreateFloorParams struct {
	Name        string
	Description pgtype.Text
}

func (q *Queries) CreateFloor(ctx context.Context, arg CreateFloorParams) (Floor, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO floors (name, description)
		VALUES ($1, $2)
		RETURNING `+floorColumns,
		arg.Name, arg.Description)
	return scanFloor(row)
}

type UpdateFloorParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
	IsActive    bool
}

func (q *Queries) UpdateFloor(ctx context.Context, arg UpdateFloorParams) (Floor, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE floors
		SET name = $2, description = $3, is_active = $4
		WHERE id = $1
		RETURNING `+floorColumns,
		arg.ID, arg.Name, arg.Description, arg.IsActive)
	return scanFloor(row)
}

func (q *Queries) DeleteFloor(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM floors WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

func (q *Queries) CountTablesByFloor(ctx context.Context, floorID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM tables WHERE floor_id = $1`, floorID).Scan(&count)
	return count, err
}

func scanFloor(row rowScanner) (Floor, error) {
	var f Floor
	err := row.Scan(&f.ID, &f.Name, &f.Description, &f.IsActive, &f.CreatedAt)
	return f, err
}
