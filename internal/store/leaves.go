package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const leaveColumns = `id, staff_id, leave_type, start_date, end_date, reason, status, approved_by, approved_at, notes, created_at, updated_at`

type ListLeavesParams struct {
	StaffID pgtype.UUID
	Status  pgtype.Text
}

func (q *Queries) ListLeaves(ctx context.Context, arg ListLeavesParams) ([]Leave, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+leaveColumns+`
		FROM leaves
		WHERE ($1::uuid IS NULL OR staff_id = $1)
		  AND ($2::text IS NULL OR status = $2)
		ORDER BY start_date DESC`,
		arg.StaffID, arg.Status)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leaves []Leave
	for rows.Next() {
		l, err := scanLeave(rows)
		if err != nil {
			return nil, err
		}
		leaves = append(leaves, l)
	}
	return leaves, rows.Err()
}

func (q *Queries) GetLeave(ctx context.Context, id uuid.UUID) (Leave, error) {
	row := q.db.QueryRow(ctx, `SELECT `+leaveColumns+` FROM leaves WHERE id = $1`, id)
	return scanLeave(row)
}

type CreateLeaveParams struct {
	StaffID   uuid.UUID
	LeaveType string
	StartDate time.Time
	EndDate   time.Time
	Reason    string
	Notes     pgtype.Text
}

func (q *Queries) CreateLeave(ctx context.Context, arg CreateLeaveParams) (Leave, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO leaves (staff_id, leave_type, start_date, end_date, reason, notes)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+leaveColumns,
		arg.StaffID, arg.LeaveType, arg.StartDate, arg.EndDate, arg.Reason, arg.Notes)
	return scanLeave(row)
}

type ResolveLeaveParams struct {
	ID         uuid.UUID
	Status     string
	ApprovedBy pgtype.UUID
	ApprovedAt pgtype.Timestamptz
}

// ResolveLeave records an approve/reject decision. Only pending requests can
// be resolved.
func (q *Queries) ResolveLeave(ctx context.Context, arg ResolveLeaveParams) (Leave, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE leaves
		SET status = $2, approved_by = $3, approved_at = $4, updated_at = now()
		WHERE id = $1 AND status = 'pending'
		RETURNING `+leaveColumns,
		arg.ID, arg.Status, arg.ApprovedBy, arg.ApprovedAt)
	return scanLeave(row)
}

func (q *Queries) DeleteLeave(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM leaves WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

func scanLeave(row rowScanner) (Leave, error) {
	var l Leave
	err := row.Scan(&l.ID, &l.StaffID, &l.LeaveType, &l.StartDate, &l.EndDate,
		&l.Reason, &l.Status, &l.ApprovedBy, &l.ApprovedAt, &l.Notes,
		&l.CreatedAt, &l.UpdatedAt)
	return l, err
}
