package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const attendanceColumns = `id, staff_id, date, check_in_time, check_out_time, status, notes, created_at, updated_at`

type ListAttendanceParams struct {
	StaffID pgtype.UUID
	Limit   int32
	Offset  int32
}

func (q *Queries) ListAttendance(ctx context.Context, arg ListAttendanceParams) ([]Attendance, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+attendanceColumns+`
		FROM attendance
		WHERE ($1::uuid IS NULL OR staff_id = $1)
		ORDER BY date DESC, created_at DESC
		LIMIT $2 OFFSET $3`,
		arg.StaffID, arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []Attendance
	for rows.Next() {
		a, err := scanAttendance(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, a)
	}
	return records, rows.Err()
}

func (q *Queries) GetAttendance(ctx context.Context, id uuid.UUID) (Attendance, error) {
	row := q.db.QueryRow(ctx, `SELECT `+attendanceColumns+` FROM attendance WHERE id = $1`, id)
	return scanAttendance(row)
}

type CheckInParams struct {
	StaffID     uuid.UUID
	Date        time.Time
	CheckInTime pgtype.Time
	Status      string
}

// CheckIn records a check-in for the staff member on the given date. A second
// check-in the same day updates the existing row instead of creating a
// duplicate; the UNIQUE(staff_id, date) constraint backs this.
func (q *Queries) CheckIn(ctx context.Context, arg CheckInParams) (Attendance, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO attendance (staff_id, date, check_in_time, status)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (staff_id, date)
		DO UPDATE SET check_in_time = EXCLUDED.check_in_time, status = EXCLUDED.status, updated_at = now()
		RETURNING `+attendanceColumns,
		arg.StaffID, arg.Date, arg.CheckInTime, arg.Status)
	return scanAttendance(row)
}

type CheckOutParams struct {
	StaffID      uuid.UUID
	Date         time.Time
	CheckOutTime pgtype.Time
}

// CheckOut sets the check-out time for an existing record. No rows when the
// staff member never checked in that day.
func (q *Queries) CheckOut(ctx context.Context, arg CheckOutParams) (Attendance, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE attendance
		SET check_out_time = $3, updated_at = now()
		WHERE staff_id = $1 AND date = $2
		RETURNING `+attendanceColumns,
		arg.StaffID, arg.Date, arg.CheckOutTime)
	return scanAttendance(row)
}

type UpdateAttendanceParams struct {
	ID           uuid.UUID
	CheckInTime  pgtype.Time
	CheckOutTime pgtype.Time
	Status       string
	Notes        pgtype.Text
}

func (q *Queries) UpdateAttendance(ctx context.Context, arg UpdateAttendanceParams) (Attendance, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE attendance
		SET check_in_time = $2, check_out_time = $3, status = $4, notes = $5, updated_at = now()
		WHERE id = $1
		RETURNING `+attendanceColumns,
		arg.ID, arg.CheckInTime, arg.CheckOutTime, arg.Status, arg.Notes)
	return scanAttendance(row)
}

func (q *Queries) DeleteAttendance(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `DELETE FROM attendance WHERE id = $1 RETURNING id`, id).Scan(&deleted)
	return deleted, err
}

func scanAttendance(row rowScanner) (Attendance, error) {
	var a Attendance
	err := row.Scan(&a.ID, &a.StaffID, &a.Date, &a.CheckInTime, &a.CheckOutTime,
		&a.Status, &a.Notes, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}
