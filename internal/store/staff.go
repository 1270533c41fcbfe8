package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const staffColumns = `id, employee_id, user_id, first_name, last_name, email, phone, department_id, role_id, hire_date, salary, employment_status, is_active, created_at, updated_at`

type ListStaffParams struct {
	DepartmentID pgtype.UUID
	ActiveOnly   bool
}

func (q *Queries) ListStaff(ctx context.Context, arg ListStaffParams) ([]Staff, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+staffColumns+`
		FROM staff
		WHERE ($1::uuid IS NULL OR department_id = $1)
		  AND (is_active OR NOT $2)
		ORDER BY employee_id`,
		arg.DepartmentID, arg.ActiveOnly)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var staff []Staff
	for rows.Next() {
		s, err := scanStaff(rows)
		if err != nil {
			return nil, err
		}
		staff = append(staff, s)
	}
	return staff, rows.Err()
}

func (q *Queries) GetStaff(ctx context.Context, id uuid.UUID) (Staff, error) {
	row := q.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE id = $1`, id)
	return scanStaff(row)
}

// GetStaffByUserID resolves the staff profile linked to a user account.
func (q *Queries) GetStaffByUserID(ctx context.Context, userID uuid.UUID) (Staff, error) {
	row := q.db.QueryRow(ctx, `SELECT `+staffColumns+` FROM staff WHERE user_id = $1`, userID)
	return scanStaff(row)
}

type CreateStaffParams struct {
	EmployeeID       string
	UserID           uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	DepartmentID     uuid.UUID
	RoleID           uuid.UUID
	HireDate         time.Time
	Salary           pgtype.Numeric
	EmploymentStatus string
}

func (q *Queries) CreateStaff(ctx context.Context, arg CreateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO staff (employee_id, user_id, first_name, last_name, email, phone, department_id, role_id, hire_date, salary, employment_status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+staffColumns,
		arg.EmployeeID, arg.UserID, arg.FirstName, arg.LastName, arg.Email, arg.Phone,
		arg.DepartmentID, arg.RoleID, arg.HireDate, arg.Salary, arg.EmploymentStatus)
	return scanStaff(row)
}

type UpdateStaffParams struct {
	ID               uuid.UUID
	FirstName        string
	LastName         string
	Email            string
	Phone            string
	DepartmentID     uuid.UUID
	RoleID           uuid.UUID
	Salary           pgtype.Numeric
	EmploymentStatus string
}

func (q *Queries) UpdateStaff(ctx context.Context, arg UpdateStaffParams) (Staff, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE staff
		SET first_name = $2, last_name = $3, email = $4, phone = $5, department_id = $6,
		    role_id = $7, salary = $8, employment_status = $9, updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING `+staffColumns,
		arg.ID, arg.FirstName, arg.LastName, arg.Email, arg.Phone, arg.DepartmentID,
		arg.RoleID, arg.Salary, arg.EmploymentStatus)
	return scanStaff(row)
}

func (q *Queries) SoftDeleteStaff(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE staff SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING id`,
		id).Scan(&deleted)
	return deleted, err
}

func scanStaff(row rowScanner) (Staff, error) {
	var s Staff
	err := row.Scan(&s.ID, &s.EmployeeID, &s.UserID, &s.FirstName, &s.LastName,
		&s.Email, &s.Phone, &s.DepartmentID, &s.RoleID, &s.HireDate, &s.Salary,
		&s.EmploymentStatus, &s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}
