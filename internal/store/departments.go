package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const departmentColumns = `id, name, description, is_active, created_at, updated_at`
const roleColumns = `id, name, description, department_id, is_active, created_at, updated_at`

func (q *Queries) ListDepartments(ctx context.Context) ([]Department, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+departmentColumns+`
		FROM departments
		WHERE is_active
		ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var deps []Department
	for rows.Next() {
		d, err := scanDepartment(rows)
		if err != nil {
			return nil, err
		}
		deps = append(deps, d)
	}
	return deps, rows.Err()
}

func (q *Queries) GetDepartment(ctx context.Context, id uuid.UUID) (Department, error) {
	row := q.db.QueryRow(ctx, `SELECT `+departmentColumns+` FROM departments WHERE id = $1`, id)
	return scanDepartment(row)
}

type CreateDepartmentParams struct {
	Name        string
	Description pgtype.Text
}

func (q *Queries) CreateDepartment(ctx context.Context, arg CreateDepartmentParams) (Department, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO departments (name, description)
		VALUES ($1, $2)
		RETURNING `+departmentColumns,
		arg.Name, arg.Description)
	return scanDepartment(row)
}

type UpdateDepartmentParams struct {
	ID          uuid.UUID
	Name        string
	Description pgtype.Text
}

func (q *Queries) UpdateDepartment(ctx context.Context, arg UpdateDepartmentParams) (Department, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE departments
		SET name = $2, description = $3, updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING `+departmentColumns,
		arg.ID, arg.Name, arg.Description)
	return scanDepartment(row)
}

func (q *Queries) SoftDeleteDepartment(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE departments SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING id`,
		id).Scan(&deleted)
	return deleted, err
}

func (q *Queries) CountStaffByDepartment(ctx context.Context, departmentID uuid.UUID) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM staff WHERE department_id = $1 AND is_active`, departmentID).Scan(&count)
	return count, err
}

// --- Roles ---

type ListRolesParams struct {
	DepartmentID pgtype.UUID
}

func (q *Queries) ListRoles(ctx context.Context, arg ListRolesParams) ([]Role, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+roleColumns+`
		FROM roles
		WHERE is_active AND ($1::uuid IS NULL OR department_id = $1)
		ORDER BY department_id, name`,
		arg.DepartmentID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var roles []Role
	for rows.Next() {
		r, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		roles = append(roles, r)
	}
	return roles, rows.Err()
}

func (q *Queries) GetRole(ctx context.Context, id uuid.UUID) (Role, error) {
	row := q.db.QueryRow(ctx, `SELECT `+roleColumns+` FROM roles WHERE id = $1`, id)
	return scanRole(row)
}

type CreateRoleParams struct {
	Name         string
	Description  pgtype.Text
	DepartmentID uuid.UUID
}

func (q *Queries) CreateRole(ctx context.Context, arg CreateRoleParams) (Role, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO roles (name, description, department_id)
		VALUES ($1, $2, $3)
		RETURNING `+roleColumns,
		arg.Name, arg.Description, arg.DepartmentID)
	return scanRole(row)
}

type UpdateRoleParams struct {
	ID           uuid.UUID
	Name         string
	Description  pgtype.Text
	DepartmentID uuid.UUID
}

func (q *Queries) UpdateRole(ctx context.Context, arg UpdateRoleParams) (Role, error) {
	row := q.db.QueryRow(ctx, `
		UPDATE roles
		SET name = $2, description = $3, department_id = $4, updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING `+roleColumns,
		arg.ID, arg.Name, arg.Description, arg.DepartmentID)
	return scanRole(row)
}

func (q *Queries) SoftDeleteRole(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	var deleted uuid.UUID
	err := q.db.QueryRow(ctx, `
		UPDATE roles SET is_active = false, updated_at = now()
		WHERE id = $1 AND is_active
		RETURNING id`,
		id).Scan(&deleted)
	return deleted, err
}

func scanDepartment(row rowScanner) (Department, error) {
	var d Department
	err := row.Scan(&d.ID, &d.Name, &d.Description, &d.IsActive, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}

func scanRole(row rowScanner) (Role, error) {
	var r Role
	err := row.Scan(&r.ID, &r.Name, &r.Description, &r.DepartmentID, &r.IsActive,
		&r.CreatedAt, &r.UpdatedAt)
	return r, err
}
