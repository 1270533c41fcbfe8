package store

import (
	"context"

	"github.com/google/uuid"
)

const userColumns = `id, phone, password_hash, first_name, last_name, role, order_count, created_at`

type CreateUserParams struct {
	Phone        string
	PasswordHash string
	FirstName    string
	LastName     string
	Role         string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, `
		INSERT INTO users (phone, password_hash, first_name, last_name, role)
		VALUES ($1, $2, NULLIF($3, ''), NULLIF($4, ''), $5)
		RETURNING `+userColumns,
		arg.Phone, arg.PasswordHash, arg.FirstName, arg.LastName, arg.Role)
	return scanUser(row)
}

func (q *Queries) GetUserByPhone(ctx context.Context, phone string) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE phone = $1`, phone)
	return scanUser(row)
}

func (q *Queries) GetUser(ctx context.Context, id uuid.UUID) (User, error) {
	row := q.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (q *Queries) IncrementUserOrderCount(ctx context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(ctx, `UPDATE users SET order_count = order_count + 1 WHERE id = $1`, id)
	return err
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Phone, &u.PasswordHash, &u.FirstName, &u.LastName,
		&u.Role, &u.OrderCount, &u.CreatedAt)
	return u, err
}
