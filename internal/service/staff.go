package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/dinehq/api/internal/enum"
	"github.com/dinehq/api/internal/store"
)

// ErrPhoneTaken is returned when the staff member's phone already has an
// account.
var ErrPhoneTaken = errors.New("phone number already registered")

// StaffStore defines the DB methods needed to onboard a staff member.
type StaffStore interface {
	GetUserByPhone(ctx context.Context, phone string) (store.User, error)
	CreateUser(ctx context.Context, arg store.CreateUserParams) (store.User, error)
	CreateStaff(ctx context.Context, arg store.CreateStaffParams) (store.Staff, error)
}

// NewStaffStore creates a StaffStore from a DBTX (pool or tx).
type NewStaffStore func(db store.DBTX) StaffStore

// StaffService onboards staff members: every staff row is backed by a login
// account, created in the same transaction.
type StaffService struct {
	pool     TxBeginner
	newStore NewStaffStore
}

func NewStaffService(pool TxBeginner, newStore NewStaffStore) *StaffService {
	return &StaffService{pool: pool, newStore: newStore}
}

// OnboardStaff creates the login account and the staff profile atomically.
// A failure on either side rolls back both.
func (s *StaffService) OnboardStaff(ctx context.Context, arg store.CreateStaffParams, password string) (store.Staff, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return store.Staff{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := s.newStore(tx)

	if _, err := q.GetUserByPhone(ctx, arg.Phone); err == nil {
		return store.Staff{}, ErrPhoneTaken
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return store.Staff{}, fmt.Errorf("lookup phone: %w", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return store.Staff{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := q.CreateUser(ctx, store.CreateUserParams{
		Phone:        arg.Phone,
		PasswordHash: string(hash),
		FirstName:    arg.FirstName,
		LastName:     arg.LastName,
		Role:         enum.UserRoleStaff,
	})
	if err != nil {
		return store.Staff{}, fmt.Errorf("create user: %w", err)
	}

	arg.UserID = user.ID
	staff, err := q.CreateStaff(ctx, arg)
	if err != nil {
		return store.Staff{}, fmt.Errorf("create staff: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return store.Staff{}, fmt.Errorf("commit tx: %w", err)
	}

	return staff, nil
}
