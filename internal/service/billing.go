package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/dinehq/api/internal/store"
)

// Errors returned by the billing service.
var (
	ErrNoOpenOrders = errors.New("no open orders for table")
)

// TxBeginner starts a new database transaction.
type TxBeginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// BillingStore defines the DB methods needed to generate a bill.
// Satisfied by *store.Queries (pool- or tx-backed).
type BillingStore interface {
	ListUnsettledOrdersByTableForUpdate(ctx context.Context, tableNumber string) ([]store.Order, error)
	MarkOrderSettled(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	CreateBill(ctx context.Context, arg store.CreateBillParams) (store.Bill, error)
}

// NewBillingStore creates a BillingStore from a DBTX (pool or tx).
type NewBillingStore func(db store.DBTX) BillingStore

// BillingService consolidates a table's open orders into a single bill.
type BillingService struct {
	pool     TxBeginner
	newStore NewBillingStore
}

func NewBillingService(pool TxBeginner, newStore NewBillingStore) *BillingService {
	return &BillingService{pool: pool, newStore: newStore}
}

// ledgerEntry accumulates one item line before rendering to store.BillLine.
type ledgerEntry struct {
	quantity  int32
	lineTotal decimal.Decimal
}

// GenerateBill collects every unsettled order for the table, merges their
// carts into one ledger keyed by lowercased display name, marks the orders
// settled, and inserts the bill — all in one transaction. The FOR UPDATE
// selection serializes concurrent generations for the same table: the second
// caller blocks until the first commits, then finds nothing unsettled and
// gets ErrNoOpenOrders.
//
// Same-named items across orders sum their quantities and line totals.
// Customer identity is last-write-wins across the table's orders in creation
// order; the model assumes one party per table.
func (s *BillingService) GenerateBill(ctx context.Context, tableNumber string) (*store.Bill, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	q := s.newStore(tx)

	orders, err := q.ListUnsettledOrdersByTableForUpdate(ctx, tableNumber)
	if err != nil {
		return nil, fmt.Errorf("list unsettled orders: %w", err)
	}
	if len(orders) == 0 {
		return nil, ErrNoOpenOrders
	}

	ledger := make(map[string]ledgerEntry)
	total := decimal.Zero
	var customerName, customerPhone string

	for _, o := range orders {
		for _, item := range o.Items {
			price, err := decimal.NewFromString(item.UnitPrice)
			if err != nil {
				return nil, fmt.Errorf("order %s: %w", o.ID, ErrInvalidUnitPrice)
			}
			lineTotal := price.Mul(decimal.NewFromInt32(item.Quantity))

			key := strings.ToLower(item.DisplayName)
			entry := ledger[key]
			entry.quantity += item.Quantity
			entry.lineTotal = entry.lineTotal.Add(lineTotal)
			ledger[key] = entry

			total = total.Add(lineTotal)
		}

		if o.CustomerName.Valid {
			customerName = o.CustomerName.String
		}
		if o.Phone.Valid {
			customerPhone = o.Phone.String
		}

		if _, err := q.MarkOrderSettled(ctx, o.ID); err != nil {
			return nil, fmt.Errorf("settle order %s: %w", o.ID, err)
		}
	}

	items := make(map[string]store.BillLine, len(ledger))
	for key, entry := range ledger {
		items[key] = store.BillLine{
			Quantity:  entry.quantity,
			LineTotal: entry.lineTotal.StringFixed(2),
		}
	}

	bill, err := q.CreateBill(ctx, store.CreateBillParams{
		Items:        items,
		CustomerName: customerName,
		Phone:        customerPhone,
		Total:        decimalToNumeric(total),
		TableNumber:  tableNumber,
	})
	if err != nil {
		return nil, fmt.Errorf("create bill: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit tx: %w", err)
	}

	return &bill, nil
}
