package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	"github.com/dinehq/api/internal/store"
)

// --- Mock implementations ---

// mockTx implements pgx.Tx with only the methods we need.
// The unused methods panic so we catch accidental calls.
type mockTx struct {
	commitErr   error
	rollbackErr error
	committed   bool
	rolledBack  bool
}

func (m *mockTx) Begin(ctx context.Context) (pgx.Tx, error) { panic("not implemented") }
func (m *mockTx) Commit(ctx context.Context) error {
	m.committed = true
	return m.commitErr
}
func (m *mockTx) Rollback(ctx context.Context) error {
	m.rolledBack = true
	return m.rollbackErr
}
func (m *mockTx) CopyFrom(ctx context.Context, tableName pgx.Identifier, columnNames []string, rowSrc pgx.CopyFromSource) (int64, error) {
	panic("not implemented")
}
func (m *mockTx) SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults {
	panic("not implemented")
}
func (m *mockTx) LargeObjects() pgx.LargeObjects { panic("not implemented") }
func (m *mockTx) Prepare(ctx context.Context, name, sql string) (*pgconn.StatementDescription, error) {
	panic("not implemented")
}
func (m *mockTx) Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error) {
	panic("not implemented")
}
func (m *mockTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	panic("not implemented")
}
func (m *mockTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	panic("not implemented")
}
func (m *mockTx) Conn() *pgx.Conn { panic("not implemented") }

// mockTxBeginner implements TxBeginner.
type mockTxBeginner struct {
	tx  pgx.Tx
	err error
}

func (m *mockTxBeginner) Begin(ctx context.Context) (pgx.Tx, error) {
	return m.tx, m.err
}

// mockBillingStore implements BillingStore with configurable behavior.
type mockBillingStore struct {
	listUnsettledFn func(ctx context.Context, tableNumber string) ([]store.Order, error)
	markSettledFn   func(ctx context.Context, id uuid.UUID) (uuid.UUID, error)
	createBillFn    func(ctx context.Context, arg store.CreateBillParams) (store.Bill, error)

	settled []uuid.UUID
}

func (m *mockBillingStore) ListUnsettledOrdersByTableForUpdate(ctx context.Context, tableNumber string) ([]store.Order, error) {
	return m.listUnsettledFn(ctx, tableNumber)
}

func (m *mockBillingStore) MarkOrderSettled(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	m.settled = append(m.settled, id)
	if m.markSettledFn != nil {
		return m.markSettledFn(ctx, id)
	}
	return id, nil
}

func (m *mockBillingStore) CreateBill(ctx context.Context, arg store.CreateBillParams) (store.Bill, error) {
	if m.createBillFn != nil {
		return m.createBillFn(ctx, arg)
	}
	return store.Bill{
		ID:           uuid.New(),
		Items:        arg.Items,
		CustomerName: arg.CustomerName,
		Phone:        arg.Phone,
		Total:        arg.Total,
		TableNumber:  arg.TableNumber,
	}, nil
}

// --- Test helpers ---

func numericEquals(n pgtype.Numeric, expected string) bool {
	d := numericToDecimal(n)
	exp, _ := decimal.NewFromString(expected)
	return d.Equal(exp)
}

func newTestBilling(mock *mockBillingStore) (*BillingService, *mockTx) {
	tx := &mockTx{}
	pool := &mockTxBeginner{tx: tx}
	newStore := func(db store.DBTX) BillingStore { return mock }
	return NewBillingService(pool, newStore), tx
}

func makeOrder(tableNumber string, items ...store.CartItem) store.Order {
	return store.Order{
		ID:          uuid.New(),
		Items:       items,
		TableNumber: tableNumber,
		Status:      "served",
	}
}

func cartItem(name string, qty int32, price string) store.CartItem {
	return store.CartItem{
		ItemID:      uuid.New(),
		DisplayName: name,
		Quantity:    qty,
		UnitPrice:   price,
	}
}

// =====================
// Ledger merge tests
// =====================

func TestGenerateBill_MergesTwoCarts(t *testing.T) {
	orderA := makeOrder("5", cartItem("Apple", 2, "3.00"))
	orderB := makeOrder("5", cartItem("Cola", 1, "2.00"))

	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return []store.Order{orderA, orderB}, nil
		},
	}
	svc, tx := newTestBilling(mock)

	bill, err := svc.GenerateBill(context.Background(), "5")
	if err != nil {
		t.Fatalf("GenerateBill: %v", err)
	}

	if len(bill.Items) != 2 {
		t.Fatalf("expected 2 ledger entries, got %d", len(bill.Items))
	}
	apple, ok := bill.Items["apple"]
	if !ok {
		t.Fatal("missing ledger entry for apple")
	}
	if apple.Quantity != 2 || apple.LineTotal != "6.00" {
		t.Errorf("apple entry = %+v, want qty 2 total 6.00", apple)
	}
	cola := bill.Items["cola"]
	if cola.Quantity != 1 || cola.LineTotal != "2.00" {
		t.Errorf("cola entry = %+v, want qty 1 total 2.00", cola)
	}
	if !numericEquals(bill.Total, "8.00") {
		t.Errorf("total = %s, want 8.00", numericToDecimal(bill.Total))
	}
	if !tx.committed {
		t.Error("transaction was not committed")
	}
}

func TestGenerateBill_SumsSameItemAcrossOrders(t *testing.T) {
	orderA := makeOrder("3", cartItem("Cola", 2, "2.00"))
	orderB := makeOrder("3", cartItem("cola", 3, "2.00"))

	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return []store.Order{orderA, orderB}, nil
		},
	}
	svc, _ := newTestBilling(mock)

	bill, err := svc.GenerateBill(context.Background(), "3")
	if err != nil {
		t.Fatalf("GenerateBill: %v", err)
	}

	// "Cola" and "cola" merge under one lowercased key, quantities summed
	if len(bill.Items) != 1 {
		t.Fatalf("expected 1 ledger entry, got %d", len(bill.Items))
	}
	entry := bill.Items["cola"]
	if entry.Quantity != 5 {
		t.Errorf("quantity = %d, want 5", entry.Quantity)
	}
	if entry.LineTotal != "10.00" {
		t.Errorf("line total = %s, want 10.00", entry.LineTotal)
	}
	if !numericEquals(bill.Total, "10.00") {
		t.Errorf("total = %s, want 10.00", numericToDecimal(bill.Total))
	}
}

func TestGenerateBill_SettlesEveryOrder(t *testing.T) {
	orderA := makeOrder("7", cartItem("Soup", 1, "4.50"))
	orderB := makeOrder("7", cartItem("Bread", 2, "1.25"))
	orderC := makeOrder("7", cartItem("Soup", 1, "4.50"))

	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return []store.Order{orderA, orderB, orderC}, nil
		},
	}
	svc, _ := newTestBilling(mock)

	if _, err := svc.GenerateBill(context.Background(), "7"); err != nil {
		t.Fatalf("GenerateBill: %v", err)
	}

	if len(mock.settled) != 3 {
		t.Fatalf("settled %d orders, want 3", len(mock.settled))
	}
	want := []uuid.UUID{orderA.ID, orderB.ID, orderC.ID}
	for i, id := range want {
		if mock.settled[i] != id {
			t.Errorf("settled[%d] = %s, want %s", i, mock.settled[i], id)
		}
	}
}

func TestGenerateBill_LastWriteWinsIdentity(t *testing.T) {
	orderA := makeOrder("2", cartItem("Tea", 1, "1.50"))
	orderA.CustomerName = pgtype.Text{String: "Alice", Valid: true}
	orderA.Phone = pgtype.Text{String: "111", Valid: true}

	orderB := makeOrder("2", cartItem("Coffee", 1, "2.50"))
	orderB.CustomerName = pgtype.Text{String: "Bob", Valid: true}

	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return []store.Order{orderA, orderB}, nil
		},
	}
	svc, _ := newTestBilling(mock)

	bill, err := svc.GenerateBill(context.Background(), "2")
	if err != nil {
		t.Fatalf("GenerateBill: %v", err)
	}

	// The newest order's name wins; its phone is null so the earlier one sticks
	if bill.CustomerName != "Bob" {
		t.Errorf("customer name = %q, want Bob", bill.CustomerName)
	}
	if bill.Phone != "111" {
		t.Errorf("phone = %q, want 111", bill.Phone)
	}
}

func TestGenerateBill_NoOpenOrders(t *testing.T) {
	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return nil, nil
		},
	}
	svc, tx := newTestBilling(mock)

	_, err := svc.GenerateBill(context.Background(), "9")
	if !errors.Is(err, ErrNoOpenOrders) {
		t.Fatalf("expected ErrNoOpenOrders, got: %v", err)
	}
	if tx.committed {
		t.Error("transaction should not commit when there is nothing to bill")
	}
	if !tx.rolledBack {
		t.Error("transaction was not rolled back")
	}
}

func TestGenerateBill_MalformedPriceAborts(t *testing.T) {
	order := makeOrder("4", cartItem("Mystery", 1, "not-a-price"))

	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return []store.Order{order}, nil
		},
	}
	svc, tx := newTestBilling(mock)

	_, err := svc.GenerateBill(context.Background(), "4")
	if !errors.Is(err, ErrInvalidUnitPrice) {
		t.Fatalf("expected ErrInvalidUnitPrice, got: %v", err)
	}
	if tx.committed {
		t.Error("transaction should not commit on malformed cart data")
	}
}

func TestGenerateBill_SettleFailureAborts(t *testing.T) {
	order := makeOrder("6", cartItem("Pie", 1, "3.00"))
	settleErr := errors.New("settle failed")

	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return []store.Order{order}, nil
		},
		markSettledFn: func(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
			return uuid.Nil, settleErr
		},
	}
	svc, tx := newTestBilling(mock)

	_, err := svc.GenerateBill(context.Background(), "6")
	if !errors.Is(err, settleErr) {
		t.Fatalf("expected settle error, got: %v", err)
	}
	if tx.committed {
		t.Error("transaction should not commit when settlement fails")
	}
}

func TestGenerateBill_BeginFailure(t *testing.T) {
	beginErr := errors.New("pool exhausted")
	pool := &mockTxBeginner{err: beginErr}
	svc := NewBillingService(pool, func(db store.DBTX) BillingStore {
		t.Fatal("store factory should not be called when Begin fails")
		return nil
	})

	_, err := svc.GenerateBill(context.Background(), "1")
	if !errors.Is(err, beginErr) {
		t.Fatalf("expected begin error, got: %v", err)
	}
}

func TestGenerateBill_CommitFailure(t *testing.T) {
	order := makeOrder("8", cartItem("Cake", 1, "5.00"))

	mock := &mockBillingStore{
		listUnsettledFn: func(ctx context.Context, tableNumber string) ([]store.Order, error) {
			return []store.Order{order}, nil
		},
	}
	svc, tx := newTestBilling(mock)
	tx.commitErr = errors.New("commit failed")

	if _, err := svc.GenerateBill(context.Background(), "8"); err == nil {
		t.Fatal("expected commit error, got nil")
	}
}
