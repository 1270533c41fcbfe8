package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const billColumns = `id, items, customer_name, phone, total, table_number, generated_at`

type CreateBillParams struct {
	Items        map[string]BillLine
	CustomerName string
	Phone        string
	Total        pgtype.Numeric
	TableNumber  string
}

// CreateBill inserts the consolidated bill. Bills are immutable after this.
func (q *Queries) CreateBill(ctx context.Context, arg CreateBillParams) (Bill, error) {
	payload, err := json.Marshal(arg.Items)
	if err != nil {
		return Bill{}, fmt.Errorf("marshal ledger: %w", err)
	}
	row := q.db.QueryRow(ctx, `
		INSERT INTO bills (items, customer_name, phone, total, table_number)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING `+billColumns,
		payload, arg.CustomerName, arg.Phone, arg.Total, arg.TableNumber)
	return scanBill(row)
}

func (q *Queries) GetBill(ctx context.Context, id uuid.UUID) (Bill, error) {
	row := q.db.QueryRow(ctx, `SELECT `+billColumns+` FROM bills WHERE id = $1`, id)
	return scanBill(row)
}

type ListBillsParams struct {
	Limit  int32
	Offset int32
}

func (q *Queries) ListBills(ctx context.Context, arg ListBillsParams) ([]Bill, error) {
	rows, err := q.db.Query(ctx, `
		SELECT `+billColumns+`
		FROM bills
		ORDER BY generated_at DESC
		LIMIT $1 OFFSET $2`,
		arg.Limit, arg.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bills []Bill
	for rows.Next() {
		b, err := scanBill(rows)
		if err != nil {
			return nil, err
		}
		bills = append(bills, b)
	}
	return bills, rows.Err()
}

// SumBillTotals returns total revenue across all bills.
func (q *Queries) SumBillTotals(ctx context.Context) (pgtype.Numeric, error) {
	var total pgtype.Numeric
	err := q.db.QueryRow(ctx, `SELECT COALESCE(SUM(total), 0) FROM bills`).Scan(&total)
	return total, err
}

func (q *Queries) CountAvailableMenuItems(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM menu_items WHERE is_available`).Scan(&count)
	return count, err
}

func (q *Queries) CountActiveTables(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRow(ctx, `SELECT COUNT(*) FROM tables WHERE is_active`).Scan(&count)
	return count, err
}

func scanBill(row rowScanner) (Bill, error) {
	var b Bill
	var payload []byte
	err := row.Scan(&b.ID, &payload, &b.CustomerName, &b.Phone, &b.Total,
		&b.TableNumber, &b.GeneratedAt)
	if err != nil {
		return Bill{}, err
	}
	if err := json.Unmarshal(payload, &b.Items); err != nil {
		return Bill{}, fmt.Errorf("unmarshal ledger for bill %s: %w", b.ID, err)
	}
	return b, nil
}
