package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

// InvoiceStore persists invoice headers and their line items. It holds no
// business rules; totals and stock are handled by the billing engine.
type InvoiceStore struct {
	db *sqlx.DB
}

func NewInvoiceStore(db *sqlx.DB) *InvoiceStore {
	return &InvoiceStore{db: db}
}

const invoiceViewQuery = `SELECT i.id, i.customer_id, c.name AS customer_name, i.date, i.total_amount
        FROM invoices i
        JOIN customers c ON c.id = i.customer_id`

// Insert creates a header with a zero total and returns its id.
func (s *InvoiceStore) Insert(ctx context.Context, customerID int64, date string) (int64, error) {
	q := querier(ctx, s.db)
	var id int64
	err := q.QueryRowxContext(ctx, q.Rebind(`INSERT INTO invoices (customer_id, date, total_amount) VALUES (?, ?, ?) RETURNING id`),
		customerID, date, decimal.Zero).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert invoice: %w", err)
	}
	return id, nil
}

func (s *InvoiceStore) Exists(ctx context.Context, id int64) error {
	q := querier(ctx, s.db)
	var found int64
	err := sqlx.GetContext(ctx, q, &found, q.Rebind(`SELECT id FROM invoices WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.NotFound("invoice", id)
	}
	if err != nil {
		return fmt.Errorf("get invoice %d: %w", id, err)
	}
	return nil
}

func (s *InvoiceStore) SetTotal(ctx context.Context, id int64, total decimal.Decimal) error {
	return s.exec(ctx, id, `UPDATE invoices SET total_amount = ? WHERE id = ?`, total, id)
}

func (s *InvoiceStore) SetCustomer(ctx context.Context, id int64, customerID int64) error {
	return s.exec(ctx, id, `UPDATE invoices SET customer_id = ? WHERE id = ?`, customerID, id)
}

func (s *InvoiceStore) Delete(ctx context.Context, id int64) error {
	return s.exec(ctx, id, `DELETE FROM invoices WHERE id = ?`, id)
}

func (s *InvoiceStore) exec(ctx context.Context, id int64, query string, args ...any) error {
	q := querier(ctx, s.db)
	res, err := q.ExecContext(ctx, q.Rebind(query), args...)
	if err != nil {
		return fmt.Errorf("invoice %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("invoice", id)
	}
	return nil
}

func (s *InvoiceStore) InsertItem(ctx context.Context, item domain.InvoiceItem) (domain.InvoiceItem, error) {
	q := querier(ctx, s.db)
	err := q.QueryRowxContext(ctx, q.Rebind(`INSERT INTO invoice_items (invoice_id, medicine_id, quantity, price) VALUES (?, ?, ?, ?) RETURNING id`),
		item.InvoiceID, item.MedicineID, item.Quantity, item.Price).Scan(&item.ID)
	if err != nil {
		return domain.InvoiceItem{}, fmt.Errorf("insert invoice item: %w", err)
	}
	return item, nil
}

// Items returns the raw lines of an invoice in stored order.
func (s *InvoiceStore) Items(ctx context.Context, invoiceID int64) ([]domain.InvoiceItem, error) {
	q := querier(ctx, s.db)
	items := []domain.InvoiceItem{}
	err := sqlx.SelectContext(ctx, q, &items, q.Rebind(`SELECT id, invoice_id, medicine_id, quantity, price FROM invoice_items WHERE invoice_id = ? ORDER BY id`), invoiceID)
	if err != nil {
		return nil, fmt.Errorf("list items of invoice %d: %w", invoiceID, err)
	}
	return items, nil
}

// DeleteItems removes every line of an invoice and returns what was removed.
func (s *InvoiceStore) DeleteItems(ctx context.Context, invoiceID int64) ([]domain.InvoiceItem, error) {
	removed, err := s.Items(ctx, invoiceID)
	if err != nil {
		return nil, err
	}
	q := querier(ctx, s.db)
	if _, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM invoice_items WHERE invoice_id = ?`), invoiceID); err != nil {
		return nil, fmt.Errorf("delete items of invoice %d: %w", invoiceID, err)
	}
	return removed, nil
}

// Get loads one invoice with its customer name and nested items.
func (s *InvoiceStore) Get(ctx context.Context, id int64) (domain.InvoiceView, error) {
	q := querier(ctx, s.db)
	var inv domain.InvoiceView
	err := sqlx.GetContext(ctx, q, &inv, q.Rebind(invoiceViewQuery+` WHERE i.id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.InvoiceView{}, domain.NotFound("invoice", id)
	}
	if err != nil {
		return domain.InvoiceView{}, fmt.Errorf("get invoice %d: %w", id, err)
	}
	items, err := s.itemViews(ctx, []int64{id})
	if err != nil {
		return domain.InvoiceView{}, err
	}
	inv.Items = itemsOrEmpty(items[id])
	return inv, nil
}

// List returns invoices newest first. A positive customerID restricts the result
// to that customer; a positive limit caps the number of rows.
func (s *InvoiceStore) List(ctx context.Context, customerID int64, limit int) ([]domain.InvoiceView, error) {
	q := querier(ctx, s.db)
	query := invoiceViewQuery
	var args []any
	if customerID > 0 {
		query += ` WHERE i.customer_id = ?`
		args = append(args, customerID)
	}
	query += ` ORDER BY i.id DESC`
	if limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, limit)
	}

	invoices := []domain.InvoiceView{}
	if err := sqlx.SelectContext(ctx, q, &invoices, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list invoices: %w", err)
	}
	if len(invoices) == 0 {
		return invoices, nil
	}

	ids := make([]int64, len(invoices))
	for i, inv := range invoices {
		ids[i] = inv.ID
	}
	items, err := s.itemViews(ctx, ids)
	if err != nil {
		return nil, err
	}
	for i := range invoices {
		invoices[i].Items = itemsOrEmpty(items[invoices[i].ID])
	}
	return invoices, nil
}

func (s *InvoiceStore) itemViews(ctx context.Context, ids []int64) (map[int64][]domain.InvoiceItemView, error) {
	q := querier(ctx, s.db)
	query, args, err := sqlx.In(`SELECT ii.id, ii.invoice_id, ii.medicine_id, m.name AS medicine_name, ii.quantity, ii.price
                FROM invoice_items ii
                JOIN medicines m ON m.id = ii.medicine_id
                WHERE ii.invoice_id IN (?)
                ORDER BY ii.id`, ids)
	if err != nil {
		return nil, fmt.Errorf("prepare invoice items query: %w", err)
	}

	var rows []domain.InvoiceItemView
	if err := sqlx.SelectContext(ctx, q, &rows, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load invoice items: %w", err)
	}
	byInvoice := make(map[int64][]domain.InvoiceItemView)
	for _, row := range rows {
		byInvoice[row.InvoiceID] = append(byInvoice[row.InvoiceID], row)
	}
	return byInvoice, nil
}

func itemsOrEmpty(items []domain.InvoiceItemView) []domain.InvoiceItemView {
	if items == nil {
		return []domain.InvoiceItemView{}
	}
	return items
}

func (s *InvoiceStore) Count(ctx context.Context) (int64, error) {
	q := querier(ctx, s.db)
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM invoices`); err != nil {
		return 0, fmt.Errorf("count invoices: %w", err)
	}
	return n, nil
}

// Revenue sums the stored totals of every invoice.
func (s *InvoiceStore) Revenue(ctx context.Context) (decimal.Decimal, error) {
	q := querier(ctx, s.db)
	var totals []decimal.Decimal
	if err := sqlx.SelectContext(ctx, q, &totals, `SELECT total_amount FROM invoices`); err != nil {
		return decimal.Zero, fmt.Errorf("load invoice totals: %w", err)
	}
	sum := decimal.Zero
	for _, t := range totals {
		sum = sum.Add(t)
	}
	return sum, nil
}
