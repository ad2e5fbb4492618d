package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"medbill/m/domain"
)

// CustomerStore is the customer repository. Deleting a customer cascades to its
// invoices and their items through the schema's foreign keys.
type CustomerStore struct {
	db *sqlx.DB
}

func NewCustomerStore(db *sqlx.DB) *CustomerStore {
	return &CustomerStore{db: db}
}

const customerColumns = `id, name, phone, address`

func (s *CustomerStore) Create(ctx context.Context, in domain.CustomerInput) (domain.Customer, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Customer{}, err
	}
	q := querier(ctx, s.db)
	var id int64
	err := q.QueryRowxContext(ctx, q.Rebind(`INSERT INTO customers (name, phone, address) VALUES (?, ?, ?) RETURNING id`),
		strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone), in.Address).Scan(&id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("insert customer: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *CustomerStore) Get(ctx context.Context, id int64) (domain.Customer, error) {
	q := querier(ctx, s.db)
	var c domain.Customer
	err := sqlx.GetContext(ctx, q, &c, q.Rebind(`SELECT `+customerColumns+` FROM customers WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Customer{}, domain.NotFound("customer", id)
	}
	if err != nil {
		return domain.Customer{}, fmt.Errorf("get customer %d: %w", id, err)
	}
	return c, nil
}

func (s *CustomerStore) Update(ctx context.Context, id int64, in domain.CustomerInput) (domain.Customer, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Customer{}, err
	}
	q := querier(ctx, s.db)
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE customers SET name = ?, phone = ?, address = ? WHERE id = ?`),
		strings.TrimSpace(in.Name), strings.TrimSpace(in.Phone), in.Address, id)
	if err != nil {
		return domain.Customer{}, fmt.Errorf("update customer %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Customer{}, domain.NotFound("customer", id)
	}
	return s.Get(ctx, id)
}

func (s *CustomerStore) Delete(ctx context.Context, id int64) error {
	q := querier(ctx, s.db)
	res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM customers WHERE id = ?`), id)
	if err != nil {
		return fmt.Errorf("delete customer %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("customer", id)
	}
	return nil
}

// List returns customers newest first, optionally filtered by a case-insensitive
// substring of the name.
func (s *CustomerStore) List(ctx context.Context, search string) ([]domain.Customer, error) {
	q := querier(ctx, s.db)
	query := `SELECT ` + customerColumns + ` FROM customers`
	var args []any
	if strings.TrimSpace(search) != "" {
		query += ` WHERE LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY id DESC`

	customers := []domain.Customer{}
	if err := sqlx.SelectContext(ctx, q, &customers, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list customers: %w", err)
	}
	return customers, nil
}

func (s *CustomerStore) Count(ctx context.Context) (int64, error) {
	q := querier(ctx, s.db)
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM customers`); err != nil {
		return 0, fmt.Errorf("count customers: %w", err)
	}
	return n, nil
}
