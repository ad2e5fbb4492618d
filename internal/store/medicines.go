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

// DeletePolicy decides what happens to invoice lines when their medicine is removed.
type DeletePolicy int

const (
	// CascadeDelete removes referencing invoice items with the medicine.
	CascadeDelete DeletePolicy = iota
	// RestrictDelete refuses to remove a medicine that invoices still reference.
	RestrictDelete
)

// MedicineStore is the inventory repository.
type MedicineStore struct {
	db     *sqlx.DB
	policy DeletePolicy
}

func NewMedicineStore(db *sqlx.DB, policy DeletePolicy) *MedicineStore {
	return &MedicineStore{db: db, policy: policy}
}

const medicineColumns = `id, name, price, stock, description`

func (s *MedicineStore) Create(ctx context.Context, in domain.MedicineInput) (domain.Medicine, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Medicine{}, err
	}
	q := querier(ctx, s.db)
	var id int64
	err := q.QueryRowxContext(ctx, q.Rebind(`INSERT INTO medicines (name, price, stock, description) VALUES (?, ?, ?, ?) RETURNING id`),
		strings.TrimSpace(in.Name), *in.Price, in.Stock, in.Description).Scan(&id)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("insert medicine: %w", err)
	}
	return s.Get(ctx, id)
}

func (s *MedicineStore) Get(ctx context.Context, id int64) (domain.Medicine, error) {
	q := querier(ctx, s.db)
	var m domain.Medicine
	err := sqlx.GetContext(ctx, q, &m, q.Rebind(`SELECT `+medicineColumns+` FROM medicines WHERE id = ?`), id)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.Medicine{}, domain.NotFound("medicine", id)
	}
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("get medicine %d: %w", id, err)
	}
	return m, nil
}

func (s *MedicineStore) Update(ctx context.Context, id int64, in domain.MedicineInput) (domain.Medicine, error) {
	if err := domain.Validate(in); err != nil {
		return domain.Medicine{}, err
	}
	q := querier(ctx, s.db)
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE medicines SET name = ?, price = ?, stock = ?, description = ? WHERE id = ?`),
		strings.TrimSpace(in.Name), *in.Price, in.Stock, in.Description, id)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("update medicine %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Medicine{}, domain.NotFound("medicine", id)
	}
	return s.Get(ctx, id)
}

// Delete removes a medicine according to the store's DeletePolicy.
func (s *MedicineStore) Delete(ctx context.Context, id int64) error {
	return RunInTx(ctx, s.db, func(ctx context.Context) error {
		q := querier(ctx, s.db)
		if s.policy == RestrictDelete {
			var refs int64
			if err := sqlx.GetContext(ctx, q, &refs, q.Rebind(`SELECT COUNT(*) FROM invoice_items WHERE medicine_id = ?`), id); err != nil {
				return fmt.Errorf("count medicine references: %w", err)
			}
			if refs > 0 {
				return fmt.Errorf("medicine %d is referenced by %d invoice items: %w", id, refs, domain.ErrIntegrity)
			}
		}
		res, err := q.ExecContext(ctx, q.Rebind(`DELETE FROM medicines WHERE id = ?`), id)
		if err != nil {
			return fmt.Errorf("delete medicine %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return domain.NotFound("medicine", id)
		}
		return nil
	})
}

// List returns medicines newest first, optionally filtered by a case-insensitive
// substring of the name.
func (s *MedicineStore) List(ctx context.Context, search string) ([]domain.Medicine, error) {
	q := querier(ctx, s.db)
	query := `SELECT ` + medicineColumns + ` FROM medicines`
	var args []any
	if strings.TrimSpace(search) != "" {
		query += ` WHERE LOWER(name) LIKE ? ESCAPE '\'`
		args = append(args, likePattern(search))
	}
	query += ` ORDER BY id DESC`

	medicines := []domain.Medicine{}
	if err := sqlx.SelectContext(ctx, q, &medicines, q.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("list medicines: %w", err)
	}
	return medicines, nil
}

// AdjustStock adds delta to the medicine's stock, flooring the result at zero.
func (s *MedicineStore) AdjustStock(ctx context.Context, id int64, delta int64) (domain.Medicine, error) {
	q := querier(ctx, s.db)
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE medicines SET stock = CASE WHEN stock + ? < 0 THEN 0 ELSE stock + ? END WHERE id = ?`),
		delta, delta, id)
	if err != nil {
		return domain.Medicine{}, fmt.Errorf("adjust stock of medicine %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.Medicine{}, domain.NotFound("medicine", id)
	}
	return s.Get(ctx, id)
}

// CountBelow reports how many medicines have stock under threshold.
func (s *MedicineStore) CountBelow(ctx context.Context, threshold int64) (int64, error) {
	q := querier(ctx, s.db)
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, q.Rebind(`SELECT COUNT(*) FROM medicines WHERE stock < ?`), threshold); err != nil {
		return 0, fmt.Errorf("count low stock: %w", err)
	}
	return n, nil
}

func (s *MedicineStore) Count(ctx context.Context) (int64, error) {
	q := querier(ctx, s.db)
	var n int64
	if err := sqlx.GetContext(ctx, q, &n, `SELECT COUNT(*) FROM medicines`); err != nil {
		return 0, fmt.Errorf("count medicines: %w", err)
	}
	return n, nil
}
