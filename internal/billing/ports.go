package billing

import (
	"context"

	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

// Transactor scopes a unit of work. Repositories called with the context passed
// to fn take part in the same transaction.
type Transactor interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type MedicineRepository interface {
	Get(ctx context.Context, id int64) (domain.Medicine, error)
	AdjustStock(ctx context.Context, id int64, delta int64) (domain.Medicine, error)
}

type CustomerRepository interface {
	Get(ctx context.Context, id int64) (domain.Customer, error)
}

type InvoiceRepository interface {
	Insert(ctx context.Context, customerID int64, date string) (int64, error)
	Exists(ctx context.Context, id int64) error
	SetTotal(ctx context.Context, id int64, total decimal.Decimal) error
	SetCustomer(ctx context.Context, id int64, customerID int64) error
	Delete(ctx context.Context, id int64) error
	InsertItem(ctx context.Context, item domain.InvoiceItem) (domain.InvoiceItem, error)
	DeleteItems(ctx context.Context, invoiceID int64) ([]domain.InvoiceItem, error)
	Get(ctx context.Context, id int64) (domain.InvoiceView, error)
	List(ctx context.Context, customerID int64, limit int) ([]domain.InvoiceView, error)
}
