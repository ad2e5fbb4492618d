package report

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"medbill/m/domain"
)

// RecentInvoices is how many of the newest invoices a summary carries.
const RecentInvoices = 5

type MedicineCounter interface {
	Count(ctx context.Context) (int64, error)
	CountBelow(ctx context.Context, threshold int64) (int64, error)
}

type CustomerCounter interface {
	Count(ctx context.Context) (int64, error)
}

type InvoiceSource interface {
	Count(ctx context.Context) (int64, error)
	Revenue(ctx context.Context) (decimal.Decimal, error)
	List(ctx context.Context, customerID int64, limit int) ([]domain.InvoiceView, error)
}

// Summary is the dashboard view of the pharmacy.
type Summary struct {
	TotalMedicines    int64                `json:"total_medicines"`
	TotalCustomers    int64                `json:"total_customers"`
	TotalInvoices     int64                `json:"total_invoices"`
	LowStockMedicines int64                `json:"low_stock_medicines"`
	TotalRevenue      decimal.Decimal      `json:"total_revenue"`
	RecentInvoices    []domain.InvoiceView `json:"recent_invoices"`
}

type Reporter struct {
	medicines MedicineCounter
	customers CustomerCounter
	invoices  InvoiceSource
	lowStock  int64
}

// NewReporter counts a medicine as low on stock when its stock is strictly
// below lowStock.
func NewReporter(medicines MedicineCounter, customers CustomerCounter, invoices InvoiceSource, lowStock int64) *Reporter {
	return &Reporter{medicines: medicines, customers: customers, invoices: invoices, lowStock: lowStock}
}

func (r *Reporter) Summary(ctx context.Context) (Summary, error) {
	var (
		s   Summary
		err error
	)
	if s.TotalMedicines, err = r.medicines.Count(ctx); err != nil {
		return Summary{}, fmt.Errorf("summary: %w: %w", domain.ErrStorage, err)
	}
	if s.LowStockMedicines, err = r.medicines.CountBelow(ctx, r.lowStock); err != nil {
		return Summary{}, fmt.Errorf("summary: %w: %w", domain.ErrStorage, err)
	}
	if s.TotalCustomers, err = r.customers.Count(ctx); err != nil {
		return Summary{}, fmt.Errorf("summary: %w: %w", domain.ErrStorage, err)
	}
	if s.TotalInvoices, err = r.invoices.Count(ctx); err != nil {
		return Summary{}, fmt.Errorf("summary: %w: %w", domain.ErrStorage, err)
	}
	if s.TotalRevenue, err = r.invoices.Revenue(ctx); err != nil {
		return Summary{}, fmt.Errorf("summary: %w: %w", domain.ErrStorage, err)
	}
	if s.RecentInvoices, err = r.invoices.List(ctx, 0, RecentInvoices); err != nil {
		return Summary{}, fmt.Errorf("summary: %w: %w", domain.ErrStorage, err)
	}
	return s, nil
}
