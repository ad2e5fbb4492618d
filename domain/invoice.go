package domain

import "github.com/shopspring/decimal"

// DateLayout is the storage format of Invoice.Date.
const DateLayout = "2006-01-02"

type Invoice struct {
	ID          int64           `db:"id" json:"id"`
	CustomerID  int64           `db:"customer_id" json:"customer"`
	Date        string          `db:"date" json:"date"`
	TotalAmount decimal.Decimal `db:"total_amount" json:"total_amount"`
}

type InvoiceItem struct {
	ID         int64           `db:"id" json:"id"`
	InvoiceID  int64           `db:"invoice_id" json:"invoice"`
	MedicineID int64           `db:"medicine_id" json:"medicine"`
	Quantity   int64           `db:"quantity" json:"quantity"`
	Price      decimal.Decimal `db:"price" json:"price"`
}

// Subtotal is quantity times the snapshotted unit price.
func (i InvoiceItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(i.Quantity))
}

// ItemInput is one requested line of an invoice.
type ItemInput struct {
	MedicineID int64            `json:"medicine" validate:"required,gt=0"`
	Quantity   int64            `json:"quantity" validate:"gt=0"`
	Price      *decimal.Decimal `json:"price" validate:"required,money"`
}

type InvoiceInput struct {
	CustomerID int64       `json:"customer" validate:"required,gt=0"`
	Items      []ItemInput `json:"items" validate:"dive"`
}

// InvoiceUpdate carries the optional fields of an update. A nil Items leaves the
// existing lines alone; a non-nil empty slice removes them all.
type InvoiceUpdate struct {
	CustomerID *int64       `json:"customer,omitempty" validate:"omitempty,gt=0"`
	Items      *[]ItemInput `json:"items,omitempty" validate:"omitempty,dive"`
}

type InvoiceItemView struct {
	ID           int64           `db:"id" json:"id"`
	InvoiceID    int64           `db:"invoice_id" json:"invoice"`
	MedicineID   int64           `db:"medicine_id" json:"medicine"`
	MedicineName string          `db:"medicine_name" json:"medicine_name"`
	Quantity     int64           `db:"quantity" json:"quantity"`
	Price        decimal.Decimal `db:"price" json:"price"`
}

func (v InvoiceItemView) Subtotal() decimal.Decimal {
	return v.Price.Mul(decimal.NewFromInt(v.Quantity))
}

// InvoiceView is the nested read shape returned to callers.
type InvoiceView struct {
	ID           int64             `db:"id" json:"id"`
	CustomerID   int64             `db:"customer_id" json:"customer"`
	CustomerName string            `db:"customer_name" json:"customer_name"`
	Date         string            `db:"date" json:"date"`
	TotalAmount  decimal.Decimal   `db:"total_amount" json:"total_amount"`
	Items        []InvoiceItemView `db:"-" json:"items"`
}

// InvoiceSnapshot is everything needed to render an invoice document.
type InvoiceSnapshot struct {
	Invoice  InvoiceView `json:"invoice"`
	Customer Customer    `json:"customer"`
}
