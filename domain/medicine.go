package domain

import "github.com/shopspring/decimal"

type Medicine struct {
	ID          int64           `db:"id" json:"id"`
	Name        string          `db:"name" json:"name"`
	Price       decimal.Decimal `db:"price" json:"price"`
	Stock       int64           `db:"stock" json:"stock"`
	Description string          `db:"description" json:"description"`
}

// MedicineInput is the write shape for creating or replacing a medicine.
type MedicineInput struct {
	Name        string           `json:"name" validate:"required,max=100"`
	Price       *decimal.Decimal `json:"price" validate:"required,money"`
	Stock       int64            `json:"stock" validate:"gte=0"`
	Description string           `json:"description"`
}
