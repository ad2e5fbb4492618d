package domain

type Customer struct {
	ID      int64  `db:"id" json:"id"`
	Name    string `db:"name" json:"customer_name"`
	Phone   string `db:"phone" json:"phone"`
	Address string `db:"address" json:"address"`
}

// CustomerInput is the write shape for creating or replacing a customer.
type CustomerInput struct {
	Name    string `json:"customer_name" validate:"required,max=100"`
	Phone   string `json:"phone" validate:"max=15"`
	Address string `json:"address"`
}
