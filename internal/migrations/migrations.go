package migrations

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"medbill/m/internal/database"
)

type dialect struct {
	pk        string
	money     string
	timestamp string
}

var (
	sqliteDialect = dialect{
		pk:        "INTEGER PRIMARY KEY AUTOINCREMENT",
		money:     "TEXT",
		timestamp: "DATETIME DEFAULT CURRENT_TIMESTAMP",
	}
	postgresDialect = dialect{
		pk:        "SERIAL PRIMARY KEY",
		money:     "NUMERIC(10,2)",
		timestamp: "TIMESTAMPTZ DEFAULT NOW()",
	}
)

// Run creates the database schema required for the billing backend.
func Run(db *sqlx.DB) error {
	d := sqliteDialect
	if database.IsPostgres(db) {
		d = postgresDialect
	}
	r := strings.NewReplacer("{pk}", d.pk, "{money}", d.money, "{timestamp}", d.timestamp)

	schema := []string{
		`CREATE TABLE IF NOT EXISTS users (
            id {pk},
            username TEXT NOT NULL,
            email TEXT NOT NULL UNIQUE,
            password TEXT NOT NULL,
            role TEXT NOT NULL,
            created_at {timestamp}
        );`,
		`CREATE TABLE IF NOT EXISTS medicines (
            id {pk},
            name TEXT NOT NULL,
            price {money} NOT NULL,
            stock INTEGER NOT NULL DEFAULT 0 CHECK (stock >= 0),
            description TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS customers (
            id {pk},
            name TEXT NOT NULL,
            phone TEXT NOT NULL DEFAULT '',
            address TEXT NOT NULL DEFAULT ''
        );`,
		`CREATE TABLE IF NOT EXISTS invoices (
            id {pk},
            customer_id INTEGER NOT NULL REFERENCES customers(id) ON DELETE CASCADE,
            date TEXT NOT NULL,
            total_amount {money} NOT NULL
        );`,
		`CREATE TABLE IF NOT EXISTS invoice_items (
            id {pk},
            invoice_id INTEGER NOT NULL REFERENCES invoices(id) ON DELETE CASCADE,
            medicine_id INTEGER NOT NULL REFERENCES medicines(id) ON DELETE CASCADE,
            quantity INTEGER NOT NULL CHECK (quantity > 0),
            price {money} NOT NULL
        );`,
		`CREATE INDEX IF NOT EXISTS idx_invoices_customer ON invoices(customer_id);`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_items_invoice ON invoice_items(invoice_id);`,
		`CREATE INDEX IF NOT EXISTS idx_invoice_items_medicine ON invoice_items(medicine_id);`,
	}

	for _, stmt := range schema {
		if _, err := db.Exec(r.Replace(stmt)); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
