package seed

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"medbill/m/domain"
	"medbill/m/internal/store"
)

// LoadMedicines ingests a name,price,stock,description CSV into the medicines
// table in a single transaction. Malformed rows are logged and skipped.
func LoadMedicines(ctx context.Context, db *sqlx.DB, csvPath string, log logrus.FieldLogger) (int, error) {
	file, err := os.Open(csvPath)
	if err != nil {
		return 0, fmt.Errorf("open medicine catalog %s: %w", csvPath, err)
	}
	defer file.Close()
	return loadMedicines(ctx, db, file, log)
}

func loadMedicines(ctx context.Context, db *sqlx.DB, r io.Reader, log logrus.FieldLogger) (int, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	// Skip header
	if _, err := reader.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return 0, nil
		}
		return 0, fmt.Errorf("read medicine header: %w", err)
	}

	rows := 0
	err := store.RunInTx(ctx, db, func(ctx context.Context) error {
		tx, _ := store.TxFromContext(ctx)
		stmt, err := tx.PreparexContext(ctx, tx.Rebind(`INSERT INTO medicines (name, price, stock, description) VALUES (?, ?, ?, ?)`))
		if err != nil {
			return fmt.Errorf("prepare medicine insert: %w", err)
		}
		defer stmt.Close()

		line := 1
		for {
			record, err := reader.Read()
			if err == io.EOF {
				break
			}
			line++
			if err != nil {
				log.WithError(err).WithField("line", line).Warn("unable to read medicine row")
				continue
			}
			m, err := parseMedicine(record)
			if err != nil {
				log.WithError(err).WithField("line", line).Warn("skipping medicine row")
				continue
			}
			if _, err := stmt.ExecContext(ctx, m.Name, *m.Price, m.Stock, m.Description); err != nil {
				return fmt.Errorf("insert medicine %s: %w", m.Name, err)
			}
			rows++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	log.WithField("rows", rows).Info("seeded medicine catalog")
	return rows, nil
}

func parseMedicine(record []string) (domain.MedicineInput, error) {
	if len(record) < 3 {
		return domain.MedicineInput{}, fmt.Errorf("expected at least 3 columns, got %d", len(record))
	}
	price, err := decimal.NewFromString(strings.TrimSpace(record[1]))
	if err != nil {
		return domain.MedicineInput{}, fmt.Errorf("price %q: %w", record[1], err)
	}
	stock, err := strconv.ParseInt(strings.TrimSpace(record[2]), 10, 64)
	if err != nil {
		return domain.MedicineInput{}, fmt.Errorf("stock %q: %w", record[2], err)
	}
	m := domain.MedicineInput{
		Name:  strings.TrimSpace(record[0]),
		Price: &price,
		Stock: stock,
	}
	if len(record) > 3 {
		m.Description = strings.TrimSpace(record[3])
	}
	if err := domain.Validate(m); err != nil {
		return domain.MedicineInput{}, err
	}
	return m, nil
}
