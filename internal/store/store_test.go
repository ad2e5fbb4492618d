package store

import (
	"context"
	"errors"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"medbill/m/domain"
	"medbill/m/internal/database"
	"medbill/m/internal/migrations"
)

func newTestDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.Connect(":memory:")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err := migrations.Run(db); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func amount(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func mustMedicine(t *testing.T, s *MedicineStore, name, price string, stock int64) domain.Medicine {
	t.Helper()
	m, err := s.Create(context.Background(), domain.MedicineInput{Name: name, Price: amount(price), Stock: stock})
	if err != nil {
		t.Fatalf("create medicine %s: %v", name, err)
	}
	return m
}

func mustCustomer(t *testing.T, s *CustomerStore, name string) domain.Customer {
	t.Helper()
	c, err := s.Create(context.Background(), domain.CustomerInput{Name: name})
	if err != nil {
		t.Fatalf("create customer %s: %v", name, err)
	}
	return c
}

func mustInvoiceWithItem(t *testing.T, s *InvoiceStore, customerID, medicineID int64) int64 {
	t.Helper()
	ctx := context.Background()
	id, err := s.Insert(ctx, customerID, "2026-10-18")
	if err != nil {
		t.Fatalf("insert invoice: %v", err)
	}
	if _, err := s.InsertItem(ctx, domain.InvoiceItem{InvoiceID: id, MedicineID: medicineID, Quantity: 1, Price: decimal.NewFromInt(3)}); err != nil {
		t.Fatalf("insert item: %v", err)
	}
	return id
}

func TestRunInTxRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	meds := NewMedicineStore(db, CascadeDelete)
	ctx := context.Background()

	boom := errors.New("boom")
	err := RunInTx(ctx, db, func(ctx context.Context) error {
		if _, err := meds.Create(ctx, domain.MedicineInput{Name: "Ibuprofen", Price: amount("4"), Stock: 3}); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("RunInTx error = %v, want boom", err)
	}
	list, err := meds.List(ctx, "")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(list) != 0 {
		t.Fatalf("rolled back insert is visible: %+v", list)
	}
}

func TestRunInTxRollsBackOnPanic(t *testing.T) {
	db := newTestDB(t)
	meds := NewMedicineStore(db, CascadeDelete)
	ctx := context.Background()

	func() {
		defer func() {
			if recover() == nil {
				t.Fatal("panic was swallowed")
			}
		}()
		_ = RunInTx(ctx, db, func(ctx context.Context) error {
			if _, err := meds.Create(ctx, domain.MedicineInput{Name: "Cetirizine", Price: amount("1")}); err != nil {
				return err
			}
			panic("mid-write")
		})
	}()

	n, err := meds.Count(ctx)
	if err != nil {
		t.Fatalf("Count: %v", err)
	}
	if n != 0 {
		t.Fatalf("count = %d after panic, want 0", n)
	}
}

func TestRunInTxCommits(t *testing.T) {
	db := newTestDB(t)
	meds := NewMedicineStore(db, CascadeDelete)
	ctx := context.Background()

	err := RunInTx(ctx, db, func(ctx context.Context) error {
		_, err := meds.Create(ctx, domain.MedicineInput{Name: "Amoxicillin", Price: amount("7.25"), Stock: 12})
		return err
	})
	if err != nil {
		t.Fatalf("RunInTx: %v", err)
	}
	list, _ := meds.List(ctx, "")
	if len(list) != 1 || !list[0].Price.Equal(decimal.RequireFromString("7.25")) {
		t.Fatalf("unexpected medicines: %+v", list)
	}
}

func TestLikePattern(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"", "%%"},
		{"  Para ", "%para%"},
		{"50%", `%50\%%`},
		{"a_b", `%a\_b%`},
		{`c:\tmp`, `%c:\\tmp%`},
	}
	for _, tt := range tests {
		if got := likePattern(tt.in); got != tt.want {
			t.Errorf("likePattern(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
