package store

import (
	"context"
	"errors"
	"strings"
	"testing"

	"medbill/m/domain"
)

func TestCustomerCRUD(t *testing.T) {
	db := newTestDB(t)
	customers := NewCustomerStore(db)
	ctx := context.Background()

	if _, err := customers.Create(ctx, domain.CustomerInput{}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Create without name = %v, want ErrValidation", err)
	}

	c, err := customers.Create(ctx, domain.CustomerInput{Name: "Meera Nair", Phone: "9876543210", Address: "12 MG Road"})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	got, err := customers.Get(ctx, c.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != c {
		t.Fatalf("Get = %+v, want %+v", got, c)
	}

	updated, err := customers.Update(ctx, c.ID, domain.CustomerInput{Name: "Meera N."})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if updated.Name != "Meera N." || updated.Phone != "" {
		t.Fatalf("Update = %+v", updated)
	}

	mustCustomer(t, customers, "John")
	found, err := customers.List(ctx, "meera")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(found) != 1 || found[0].ID != c.ID {
		t.Fatalf("List search = %+v", found)
	}
	all, _ := customers.List(ctx, "")
	if len(all) != 2 || all[0].Name != "John" {
		t.Fatalf("List not newest first: %+v", all)
	}
	if wild, _ := customers.List(ctx, "_"); len(wild) != 0 {
		t.Fatalf("underscore matched as a wildcard: %+v", wild)
	}

	if _, err := customers.Create(ctx, domain.CustomerInput{Name: strings.Repeat("n", 101)}); !errors.Is(err, domain.ErrValidation) {
		t.Fatalf("Create with a 101 character name = %v, want ErrValidation", err)
	}
}

func TestCustomerDeleteCascadesInvoices(t *testing.T) {
	db := newTestDB(t)
	meds := NewMedicineStore(db, CascadeDelete)
	customers := NewCustomerStore(db)
	invoices := NewInvoiceStore(db)
	ctx := context.Background()

	m := mustMedicine(t, meds, "Vitamin C", "1.20", 50)
	c := mustCustomer(t, customers, "Kiran")
	other := mustCustomer(t, customers, "Lata")
	invID := mustInvoiceWithItem(t, invoices, c.ID, m.ID)
	keptID := mustInvoiceWithItem(t, invoices, other.ID, m.ID)

	if err := customers.Delete(ctx, c.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := invoices.Exists(ctx, invID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("invoice of deleted customer = %v, want ErrNotFound", err)
	}
	items, _ := invoices.Items(ctx, invID)
	if len(items) != 0 {
		t.Fatalf("items of deleted invoice survived: %+v", items)
	}
	if err := invoices.Exists(ctx, keptID); err != nil {
		t.Fatalf("unrelated invoice removed: %v", err)
	}
	if _, err := meds.Get(ctx, m.ID); err != nil {
		t.Fatalf("medicine should not be affected: %v", err)
	}
	if err := customers.Delete(ctx, c.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}
}
