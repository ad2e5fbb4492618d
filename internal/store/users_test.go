package store

import (
	"context"
	"errors"
	"testing"

	"medbill/m/domain"
)

func TestUserStore(t *testing.T) {
	db := newTestDB(t)
	users := NewUserStore(db)
	ctx := context.Background()

	u, err := users.Create(ctx, domain.User{Username: "mira", Email: " Mira@Example.com ", Password: "hash-1", Role: domain.RoleOwner})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if u.ID == 0 || u.Email != "mira@example.com" {
		t.Fatalf("created user = %+v", u)
	}

	if _, err := users.Create(ctx, domain.User{Username: "dup", Email: "MIRA@example.com", Password: "x", Role: domain.RoleEmployee}); !errors.Is(err, ErrEmailTaken) {
		t.Fatalf("duplicate email err = %v", err)
	}

	got, err := users.ByEmail(ctx, "MIRA@EXAMPLE.COM")
	if err != nil {
		t.Fatalf("ByEmail: %v", err)
	}
	if got.ID != u.ID || got.Password != "hash-1" {
		t.Fatalf("ByEmail = %+v", got)
	}
	if _, err := users.ByEmail(ctx, "nobody@example.com"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing user err = %v", err)
	}

	if err := users.SetPassword(ctx, u.ID, "hash-2"); err != nil {
		t.Fatalf("SetPassword: %v", err)
	}
	got, _ = users.ByEmail(ctx, "mira@example.com")
	if got.Password != "hash-2" {
		t.Fatalf("password = %q", got.Password)
	}
	if err := users.SetPassword(ctx, 999, "x"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("SetPassword missing err = %v", err)
	}
}
