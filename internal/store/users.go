package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"medbill/m/domain"
)

// ErrEmailTaken is returned when registering an email that already exists.
var ErrEmailTaken = errors.New("email already exists")

type UserStore struct {
	db *sqlx.DB
}

func NewUserStore(db *sqlx.DB) *UserStore {
	return &UserStore{db: db}
}

// Create stores a user whose password is already hashed.
func (s *UserStore) Create(ctx context.Context, u domain.User) (domain.User, error) {
	q := querier(ctx, s.db)
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	var taken int64
	if err := sqlx.GetContext(ctx, q, &taken, q.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`), u.Email); err != nil {
		return domain.User{}, fmt.Errorf("check email: %w", err)
	}
	if taken > 0 {
		return domain.User{}, ErrEmailTaken
	}

	err := q.QueryRowxContext(ctx, q.Rebind(`INSERT INTO users (username, email, password, role) VALUES (?, ?, ?, ?) RETURNING id`),
		u.Username, u.Email, u.Password, u.Role).Scan(&u.ID)
	if err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	return u, nil
}

func (s *UserStore) ByEmail(ctx context.Context, email string) (domain.User, error) {
	q := querier(ctx, s.db)
	var u domain.User
	err := sqlx.GetContext(ctx, q, &u, q.Rebind(`SELECT id, username, email, password, role FROM users WHERE email = ?`), strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, sql.ErrNoRows) {
		return domain.User{}, fmt.Errorf("user %q: %w", email, domain.ErrNotFound)
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

func (s *UserStore) SetPassword(ctx context.Context, id int64, hashed string) error {
	q := querier(ctx, s.db)
	res, err := q.ExecContext(ctx, q.Rebind(`UPDATE users SET password = ? WHERE id = ?`), hashed, id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return domain.NotFound("user", id)
	}
	return nil
}
