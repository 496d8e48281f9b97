package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/driftwood-collective/server/internal/domain/users"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const uniqueViolation = "23505"

type UserStore struct {
	pool *pgxpool.Pool
}

func (s *UserStore) Create(ctx context.Context, user *users.User) error {
	const query = `
		INSERT INTO users (id, email, name, password_hash, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := s.pool.Exec(ctx, query, user.ID, strings.ToLower(user.Email), user.Name, user.PasswordHash, user.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return users.ErrEmailTaken
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *UserStore) FindByEmail(ctx context.Context, email string) (*users.User, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE email = $1
	`
	return s.scanOne(s.pool.QueryRow(ctx, query, strings.ToLower(email)))
}

func (s *UserStore) FindByID(ctx context.Context, id string) (*users.User, error) {
	const query = `
		SELECT id, email, name, password_hash, created_at
		FROM users WHERE id = $1
	`
	return s.scanOne(s.pool.QueryRow(ctx, query, id))
}

func (s *UserStore) scanOne(row pgx.Row) (*users.User, error) {
	var user users.User
	err := row.Scan(&user.ID, &user.Email, &user.Name, &user.PasswordHash, &user.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, users.ErrUserNotFound
		}
		return nil, fmt.Errorf("scan user: %w", err)
	}
	return &user, nil
}
