// Package postgres backs the event log, user store, and session store
// with PostgreSQL. It is wired when DATABASE_URL is set; unit tests run
// against the memory and file backends instead.
package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

//go:embed migrations/*.sql
var Migrations embed.FS

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(ctx context.Context, url string, maxConns int) (*Repository, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}
	if maxConns > 0 {
		cfg.MaxConns = int32(maxConns)
	}
	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Repository{pool: pool}, nil
}

func (r *Repository) Events() *EventLog {
	return &EventLog{pool: r.pool}
}

func (r *Repository) Users() *UserStore {
	return &UserStore{pool: r.pool}
}

func (r *Repository) Sessions() *SessionStore {
	return &SessionStore{pool: r.pool}
}

func (r *Repository) Close() {
	r.pool.Close()
}
