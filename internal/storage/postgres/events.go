package postgres

import (
	"context"
	"fmt"

	"github.com/driftwood-collective/server/internal/events"
	"github.com/jackc/pgx/v5/pgxpool"
)

type EventLog struct {
	pool *pgxpool.Pool
}

// Write appends one event. INSERT is atomic per call; the primary key
// keeps the log append-only (a replayed ID fails instead of mutating).
func (l *EventLog) Write(ctx context.Context, event events.Event) error {
	const query = `
		INSERT INTO events (id, occurred_at, type, data)
		VALUES ($1, $2, $3, $4)
	`
	if _, err := l.pool.Exec(ctx, query, event.ID, event.Timestamp, event.Type, []byte(event.Data)); err != nil {
		return fmt.Errorf("insert event %s: %w", event.ID, err)
	}
	return nil
}
