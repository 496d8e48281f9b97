package memory

import (
	"context"
	"sync"

	"github.com/driftwood-collective/server/internal/events"
)

// EventLog keeps the append-only event log in process memory. Used by
// tests and by dev mode when no database or log file is configured.
type EventLog struct {
	mu  sync.Mutex
	log []events.Event
}

func NewEventLog() *EventLog {
	return &EventLog{}
}

func (l *EventLog) Write(_ context.Context, event events.Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.log = append(l.log, event)
	return nil
}

// Events returns a snapshot of the log. Reading is a per-consumer
// concern outside the Writer contract; this is the strategy the
// in-memory backend offers.
func (l *EventLog) Events() []events.Event {
	l.mu.Lock()
	defer l.mu.Unlock()
	snapshot := make([]events.Event, len(l.log))
	copy(snapshot, l.log)
	return snapshot
}
