// Package file provides the JSONL event log backend: one JSON object
// per line, appended with O_APPEND and fsynced per write. Concurrent
// writers from separate processes are a known limitation of this simple
// backend and are not guarded here.
package file

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/driftwood-collective/server/internal/events"
)

type EventLog struct {
	mu   sync.Mutex
	file *os.File
}

func Open(path string) (*EventLog, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create log directory: %w", err)
		}
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	return &EventLog{file: f}, nil
}

// Write appends the event as a single line and syncs before returning,
// so a successful Write means the event is on disk.
func (l *EventLog) Write(_ context.Context, event events.Event) error {
	line, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode event %s: %w", event.ID, err)
	}
	line = append(line, '\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.file.Write(line); err != nil {
		return fmt.Errorf("append event %s: %w", event.ID, err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("sync event log: %w", err)
	}
	return nil
}

func (l *EventLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}
