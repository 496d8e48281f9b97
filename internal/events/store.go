package events

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/driftwood-collective/server/internal/metrics"
	"github.com/rs/zerolog"
)

var ErrMissingType = errors.New("event type is required")

// Listener reacts to events of specific types. Handlers must be
// idempotent: delivery is at-least-once and the store performs no
// deduplication by event ID.
type Listener interface {
	SubscribedTo() []string
	Handle(ctx context.Context, event Event) error
}

// Store is the single gateway for emitting domain facts. It assigns
// identity and timestamp, delegates persistence to the Writer, and fans
// out to subscribed listeners. Durability precedes notification.
type Store struct {
	writer    Writer
	listeners []Listener
	logger    zerolog.Logger
}

func NewStore(writer Writer, logger zerolog.Logger) *Store {
	return &Store{
		writer: writer,
		logger: logger.With().Str("component", "events").Logger(),
	}
}

// Subscribe registers a listener. The listener list is mutated only at
// startup, before traffic begins, and is treated as read-only during
// request processing.
func (s *Store) Subscribe(listener Listener) {
	s.listeners = append(s.listeners, listener)
}

// Emit assigns a blank ID and zero Timestamp, awaits the durable write,
// then notifies every subscribed listener concurrently. A writer
// failure propagates and no listener runs. Listener failures are logged
// and isolated: one listener's error or panic never fails the emit or
// prevents the others from running. Emit returns only after the fan-out
// has settled, but callers must not assume listener side effects are
// atomic with the response that triggered them.
func (s *Store) Emit(ctx context.Context, event *Event) error {
	if event.Type == "" {
		return ErrMissingType
	}
	if event.ID == "" {
		id, err := NewID()
		if err != nil {
			return fmt.Errorf("mint event id: %w", err)
		}
		event.ID = id
	}
	if event.Timestamp == 0 {
		event.Timestamp = time.Now().UnixMilli()
	}

	if err := s.writer.Write(ctx, *event); err != nil {
		metrics.EventWriteFailuresTotal.WithLabelValues(event.Type).Inc()
		return fmt.Errorf("write event %s: %w", event.ID, err)
	}
	metrics.EventsEmittedTotal.WithLabelValues(event.Type).Inc()

	var wg sync.WaitGroup
	for _, listener := range s.listeners {
		if !slices.Contains(listener.SubscribedTo(), event.Type) {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.notify(ctx, listener, *event)
		}()
	}
	wg.Wait()
	return nil
}

func (s *Store) notify(ctx context.Context, listener Listener, event Event) {
	defer func() {
		if r := recover(); r != nil {
			metrics.ListenerFailuresTotal.WithLabelValues(event.Type).Inc()
			s.logger.Error().
				Str("event_id", event.ID).
				Str("event_type", event.Type).
				Interface("panic", r).
				Msg("listener panicked")
		}
	}()

	if err := listener.Handle(ctx, event); err != nil {
		metrics.ListenerFailuresTotal.WithLabelValues(event.Type).Inc()
		s.logger.Error().
			Err(err).
			Str("event_id", event.ID).
			Str("event_type", event.Type).
			Msg("listener failed")
	}
}

type listenerFunc struct {
	types  []string
	handle func(ctx context.Context, event Event) error
}

func (l listenerFunc) SubscribedTo() []string { return l.types }

func (l listenerFunc) Handle(ctx context.Context, event Event) error {
	return l.handle(ctx, event)
}

// ListenerFunc adapts a function into a Listener subscribed to the
// given event types.
func ListenerFunc(handle func(ctx context.Context, event Event) error, types ...string) Listener {
	return listenerFunc{types: types, handle: handle}
}
