package events

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type collectingWriter struct {
	mu     sync.Mutex
	events []Event
	err    error
}

func (w *collectingWriter) Write(_ context.Context, event Event) error {
	if w.err != nil {
		return w.err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.events = append(w.events, event)
	return nil
}

type countingListener struct {
	mu    sync.Mutex
	types []string
	seen  []Event
	err   error
}

func (l *countingListener) SubscribedTo() []string { return l.types }

func (l *countingListener) Handle(_ context.Context, event Event) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.seen = append(l.seen, event)
	return l.err
}

func (l *countingListener) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.seen)
}

func TestEmitAssignsIdentityAndTimestamp(t *testing.T) {
	writer := &collectingWriter{}
	store := NewStore(writer, zerolog.Nop())

	event := Event{Type: "user.registered", Data: json.RawMessage(`{"email":"a@b.c"}`)}
	require.NoError(t, store.Emit(context.Background(), &event))

	require.True(t, IsID(event.ID), "id %q should carry the evt_ prefix", event.ID)
	require.Greater(t, event.Timestamp, int64(0))
	require.Len(t, writer.events, 1)
	require.Equal(t, event.ID, writer.events[0].ID)
}

func TestEmitPreservesCallerIdentity(t *testing.T) {
	writer := &collectingWriter{}
	store := NewStore(writer, zerolog.Nop())

	event := Event{ID: "evt_custom", Timestamp: 42, Type: "user.registered"}
	require.NoError(t, store.Emit(context.Background(), &event))

	require.Equal(t, "evt_custom", writer.events[0].ID)
	require.Equal(t, int64(42), writer.events[0].Timestamp)
}

func TestEmitRequiresType(t *testing.T) {
	store := NewStore(&collectingWriter{}, zerolog.Nop())

	err := store.Emit(context.Background(), &Event{})

	require.ErrorIs(t, err, ErrMissingType)
}

func TestEmitNotifiesSubscribedListenersOnce(t *testing.T) {
	writer := &collectingWriter{}
	store := NewStore(writer, zerolog.Nop())
	subscribed := &countingListener{types: []string{"user.registered"}}
	alsoSubscribed := &countingListener{types: []string{"user.registered", "user.deleted"}}
	unrelated := &countingListener{types: []string{"post.published"}}
	store.Subscribe(subscribed)
	store.Subscribe(alsoSubscribed)
	store.Subscribe(unrelated)

	require.NoError(t, store.Emit(context.Background(), &Event{Type: "user.registered"}))

	require.Equal(t, 1, subscribed.count())
	require.Equal(t, 1, alsoSubscribed.count())
	require.Equal(t, 0, unrelated.count())
}

func TestEmitWriterFailureSkipsListeners(t *testing.T) {
	writer := &collectingWriter{err: errors.New("disk full")}
	store := NewStore(writer, zerolog.Nop())
	listener := &countingListener{types: []string{"user.registered"}}
	store.Subscribe(listener)

	err := store.Emit(context.Background(), &Event{Type: "user.registered"})

	require.Error(t, err)
	require.Equal(t, 0, listener.count())
}

func TestEmitIsolatesListenerFailures(t *testing.T) {
	writer := &collectingWriter{}
	store := NewStore(writer, zerolog.Nop())
	failing := &countingListener{types: []string{"user.registered"}, err: errors.New("boom")}
	healthy := &countingListener{types: []string{"user.registered"}}
	store.Subscribe(failing)
	store.Subscribe(healthy)

	require.NoError(t, store.Emit(context.Background(), &Event{Type: "user.registered"}))

	require.Equal(t, 1, failing.count())
	require.Equal(t, 1, healthy.count())
}

func TestEmitIsolatesListenerPanics(t *testing.T) {
	writer := &collectingWriter{}
	store := NewStore(writer, zerolog.Nop())
	store.Subscribe(ListenerFunc(func(context.Context, Event) error {
		panic("listener bug")
	}, "user.registered"))
	healthy := &countingListener{types: []string{"user.registered"}}
	store.Subscribe(healthy)

	require.NoError(t, store.Emit(context.Background(), &Event{Type: "user.registered"}))

	require.Equal(t, 1, healthy.count())
}

func TestEmitWaitsForFanOut(t *testing.T) {
	writer := &collectingWriter{}
	store := NewStore(writer, zerolog.Nop())
	done := make(chan struct{}, 1)
	store.Subscribe(ListenerFunc(func(context.Context, Event) error {
		done <- struct{}{}
		return nil
	}, "user.registered"))

	require.NoError(t, store.Emit(context.Background(), &Event{Type: "user.registered"}))

	select {
	case <-done:
	default:
		t.Fatal("emit returned before the listener settled")
	}
}
