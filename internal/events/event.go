package events

import (
	"crypto/rand"
	"encoding/json"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// IDPrefix marks identifiers minted by this store.
const IDPrefix = "evt_"

// Event is an immutable record of a fact that occurred. Once persisted
// it is never mutated or deleted. A blank ID or zero Timestamp means
// "assign one at emit time".
type Event struct {
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"` // unix milliseconds
	Type      string          `json:"type"`
	Data      json.RawMessage `json:"data"`
}

// NewID mints an event identifier: the IDPrefix followed by a ULID
// (millisecond timestamp plus random suffix). Uniqueness is
// best-effort, not a guaranteed-unique key under clock skew.
func NewID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return IDPrefix + id.String(), nil
}

// IsID reports whether value carries the store's ID prefix and a valid ULID.
func IsID(value string) bool {
	rest, ok := strings.CutPrefix(value, IDPrefix)
	if !ok {
		return false
	}
	_, err := ulid.ParseStrict(rest)
	return err == nil
}
