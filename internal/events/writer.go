package events

import "context"

// Writer appends one event to a durable log. A Write must be atomic per
// call, must persist before returning, and must not silently drop data.
//
// The contract is deliberately write-only: reading the log is each
// listener's own concern, sourced from whatever the chosen backend
// exposes. That asymmetry lets one listener tail the log while another
// consumes from a separate stream.
type Writer interface {
	Write(ctx context.Context, event Event) error
}
