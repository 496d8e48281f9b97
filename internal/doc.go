// Package internal documents the driftwood server internals.
//
// The internal tree is organized by responsibility:
// - api: routing, request context, middleware, handlers, and HTTP errors
// - events: the append-only event log and listener fan-out
// - domain: business logic and domain models
// - storage: memory, file, and postgres backends
// - auth, audit, config, metrics, telemetry: shared infrastructure
//
// Code in internal/ is not meant for external import.
package internal
