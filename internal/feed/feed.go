// Package feed provides the change-feed abstraction and the synchronization
// coordinator that keeps a workspace's local snapshot consistent with the
// authoritative store.
//
// The coordinator never applies change deltas locally. Any event triggers a
// full reload of the affected entity family ("refetch-on-signal"), followed
// by a single debounced recomputation of derived state. Reload-then-recompute
// is strictly ordered within one family; across families no ordering is
// guaranteed or required, which is what makes the design tolerant of
// out-of-order or duplicate delivery.
//
// Import rules:
//   - CAN import: internal/constants, internal/errors, std lib
//   - MUST NOT import: internal/workspace, internal/cli
package feed

import (
	"context"
	"encoding/json"

	"github.com/qntmpulse/pulse/internal/constants"
)

// EventKind classifies a row-level change notification.
type EventKind string

// Event kinds reported by a change feed.
const (
	// EventInsert reports a new row.
	EventInsert EventKind = "insert"

	// EventUpdate reports a changed row.
	EventUpdate EventKind = "update"

	// EventDelete reports a removed row.
	EventDelete EventKind = "delete"
)

// Event is one change notification from the feed. The payload is opaque:
// the coordinator reloads the whole family rather than interpreting it.
type Event struct {
	// Kind is the change type.
	Kind EventKind `json:"kind"`

	// Table is the entity family the change belongs to.
	Table string `json:"table"`

	// Payload is the raw row data, if the feed provides any. Never
	// consumed by the coordinator.
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Filter is a server-side row filter for a subscription. A zero Filter
// subscribes to the whole table.
type Filter struct {
	// Column is the filtered column name.
	Column string

	// Value is the required column value.
	Value string
}

// Handler receives change events. Handlers must be fast and non-blocking:
// the coordinator queues the signal and returns.
type Handler func(Event)

// StatusHandler receives per-subscription connection state transitions
// (connecting → connected, or → error).
type StatusHandler func(constants.ConnectionStatus)

// Subscription is an open feed channel. Unsubscribe is idempotent.
type Subscription interface {
	Unsubscribe()
}

// Source is the change-feed collaborator. Implementations push row-level
// change notifications for one table, optionally filtered server-side.
// The core tolerates arbitrary implementations, including ones that
// deliver duplicates or reorder events.
type Source interface {
	Subscribe(ctx context.Context, table string, filter Filter, onEvent Handler, onStatus StatusHandler) (Subscription, error)
}
