// Package sink defines output backends for monitor events.
package sink

import (
	"context"
	"time"

	"github.com/hazyhaar/beewatch/internal/store"
)

// Event types delivered to sinks.
const (
	EventNewProfile   = "new_profile"
	EventStatsChanged = "stats_changed"
	EventRunStatus    = "run_status"
	EventActivity     = "activity"
	EventWarning      = "warning"
)

// Event is one discrete notification. Delivery is fire-and-forget,
// at-most-once; a disconnected dashboard simply misses events.
type Event struct {
	Type      string         `json:"type"`
	Timestamp int64          `json:"timestamp"`
	Profile   *store.Profile `json:"profile,omitempty"`
	Stats     *store.Stats   `json:"stats,omitempty"`
	Status    string         `json:"status,omitempty"`
	Detail    string         `json:"detail,omitempty"`
}

// NewEvent builds an event of the given type stamped with the current time.
func NewEvent(typ string) Event {
	return Event{Type: typ, Timestamp: time.Now().UnixMilli()}
}

// Sink is the output interface. Implementations deliver events to
// different backends (stdout, webhook, websocket hub, in-process callback).
type Sink interface {
	Send(ctx context.Context, ev Event) error
	Close() error
}
