package core

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tempora-io/tempora/trigger"
)

// State is the lifecycle state of a Schedule.
type State int32

const (
	StateCreated State = iota
	StateRunning
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateRunning:
		return "running"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// FireFunc handles a single trigger firing.
type FireFunc func(ctx context.Context, event TriggerEvent) error

// FireMiddleware wraps a FireFunc to add cross-cutting concerns.
type FireMiddleware func(next FireFunc) FireFunc

// ScheduledEntry records a registered trigger together with its owner tag
// and the identity of its underlying timer resource. The Schedule owns the
// entry collection exclusively.
type ScheduledEntry struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Owner        string    `json:"owner"`
	Kind         string    `json:"kind"`
	Expired      bool      `json:"expired,omitempty"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Schedule is the authoritative registry and timer-driven dispatcher for
// all active triggers.
//
// Start transitions the schedule to running. It is idempotent while
// running and returns false when the timer executor cannot be acquired or
// the schedule was already stopped. Stop cancels every entry, waits for
// in-flight firings to finish, and is safe to call repeatedly from any
// goroutine. Triggers may be registered before Start; early entries are
// activated when the schedule starts. Registrations after Stop are
// rejected as logged no-ops.
type Schedule interface {
	Start() bool
	Stop()
	ScheduleIntervalTrigger(t trigger.IntervalTrigger, owner string)
	ScheduleRangeTrigger(t trigger.RangeTrigger, owner string)
	State() State
	Entries() []ScheduledEntry
	Use(middleware ...FireMiddleware)
}
