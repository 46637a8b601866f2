package core

import (
	"context"
	"time"
)

// TriggerEvent is published on every firing so subscribers can synchronize
// their time-based activities.
type TriggerEvent struct {
	ID       string    `json:"id"`
	Name     string    `json:"name"`
	Owner    string    `json:"owner,omitempty"`
	FireTime time.Time `json:"fire_time"`
}

// TriggerPublisher delivers fired trigger events to subscribers. A failed
// publish is non-fatal to the schedule: the caller logs it and the
// trigger's timer keeps running.
type TriggerPublisher interface {
	Publish(ctx context.Context, event TriggerEvent) error
}
