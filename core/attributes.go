package core

import (
	"context"
	"errors"
)

// Attribute keys exchanged with the host.
const (
	// AttributeTriggers holds the trigger configuration document.
	AttributeTriggers = "scheduler.triggers"
	// AttributeModuleState reports the module lifecycle state to the host.
	AttributeModuleState = "scheduler.state"
)

var (
	ErrAttributeNotFound     = errors.New("attribute not found")
	ErrAttributeNotWriteable = errors.New("attribute not writeable")
)

// Attributes is the host-provided attribute store. The scheduling engine
// never touches it directly; only the module adapter does.
type Attributes interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value string) error
}
