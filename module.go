package tempora

import (
	"context"
	"log/slog"

	"github.com/tempora-io/tempora/core"
	"github.com/tempora-io/tempora/errors"
)

// Module lifecycle states reported through the module state attribute.
const (
	ModuleStateRunning = "running"
	ModuleStateStopped = "stopped"
	ModuleStateError   = "error"
)

// ErrActivationFailed is returned when the engine could not be activated
// from the stored trigger configuration.
var ErrActivationFailed = errors.New("scheduler activation failed")

// Module adapts the scheduling engine to a host that exchanges trigger
// configuration and lifecycle state through an attribute store.
type Module struct {
	attributes   core.Attributes
	orchestrator *Orchestrator
	logger       *slog.Logger
}

func NewModule(attributes core.Attributes, orchestrator *Orchestrator, logger *slog.Logger) *Module {
	if logger == nil {
		logger = slog.Default()
	}
	return &Module{
		attributes:   attributes,
		orchestrator: orchestrator,
		logger:       logger,
	}
}

// Run fetches the trigger configuration from the attribute store and
// activates the engine, reporting the outcome through the state attribute.
func (m *Module) Run(ctx context.Context) error {
	configText, err := m.attributes.Get(ctx, core.AttributeTriggers)
	if err != nil {
		m.logger.Error("trigger configuration attribute not found", "error", err)
		m.setState(ctx, ModuleStateError)
		return err
	}
	m.logger.Info("retrieved trigger configuration from attribute store")

	if !m.orchestrator.Activate(configText) {
		m.setState(ctx, ModuleStateError)
		return ErrActivationFailed
	}

	m.setState(ctx, ModuleStateRunning)
	return nil
}

// Shutdown stops the engine. All triggers are cancelled and removed.
func (m *Module) Shutdown(ctx context.Context, reason string) {
	m.logger.Info("stopping scheduler module", "reason", reason)
	m.orchestrator.Deactivate()
	m.setState(ctx, ModuleStateStopped)
}

// setState reports the module state; a store that refuses the write is
// logged, never fatal.
func (m *Module) setState(ctx context.Context, state string) {
	if err := m.attributes.Set(ctx, core.AttributeModuleState, state); err != nil {
		m.logger.Error("module state attribute could not be set", "state", state, "error", err)
	}
}
