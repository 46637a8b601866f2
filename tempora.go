// Package tempora schedules time-based triggers. Triggers that fire
// result in trigger event messages being published to synchronize the
// time-based activities of subscribers.
package tempora

import (
	"log/slog"
	"sync"

	"github.com/tempora-io/tempora/core"
	"github.com/tempora-io/tempora/trigger"
)

// Orchestrator bridges host-provided trigger configuration into the
// scheduling engine. The schedule is injected; the orchestrator holds no
// process-wide state.
type Orchestrator struct {
	schedule core.Schedule
	logger   *slog.Logger
	owner    string
}

func NewOrchestrator(schedule core.Schedule, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		schedule: schedule,
		logger:   logger,
		owner:    "tempora.Orchestrator",
	}
}

// Activate parses configText, registers every valid trigger with the
// schedule and starts it. It reports success only when at least one
// trigger of either kind was registered and the schedule started.
func (o *Orchestrator) Activate(configText string) bool {
	intervalTriggers, rangeTriggers, err := trigger.Parse(configText)
	if err != nil {
		o.logger.Error("unable to parse trigger configuration", "error", err)
		return false
	}
	o.logger.Info("trigger configuration parsed",
		"interval_triggers", len(intervalTriggers), "range_triggers", len(rangeTriggers))

	registered := o.registerRangeTriggers(rangeTriggers)
	registered = o.registerIntervalTriggers(intervalTriggers) || registered
	if !registered {
		o.logger.Error("no valid triggers defined, check the trigger configuration")
		return false
	}

	if !o.schedule.Start() {
		o.logger.Error("unable to start the schedule manager")
		return false
	}
	o.logger.Info("schedule manager started")
	return true
}

// Deactivate stops the schedule and cancels every registered trigger.
func (o *Orchestrator) Deactivate() {
	o.schedule.Stop()
}

func (o *Orchestrator) registerIntervalTriggers(triggers []trigger.IntervalTrigger) bool {
	if len(triggers) == 0 {
		o.logger.Warn("no valid interval triggers defined")
		return false
	}

	// Entries are independent, so registration fans out; the schedule
	// serializes mutation of its registry.
	var wg sync.WaitGroup
	for _, t := range triggers {
		wg.Add(1)
		go func(t trigger.IntervalTrigger) {
			defer wg.Done()
			o.schedule.ScheduleIntervalTrigger(t, o.owner)
		}(t)
	}
	wg.Wait()
	return true
}

func (o *Orchestrator) registerRangeTriggers(triggers []trigger.RangeTrigger) bool {
	if len(triggers) == 0 {
		o.logger.Warn("no valid range triggers defined")
		return false
	}

	var wg sync.WaitGroup
	for _, t := range triggers {
		wg.Add(1)
		go func(t trigger.RangeTrigger) {
			defer wg.Done()
			o.schedule.ScheduleRangeTrigger(t, o.owner)
		}(t)
	}
	wg.Wait()
	return true
}
