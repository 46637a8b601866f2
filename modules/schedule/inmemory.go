package schedule

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/go-co-op/gocron/v2"
	"github.com/google/uuid"

	"github.com/tempora-io/tempora/core"
	"github.com/tempora-io/tempora/errors"
	"github.com/tempora-io/tempora/trigger"
)

const (
	KindInterval = "interval"
	KindRange    = "range"
)

// InMemorySchedule drives trigger firings with a gocron scheduler. Jobs
// may be registered before Start; gocron holds them until the scheduler
// starts. All mutation of the entry collection is serialized behind mu.
// Per-trigger firings never overlap: each job runs in singleton mode, and
// a firing that would land while the previous one is still publishing is
// skipped rather than queued.
type InMemorySchedule struct {
	logger    *slog.Logger
	publisher core.TriggerPublisher

	mu          sync.RWMutex
	scheduler   gocron.Scheduler
	state       core.State
	entries     []core.ScheduledEntry
	middlewares []core.FireMiddleware

	now func() time.Time
}

func NewInMemorySchedule(publisher core.TriggerPublisher, logger *slog.Logger) (*InMemorySchedule, error) {
	s, err := gocron.NewScheduler()
	if err != nil {
		return nil, errors.SchedulingError(err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &InMemorySchedule{
		logger:    logger,
		publisher: publisher,
		scheduler: s,
		state:     core.StateCreated,
		now:       time.Now,
	}, nil
}

// Start begins dispatching registered triggers. Calling Start on a running
// schedule is a no-op returning true; a stopped schedule cannot be
// restarted.
func (s *InMemorySchedule) Start() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.state {
	case core.StateRunning:
		return true
	case core.StateStopped:
		s.logger.Error("cannot start a stopped schedule")
		return false
	}
	if s.scheduler == nil {
		s.logger.Error("timer executor is not available")
		return false
	}

	s.scheduler.Start()
	s.state = core.StateRunning
	return true
}

// Stop cancels every scheduled entry and releases the timer executor. A
// firing already in progress is allowed to finish; no new firing begins
// after Stop returns. Safe to call multiple times and from any goroutine.
func (s *InMemorySchedule) Stop() {
	s.mu.Lock()
	if s.state == core.StateStopped {
		s.mu.Unlock()
		return
	}
	s.state = core.StateStopped
	sched := s.scheduler
	s.scheduler = nil
	s.entries = nil
	s.mu.Unlock()

	// Shutdown blocks until in-flight firings complete, so it runs outside
	// the lock to keep Stop callable while a slow publish drains.
	if sched != nil {
		if err := sched.Shutdown(); err != nil {
			s.logger.Error("schedule shutdown failed", "error", err)
		}
	}
	s.logger.Info("schedule stopped, all triggers cancelled")
}

func (s *InMemorySchedule) State() core.State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Entries returns a snapshot of the registration records.
func (s *InMemorySchedule) Entries() []core.ScheduledEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entries := make([]core.ScheduledEntry, len(s.entries))
	copy(entries, s.entries)
	return entries
}

func (s *InMemorySchedule) Use(middleware ...core.FireMiddleware) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.middlewares = append(s.middlewares, middleware...)
}

// ScheduleIntervalTrigger registers a repeating firing every trigger
// period, counted from the trigger's start time when set and otherwise
// from registration. Duplicate names are accepted and produce independent
// entries.
func (s *InMemorySchedule) ScheduleIntervalTrigger(t trigger.IntervalTrigger, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == core.StateStopped {
		s.logger.Warn("registration rejected, schedule already stopped", "trigger", t.Name, "owner", owner)
		return
	}

	opts := []gocron.JobOption{
		gocron.WithName(t.Name),
		gocron.WithTags(owner),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	}
	if t.Start != nil {
		if t.Start.After(s.now()) {
			opts = append(opts, gocron.WithStartAt(gocron.WithStartDateTime(*t.Start)))
		} else {
			// Reference time already behind us: catch up on the next tick.
			opts = append(opts, gocron.WithStartAt(gocron.WithStartImmediately()))
		}
	}

	fire := s.chain(s.fire)
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(t.Period.Duration),
		gocron.NewTask(func() {
			s.dispatch(fire, t.Name, owner)
		}),
		opts...,
	)
	if err != nil {
		s.logger.Error("unable to schedule interval trigger", "trigger", t.Name, "error", errors.SchedulingError(err))
		return
	}

	s.entries = append(s.entries, core.ScheduledEntry{
		ID:           job.ID(),
		Name:         t.Name,
		Owner:        owner,
		Kind:         KindInterval,
		RegisteredAt: s.now(),
	})
	s.logger.Info("interval trigger scheduled", "trigger", t.Name, "period", t.Period.Duration, "owner", owner)
}

// ScheduleRangeTrigger registers firings bound to the trigger's window.
// With a recurrence period the trigger fires every period until the window
// closes; without one it fires at window entry and window exit. A window
// whose start has passed fires immediately on the next dispatch tick; a
// window already fully behind us is recorded but never fires.
func (s *InMemorySchedule) ScheduleRangeTrigger(t trigger.RangeTrigger, owner string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == core.StateStopped {
		s.logger.Warn("registration rejected, schedule already stopped", "trigger", t.Name, "owner", owner)
		return
	}

	now := s.now()
	if t.Expired(now) {
		s.entries = append(s.entries, core.ScheduledEntry{
			ID:           uuid.New(),
			Name:         t.Name,
			Owner:        owner,
			Kind:         KindRange,
			Expired:      true,
			RegisteredAt: now,
		})
		s.logger.Info("range trigger window already passed, nothing to fire",
			"trigger", t.Name, "end", t.End.Format(time.RFC3339))
		return
	}

	fire := s.chain(s.fire)
	end := *t.End

	var job gocron.Job
	var err error
	if t.Period != nil && t.Period.Duration > 0 {
		job, err = s.scheduleRecurringWindow(t, owner, fire, now, end)
	} else {
		job, err = s.scheduleWindowBounds(t, owner, fire, now, end)
	}
	if err != nil {
		s.logger.Error("unable to schedule range trigger", "trigger", t.Name, "error", errors.SchedulingError(err))
		return
	}

	s.entries = append(s.entries, core.ScheduledEntry{
		ID:           job.ID(),
		Name:         t.Name,
		Owner:        owner,
		Kind:         KindRange,
		RegisteredAt: now,
	})
	s.logger.Info("range trigger scheduled", "trigger", t.Name,
		"start", t.Start.Format(time.RFC3339), "end", end.Format(time.RFC3339), "owner", owner)
}

// scheduleRecurringWindow fires every period from the window start until
// the window closes, then retires the job.
func (s *InMemorySchedule) scheduleRecurringWindow(t trigger.RangeTrigger, owner string, fire core.FireFunc, now, end time.Time) (gocron.Job, error) {
	startOpt := gocron.WithStartImmediately()
	if t.Start.After(now) {
		startOpt = gocron.WithStartDateTime(*t.Start)
	}

	handle := newJobHandle()
	job, err := s.scheduler.NewJob(
		gocron.DurationJob(t.Period.Duration),
		gocron.NewTask(func() {
			if s.now().After(end) {
				s.retire(handle.id(), t.Name)
				return
			}
			s.dispatch(fire, t.Name, owner)
		}),
		gocron.WithName(t.Name),
		gocron.WithTags(owner),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(startOpt),
	)
	if err != nil {
		return nil, err
	}
	handle.set(job.ID())
	return job, nil
}

// scheduleWindowBounds fires once at window entry (immediately when the
// start has already passed) and once at window exit.
func (s *InMemorySchedule) scheduleWindowBounds(t trigger.RangeTrigger, owner string, fire core.FireFunc, now, end time.Time) (gocron.Job, error) {
	entryAt := gocron.OneTimeJobStartImmediately()
	if t.Start.After(now) {
		entryAt = gocron.OneTimeJobStartDateTime(*t.Start)
	}

	job, err := s.scheduler.NewJob(
		gocron.OneTimeJob(entryAt),
		gocron.NewTask(func() {
			s.dispatch(fire, t.Name, owner)
		}),
		gocron.WithName(t.Name),
		gocron.WithTags(owner),
	)
	if err != nil {
		return nil, err
	}

	_, err = s.scheduler.NewJob(
		gocron.OneTimeJob(gocron.OneTimeJobStartDateTime(end)),
		gocron.NewTask(func() {
			s.dispatch(fire, t.Name, owner)
		}),
		gocron.WithName(t.Name),
		gocron.WithTags(owner),
	)
	if err != nil {
		// Roll back the entry job: a timer without a registration record
		// must never fire.
		if removeErr := s.scheduler.RemoveJob(job.ID()); removeErr != nil {
			s.logger.Error("unable to remove half-registered range trigger",
				"trigger", t.Name, "error", removeErr)
		}
		return nil, err
	}
	return job, nil
}

// retire drops a range trigger job whose window has closed and marks its
// entry expired.
func (s *InMemorySchedule) retire(jobID uuid.UUID, name string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.scheduler == nil {
		return
	}
	if jobID != uuid.Nil {
		if err := s.scheduler.RemoveJob(jobID); err != nil {
			s.logger.Error("unable to remove expired range trigger", "trigger", name, "error", err)
		}
	}
	for i := range s.entries {
		if s.entries[i].ID == jobID {
			s.entries[i].Expired = true
		}
	}
	s.logger.Info("range trigger window closed", "trigger", name)
}

// dispatch publishes a single firing. Publish failures are logged and
// swallowed so one missed notification never destabilizes the schedule.
func (s *InMemorySchedule) dispatch(fire core.FireFunc, name, owner string) {
	event := core.TriggerEvent{
		ID:       uuid.NewString(),
		Name:     name,
		Owner:    owner,
		FireTime: s.now().UTC(),
	}
	if err := fire(context.Background(), event); err != nil {
		s.logger.Error("trigger event publish failed", "trigger", name,
			"fire_time", event.FireTime, "error", err)
	}
}

func (s *InMemorySchedule) fire(ctx context.Context, event core.TriggerEvent) error {
	if s.publisher == nil {
		return nil
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		return errors.DeliveryError(fmt.Errorf("publish %s: %w", event.Name, err))
	}
	return nil
}

// chain applies the registered middlewares around fn. Callers hold mu.
func (s *InMemorySchedule) chain(fn core.FireFunc) core.FireFunc {
	wrapped := fn
	for i := len(s.middlewares) - 1; i >= 0; i-- {
		wrapped = s.middlewares[i](wrapped)
	}
	return wrapped
}

// jobHandle defers a job ID to the firing closure: gocron assigns the ID
// only after NewJob returns, but an immediate-start task can run first.
type jobHandle struct {
	mu    sync.Mutex
	jobID uuid.UUID
}

func newJobHandle() *jobHandle {
	return &jobHandle{}
}

func (h *jobHandle) set(id uuid.UUID) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.jobID = id
}

func (h *jobHandle) id() uuid.UUID {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.jobID
}
