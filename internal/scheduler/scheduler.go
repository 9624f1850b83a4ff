package scheduler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"

	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/domain"
	"github.com/taskflowhq/taskflow-api/internal/platform/logger"
	"github.com/taskflowhq/taskflow-api/internal/store"
)

// ErrInvalidSchedule is returned when a schedule expression cannot be
// parsed. It is fatal only at Start: timers are never armed with a bad
// expression.
var ErrInvalidSchedule = errors.New("invalid schedule expression")

// immediateThresholdHours is the window the aggressive near-due scan
// re-checks on every tick.
const immediateThresholdHours = 1

// Dispatcher is the delivery collaborator the scheduler drives.
type Dispatcher interface {
	// DispatchIfNeeded delivers the reminder unless the dedup log says
	// it already went out; urgent dispatches skip the log entirely.
	DispatchIfNeeded(ctx context.Context, task *domain.TaskSnapshot, thresholdHours int, urgent bool) error

	// DispatchOverdue delivers an overdue notice, never deduplicated.
	DispatchOverdue(ctx context.Context, task *domain.TaskSnapshot) error

	// Configure replaces the channel toggles on a config swap.
	Configure(emailEnabled, realtimeEnabled bool)
}

// ReminderScheduler owns the periodic reminder triggers: the interval
// scan walking the configured thresholds, the aggressive immediate scan,
// and the optional overdue sweep. Each trigger guards itself with an
// already-running flag so a slow tick is skipped, not overlapped.
type ReminderScheduler struct {
	tasks      store.TaskSource
	dispatcher Dispatcher
	logger     *slog.Logger
	parser     cron.Parser

	mu      sync.Mutex
	cfg     config.ReminderConfig
	c       *cron.Cron
	running bool

	intervalBusy  atomic.Bool
	immediateBusy atomic.Bool
	overdueBusy   atomic.Bool
}

// New creates a scheduler in the Stopped state.
func New(cfg config.ReminderConfig, tasks store.TaskSource, dispatcher Dispatcher, log *slog.Logger) *ReminderScheduler {
	return &ReminderScheduler{
		tasks:      tasks,
		dispatcher: dispatcher,
		logger:     log.With("component", "reminder_scheduler"),
		parser: cron.NewParser(
			cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
		),
		cfg: cfg,
	}
}

// Start validates the schedule expressions and arms the timers. Starting
// a disabled or already-running scheduler is a no-op.
func (s *ReminderScheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.startLocked()
}

func (s *ReminderScheduler) startLocked() error {
	if s.running {
		return nil
	}
	if !s.cfg.Enabled {
		s.logger.Info("reminder scheduler disabled by configuration")
		return nil
	}

	schedules, err := s.parseSchedules(s.cfg)
	if err != nil {
		return err
	}

	c := cron.New(cron.WithParser(s.parser))
	c.Schedule(schedules.interval, cron.FuncJob(func() {
		s.runLogged("interval scan", s.RunIntervalScan)
	}))
	c.Schedule(schedules.immediate, cron.FuncJob(func() {
		s.runLogged("immediate scan", s.RunImmediateScan)
	}))
	if schedules.overdue != nil {
		c.Schedule(schedules.overdue, cron.FuncJob(func() {
			s.runLogged("overdue sweep", s.RunOverdueSweep)
		}))
	}

	c.Start()
	s.c = c
	s.running = true

	s.logger.Info("reminder scheduler started",
		"check_interval", s.cfg.CheckInterval,
		"immediate_interval", s.cfg.ImmediateInterval,
		"overdue_sweep", s.cfg.OverdueSweep,
		"thresholds", s.cfg.ReminderTimes,
		"email_enabled", s.cfg.EmailEnabled,
		"socket_enabled", s.cfg.SocketEnabled)
	return nil
}

// Stop cancels the timers. Dispatches already started by the final tick
// are not awaited or cancelled; they complete (or fail) on their own.
func (s *ReminderScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopLocked()
}

func (s *ReminderScheduler) stopLocked() {
	if !s.running {
		return
	}
	s.c.Stop()
	s.c = nil
	s.running = false
	s.logger.Info("reminder scheduler stopped")
}

// Running reports whether the timers are armed.
func (s *ReminderScheduler) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// UpdateConfig replaces the configuration wholesale and re-arms the
// timers with the new parameters. The new expressions are validated
// before the running timers are torn down, so a bad replacement leaves
// the current schedule untouched.
func (s *ReminderScheduler) UpdateConfig(cfg config.ReminderConfig) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if cfg.Enabled {
		if _, err := s.parseSchedules(cfg); err != nil {
			return err
		}
	}

	s.stopLocked()
	s.cfg = cfg
	s.dispatcher.Configure(cfg.EmailEnabled, cfg.SocketEnabled)
	return s.startLocked()
}

type parsedSchedules struct {
	interval  cron.Schedule
	immediate cron.Schedule
	overdue   cron.Schedule
}

func (s *ReminderScheduler) parseSchedules(cfg config.ReminderConfig) (parsedSchedules, error) {
	var out parsedSchedules
	var err error

	if out.interval, err = s.parser.Parse(cfg.CheckInterval); err != nil {
		return out, fmt.Errorf("%w: check_interval %q: %v", ErrInvalidSchedule, cfg.CheckInterval, err)
	}
	if out.immediate, err = s.parser.Parse(cfg.ImmediateInterval); err != nil {
		return out, fmt.Errorf("%w: immediate_interval %q: %v", ErrInvalidSchedule, cfg.ImmediateInterval, err)
	}
	if cfg.OverdueSweep != "" {
		if out.overdue, err = s.parser.Parse(cfg.OverdueSweep); err != nil {
			return out, fmt.Errorf("%w: overdue_sweep %q: %v", ErrInvalidSchedule, cfg.OverdueSweep, err)
		}
	}
	return out, nil
}

// runLogged adapts a scan for the cron runner: ticks get a fresh context
// carrying the scheduler's logger, and a failed tick is logged rather
// than propagated; the next tick retries independently.
func (s *ReminderScheduler) runLogged(name string, scan func(context.Context) error) {
	ctx := logger.WithLogger(context.Background(), s.logger)
	if err := scan(ctx); err != nil {
		s.logger.Error("scheduled tick failed",
			"trigger", name,
			"error", err)
	}
}

// RunIntervalScan walks the configured thresholds in order, querying for
// tasks inside each window and dispatching deduplicated reminders. A
// query failure aborts the tick; a failure handling one task is isolated
// and the remaining tasks in the tick are still processed.
func (s *ReminderScheduler) RunIntervalScan(ctx context.Context) error {
	if !s.intervalBusy.CompareAndSwap(false, true) {
		s.logger.Warn("interval scan still running, skipping tick")
		return nil
	}
	defer s.intervalBusy.Store(false)

	for _, hours := range s.snapshotConfig().ReminderTimes {
		tasks, err := s.tasks.DueSoon(ctx, time.Duration(hours)*time.Hour)
		if err != nil {
			return fmt.Errorf("due-soon query failed for threshold %dh: %w", hours, err)
		}

		for i := range tasks {
			task := &tasks[i]
			s.safeDispatch(task.ID, func() error {
				return s.dispatcher.DispatchIfNeeded(ctx, task, hours, false)
			})
		}
	}
	return nil
}

// RunImmediateScan re-checks the near-due window and dispatches urgent
// reminders. This path deliberately bypasses deduplication and is
// expected to re-notify on every tick.
func (s *ReminderScheduler) RunImmediateScan(ctx context.Context) error {
	if !s.immediateBusy.CompareAndSwap(false, true) {
		s.logger.Warn("immediate scan still running, skipping tick")
		return nil
	}
	defer s.immediateBusy.Store(false)

	tasks, err := s.tasks.DueSoon(ctx, immediateThresholdHours*time.Hour)
	if err != nil {
		return fmt.Errorf("immediate due-soon query failed: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		s.safeDispatch(task.ID, func() error {
			return s.dispatcher.DispatchIfNeeded(ctx, task, immediateThresholdHours, true)
		})
	}
	return nil
}

// RunOverdueSweep notifies owners of every pending task past its due
// date. The sweep is invocable on demand and repeats deliberately: a
// task still overdue on the next invocation is notified again.
func (s *ReminderScheduler) RunOverdueSweep(ctx context.Context) error {
	if !s.overdueBusy.CompareAndSwap(false, true) {
		s.logger.Warn("overdue sweep still running, skipping tick")
		return nil
	}
	defer s.overdueBusy.Store(false)

	tasks, err := s.tasks.Overdue(ctx)
	if err != nil {
		return fmt.Errorf("overdue query failed: %w", err)
	}

	for i := range tasks {
		task := &tasks[i]
		s.safeDispatch(task.ID, func() error {
			return s.dispatcher.DispatchOverdue(ctx, task)
		})
	}
	return nil
}

// ForceSendReminder fetches one task and, if it is still pending,
// dispatches unconditionally, skipping the deduplication log.
func (s *ReminderScheduler) ForceSendReminder(ctx context.Context, taskID uuid.UUID, hoursBefore int) error {
	task, err := s.tasks.GetSnapshot(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch task for manual reminder: %w", err)
	}
	if !task.IsPending() {
		s.logger.Info("skipping manual reminder for non-pending task",
			"task_id", taskID,
			"status", string(task.Status))
		return nil
	}
	return s.dispatcher.DispatchIfNeeded(ctx, task, hoursBefore, true)
}

// Config returns the active reminder configuration.
func (s *ReminderScheduler) Config() config.ReminderConfig {
	return s.snapshotConfig()
}

func (s *ReminderScheduler) snapshotConfig() config.ReminderConfig {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cfg
}

// safeDispatch isolates one task's dispatch: a panic or error is logged
// and the scan loop moves on to the next task.
func (s *ReminderScheduler) safeDispatch(taskID uuid.UUID, fn func() error) {
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("panic while dispatching reminder",
				"task_id", taskID,
				"panic", r)
		}
	}()
	if err := fn(); err != nil {
		s.logger.Error("failed to dispatch reminder",
			"task_id", taskID,
			"error", err)
	}
}
