package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/events"
	"github.com/taskflowhq/taskflow-api/internal/platform/mailer"
	"github.com/taskflowhq/taskflow-api/internal/platform/postgres"
	"github.com/taskflowhq/taskflow-api/internal/realtime"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
	"github.com/taskflowhq/taskflow-api/internal/service/auth"
	"github.com/taskflowhq/taskflow-api/internal/service/notifier"
	"github.com/taskflowhq/taskflow-api/internal/store"
)

// application holds the shared application dependencies so wiring and
// shutdown live in one place.
type application struct {
	config *config.Config
	logger *slog.Logger
	db     *sql.DB

	taskSource  store.TaskSource
	reminderLog store.ReminderLog

	verifier auth.TokenVerifier
	emitter  *events.InMemoryEmitter

	presence *realtime.Presence
	hub      *realtime.Hub
	gateway  *realtime.Gateway

	dispatcher *notifier.Dispatcher
	scheduler  *scheduler.ReminderScheduler
}

// newApplication wires the full dependency graph: stores over the
// database, the notification pipeline, the realtime hub, and the
// reminder scheduler.
func newApplication(cfg *config.Config, logg *slog.Logger, db *sql.DB) (*application, error) {
	app := &application{
		config: cfg,
		logger: logg,
		db:     db,
	}

	var err error
	app.verifier, err = auth.NewTokenVerifier(cfg.Auth)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize token verifier: %w", err)
	}

	app.taskSource = postgres.NewTaskStore(db)
	app.reminderLog = postgres.NewReminderStore(db)

	app.emitter = events.NewInMemoryEmitter(logg)

	app.presence = realtime.NewPresence()
	app.hub = realtime.NewHub(app.verifier, app.presence, realtime.AllowAllRooms, logg)
	app.gateway = realtime.NewGateway(app.hub, logg)

	// Realtime notifications flow from the dispatcher through the
	// emitter into the hub. Task mutation events additionally clear the
	// affected task's reminder log entries.
	app.emitter.RegisterHandler(app.hub)
	app.emitter.RegisterHandler(notifier.NewReminderInvalidator(app.reminderLog, logg))

	app.dispatcher = notifier.NewDispatcher(
		app.reminderLog,
		app.emitter,
		mailer.New(cfg.Email, logg),
		cfg.Reminder.EmailEnabled,
		cfg.Reminder.SocketEnabled,
		logg,
	)

	app.scheduler = scheduler.New(cfg.Reminder, app.taskSource, app.dispatcher, logg)

	logg.Info("application initialized")
	return app, nil
}

// Run starts the hub, scheduler, and HTTP server, then blocks until
// shutdown completes.
func (app *application) Run(ctx context.Context) error {
	hubCtx, stopHub := context.WithCancel(ctx)
	defer stopHub()
	go app.hub.Run(hubCtx)

	if err := app.scheduler.Start(); err != nil {
		return fmt.Errorf("failed to start reminder scheduler: %w", err)
	}

	if err := app.startHTTPServer(ctx, app.setupRouter()); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

// cleanup releases resources in dependency order: the scheduler stops
// producing notifications before the database closes.
func (app *application) cleanup() {
	app.scheduler.Stop()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error("error closing database connection", "error", err)
		}
	}

	app.logger.Info("application shutdown completed")
}
