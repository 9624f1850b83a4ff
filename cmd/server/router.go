package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/taskflowhq/taskflow-api/internal/api"
	apiMiddleware "github.com/taskflowhq/taskflow-api/internal/api/middleware"
)

// setupRouter configures the application router with all routes and
// middleware.
func (app *application) setupRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(apiMiddleware.TraceMiddleware)

	authMiddleware := apiMiddleware.NewAuthMiddleware(app.verifier)
	reminderHandler := api.NewReminderHandler(app.scheduler, app.logger)

	r.Route("/api", func(r chi.Router) {
		// Websocket endpoint. Authentication happens in-band over the
		// socket, so the HTTP middleware stays out of the way.
		r.Get("/ws", app.gateway.ServeHTTP)

		// Reminder administration
		r.Group(func(r chi.Router) {
			r.Use(authMiddleware.Authenticate)
			r.Use(authMiddleware.RequireRole("admin"))

			r.Post("/reminders/tasks/{id}/send", reminderHandler.ForceSendReminder)
			r.Post("/reminders/sweep", reminderHandler.RunOverdueSweep)
			r.Get("/reminders/config", reminderHandler.GetConfig)
			r.Put("/reminders/config", reminderHandler.UpdateConfig)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte("OK")); err != nil {
			app.logger.Error("failed to write health check response", "error", err)
		}
	})

	return r
}
