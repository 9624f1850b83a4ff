// Package api provides HTTP handlers for the API.
package api

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/taskflowhq/taskflow-api/internal/api/shared"
	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/platform/logger"
)

// ReminderControl is the slice of the scheduler the handlers drive.
type ReminderControl interface {
	ForceSendReminder(ctx context.Context, taskID uuid.UUID, hoursBefore int) error
	RunOverdueSweep(ctx context.Context) error
	UpdateConfig(cfg config.ReminderConfig) error
	Config() config.ReminderConfig
	Running() bool
}

// ReminderHandler handles reminder administration requests.
type ReminderHandler struct {
	control ReminderControl
	logger  *slog.Logger
}

// NewReminderHandler creates a new ReminderHandler.
func NewReminderHandler(control ReminderControl, log *slog.Logger) *ReminderHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for ReminderHandler")
	}
	return &ReminderHandler{
		control: control,
		logger:  log.With(slog.String("component", "reminder_handler")),
	}
}

// ForceReminderRequest is the body for a manual reminder trigger.
type ForceReminderRequest struct {
	HoursBefore int `json:"hours_before" validate:"omitempty,gt=0"`
}

// ForceReminderResponse confirms a manual dispatch.
type ForceReminderResponse struct {
	TaskID      string `json:"task_id"`
	HoursBefore int    `json:"hours_before"`
}

// ForceSendReminder handles POST /reminders/tasks/{id}/send. It
// dispatches a reminder for one task immediately, skipping the
// deduplication log.
func (h *ReminderHandler) ForceSendReminder(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	taskID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid task ID")
		return
	}

	req := ForceReminderRequest{HoursBefore: 24}
	if r.Body != nil && r.ContentLength != 0 {
		if err := shared.DecodeJSON(r, &req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
			return
		}
		if err := shared.ValidateRequest(req); err != nil {
			shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
			return
		}
	}
	if req.HoursBefore == 0 {
		req.HoursBefore = 24
	}

	log.Debug("manual reminder requested",
		slog.String("task_id", taskID.String()),
		slog.Int("hours_before", req.HoursBefore))

	if err := h.control.ForceSendReminder(r.Context(), taskID, req.HoursBefore); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusAccepted, ForceReminderResponse{
		TaskID:      taskID.String(),
		HoursBefore: req.HoursBefore,
	})
}

// SweepResponse confirms an overdue sweep run.
type SweepResponse struct {
	Status string `json:"status"`
}

// RunOverdueSweep handles POST /reminders/sweep. The sweep runs
// synchronously; a repeat call while one is in flight is skipped by the
// scheduler's overlap guard.
func (h *ReminderHandler) RunOverdueSweep(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	log.Info("overdue sweep requested")

	if err := h.control.RunOverdueSweep(r.Context()); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, SweepResponse{Status: "completed"})
}

// ReminderConfigRequest is the body for a configuration replacement.
// The whole configuration is replaced, not merged.
type ReminderConfigRequest struct {
	Enabled           bool   `json:"enabled"`
	CheckInterval     string `json:"check_interval"      validate:"required"`
	ImmediateInterval string `json:"immediate_interval"  validate:"required"`
	OverdueSweep      string `json:"overdue_sweep"`
	ReminderTimes     []int  `json:"reminder_times"      validate:"unique,dive,gt=0"`
	EmailEnabled      bool   `json:"email_enabled"`
	SocketEnabled     bool   `json:"socket_enabled"`
}

// ReminderConfigResponse reports the active configuration.
type ReminderConfigResponse struct {
	Enabled           bool   `json:"enabled"`
	Running           bool   `json:"running"`
	CheckInterval     string `json:"check_interval"`
	ImmediateInterval string `json:"immediate_interval"`
	OverdueSweep      string `json:"overdue_sweep,omitempty"`
	ReminderTimes     []int  `json:"reminder_times"`
	EmailEnabled      bool   `json:"email_enabled"`
	SocketEnabled     bool   `json:"socket_enabled"`
}

// GetConfig handles GET /reminders/config.
func (h *ReminderHandler) GetConfig(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, h.configResponse())
}

// UpdateConfig handles PUT /reminders/config. A replacement with an
// invalid schedule expression is rejected and the running schedule is
// left untouched.
func (h *ReminderHandler) UpdateConfig(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req ReminderConfigRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request body")
		return
	}
	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	cfg := config.ReminderConfig{
		Enabled:           req.Enabled,
		CheckInterval:     req.CheckInterval,
		ImmediateInterval: req.ImmediateInterval,
		OverdueSweep:      req.OverdueSweep,
		ReminderTimes:     req.ReminderTimes,
		EmailEnabled:      req.EmailEnabled,
		SocketEnabled:     req.SocketEnabled,
	}

	if err := h.control.UpdateConfig(cfg); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	log.Info("reminder configuration replaced",
		slog.Bool("enabled", cfg.Enabled),
		slog.Any("reminder_times", cfg.ReminderTimes))

	shared.RespondWithJSON(w, r, http.StatusOK, h.configResponse())
}

func (h *ReminderHandler) configResponse() ReminderConfigResponse {
	cfg := h.control.Config()
	return ReminderConfigResponse{
		Enabled:           cfg.Enabled,
		Running:           h.control.Running(),
		CheckInterval:     cfg.CheckInterval,
		ImmediateInterval: cfg.ImmediateInterval,
		OverdueSweep:      cfg.OverdueSweep,
		ReminderTimes:     cfg.ReminderTimes,
		EmailEnabled:      cfg.EmailEnabled,
		SocketEnabled:     cfg.SocketEnabled,
	}
}
