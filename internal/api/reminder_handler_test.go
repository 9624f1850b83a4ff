package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taskflowhq/taskflow-api/internal/config"
	"github.com/taskflowhq/taskflow-api/internal/scheduler"
	"github.com/taskflowhq/taskflow-api/internal/store"
)

type fakeReminderControl struct {
	cfg     config.ReminderConfig
	running bool

	forceErr  error
	sweepErr  error
	updateErr error

	forcedTask  uuid.UUID
	forcedHours int
	sweeps      int
}

func (f *fakeReminderControl) ForceSendReminder(_ context.Context, taskID uuid.UUID, hours int) error {
	f.forcedTask = taskID
	f.forcedHours = hours
	return f.forceErr
}

func (f *fakeReminderControl) RunOverdueSweep(context.Context) error {
	f.sweeps++
	return f.sweepErr
}

func (f *fakeReminderControl) UpdateConfig(cfg config.ReminderConfig) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.cfg = cfg
	return nil
}

func (f *fakeReminderControl) Config() config.ReminderConfig { return f.cfg }

func (f *fakeReminderControl) Running() bool { return f.running }

func newReminderRouter(control *fakeReminderControl) http.Handler {
	h := NewReminderHandler(control, slog.Default())
	r := chi.NewRouter()
	r.Post("/reminders/tasks/{id}/send", h.ForceSendReminder)
	r.Post("/reminders/sweep", h.RunOverdueSweep)
	r.Get("/reminders/config", h.GetConfig)
	r.Put("/reminders/config", h.UpdateConfig)
	return r
}

func TestReminderHandler_ForceSendReminder(t *testing.T) {
	t.Parallel()

	t.Run("dispatches with requested hours", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{}
		router := newReminderRouter(control)
		taskID := uuid.New()

		body := strings.NewReader(`{"hours_before": 6}`)
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reminders/tasks/%s/send", taskID), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, taskID, control.forcedTask)
		assert.Equal(t, 6, control.forcedHours)

		var resp ForceReminderResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, taskID.String(), resp.TaskID)
		assert.Equal(t, 6, resp.HoursBefore)
	})

	t.Run("empty body defaults to 24 hours", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{}
		router := newReminderRouter(control)
		taskID := uuid.New()

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reminders/tasks/%s/send", taskID), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusAccepted, rec.Code)
		assert.Equal(t, 24, control.forcedHours)
	})

	t.Run("malformed task ID rejected", func(t *testing.T) {
		t.Parallel()

		router := newReminderRouter(&fakeReminderControl{})
		req := httptest.NewRequest(http.MethodPost, "/reminders/tasks/not-a-uuid/send", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("negative hours rejected", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{}
		router := newReminderRouter(control)

		body := strings.NewReader(`{"hours_before": -1}`)
		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reminders/tasks/%s/send", uuid.New()), body)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, uuid.Nil, control.forcedTask)
	})

	t.Run("unknown task maps to 404", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{forceErr: fmt.Errorf("fetch: %w", store.ErrTaskNotFound)}
		router := newReminderRouter(control)

		req := httptest.NewRequest(http.MethodPost, fmt.Sprintf("/reminders/tasks/%s/send", uuid.New()), nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Contains(t, rec.Body.String(), "Task not found")
	})
}

func TestReminderHandler_RunOverdueSweep(t *testing.T) {
	t.Parallel()

	t.Run("runs the sweep", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{}
		router := newReminderRouter(control)

		req := httptest.NewRequest(http.MethodPost, "/reminders/sweep", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, 1, control.sweeps)
		assert.Contains(t, rec.Body.String(), "completed")
	})

	t.Run("query failure maps to 500", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{sweepErr: errors.New("db down")}
		router := newReminderRouter(control)

		req := httptest.NewRequest(http.MethodPost, "/reminders/sweep", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}

func TestReminderHandler_Config(t *testing.T) {
	t.Parallel()

	baseConfig := config.ReminderConfig{
		Enabled:           true,
		CheckInterval:     "@every 6h",
		ImmediateInterval: "@every 15m",
		ReminderTimes:     []int{24, 12, 6, 1},
		EmailEnabled:      true,
		SocketEnabled:     true,
	}

	t.Run("get reports current config and run state", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{cfg: baseConfig, running: true}
		router := newReminderRouter(control)

		req := httptest.NewRequest(http.MethodGet, "/reminders/config", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)

		var resp ReminderConfigResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.True(t, resp.Running)
		assert.Equal(t, "@every 6h", resp.CheckInterval)
		assert.Equal(t, []int{24, 12, 6, 1}, resp.ReminderTimes)
	})

	t.Run("put replaces the whole config", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{cfg: baseConfig, running: true}
		router := newReminderRouter(control)

		payload := ReminderConfigRequest{
			Enabled:           true,
			CheckInterval:     "@every 4h",
			ImmediateInterval: "@every 10m",
			ReminderTimes:     []int{48, 24},
			EmailEnabled:      false,
			SocketEnabled:     true,
		}
		body, err := json.Marshal(payload)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodPut, "/reminders/config", bytes.NewReader(body))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "@every 4h", control.cfg.CheckInterval)
		assert.Equal(t, []int{48, 24}, control.cfg.ReminderTimes)
		assert.False(t, control.cfg.EmailEnabled)
	})

	t.Run("missing interval rejected by validation", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{cfg: baseConfig}
		router := newReminderRouter(control)

		req := httptest.NewRequest(http.MethodPut, "/reminders/config",
			strings.NewReader(`{"enabled": true, "reminder_times": [24]}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "@every 6h", control.cfg.CheckInterval)
	})

	t.Run("invalid schedule expression maps to 400", func(t *testing.T) {
		t.Parallel()

		control := &fakeReminderControl{
			cfg:       baseConfig,
			updateErr: fmt.Errorf("%w: check_interval", scheduler.ErrInvalidSchedule),
		}
		router := newReminderRouter(control)

		req := httptest.NewRequest(http.MethodPut, "/reminders/config",
			strings.NewReader(`{"enabled": true, "check_interval": "nope", "immediate_interval": "@every 15m"}`))
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, rec.Body.String(), "Invalid schedule expression")
	})
}
