package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/kaddachi/tasktrack-be/internal/auth"
	"github.com/kaddachi/tasktrack-be/internal/models"
	"github.com/kaddachi/tasktrack-be/internal/services"
	"github.com/rs/zerolog/log"
)

// TaskHandler handles HTTP requests for tasks.
type TaskHandler struct {
	service services.TaskServiceProvider
	events  services.EventServiceProvider
}

// NewTaskHandler creates a new TaskHandler.
func NewTaskHandler(service services.TaskServiceProvider, events services.EventServiceProvider) *TaskHandler {
	return &TaskHandler{service: service, events: events}
}

// CreateTaskPayload defines the structure for task creation requests. Any
// owner field in the body is dropped here; ownership always comes from the
// access token.
type CreateTaskPayload struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// List returns all tasks visible to the caller: their own, or every task for
// staff. It also serves the legacy per-id listing route, whose path id was
// never part of the filtering logic; scoping stays strictly caller-based.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	tasks, err := h.service.List(r.Context(), caller)
	if err != nil {
		log.Error().Err(err).Str("user_id", caller.ID).Msg("Failed to list tasks")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if tasks == nil {
		tasks = []models.Task{}
	}

	writeJSON(w, http.StatusOK, tasks)
}

// Create adds a new task owned by the caller.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	var payload CreateTaskPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	task, err := h.service.Create(r.Context(), caller, payload.Title, payload.Description)
	if err != nil {
		if ve, ok := services.AsValidationError(err); ok {
			writeValidationErrors(w, ve.Messages)
			return
		}
		log.Error().Err(err).Str("user_id", caller.ID).Msg("Failed to create task")
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	h.audit(r.Context(), "task.create", fmt.Sprintf("task %d created", task.ID), caller.ID)
	writeJSON(w, http.StatusCreated, task)
}

// Get retrieves a single task by id, ownership-enforced.
func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	task, err := h.service.Get(r.Context(), caller, id)
	if err != nil {
		h.taskError(w, err, caller.ID, id, "Failed to get task")
		return
	}

	writeJSON(w, http.StatusOK, task)
}

// Update applies a full (PUT) or partial (PATCH) update to a task.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	var fields models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&fields); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	if r.Method == http.MethodPut && fields.Title == nil {
		writeValidationErrors(w, []string{"title is required"})
		return
	}

	task, err := h.service.Update(r.Context(), caller, id, fields)
	if err != nil {
		if ve, ok := services.AsValidationError(err); ok {
			writeValidationErrors(w, ve.Messages)
			return
		}
		h.taskError(w, err, caller.ID, id, "Failed to update task")
		return
	}

	h.audit(r.Context(), "task.update", fmt.Sprintf("task %d updated", task.ID), caller.ID)
	writeJSON(w, http.StatusOK, task)
}

// Delete removes a task by id, ownership-enforced.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	caller, id, ok := h.callerAndID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), caller, id); err != nil {
		h.taskError(w, err, caller.ID, id, "Failed to delete task")
		return
	}

	h.audit(r.Context(), "task.delete", fmt.Sprintf("task %d deleted", id), caller.ID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *TaskHandler) callerAndID(w http.ResponseWriter, r *http.Request) (models.Caller, int64, bool) {
	caller, ok := auth.CallerFrom(r.Context())
	if !ok {
		writeError(w, http.StatusInternalServerError, "internal server error")
		return models.Caller{}, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id")
		return models.Caller{}, 0, false
	}
	return caller, id, true
}

func (h *TaskHandler) taskError(w http.ResponseWriter, err error, callerID string, taskID int64, msg string) {
	if errors.Is(err, services.ErrTaskNotFound) {
		// Covers both a genuinely missing task and one owned by someone
		// else; the two are indistinguishable to the caller.
		writeError(w, http.StatusNotFound, "task not found")
		return
	}
	log.Error().Err(err).Str("user_id", callerID).Int64("task_id", taskID).Msg(msg)
	writeError(w, http.StatusInternalServerError, "internal server error")
}

func (h *TaskHandler) audit(ctx context.Context, eventType, message, userID string) {
	if err := h.events.Record(ctx, eventType, "info", message, &userID); err != nil {
		log.Warn().Err(err).Str("type", eventType).Msg("Failed to record audit event")
	}
}
