package handlers

import (
	"context"
	"net/http"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// TaskStore is the subset of task storage used by the CRUD endpoints.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	ListByStart(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, update models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// TaskHandler handles direct task CRUD.
type TaskHandler struct {
	tasks  TaskStore
	logger *zap.Logger
}

// NewTaskHandler creates a new task handler
func NewTaskHandler(tasks TaskStore, log *zap.Logger) *TaskHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &TaskHandler{tasks: tasks, logger: log}
}

// RegisterRoutes registers task routes on the given router.
// The router should already carry the /tasks prefix.
func (h *TaskHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("", h.ListTasks).Methods(http.MethodGet)
	r.HandleFunc("", h.CreateTask).Methods(http.MethodPost)
	r.HandleFunc("/{id}", h.UpdateTask).Methods(http.MethodPut)
	r.HandleFunc("/{id}", h.DeleteTask).Methods(http.MethodDelete)
}

// ListTasks returns every task ordered by start time.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.ListByStart(r.Context())
	if err != nil {
		respondServiceError(w, r, h.logger, "list_tasks_failed", err)
		return
	}
	if tasks == nil {
		tasks = []*models.Task{}
	}
	respondJSON(w, http.StatusOK, tasks)
}

// CreateTask stores a single task given with absolute times.
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var input models.TaskInput
	if !decodeAndValidate(w, r, &input) {
		return
	}
	if input.End.Before(*input.Start) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "end must not be before start")
		return
	}

	task := input.Task()
	task.Title = validation.SanitizeText(task.Title)
	if err := h.tasks.Create(r.Context(), task); err != nil {
		respondServiceError(w, r, h.logger, "create_task_failed", err)
		return
	}
	respondJSON(w, http.StatusCreated, task)
}

// UpdateTask applies a partial update. Absent fields are kept.
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	var update models.TaskUpdate
	if !decodeAndValidate(w, r, &update) {
		return
	}
	if update.IsEmpty() {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "No fields to update")
		return
	}
	if update.Start != nil && update.End != nil && update.End.Before(*update.Start) {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "end must not be before start")
		return
	}
	if update.Title != nil {
		title := validation.SanitizeText(*update.Title)
		update.Title = &title
	}

	task, err := h.tasks.Update(r.Context(), id, update)
	if err != nil {
		respondServiceError(w, r, h.logger, "update_task_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, task)
}

// DeleteTask removes one task by id.
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", "Invalid task ID")
		return
	}

	if err := h.tasks.Delete(r.Context(), id); err != nil {
		respondServiceError(w, r, h.logger, "delete_task_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"message": "Task deleted", "id": id.String()})
}
