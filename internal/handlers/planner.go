package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/request"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

const (
	// DefaultScheduleLimit is how many emotion logs GET /api/schedules returns.
	DefaultScheduleLimit = 50
	// MaxScheduleLimit caps the limit query parameter.
	MaxScheduleLimit = 500
)

// Planner turns free text into stored tasks.
type Planner interface {
	Plan(ctx context.Context, text string) (*models.PlanResult, error)
}

// Analyzer records an emotion reading for free text.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

// Deleter executes delete commands.
type Deleter interface {
	Delete(ctx context.Context, req models.DeleteRequest) (*models.DeletionResult, error)
}

// EmotionLogLister lists stored emotion readings.
type EmotionLogLister interface {
	ListRecent(ctx context.Context, limit int) ([]*models.EmotionLogEntry, error)
}

// PlannerHandler serves the natural-language endpoints.
type PlannerHandler struct {
	planner  Planner
	analyzer Analyzer
	deleter  Deleter
	logs     EmotionLogLister
	logger   *zap.Logger
}

// NewPlannerHandler creates a new planner handler
func NewPlannerHandler(planner Planner, analyzer Analyzer, deleter Deleter, logs EmotionLogLister, log *zap.Logger) *PlannerHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &PlannerHandler{
		planner:  planner,
		analyzer: analyzer,
		deleter:  deleter,
		logs:     logs,
		logger:   log,
	}
}

// RegisterRoutes registers planner routes on the /api subrouter.
func (h *PlannerHandler) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/plan", h.Plan).Methods(http.MethodPost)
	r.HandleFunc("/delete", h.Delete).Methods(http.MethodPost)
	r.HandleFunc("/analyze", h.Analyze).Methods(http.MethodPost)
	r.HandleFunc("/schedules", h.ListSchedules).Methods(http.MethodGet)
}

// Plan handles POST /api/plan
func (h *PlannerHandler) Plan(w http.ResponseWriter, r *http.Request) {
	var req models.TextRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.planner.Plan(r.Context(), req.Text)
	if err != nil {
		respondServiceError(w, r, h.logger, "plan_request_failed", err)
		return
	}

	h.logger.Info("plan_created",
		zap.String("request_id", request.RequestIDFromContext(r.Context())),
		zap.Int("task_count", len(result.Tasks)),
		zap.String("emotion", logger.SanitizeString(result.DetectedEmotion, logger.MaxGeneralStringLength)),
	)
	respondJSON(w, http.StatusCreated, result)
}

// Delete handles POST /api/delete
func (h *PlannerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	var req models.DeleteRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.deleter.Delete(r.Context(), req)
	if err != nil {
		respondServiceError(w, r, h.logger, "delete_request_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// Analyze handles POST /api/analyze
func (h *PlannerHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	var req models.TextRequest
	if !decodeAndValidate(w, r, &req) {
		return
	}

	result, err := h.analyzer.Analyze(r.Context(), req.Text)
	if err != nil {
		respondServiceError(w, r, h.logger, "analyze_request_failed", err)
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ListSchedules handles GET /api/schedules, newest reading first.
func (h *PlannerHandler) ListSchedules(w http.ResponseWriter, r *http.Request) {
	limit := DefaultScheduleLimit
	if l := r.URL.Query().Get("limit"); l != "" {
		parsed, err := strconv.Atoi(l)
		if err != nil || parsed <= 0 {
			respondJSONError(w, http.StatusBadRequest, "Bad Request", "limit must be a positive integer")
			return
		}
		limit = min(parsed, MaxScheduleLimit)
	}

	entries, err := h.logs.ListRecent(r.Context(), limit)
	if err != nil {
		respondServiceError(w, r, h.logger, "list_schedules_failed", err)
		return
	}
	if entries == nil {
		entries = []*models.EmotionLogEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}
