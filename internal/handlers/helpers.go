package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/request"
	"github.com/benvon/smart-planner/internal/services/planner"
	"github.com/benvon/smart-planner/internal/validation"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// maxErrorMessageLength caps messages returned to clients.
const maxErrorMessageLength = 200

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   true,
		"data":      data,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// sanitizeErrorMessage strips control characters and truncates.
func sanitizeErrorMessage(message string) string {
	return logger.SanitizeString(message, maxErrorMessageLength)
}

// respondJSONError sends an error JSON response with sanitized error messages
func respondJSONError(w http.ResponseWriter, status int, errorType, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	response := map[string]any{
		"success":   false,
		"error":     errorType,
		"message":   sanitizeErrorMessage(message),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	}

	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondServiceError maps service and storage errors to status codes.
// Client errors keep their message, everything else is logged and hidden.
func respondServiceError(w http.ResponseWriter, r *http.Request, log *zap.Logger, event string, err error) {
	switch {
	case errors.Is(err, planner.ErrInvalidInput),
		errors.Is(err, planner.ErrNoDateDetected),
		errors.Is(err, database.ErrEmptyFilter):
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return
	case errors.Is(err, database.ErrTaskNotFound):
		respondJSONError(w, http.StatusNotFound, "Not Found", "Task not found")
		return
	}

	log.Error(event,
		zap.String("request_id", request.RequestIDFromContext(r.Context())),
		zap.String("path", logger.SanitizePath(r.URL.Path)),
		zap.String("error", logger.SanitizeError(err)),
	)

	message := "Request failed"
	switch {
	case errors.Is(err, planner.ErrPlanningFailed):
		message = "Planning failed"
	case errors.Is(err, planner.ErrAnalysisFailed):
		message = "Analysis failed"
	}
	respondJSONError(w, http.StatusInternalServerError, "Internal Server Error", message)
}

// decodeAndValidate reads a JSON body into dst and runs struct validation.
// It writes the 400 response itself and reports whether to continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", describeDecodeError(err))
		return false
	}
	if err := validation.Struct(dst); err != nil {
		respondJSONError(w, http.StatusBadRequest, "Bad Request", err.Error())
		return false
	}
	return true
}

func describeDecodeError(err error) string {
	var maxErr *http.MaxBytesError
	var typeErr *json.UnmarshalTypeError
	var syntaxErr *json.SyntaxError
	switch {
	case errors.Is(err, io.EOF):
		return "Request body is empty"
	case errors.As(err, &maxErr):
		return "Request body is too large"
	case errors.As(err, &typeErr):
		return fmt.Sprintf("Invalid value for field %q", typeErr.Field)
	case errors.As(err, &syntaxErr):
		return "Invalid JSON in request body"
	default:
		return "Invalid request body"
	}
}

// pathID parses the {id} route variable.
func pathID(r *http.Request) (uuid.UUID, error) {
	return uuid.Parse(mux.Vars(r)["id"])
}
