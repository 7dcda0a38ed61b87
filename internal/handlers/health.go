package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/benvon/smart-planner/internal/logger"
)

const healthCheckTimeout = 5 * time.Second

// CheckFunc probes one dependency.
type CheckFunc func(ctx context.Context) error

// HealthChecker handles health check requests
type HealthChecker struct {
	checks map[string]CheckFunc
}

// NewHealthChecker creates a health checker with the database probe.
// Optional dependencies are added with AddCheck.
func NewHealthChecker(database CheckFunc) *HealthChecker {
	h := &HealthChecker{checks: make(map[string]CheckFunc)}
	if database != nil {
		h.checks["database"] = database
	}
	return h
}

// AddCheck registers an extra probe reported in extended mode.
func (h *HealthChecker) AddCheck(name string, check CheckFunc) {
	h.checks[name] = check
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp string            `json:"timestamp"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// HealthCheck handles /healthz. With ?extended=true (or the older
// ?mode=extended) every registered dependency is probed.
func (h *HealthChecker) HealthCheck(w http.ResponseWriter, r *http.Request) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}

	if !extendedMode(r) {
		writeHealth(w, http.StatusOK, response)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	response.Checks = make(map[string]string, len(names))
	for _, name := range names {
		if err := h.checks[name](ctx); err != nil {
			response.Status = "unhealthy"
			response.Checks[name] = "unhealthy: " + logger.SanitizeError(err)
			continue
		}
		response.Checks[name] = "healthy"
	}

	status := http.StatusOK
	if response.Status == "unhealthy" {
		status = http.StatusServiceUnavailable
	}
	writeHealth(w, status, response)
}

func extendedMode(r *http.Request) bool {
	q := r.URL.Query()
	if q.Get("mode") == "extended" {
		return true
	}
	extended, _ := strconv.ParseBool(q.Get("extended"))
	return extended
}

func writeHealth(w http.ResponseWriter, status int, response HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(response)
}
