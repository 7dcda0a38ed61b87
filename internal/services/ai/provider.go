package ai

import (
	"context"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"go.uber.org/zap"
)

// PlanningService turns free text into task drafts plus a mood reading.
type PlanningService interface {
	Plan(ctx context.Context, text string) (*PlanResponse, error)
}

// PlanResponse is the planning service payload. Start and end values of
// drafts are time expressions, not absolute timestamps.
type PlanResponse struct {
	Tasks           []models.TaskDraft `json:"tasks"`
	Suggestions     []models.TaskDraft `json:"suggestions"`
	Sentiment       string             `json:"sentiment"`
	DetectedEmotion string             `json:"detectedEmotion"`
	Score           *float64           `json:"score,omitempty"`
	TaskCount       int                `json:"taskCount"`
	Message         string             `json:"message"`
}

// BackendConfig carries everything a backend factory may need.
type BackendConfig struct {
	ServiceURL string
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	// RatePerSecond throttles outbound calls; zero disables throttling.
	RatePerSecond float64
	Logger        *zap.Logger
	Debug         bool
}

// BackendFactory creates a planning backend from configuration.
type BackendFactory func(cfg BackendConfig) (PlanningService, error)

// BackendRegistry stores available planning backends
type BackendRegistry struct {
	backends map[string]BackendFactory
}

// NewBackendRegistry creates an empty registry
func NewBackendRegistry() *BackendRegistry {
	return &BackendRegistry{
		backends: make(map[string]BackendFactory),
	}
}

// NewDefaultRegistry returns a registry with the "http" and "openai" backends.
func NewDefaultRegistry() *BackendRegistry {
	r := NewBackendRegistry()
	r.Register(BackendHTTP, func(cfg BackendConfig) (PlanningService, error) {
		return NewHTTPPlanningClient(cfg)
	})
	r.Register(BackendOpenAI, func(cfg BackendConfig) (PlanningService, error) {
		return NewOpenAIPlanner(cfg)
	})
	return r
}

// Backend names understood by NewDefaultRegistry.
const (
	BackendHTTP   = "http"
	BackendOpenAI = "openai"
)

// Register registers a backend factory
func (r *BackendRegistry) Register(name string, factory BackendFactory) {
	r.backends[name] = factory
}

// Get builds the named backend
func (r *BackendRegistry) Get(name string, cfg BackendConfig) (PlanningService, error) {
	factory, ok := r.backends[name]
	if !ok {
		return nil, &ErrBackendNotFound{Name: name}
	}
	return factory(cfg)
}

// ErrBackendNotFound is returned when a backend name is not registered
type ErrBackendNotFound struct {
	Name string
}

func (e *ErrBackendNotFound) Error() string {
	return "planning backend not found: " + e.Name
}
