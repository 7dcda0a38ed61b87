package database

import (
	"context"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

// TaskStore is the task storage contract used by services and handlers.
type TaskStore interface {
	Create(ctx context.Context, task *models.Task) error
	CreateBatch(ctx context.Context, tasks []*models.Task) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.Task, error)
	ListByStart(ctx context.Context) ([]*models.Task, error)
	Update(ctx context.Context, id uuid.UUID, update models.TaskUpdate) (*models.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteMatching(ctx context.Context, filter models.TaskFilter) (int64, error)
}

// EmotionLogStore is the emotion log storage contract.
type EmotionLogStore interface {
	Create(ctx context.Context, entry *models.EmotionLogEntry) error
	ListRecent(ctx context.Context, limit int) ([]*models.EmotionLogEntry, error)
}

// CorsConfigStore reads and writes the CORS policy. Get returns nil, nil
// when no policy is stored.
type CorsConfigStore interface {
	Get(ctx context.Context) (*models.CorsConfig, error)
	Set(ctx context.Context, c *models.CorsConfig) error
}

// RatelimitConfigStore reads and writes the API rate limit. Get returns
// nil, nil when no rate is stored.
type RatelimitConfigStore interface {
	Get(ctx context.Context) (*models.RatelimitConfig, error)
	Set(ctx context.Context, c *models.RatelimitConfig) error
}

// Ensure concrete types implement the interfaces
var (
	_ TaskStore            = (*TaskRepository)(nil)
	_ EmotionLogStore      = (*EmotionLogRepository)(nil)
	_ CorsConfigStore      = (*CorsConfigRepository)(nil)
	_ RatelimitConfigStore = (*RatelimitConfigRepository)(nil)
)
