// Package planner hosts the request pipelines that sit between the HTTP
// handlers and storage: turning plans into anchored tasks, interpreting
// delete commands, and recording emotion analyses.
package planner

import (
	"context"
	"errors"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	// ErrInvalidInput marks a client-correctable request problem.
	ErrInvalidInput = errors.New("invalid input")
	// ErrNoDateDetected is returned when a delete command names no date.
	ErrNoDateDetected = errors.New("no date detected")
	// ErrPlanningFailed wraps planning service failures during ingestion.
	ErrPlanningFailed = errors.New("planning failed")
	// ErrAnalysisFailed wraps planning service failures during analysis.
	ErrAnalysisFailed = errors.New("analysis failed")
)

// TaskDeleter removes tasks matching a filter.
type TaskDeleter interface {
	DeleteMatching(ctx context.Context, filter models.TaskFilter) (int64, error)
}

// TaskBatchCreator stores a batch of tasks.
type TaskBatchCreator interface {
	CreateBatch(ctx context.Context, tasks []*models.Task) error
}

// EmotionLogCreator stores an emotion log entry.
type EmotionLogCreator interface {
	Create(ctx context.Context, entry *models.EmotionLogEntry) error
}

// JobEnqueuer publishes background jobs.
type JobEnqueuer interface {
	Enqueue(ctx context.Context, job *queue.Job) error
}

var tracer = otel.Tracer("github.com/benvon/smart-planner/internal/services/planner")

func startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return tracer.Start(ctx, name)
}

func endSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	span.End()
}

func systemNow() time.Time {
	return time.Now()
}
