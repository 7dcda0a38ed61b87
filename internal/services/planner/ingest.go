package planner

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/dateparse"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/ai"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

const defaultTaskTitle = "Task"

// IngestionService turns free-text plans into stored, anchored tasks.
type IngestionService struct {
	planner  ai.PlanningService
	tasks    TaskBatchCreator
	resolver *dateparse.Resolver
	jobs     JobEnqueuer
	logger   *zap.Logger
	now      func() time.Time
}

// IngestionOption configures an IngestionService.
type IngestionOption func(*IngestionService)

// WithJobQueue enqueues a background emotion analysis for every plan.
func WithJobQueue(jobs JobEnqueuer) IngestionOption {
	return func(s *IngestionService) {
		s.jobs = jobs
	}
}

// WithIngestionClock overrides the clock used for reference dates.
func WithIngestionClock(now func() time.Time) IngestionOption {
	return func(s *IngestionService) {
		s.now = now
	}
}

// NewIngestionService creates a new ingestion service
func NewIngestionService(planner ai.PlanningService, tasks TaskBatchCreator, resolver *dateparse.Resolver, logger *zap.Logger, opts ...IngestionOption) *IngestionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &IngestionService{
		planner:  planner,
		tasks:    tasks,
		resolver: resolver,
		logger:   logger,
		now:      systemNow,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Plan asks the planning service for drafts, anchors them on the date the
// text refers to and saves them in one batch. Nothing is stored when the
// planning service fails.
func (s *IngestionService) Plan(ctx context.Context, text string) (result *models.PlanResult, err error) {
	ctx, span := startSpan(ctx, "planner.Plan")
	defer func() { endSpan(span, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	ref := s.resolver.ReferenceDate(text, s.now())
	span.SetAttributes(attribute.String("planner.reference_date", ref.Format(dayFormat)))

	resp, err := s.planner.Plan(ctx, text)
	if err != nil {
		s.logger.Error("planning_service_failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrPlanningFailed, err)
	}

	tasks := s.anchorDrafts(resp, ref)
	if err := s.tasks.CreateBatch(ctx, tasks); err != nil {
		return nil, fmt.Errorf("failed to save planned tasks: %w", err)
	}
	span.SetAttributes(attribute.Int("planner.tasks", len(tasks)))

	s.logger.Info("plan_ingested",
		zap.Int("tasks", len(tasks)),
		zap.String("detected_emotion", resp.DetectedEmotion),
		zap.Time("reference_date", ref),
	)

	s.enqueueAnalysis(ctx, text)

	return &models.PlanResult{
		Tasks:           tasks,
		DetectedEmotion: resp.DetectedEmotion,
		Sentiment:       resp.Sentiment,
		Score:           resp.Score,
		Message:         resp.Message,
		ReferenceDate:   ref,
	}, nil
}

// anchorDrafts places every draft and suggestion on ref's date. Missing or
// unreadable starts fall back to ref; ends fall back to start plus the
// default duration.
func (s *IngestionService) anchorDrafts(resp *ai.PlanResponse, ref time.Time) []*models.Task {
	tasks := make([]*models.Task, 0, len(resp.Tasks)+len(resp.Suggestions))

	var emotion *string
	if resp.DetectedEmotion != "" {
		e := resp.DetectedEmotion
		emotion = &e
	}

	add := func(d models.TaskDraft, notes *string) {
		title := strings.TrimSpace(d.Title)
		if title == "" {
			title = defaultTaskTitle
		}
		start, ok := s.resolver.AnchorTime(d.Start, ref)
		if !ok {
			start = ref
		}
		end, ok := s.resolver.AnchorTime(d.End, ref)
		if !ok {
			end = start.Add(models.DefaultTaskDuration)
		}
		tasks = append(tasks, &models.Task{
			Title:   title,
			Start:   start,
			End:     end,
			Emotion: emotion,
			Notes:   notes,
		})
	}

	for _, d := range resp.Tasks {
		add(d, nil)
	}
	suggestion := "Suggested break"
	for _, d := range resp.Suggestions {
		add(d, &suggestion)
	}
	return tasks
}

func (s *IngestionService) enqueueAnalysis(ctx context.Context, text string) {
	if s.jobs == nil {
		return
	}
	job, err := queue.NewEmotionAnalysisJob(text)
	if err != nil {
		return
	}
	if err := s.jobs.Enqueue(ctx, job); err != nil {
		// The plan is already stored; analysis is best effort.
		s.logger.Warn("analysis_enqueue_failed", zap.Error(err), zap.String("job_id", job.ID.String()))
		return
	}
	s.logger.Debug("analysis_enqueued", zap.String("job_id", job.ID.String()))
}
