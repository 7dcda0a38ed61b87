package planner

import (
	"context"
	"fmt"
	"strings"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/services/ai"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// AnalysisService records an emotion log entry for a piece of text.
type AnalysisService struct {
	planner ai.PlanningService
	logs    EmotionLogCreator
	logger  *zap.Logger
}

// NewAnalysisService creates a new analysis service
func NewAnalysisService(planner ai.PlanningService, logs EmotionLogCreator, logger *zap.Logger) *AnalysisService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AnalysisService{planner: planner, logs: logs, logger: logger}
}

// Analyze forwards text to the planning service and stores the mood it
// reports. The response carries the drafts too, but nothing is scheduled.
func (s *AnalysisService) Analyze(ctx context.Context, text string) (result *models.AnalysisResult, err error) {
	ctx, span := startSpan(ctx, "planner.Analyze")
	defer func() { endSpan(span, err) }()

	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}

	resp, err := s.planner.Plan(ctx, text)
	if err != nil {
		s.logger.Error("analysis_service_failed", zap.Error(err))
		return nil, fmt.Errorf("%w: %w", ErrAnalysisFailed, err)
	}

	entry := &models.EmotionLogEntry{
		Text:            text,
		Sentiment:       resp.Sentiment,
		DetectedEmotion: resp.DetectedEmotion,
		Score:           resp.Score,
	}
	if err := s.logs.Create(ctx, entry); err != nil {
		return nil, fmt.Errorf("failed to save emotion log: %w", err)
	}
	span.SetAttributes(attribute.String("planner.detected_emotion", resp.DetectedEmotion))

	s.logger.Info("emotion_logged",
		zap.String("log_id", entry.ID.String()),
		zap.String("sentiment", entry.Sentiment),
		zap.String("detected_emotion", entry.DetectedEmotion),
	)

	taskCount := resp.TaskCount
	if taskCount == 0 {
		taskCount = len(resp.Tasks)
	}
	return &models.AnalysisResult{
		Sentiment:       resp.Sentiment,
		Score:           resp.Score,
		DetectedEmotion: resp.DetectedEmotion,
		TaskCount:       taskCount,
		Tasks:           nonNilDrafts(resp.Tasks),
		Suggestions:     nonNilDrafts(resp.Suggestions),
		Message:         resp.Message,
		Log:             entry,
	}, nil
}

func nonNilDrafts(d []models.TaskDraft) []models.TaskDraft {
	if d == nil {
		return []models.TaskDraft{}
	}
	return d
}
