package workers

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/benvon/smart-planner/internal/logger"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/benvon/smart-planner/internal/services/planner"
	"go.uber.org/zap"
)

// Analyzer runs an emotion analysis and stores the result.
type Analyzer interface {
	Analyze(ctx context.Context, text string) (*models.AnalysisResult, error)
}

// EmotionAnalyzer processes emotion analysis jobs
type EmotionAnalyzer struct {
	analyzer Analyzer
	jobQueue planner.JobEnqueuer // For re-enqueueing jobs with delays
	logger   *zap.Logger
	now      func() time.Time
}

// NewEmotionAnalyzer creates a new emotion analyzer. jobQueue may be nil,
// in which case failed jobs are requeued without delay.
func NewEmotionAnalyzer(analyzer Analyzer, jobQueue planner.JobEnqueuer, log *zap.Logger) *EmotionAnalyzer {
	if log == nil {
		log = zap.NewNop()
	}
	return &EmotionAnalyzer{
		analyzer: analyzer,
		jobQueue: jobQueue,
		logger:   log,
		now:      time.Now,
	}
}

// Run processes messages until ctx is cancelled or msgs is closed.
func (a *EmotionAnalyzer) Run(ctx context.Context, msgs <-chan *queue.Message, errs <-chan error) {
	for {
		select {
		case <-ctx.Done():
			return
		case err, ok := <-errs:
			if !ok {
				errs = nil
				continue
			}
			a.logger.Error("queue_error", zap.Error(err))
		case msg, ok := <-msgs:
			if !ok {
				a.logger.Info("message_channel_closed")
				return
			}
			if err := a.ProcessJob(ctx, msg); err != nil {
				job := msg.GetJob()
				a.logger.Error("job_failed",
					zap.Error(err),
					zap.String("job_id", job.ID.String()),
					zap.String("job_type", string(job.Type)),
				)
			}
		}
	}
}

// ProcessJob processes a job based on its type
func (a *EmotionAnalyzer) ProcessJob(ctx context.Context, msg queue.MessageInterface) error {
	job := msg.GetJob()

	if job.IsExpired() {
		a.logger.Info("job_expired", zap.String("job_id", job.ID.String()))
		return msg.Ack()
	}
	if !job.ShouldProcess() {
		if err := msg.Nack(true); err != nil {
			return fmt.Errorf("failed to requeue early job: %w", err)
		}
		return nil
	}

	switch job.Type {
	case queue.JobTypeEmotionAnalysis:
		result, err := a.analyzer.Analyze(ctx, job.Text)
		if err != nil {
			return a.handleJobError(ctx, msg, job, err)
		}
		a.logger.Info("emotion_analysis_completed",
			zap.String("job_id", job.ID.String()),
			zap.String("emotion", result.DetectedEmotion),
			zap.String("sentiment", result.Sentiment),
			zap.Int("task_count", result.TaskCount),
		)
		if err := msg.Ack(); err != nil {
			return fmt.Errorf("failed to ack job: %w", err)
		}
		return nil

	default:
		if nackErr := msg.Nack(false); nackErr != nil { // Unknown job type, send to DLQ
			a.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("unknown job type: %s", job.Type)
	}
}

// handleJobError retries with backoff, honouring AI rate-limit and quota
// delays, and dead-letters the job once its retry budget is spent.
func (a *EmotionAnalyzer) handleJobError(ctx context.Context, msg queue.MessageInterface, job *queue.Job, err error) error {
	fields := []zap.Field{
		zap.String("job_id", job.ID.String()),
		zap.Int("retry_count", job.RetryCount),
		zap.Int("max_retries", job.MaxRetries),
		zap.String("error", logger.SanitizeError(err)),
	}

	if errors.Is(err, planner.ErrInvalidInput) || !job.CanRetry() {
		a.logger.Error("job_dead_lettered", fields...)
		if nackErr := msg.Nack(false); nackErr != nil {
			a.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed permanently: %w", err)
	}

	delay := ai.GetRetryDelay(err, job.RetryCount)
	fields = append(fields,
		zap.Duration("retry_delay", delay),
		zap.Bool("rate_limited", ai.IsRateLimitError(err)),
		zap.Bool("quota_exhausted", ai.IsQuotaError(err)),
	)

	if a.jobQueue == nil {
		a.logger.Warn("job_requeued_without_delay", fields...)
		if nackErr := msg.Nack(true); nackErr != nil {
			a.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("job failed (will retry): %w", err)
	}

	retry := delayedCopy(job, a.now().Add(delay))
	if enqueueErr := a.jobQueue.Enqueue(ctx, retry); enqueueErr != nil {
		a.logger.Error("job_reenqueue_failed", append(fields, zap.Error(enqueueErr))...)
		if nackErr := msg.Nack(true); nackErr != nil {
			a.logger.Warn("nack_failed", zap.Error(nackErr))
		}
		return fmt.Errorf("failed to re-enqueue job: %w", enqueueErr)
	}
	if ackErr := msg.Ack(); ackErr != nil {
		return fmt.Errorf("failed to ack re-enqueued job: %w", ackErr)
	}

	a.logger.Warn("job_retry_scheduled", fields...)
	return nil
}

func delayedCopy(job *queue.Job, notBefore time.Time) *queue.Job {
	retry := *job
	retry.NotBefore = &notBefore
	retry.IncrementRetry()
	return &retry
}
