package queue

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// JobType represents the type of job
type JobType string

const (
	// JobTypeEmotionAnalysis analyses the text of a planning request and
	// stores an emotion log entry.
	JobTypeEmotionAnalysis JobType = "emotion_analysis"
)

// DefaultMaxRetries is the retry budget given to new jobs.
const DefaultMaxRetries = 3

// ErrEmptyJobText is returned when a job carries no text to analyse.
var ErrEmptyJobText = errors.New("job text is empty")

// Job represents a job in the queue
type Job struct {
	ID         uuid.UUID      `json:"id"`
	Type       JobType        `json:"type"`
	Text       string         `json:"text"`
	NotBefore  *time.Time     `json:"not_before,omitempty"` // nil = immediate
	NotAfter   *time.Time     `json:"not_after,omitempty"`  // nil = no expiration
	Metadata   map[string]any `json:"metadata,omitempty"`
	CreatedAt  time.Time      `json:"created_at"`
	RetryCount int            `json:"retry_count"`
	MaxRetries int            `json:"max_retries"`
}

// NewJob creates a new job
func NewJob(jobType JobType, text string) *Job {
	return &Job{
		ID:         uuid.New(),
		Type:       jobType,
		Text:       text,
		Metadata:   make(map[string]any),
		CreatedAt:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// NewEmotionAnalysisJob creates a job that analyses text in the background.
func NewEmotionAnalysisJob(text string) (*Job, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyJobText
	}
	return NewJob(JobTypeEmotionAnalysis, text), nil
}

// ShouldProcess checks if the job should be processed now
func (j *Job) ShouldProcess() bool {
	now := time.Now()
	if j.NotBefore != nil && now.Before(*j.NotBefore) {
		return false
	}
	if j.NotAfter != nil && now.After(*j.NotAfter) {
		return false
	}
	return true
}

// IsExpired checks if the job has expired
func (j *Job) IsExpired() bool {
	if j.NotAfter == nil {
		return false
	}
	return time.Now().After(*j.NotAfter)
}

// CanRetry checks if the job can be retried
func (j *Job) CanRetry() bool {
	return j.RetryCount < j.MaxRetries
}

// IncrementRetry increments the retry count
func (j *Job) IncrementRetry() {
	j.RetryCount++
}
