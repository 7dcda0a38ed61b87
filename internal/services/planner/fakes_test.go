package planner

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/dateparse"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/ai"
	"github.com/google/uuid"
)

// monday is the fixed "now" used across the package tests.
var monday = time.Date(2024, 11, 11, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time { return monday }

func newTestResolver(t *testing.T) *dateparse.Resolver {
	t.Helper()
	r, err := dateparse.NewResolver("UTC")
	if err != nil {
		t.Fatalf("NewResolver() error = %v", err)
	}
	return r
}

func at(day, hour, minute int) time.Time {
	return time.Date(2024, time.November, day, hour, minute, 0, 0, time.UTC)
}

// memoryTaskStore keeps tasks in a slice and evaluates filters in Go.
type memoryTaskStore struct {
	mu        sync.Mutex
	tasks     []models.Task
	createErr error
	deleteErr error
}

func (m *memoryTaskStore) seed(title string, start time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = append(m.tasks, models.Task{
		ID:    uuid.New(),
		Title: title,
		Start: start,
		End:   start.Add(models.DefaultTaskDuration),
	})
}

func (m *memoryTaskStore) CreateBatch(_ context.Context, tasks []*models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createErr != nil {
		return m.createErr
	}
	for _, task := range tasks {
		task.ID = uuid.New()
		task.CreatedAt = monday
		m.tasks = append(m.tasks, *task)
	}
	return nil
}

func (m *memoryTaskStore) DeleteMatching(_ context.Context, filter models.TaskFilter) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return 0, m.deleteErr
	}
	kept := m.tasks[:0]
	var n int64
	for _, task := range m.tasks {
		if filter.Matches(task) {
			n++
			continue
		}
		kept = append(kept, task)
	}
	m.tasks = kept
	return n, nil
}

func (m *memoryTaskStore) titles() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.tasks))
	for _, task := range m.tasks {
		out = append(out, task.Title)
	}
	return out
}

func (m *memoryTaskStore) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tasks)
}

type fakePlanner struct {
	mu    sync.Mutex
	resp  *ai.PlanResponse
	err   error
	calls []string
}

func (f *fakePlanner) Plan(_ context.Context, text string) (*ai.PlanResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, text)
	if f.err != nil {
		return nil, f.err
	}
	return f.resp, nil
}

type fakeLogStore struct {
	mu      sync.Mutex
	entries []*models.EmotionLogEntry
	err     error
}

func (f *fakeLogStore) Create(_ context.Context, entry *models.EmotionLogEntry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	entry.ID = uuid.New()
	entry.CreatedAt = monday
	f.entries = append(f.entries, entry)
	return nil
}

type fakeEnqueuer struct {
	mu   sync.Mutex
	jobs []*queue.Job
	err  error
}

func (f *fakeEnqueuer) Enqueue(_ context.Context, job *queue.Job) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.jobs = append(f.jobs, job)
	return nil
}

var errUpstream = errors.New("upstream unavailable")
