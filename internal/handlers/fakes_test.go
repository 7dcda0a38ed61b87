package handlers

import (
	"context"
	"sync"
	"time"

	"github.com/benvon/smart-planner/internal/database"
	"github.com/benvon/smart-planner/internal/models"
	"github.com/google/uuid"
)

type fakePlanner struct {
	result  *models.PlanResult
	err     error
	gotText string
}

func (f *fakePlanner) Plan(ctx context.Context, text string) (*models.PlanResult, error) {
	f.gotText = text
	return f.result, f.err
}

type fakeAnalyzer struct {
	result *models.AnalysisResult
	err    error
}

func (f *fakeAnalyzer) Analyze(ctx context.Context, text string) (*models.AnalysisResult, error) {
	return f.result, f.err
}

type fakeDeleter struct {
	result *models.DeletionResult
	err    error
	got    models.DeleteRequest
}

func (f *fakeDeleter) Delete(ctx context.Context, req models.DeleteRequest) (*models.DeletionResult, error) {
	f.got = req
	return f.result, f.err
}

type fakeLogLister struct {
	entries  []*models.EmotionLogEntry
	err      error
	gotLimit int
}

func (f *fakeLogLister) ListRecent(ctx context.Context, limit int) ([]*models.EmotionLogEntry, error) {
	f.gotLimit = limit
	return f.entries, f.err
}

// memoryTasks is an in-memory TaskStore.
type memoryTasks struct {
	mu    sync.Mutex
	tasks map[uuid.UUID]*models.Task
	err   error
}

func newMemoryTasks(seed ...*models.Task) *memoryTasks {
	m := &memoryTasks{tasks: make(map[uuid.UUID]*models.Task)}
	for _, t := range seed {
		m.tasks[t.ID] = t
	}
	return m
}

func (m *memoryTasks) Create(ctx context.Context, task *models.Task) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	task.ID = uuid.New()
	task.CreatedAt = time.Now().UTC()
	m.tasks[task.ID] = task
	return nil
}

func (m *memoryTasks) ListByStart(ctx context.Context) ([]*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	var out []*models.Task
	for _, t := range m.tasks {
		out = append(out, t)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j].Start.Before(out[j-1].Start); j-- {
			out[j], out[j-1] = out[j-1], out[j]
		}
	}
	return out, nil
}

func (m *memoryTasks) Update(ctx context.Context, id uuid.UUID, update models.TaskUpdate) (*models.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return nil, database.ErrTaskNotFound
	}
	update.Apply(t)
	return t, nil
}

func (m *memoryTasks) Delete(ctx context.Context, id uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return database.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

func at(day, hour int) time.Time {
	return time.Date(2024, time.November, day, hour, 0, 0, 0, time.UTC)
}
