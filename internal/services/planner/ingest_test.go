package planner

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/queue"
	"github.com/benvon/smart-planner/internal/services/ai"
)

func TestIngestionService_Plan_AnchorsToExplicitDay(t *testing.T) {
	t.Parallel()

	store := &memoryTaskStore{}
	planner := &fakePlanner{resp: &ai.PlanResponse{
		Tasks: []models.TaskDraft{
			{Title: "Project work", Start: "12", End: "3am"},
			{Title: "Meeting", Start: "10", End: "11"},
		},
		Sentiment:       ai.SentimentNegative,
		DetectedEmotion: ai.EmotionBalanced,
		Message:         ai.MessageBalanced,
	}}
	svc := NewIngestionService(planner, store, newTestResolver(t), nil, WithIngestionClock(fixedClock))

	text := "On Wednesday 12th Nov, schedule project work 12-3am, meeting 10-11"
	res, err := svc.Plan(context.Background(), text)
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}

	if len(res.Tasks) != 2 || store.count() != 2 {
		t.Fatalf("got %d returned / %d stored tasks, want 2", len(res.Tasks), store.count())
	}
	for _, task := range res.Tasks {
		if y, m, d := task.Start.Date(); y != 2024 || m != time.November || d != 12 {
			t.Errorf("%s starts on %v, want 2024-11-12", task.Title, task.Start)
		}
		if task.Emotion == nil || *task.Emotion != ai.EmotionBalanced {
			t.Errorf("%s emotion = %v, want %s", task.Title, task.Emotion, ai.EmotionBalanced)
		}
	}

	meeting := res.Tasks[1]
	if !meeting.Start.Equal(at(12, 10, 0)) || !meeting.End.Equal(at(12, 11, 0)) {
		t.Errorf("meeting = %v - %v, want 10:00 - 11:00 on Nov 12", meeting.Start, meeting.End)
	}
	if !meeting.End.After(meeting.Start) {
		t.Error("meeting end is not after start")
	}
	if y, m, d := res.ReferenceDate.Date(); y != 2024 || m != time.November || d != 12 {
		t.Errorf("ReferenceDate = %v, want Nov 12", res.ReferenceDate)
	}
	if res.Message != ai.MessageBalanced || res.DetectedEmotion != ai.EmotionBalanced {
		t.Errorf("metadata not passed through: %+v", res)
	}
	if len(planner.calls) != 1 || planner.calls[0] != text {
		t.Errorf("planner calls = %v", planner.calls)
	}
}

func TestIngestionService_Plan_Defaults(t *testing.T) {
	t.Parallel()

	store := &memoryTaskStore{}
	planner := &fakePlanner{resp: &ai.PlanResponse{
		Tasks: []models.TaskDraft{
			{Title: "  ", Start: "whenever", End: ""},
			{Title: "Call mum", Start: "2pm"},
		},
		Suggestions: []models.TaskDraft{
			{Title: "Take a short walk", Start: "3:30pm", End: "3:45pm"},
		},
	}}
	svc := NewIngestionService(planner, store, newTestResolver(t), nil, WithIngestionClock(fixedClock))

	res, err := svc.Plan(context.Background(), "call mum tomorrow at 2pm")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if len(res.Tasks) != 3 {
		t.Fatalf("len(Tasks) = %d, want 3", len(res.Tasks))
	}

	untitled := res.Tasks[0]
	if untitled.Title != "Task" {
		t.Errorf("empty title = %q, want Task", untitled.Title)
	}
	if !untitled.Start.Equal(res.ReferenceDate) {
		t.Errorf("unreadable start = %v, want reference date %v", untitled.Start, res.ReferenceDate)
	}
	if got := untitled.End.Sub(untitled.Start); got != models.DefaultTaskDuration {
		t.Errorf("default duration = %v, want %v", got, models.DefaultTaskDuration)
	}
	if untitled.Emotion != nil {
		t.Errorf("emotion = %v, want nil when none detected", *untitled.Emotion)
	}

	call := res.Tasks[1]
	if !call.Start.Equal(at(12, 14, 0)) || !call.End.Equal(at(12, 14, 30)) {
		t.Errorf("call = %v - %v, want 14:00 - 14:30 on Nov 12", call.Start, call.End)
	}

	walk := res.Tasks[2]
	if walk.Notes == nil {
		t.Error("suggestion stored without notes")
	}
	if !walk.Start.Equal(at(12, 15, 30)) || !walk.End.Equal(at(12, 15, 45)) {
		t.Errorf("walk = %v - %v", walk.Start, walk.End)
	}
}

func TestIngestionService_Plan_NoDateUsesNow(t *testing.T) {
	t.Parallel()

	planner := &fakePlanner{resp: &ai.PlanResponse{
		Tasks: []models.TaskDraft{{Title: "Laundry", Start: "6pm"}},
	}}
	svc := NewIngestionService(planner, &memoryTaskStore{}, newTestResolver(t), nil, WithIngestionClock(fixedClock))

	res, err := svc.Plan(context.Background(), "do the laundry")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !res.ReferenceDate.Equal(monday) {
		t.Errorf("ReferenceDate = %v, want %v", res.ReferenceDate, monday)
	}
	if !res.Tasks[0].Start.Equal(at(11, 18, 0)) {
		t.Errorf("Start = %v, want 18:00 on Nov 11", res.Tasks[0].Start)
	}
}

func TestIngestionService_Plan_ClockTimeInTextKeepsReferenceClock(t *testing.T) {
	t.Parallel()

	planner := &fakePlanner{resp: &ai.PlanResponse{
		Tasks: []models.TaskDraft{{Title: "Meeting", Start: "later"}},
	}}
	svc := NewIngestionService(planner, &memoryTaskStore{}, newTestResolver(t), nil, WithIngestionClock(fixedClock))

	res, err := svc.Plan(context.Background(), "meeting 10-11")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if !res.ReferenceDate.Equal(monday) {
		t.Errorf("ReferenceDate = %v, want %v", res.ReferenceDate, monday)
	}
	if !res.Tasks[0].Start.Equal(monday) {
		t.Errorf("Start = %v, want %v", res.Tasks[0].Start, monday)
	}
}

func TestIngestionService_Plan_PlannerFailurePersistsNothing(t *testing.T) {
	t.Parallel()

	store := &memoryTaskStore{}
	jobs := &fakeEnqueuer{}
	svc := NewIngestionService(&fakePlanner{err: errUpstream}, store, newTestResolver(t), nil,
		WithIngestionClock(fixedClock), WithJobQueue(jobs))

	_, err := svc.Plan(context.Background(), "meeting tomorrow at 10")
	if !errors.Is(err, ErrPlanningFailed) || !errors.Is(err, errUpstream) {
		t.Fatalf("Plan() error = %v, want ErrPlanningFailed wrapping upstream", err)
	}
	if store.count() != 0 {
		t.Errorf("stored %d tasks after failure", store.count())
	}
	if len(jobs.jobs) != 0 {
		t.Errorf("enqueued %d jobs after failure", len(jobs.jobs))
	}
}

func TestIngestionService_Plan_StoreFailure(t *testing.T) {
	t.Parallel()

	store := &memoryTaskStore{createErr: errors.New("tx aborted")}
	planner := &fakePlanner{resp: &ai.PlanResponse{Tasks: []models.TaskDraft{{Title: "A"}}}}
	svc := NewIngestionService(planner, store, newTestResolver(t), nil, WithIngestionClock(fixedClock))

	if _, err := svc.Plan(context.Background(), "a"); err == nil {
		t.Fatal("expected error when the batch cannot be saved")
	}
}

func TestIngestionService_Plan_EmptyText(t *testing.T) {
	t.Parallel()

	planner := &fakePlanner{}
	svc := NewIngestionService(planner, &memoryTaskStore{}, newTestResolver(t), nil)

	if _, err := svc.Plan(context.Background(), "  \n"); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Plan() error = %v, want ErrInvalidInput", err)
	}
	if len(planner.calls) != 0 {
		t.Error("planner called for empty text")
	}
}

func TestIngestionService_Plan_EnqueuesAnalysis(t *testing.T) {
	t.Parallel()

	jobs := &fakeEnqueuer{}
	planner := &fakePlanner{resp: &ai.PlanResponse{}}
	svc := NewIngestionService(planner, &memoryTaskStore{}, newTestResolver(t), nil,
		WithIngestionClock(fixedClock), WithJobQueue(jobs))

	res, err := svc.Plan(context.Background(), "nothing much today")
	if err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if res.Tasks == nil {
		t.Error("Tasks is nil, want empty slice")
	}
	if len(jobs.jobs) != 1 {
		t.Fatalf("enqueued %d jobs, want 1", len(jobs.jobs))
	}
	if job := jobs.jobs[0]; job.Type != queue.JobTypeEmotionAnalysis || job.Text != "nothing much today" {
		t.Errorf("job = %+v", job)
	}
}

func TestIngestionService_Plan_EnqueueFailureIsNotFatal(t *testing.T) {
	t.Parallel()

	store := &memoryTaskStore{}
	planner := &fakePlanner{resp: &ai.PlanResponse{Tasks: []models.TaskDraft{{Title: "Gym", Start: "7am"}}}}
	svc := NewIngestionService(planner, store, newTestResolver(t), nil,
		WithIngestionClock(fixedClock), WithJobQueue(&fakeEnqueuer{err: errUpstream}))

	if _, err := svc.Plan(context.Background(), "gym at 7am"); err != nil {
		t.Fatalf("Plan() error = %v", err)
	}
	if store.count() != 1 {
		t.Errorf("stored %d tasks, want 1", store.count())
	}
}
