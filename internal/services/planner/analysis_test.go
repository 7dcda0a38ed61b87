package planner

import (
	"context"
	"errors"
	"testing"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/benvon/smart-planner/internal/services/ai"
)

func TestAnalysisService_Analyze(t *testing.T) {
	t.Parallel()

	score := -0.6
	logs := &fakeLogStore{}
	planner := &fakePlanner{resp: &ai.PlanResponse{
		Tasks:           []models.TaskDraft{{Title: "Report"}, {Title: "Calls"}},
		Sentiment:       ai.SentimentNegative,
		DetectedEmotion: ai.EmotionStressed,
		Score:           &score,
		Message:         ai.MessageHectic,
	}}
	svc := NewAnalysisService(planner, logs, nil)

	res, err := svc.Analyze(context.Background(), "  report and calls, so tired  ")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if len(logs.entries) != 1 {
		t.Fatalf("stored %d log entries, want 1", len(logs.entries))
	}

	entry := logs.entries[0]
	if entry.Text != "report and calls, so tired" {
		t.Errorf("entry text = %q, want trimmed input", entry.Text)
	}
	if entry.Sentiment != ai.SentimentNegative || entry.DetectedEmotion != ai.EmotionStressed {
		t.Errorf("entry = %+v", entry)
	}
	if entry.Score == nil || *entry.Score != score {
		t.Errorf("entry score = %v, want %v", entry.Score, score)
	}
	if res.Log != entry {
		t.Error("result does not reference the stored entry")
	}
	if res.TaskCount != 2 {
		t.Errorf("TaskCount = %d, want 2", res.TaskCount)
	}
	if res.Suggestions == nil {
		t.Error("Suggestions is nil, want empty slice")
	}
	if res.Message != ai.MessageHectic {
		t.Errorf("Message = %q", res.Message)
	}
}

func TestAnalysisService_Analyze_Failures(t *testing.T) {
	t.Parallel()

	t.Run("planner failure", func(t *testing.T) {
		t.Parallel()
		logs := &fakeLogStore{}
		svc := NewAnalysisService(&fakePlanner{err: errUpstream}, logs, nil)

		_, err := svc.Analyze(context.Background(), "hello")
		if !errors.Is(err, ErrAnalysisFailed) || !errors.Is(err, errUpstream) {
			t.Fatalf("Analyze() error = %v, want ErrAnalysisFailed wrapping upstream", err)
		}
		if len(logs.entries) != 0 {
			t.Error("log stored after planner failure")
		}
	})

	t.Run("store failure", func(t *testing.T) {
		t.Parallel()
		svc := NewAnalysisService(&fakePlanner{resp: &ai.PlanResponse{}}, &fakeLogStore{err: errors.New("db down")}, nil)
		_, err := svc.Analyze(context.Background(), "hello")
		if err == nil || errors.Is(err, ErrAnalysisFailed) {
			t.Fatalf("Analyze() error = %v, want plain storage error", err)
		}
	})

	t.Run("empty text", func(t *testing.T) {
		t.Parallel()
		svc := NewAnalysisService(&fakePlanner{}, &fakeLogStore{}, nil)
		if _, err := svc.Analyze(context.Background(), ""); !errors.Is(err, ErrInvalidInput) {
			t.Fatalf("Analyze() error = %v, want ErrInvalidInput", err)
		}
	})
}
