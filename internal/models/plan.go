package models

import "time"

// PlanResult is the outcome of a planning request.
type PlanResult struct {
	Tasks           []*Task   `json:"tasks"`
	DetectedEmotion string    `json:"detectedEmotion"`
	Sentiment       string    `json:"sentiment"`
	Score           *float64  `json:"score,omitempty"`
	Message         string    `json:"message"`
	ReferenceDate   time.Time `json:"referenceDate"`
}

// TaskDraft is a task as proposed by the planning service. Start and End
// are free-form time expressions such as "10am" or "14:30".
type TaskDraft struct {
	Title string `json:"title"`
	Start string `json:"start,omitempty"`
	End   string `json:"end,omitempty"`
}

// AnalysisResult pairs the planning service output with the stored log entry.
type AnalysisResult struct {
	Sentiment       string           `json:"sentiment"`
	Score           *float64         `json:"score,omitempty"`
	DetectedEmotion string           `json:"detectedEmotion"`
	TaskCount       int              `json:"taskCount"`
	Tasks           []TaskDraft      `json:"tasks"`
	Suggestions     []TaskDraft      `json:"suggestions"`
	Message         string           `json:"message"`
	Log             *EmotionLogEntry `json:"log"`
}

// TextRequest is the body of plan and analyze calls.
type TextRequest struct {
	Text string `json:"text" validate:"notblank,max=5000"`
}
