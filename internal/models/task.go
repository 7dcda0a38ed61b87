package models

import (
	"time"

	"github.com/google/uuid"
)

// DefaultTaskDuration is applied when a draft has no usable end time.
const DefaultTaskDuration = 30 * time.Minute

// Task is a scheduled calendar entry.
type Task struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Emotion   *string   `json:"emotion,omitempty"`
	Notes     *string   `json:"notes,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// TaskUpdate carries a partial update. Nil fields are left untouched.
type TaskUpdate struct {
	Title   *string    `json:"title,omitempty" validate:"omitempty,notblank,max=500"`
	Start   *time.Time `json:"start,omitempty"`
	End     *time.Time `json:"end,omitempty"`
	Emotion *string    `json:"emotion,omitempty"`
	Notes   *string    `json:"notes,omitempty"`
}

// IsEmpty reports whether the update changes nothing.
func (u TaskUpdate) IsEmpty() bool {
	return u.Title == nil && u.Start == nil && u.End == nil && u.Emotion == nil && u.Notes == nil
}

// Apply copies the set fields of u onto t.
func (u TaskUpdate) Apply(t *Task) {
	if u.Title != nil {
		t.Title = *u.Title
	}
	if u.Start != nil {
		t.Start = *u.Start
	}
	if u.End != nil {
		t.End = *u.End
	}
	if u.Emotion != nil {
		t.Emotion = u.Emotion
	}
	if u.Notes != nil {
		t.Notes = u.Notes
	}
}

// TaskFilter is a storage-ready predicate for bulk deletes.
// An empty TitleContains matches every title; nil bounds are open.
type TaskFilter struct {
	TitleContains string     `json:"titleContains,omitempty"`
	From          *time.Time `json:"from,omitempty"`
	To            *time.Time `json:"to,omitempty"`
}

// Matches reports whether t satisfies the filter. Storage backends that
// cannot push the predicate down use it directly.
func (f TaskFilter) Matches(t Task) bool {
	if f.TitleContains != "" && !containsFold(t.Title, f.TitleContains) {
		return false
	}
	if f.From != nil && t.Start.Before(*f.From) {
		return false
	}
	if f.To != nil && t.Start.After(*f.To) {
		return false
	}
	return true
}

// TaskInput is the body of a direct task create.
type TaskInput struct {
	Title   string     `json:"title" validate:"notblank,max=500"`
	Start   *time.Time `json:"start" validate:"required"`
	End     *time.Time `json:"end" validate:"required"`
	Emotion *string    `json:"emotion,omitempty" validate:"omitempty,max=100"`
	Notes   *string    `json:"notes,omitempty" validate:"omitempty,max=5000"`
}

// Task converts the input into an unsaved task.
func (in TaskInput) Task() *Task {
	t := &Task{Title: in.Title, Emotion: in.Emotion, Notes: in.Notes}
	if in.Start != nil {
		t.Start = *in.Start
	}
	if in.End != nil {
		t.End = *in.End
	}
	return t
}
