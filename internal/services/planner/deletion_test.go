package planner

import (
	"context"
	"errors"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/benvon/smart-planner/internal/models"
)

func newDeletionFixture(t *testing.T) (*DeletionService, *memoryTaskStore) {
	t.Helper()
	store := &memoryTaskStore{}
	store.seed("Yoga class", at(12, 7, 0))
	store.seed("Team standup", at(12, 10, 0))
	store.seed("Yoga class", at(13, 7, 0))
	store.seed("Dentist", at(15, 16, 0))
	store.seed("Budget review", at(18, 9, 0))
	svc := NewDeletionService(store, newTestResolver(t), nil, WithDeletionClock(fixedClock))
	return svc, store
}

func TestDeletionService_DeleteByText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name        string
		text        string
		wantDeleted int64
		wantLeft    []string
		wantMessage string
	}{
		{
			name:        "single relative day",
			text:        "delete all tasks tomorrow",
			wantDeleted: 2,
			wantLeft:    []string{"Yoga class", "Dentist", "Budget review"},
			wantMessage: "Deleted 2 task(s) on 2024-11-12.",
		},
		{
			name:        "range in order",
			text:        "clear everything from Wednesday to Friday",
			wantDeleted: 2,
			wantLeft:    []string{"Yoga class", "Team standup", "Budget review"},
			wantMessage: "Deleted 2 task(s) from 2024-11-13 to 2024-11-15.",
		},
		{
			name:        "range reversed",
			text:        "delete tasks between Friday and Tuesday",
			wantDeleted: 4,
			wantLeft:    []string{"Budget review"},
			wantMessage: "Deleted 4 task(s) from 2024-11-12 to 2024-11-15.",
		},
		{
			name:        "quoted title on a day",
			text:        `remove "yoga" on the 13th November`,
			wantDeleted: 1,
			wantLeft:    []string{"Yoga class", "Team standup", "Dentist", "Budget review"},
			wantMessage: `Deleted 1 task(s) matching "yoga" on 2024-11-13.`,
		},
		{
			name:        "nothing matches",
			text:        "delete everything on Sunday",
			wantDeleted: 0,
			wantLeft:    []string{"Yoga class", "Team standup", "Yoga class", "Dentist", "Budget review"},
			wantMessage: "Deleted 0 task(s) on 2024-11-17.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			svc, store := newDeletionFixture(t)

			res, err := svc.Delete(context.Background(), models.DeleteRequest{Text: tt.text})
			if err != nil {
				t.Fatalf("Delete(%q) error = %v", tt.text, err)
			}
			if res.Deleted != tt.wantDeleted {
				t.Errorf("Deleted = %d, want %d", res.Deleted, tt.wantDeleted)
			}
			if res.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", res.Message, tt.wantMessage)
			}
			if got := store.titles(); !slices.Equal(got, tt.wantLeft) {
				t.Errorf("remaining = %v, want %v", got, tt.wantLeft)
			}
			if rng := res.Predicate.DateRange; rng == nil || rng.End.Before(rng.Start) {
				t.Errorf("predicate range = %+v, want ordered range", rng)
			}
		})
	}
}

func TestDeletionService_DeleteByText_TitleMatchesStoredTitle(t *testing.T) {
	t.Parallel()

	type seeded struct {
		title string
		start time.Time
	}
	tests := []struct {
		name       string
		seed       []seeded
		text       string
		wantFilter string
		wantLeft   []string
	}{
		{
			name:       "inner punctuation kept",
			seed:       []seeded{{"Follow-up: budget review", at(15, 9, 0)}, {"Budget review", at(15, 11, 0)}},
			text:       "delete follow-up: budget review on friday",
			wantFilter: "follow-up: budget review",
			wantLeft:   []string{"Budget review"},
		},
		{
			name:       "abbreviation and apostrophe",
			seed:       []seeded{{"Dr. Smith's call", at(15, 14, 0)}, {"Dentist", at(15, 16, 0)}},
			text:       "delete Dr. Smith's call on friday",
			wantFilter: "dr. smith's call",
			wantLeft:   []string{"Dentist"},
		},
		{
			name:       "day of month",
			seed:       []seeded{{"Team sync", at(12, 10, 0)}, {"Yoga class", at(12, 7, 0)}},
			text:       "delete team sync on 12th of november 2024",
			wantFilter: "team sync",
			wantLeft:   []string{"Yoga class"},
		},
		{
			name:     "month before day",
			seed:     []seeded{{"Dentist", at(12, 16, 0)}, {"Dentist", at(15, 16, 0)}},
			text:     "delete dentist on November 12",
			wantLeft: []string{"Dentist"},
		},
		{
			name:       "slash date",
			seed:       []seeded{{"Dentist check", at(12, 16, 0)}, {"Dentist check", at(13, 16, 0)}},
			text:       "delete dentist check on 12/11/2024",
			wantFilter: "dentist check",
			wantLeft:   []string{"Dentist check"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			store := &memoryTaskStore{}
			for _, task := range tt.seed {
				store.seed(task.title, task.start)
			}
			svc := NewDeletionService(store, newTestResolver(t), nil, WithDeletionClock(fixedClock))

			res, err := svc.Delete(context.Background(), models.DeleteRequest{Text: tt.text})
			if err != nil {
				t.Fatalf("Delete(%q) error = %v", tt.text, err)
			}
			var filter string
			if res.Predicate.TitleFilter != nil {
				filter = *res.Predicate.TitleFilter
			}
			if filter != tt.wantFilter {
				t.Errorf("TitleFilter = %q, want %q", filter, tt.wantFilter)
			}
			if res.Deleted != 1 {
				t.Errorf("Deleted = %d, want 1", res.Deleted)
			}
			if got := store.titles(); !slices.Equal(got, tt.wantLeft) {
				t.Errorf("remaining = %v, want %v", got, tt.wantLeft)
			}
		})
	}
}

func TestDeletionService_RepeatedCommandIsIdempotent(t *testing.T) {
	t.Parallel()
	svc, store := newDeletionFixture(t)
	req := models.DeleteRequest{Text: "delete all tasks tomorrow"}

	first, err := svc.Delete(context.Background(), req)
	if err != nil {
		t.Fatalf("first Delete() error = %v", err)
	}
	before := store.count()

	second, err := svc.Delete(context.Background(), req)
	if err != nil {
		t.Fatalf("second Delete() error = %v", err)
	}
	if first.Deleted == 0 {
		t.Fatal("first delete removed nothing; fixture is wrong")
	}
	if second.Deleted != 0 {
		t.Errorf("second Deleted = %d, want 0", second.Deleted)
	}
	if store.count() != before {
		t.Errorf("store changed on repeat: %d -> %d", before, store.count())
	}
}

func TestDeletionService_NoDate(t *testing.T) {
	t.Parallel()
	svc, store := newDeletionFixture(t)

	_, err := svc.Delete(context.Background(), models.DeleteRequest{Text: "delete the yoga thing"})
	if !errors.Is(err, ErrNoDateDetected) {
		t.Fatalf("Delete() error = %v, want ErrNoDateDetected", err)
	}
	if store.count() != 5 {
		t.Errorf("store count = %d, want 5", store.count())
	}
}

func TestDeletionService_EmptyRequest(t *testing.T) {
	t.Parallel()
	svc, _ := newDeletionFixture(t)

	_, err := svc.Delete(context.Background(), models.DeleteRequest{Text: "   "})
	if !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Delete() error = %v, want ErrInvalidInput", err)
	}
}

func TestDeletionService_DeleteExplicit(t *testing.T) {
	t.Parallel()
	svc, store := newDeletionFixture(t)

	iso := "2024-11-12"
	natural := "friday"
	garbled := "someday soon"
	req := models.DeleteRequest{
		Tasks: []models.DeletionItem{
			{Title: "yoga", Date: &iso},
			{Title: "DENTIST", Date: &natural},
			{Title: "budget"},
			{Title: "standup", Date: &garbled},
			{Title: "piano lesson"},
		},
		Text: "ignored when items are given",
	}

	res, err := svc.Delete(context.Background(), req)
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if res.Deleted != 3 {
		t.Errorf("Deleted = %d, want 3", res.Deleted)
	}
	if res.Message != "Deleted 3 task(s)." {
		t.Errorf("Message = %q", res.Message)
	}
	if got, want := store.titles(), []string{"Team standup", "Yoga class"}; !slices.Equal(got, want) {
		t.Errorf("remaining = %v, want %v", got, want)
	}
	if len(res.Items) != 5 {
		t.Fatalf("len(Items) = %d, want 5", len(res.Items))
	}

	wantCounts := []int64{1, 1, 1, 0, 0}
	for i, item := range res.Items {
		if item.Deleted != wantCounts[i] {
			t.Errorf("Items[%d].Deleted = %d, want %d", i, item.Deleted, wantCounts[i])
		}
	}
	if res.Items[0].Date != "2024-11-12" || res.Items[1].Date != "2024-11-15" {
		t.Errorf("item dates = %q, %q", res.Items[0].Date, res.Items[1].Date)
	}
	if !strings.HasPrefix(res.Items[3].Summary, "Skipped") {
		t.Errorf("garbled date summary = %q, want skip", res.Items[3].Summary)
	}
	if res.Items[4].Summary != `Deleted 0 task(s) matching "piano lesson"` {
		t.Errorf("no-match summary = %q", res.Items[4].Summary)
	}
}

func TestDeletionService_BlankItemDeletesNothing(t *testing.T) {
	t.Parallel()
	svc, store := newDeletionFixture(t)

	req := models.DeleteRequest{
		Tasks: []models.DeletionItem{
			{Title: "yoga"},
			{Title: "   "},
			{Title: "dentist"},
		},
	}
	if _, err := svc.Delete(context.Background(), req); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("Delete() error = %v, want ErrInvalidInput", err)
	}
	if store.count() != 5 {
		t.Errorf("stored %d tasks, want all 5 kept", store.count())
	}
}

func TestDeletionService_StoreError(t *testing.T) {
	t.Parallel()
	store := &memoryTaskStore{deleteErr: errUpstream}
	svc := NewDeletionService(store, newTestResolver(t), nil, WithDeletionClock(fixedClock))

	_, err := svc.Delete(context.Background(), models.DeleteRequest{Text: "delete everything today"})
	if !errors.Is(err, errUpstream) {
		t.Fatalf("Delete() error = %v, want wrapped store error", err)
	}
}

func TestDeletionService_Preview(t *testing.T) {
	t.Parallel()
	svc, store := newDeletionFixture(t)

	pred, err := svc.Preview("delete 'budget review' next monday")
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if pred.TitleFilter == nil || *pred.TitleFilter != "budget review" {
		t.Errorf("TitleFilter = %v, want budget review", pred.TitleFilter)
	}
	if pred.DateRange == nil || !pred.DateRange.Start.Equal(at(18, 0, 0)) {
		t.Errorf("DateRange = %+v, want 2024-11-18", pred.DateRange)
	}
	if store.count() != 5 {
		t.Error("Preview deleted tasks")
	}
}
