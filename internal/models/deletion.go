package models

import (
	"strings"
	"time"
)

// DateRange is an inclusive range with Start <= End.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// NewDateRange orders a and b so the earlier one is Start.
func NewDateRange(a, b time.Time) DateRange {
	if b.Before(a) {
		a, b = b, a
	}
	return DateRange{Start: a, End: b}
}

// DeletionItem names one task to delete, optionally bound to a day.
type DeletionItem struct {
	Title string  `json:"title" validate:"notblank,max=500"`
	Date  *string `json:"date,omitempty"`
}

// DeleteRequest is either an explicit list of items or a free-text command.
type DeleteRequest struct {
	Tasks []DeletionItem `json:"tasks,omitempty" validate:"omitempty,max=100,dive"`
	Text  string         `json:"text,omitempty" validate:"max=2000"`
}

// IsExplicit reports whether the request carries an explicit item list.
func (r DeleteRequest) IsExplicit() bool {
	return len(r.Tasks) > 0
}

// DeletionPredicate is the resolved form of a delete command. It is used
// once to drive a bulk delete and never persisted.
type DeletionPredicate struct {
	ExplicitItems []DeletionItem `json:"explicitItems,omitempty"`
	DateRange     *DateRange     `json:"dateRange,omitempty"`
	TitleFilter   *string        `json:"titleFilter,omitempty"`
}

// Filter converts a free-text predicate into a storage filter.
func (p DeletionPredicate) Filter() TaskFilter {
	var f TaskFilter
	if p.DateRange != nil {
		from, to := p.DateRange.Start, p.DateRange.End
		f.From, f.To = &from, &to
	}
	if p.TitleFilter != nil {
		f.TitleContains = *p.TitleFilter
	}
	return f
}

// DeletionItemResult summarises the outcome for one explicit item.
type DeletionItemResult struct {
	Title   string `json:"title"`
	Date    string `json:"date,omitempty"`
	Deleted int64  `json:"deleted"`
	Summary string `json:"summary"`
}

// DeletionResult is returned by a delete command.
type DeletionResult struct {
	Message   string               `json:"message"`
	Deleted   int64                `json:"deleted"`
	Items     []DeletionItemResult `json:"items,omitempty"`
	Predicate DeletionPredicate    `json:"predicate"`
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
