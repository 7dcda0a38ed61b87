// Package dateparse resolves free-text date expressions, delete commands and
// AI-supplied clock times into absolute instants.
package dateparse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/benvon/smart-planner/internal/models"
	"github.com/olebedev/when"
)

// Resolver turns natural-language date text into absolute times in a fixed location.
// It holds no mutable state and is safe for concurrent use.
type Resolver struct {
	location *time.Location
	natural  *when.Parser
	dates    *when.Parser
	clock    *when.Parser
}

// NewResolver creates a resolver for the given IANA timezone, e.g. "Europe/London".
// An empty name or "Local" uses the process local zone.
func NewResolver(timezone string) (*Resolver, error) {
	loc := time.Local
	if timezone != "" && timezone != "Local" {
		var err error
		loc, err = time.LoadLocation(timezone)
		if err != nil {
			return nil, fmt.Errorf("invalid timezone %q: %w", timezone, err)
		}
	}
	return NewResolverInLocation(loc), nil
}

// NewResolverInLocation creates a resolver bound to loc.
func NewResolverInLocation(loc *time.Location) *Resolver {
	if loc == nil {
		loc = time.Local
	}
	return &Resolver{
		location: loc,
		natural:  newNaturalParser(),
		dates:    newDateParser(),
		clock:    newClockParser(),
	}
}

// Location returns the zone used for day boundaries.
func (r *Resolver) Location() *time.Location {
	return r.location
}

// StartOfDay returns local midnight of the day containing t.
func (r *Resolver) StartOfDay(t time.Time) time.Time {
	t = t.In(r.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, r.location)
}

// EndOfDay returns 23:59:59.999 of the day containing t.
func (r *Resolver) EndOfDay(t time.Time) time.Time {
	t = t.In(r.location)
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, int(999*time.Millisecond), r.location)
}

// DayRange bounds the calendar day containing t.
func (r *Resolver) DayRange(t time.Time) models.DateRange {
	return models.DateRange{Start: r.StartOfDay(t), End: r.EndOfDay(t)}
}

// ResolveSingleDate finds a date in text. Strategies run in order of
// decreasing precision and the first match wins: natural-language parsing,
// the "12th Nov 2024" pattern, then a bare weekday name. A false result
// means no date was found.
func (r *Resolver) ResolveSingleDate(text string, now time.Time) (time.Time, bool) {
	now = now.In(r.location)
	if t, ok := r.parseNatural(text, now); ok {
		return t, true
	}
	if t, ok := ParseDayMonth(text, now); ok {
		return t, true
	}
	if t, ok := NextWeekday(text, now); ok {
		return t, true
	}
	return time.Time{}, false
}

var (
	fromToPattern     = regexp.MustCompile(`(?i)\bfrom\s+(.+?)\s+to\s+(.+)$`)
	betweenAndPattern = regexp.MustCompile(`(?i)\bbetween\s+(.+?)\s+and\s+(.+)$`)
)

// ResolveDateRange recognises "from A to B" and "between A and B". Both
// halves must resolve on their own; the result is ordered so Start <= End.
func (r *Resolver) ResolveDateRange(text string, now time.Time) (models.DateRange, bool) {
	text = strings.TrimSpace(text)
	for _, re := range []*regexp.Regexp{fromToPattern, betweenAndPattern} {
		m := re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		a, okA := r.ResolveSingleDate(m[1], now)
		b, okB := r.ResolveSingleDate(m[2], now)
		if !okA || !okB {
			return models.DateRange{}, false
		}
		return models.NewDateRange(a, b), true
	}
	return models.DateRange{}, false
}

// ReferenceDate picks the day a planning request is about: an explicit
// "<day> <Month>" wins, then any natural-language date, else now. Clock
// times in the text are ignored; a detected date comes back as midnight.
func (r *Resolver) ReferenceDate(text string, now time.Time) time.Time {
	now = now.In(r.location)
	if t, ok := ParseDayMonth(text, now); ok {
		return t
	}
	if t, ok := r.parseWith(r.dates, text, now); ok {
		return r.StartOfDay(t)
	}
	return now
}
