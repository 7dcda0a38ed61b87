package dateparse

import (
	"testing"
	"time"
)

// monday is 2024-11-11, a Monday.
var monday = time.Date(2024, time.November, 11, 9, 30, 0, 0, time.UTC)

func newTestResolver() *Resolver {
	return NewResolverInLocation(time.UTC)
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

func day(year int, month time.Month, d int) time.Time {
	return time.Date(year, month, d, 0, 0, 0, 0, time.UTC)
}

func TestNewResolver(t *testing.T) {
	t.Parallel()

	if _, err := NewResolver("Not/AZone"); err == nil {
		t.Error("Expected error for unknown timezone")
	}
	r, err := NewResolver("UTC")
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if r.Location() != time.UTC {
		t.Errorf("Expected UTC location, got %v", r.Location())
	}
	if r, err := NewResolver(""); err != nil || r.Location() != time.Local {
		t.Errorf("Expected empty timezone to use Local, got %v (err %v)", r, err)
	}
}

func TestResolver_ResolveSingleDate(t *testing.T) {
	t.Parallel()

	r := newTestResolver()

	tests := []struct {
		name    string
		text    string
		wantOK  bool
		wantDay time.Time
	}{
		{name: "weekday two days ahead", text: "on Wednesday", wantOK: true, wantDay: day(2024, time.November, 13)},
		{name: "weekday is today", text: "on Monday", wantOK: true, wantDay: day(2024, time.November, 11)},
		{name: "weekday later in week", text: "delete short meditation from friday", wantOK: true, wantDay: day(2024, time.November, 15)},
		{name: "sunday wraps forward", text: "sunday", wantOK: true, wantDay: day(2024, time.November, 17)},
		{name: "explicit date with year", text: "12th Nov 2023", wantOK: true, wantDay: day(2023, time.November, 12)},
		{name: "explicit date without year", text: "12 Nov", wantOK: true, wantDay: day(2024, time.November, 12)},
		{name: "full month name", text: "clear gym on 3rd of December", wantOK: true, wantDay: day(2024, time.December, 3)},
		{name: "month before day", text: "delete dentist on November 12", wantOK: true, wantDay: day(2024, time.November, 12)},
		{name: "month before day lowercase", text: "delete tasks march 3", wantOK: true, wantDay: day(2024, time.March, 3)},
		{name: "month before day with year", text: "clear review on Nov 12, 2023", wantOK: true, wantDay: day(2023, time.November, 12)},
		{name: "abbreviated month with ordinal", text: "drop standup sept. 3rd", wantOK: true, wantDay: day(2024, time.September, 3)},
		{name: "slash date with year", text: "delete dentist on 12/11/2024", wantOK: true, wantDay: day(2024, time.November, 12)},
		{name: "slash date without year", text: "delete the meeting on 3/12", wantOK: true, wantDay: day(2024, time.December, 3)},
		{name: "slash date out of range", text: "delete the meeting on 31/02/2024", wantOK: false},
		{name: "casual tomorrow", text: "remove standup tomorrow", wantOK: true, wantDay: day(2024, time.November, 12)},
		{name: "weekday inside a word", text: "wednesdays yoga", wantOK: true, wantDay: day(2024, time.November, 13)},
		{name: "no date", text: "delete everything please", wantOK: false},
		{name: "empty", text: "", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := r.ResolveSingleDate(tt.text, monday)
			if ok != tt.wantOK {
				t.Fatalf("ResolveSingleDate(%q) ok = %v, want %v (got %v)", tt.text, ok, tt.wantOK, got)
			}
			if ok && !sameDay(got, tt.wantDay) {
				t.Errorf("ResolveSingleDate(%q) = %v, want day %v", tt.text, got, tt.wantDay.Format("2006-01-02"))
			}
		})
	}
}

func TestResolver_ResolveSingleDate_ForwardDistance(t *testing.T) {
	t.Parallel()

	r := newTestResolver()

	got, ok := r.ResolveSingleDate("on Wednesday", monday)
	if !ok {
		t.Fatal("Expected a match")
	}
	if want := monday.AddDate(0, 0, 2); !got.Equal(want) {
		t.Errorf("Expected %v, got %v", want, got)
	}

	got, ok = r.ResolveSingleDate("on Monday", monday)
	if !ok {
		t.Fatal("Expected a match")
	}
	if !got.Equal(monday) {
		t.Errorf("Expected now itself (%v), got %v", monday, got)
	}
}

// A title containing a weekday name is read as a date. This is a known
// limitation of the heuristics and is kept as is.
func TestResolver_WeekdayInTitleIsReadAsDate(t *testing.T) {
	t.Parallel()

	r := newTestResolver()

	got, ok := r.ResolveSingleDate("delete Friday Night Plans", monday)
	if !ok || !sameDay(got, day(2024, time.November, 15)) {
		t.Errorf("Expected Friday 2024-11-15, got %v (ok=%v)", got, ok)
	}

	hint, ok := ExtractTitleHint("delete Friday Night Plans")
	if !ok || hint != "night plans" {
		t.Errorf("Expected title hint 'night plans', got %q (ok=%v)", hint, ok)
	}
}

func TestResolver_ResolveDateRange(t *testing.T) {
	t.Parallel()

	r := newTestResolver()

	tests := []struct {
		name      string
		text      string
		wantOK    bool
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "between swapped weekdays",
			text:      "between Friday and Wednesday",
			wantOK:    true,
			wantStart: day(2024, time.November, 13),
			wantEnd:   day(2024, time.November, 15),
		},
		{
			name:      "from to explicit dates",
			text:      "remove all tasks from 12 Nov to 14 Nov",
			wantOK:    true,
			wantStart: day(2024, time.November, 12),
			wantEnd:   day(2024, time.November, 14),
		},
		{
			name:      "from to reversed",
			text:      "from 14 Nov to 12 Nov",
			wantOK:    true,
			wantStart: day(2024, time.November, 12),
			wantEnd:   day(2024, time.November, 14),
		},
		{
			name:      "between explicit dates",
			text:      "remove all tasks between 12 Nov and 14 Nov",
			wantOK:    true,
			wantStart: day(2024, time.November, 12),
			wantEnd:   day(2024, time.November, 14),
		},
		{name: "one half unresolvable", text: "between friday and someday", wantOK: false},
		{name: "no range phrasing", text: "delete yoga on friday", wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, ok := r.ResolveDateRange(tt.text, monday)
			if ok != tt.wantOK {
				t.Fatalf("ResolveDateRange(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Start.After(got.End) {
				t.Errorf("Expected start <= end, got %v > %v", got.Start, got.End)
			}
			if !sameDay(got.Start, tt.wantStart) {
				t.Errorf("Expected start %v, got %v", tt.wantStart.Format("2006-01-02"), got.Start)
			}
			if !sameDay(got.End, tt.wantEnd) {
				t.Errorf("Expected end %v, got %v", tt.wantEnd.Format("2006-01-02"), got.End)
			}
		})
	}
}

func TestResolver_DayBounds(t *testing.T) {
	t.Parallel()

	loc := time.FixedZone("UTC+5", 5*3600)
	r := NewResolverInLocation(loc)

	// 22:00 UTC on the 11th is already the 12th in UTC+5.
	instant := time.Date(2024, time.November, 11, 22, 0, 0, 0, time.UTC)

	start := r.StartOfDay(instant)
	if want := time.Date(2024, time.November, 12, 0, 0, 0, 0, loc); !start.Equal(want) {
		t.Errorf("Expected start of day %v, got %v", want, start)
	}
	end := r.EndOfDay(instant)
	if want := time.Date(2024, time.November, 12, 23, 59, 59, 999000000, loc); !end.Equal(want) {
		t.Errorf("Expected end of day %v, got %v", want, end)
	}

	rng := r.DayRange(instant)
	if !rng.Start.Equal(start) || !rng.End.Equal(end) {
		t.Errorf("DayRange mismatch: %+v", rng)
	}
}

func TestResolver_ReferenceDate(t *testing.T) {
	t.Parallel()

	r := newTestResolver()

	tests := []struct {
		name string
		text string
		want time.Time
	}{
		{
			name: "explicit day and month wins",
			text: "On Wednesday 12th Nov, schedule project work 12-3am, meeting 10-11",
			want: day(2024, time.November, 12),
		},
		{
			name: "natural language",
			text: "tomorrow I have a dentist appointment",
			want: day(2024, time.November, 12),
		},
		{
			name: "month before day",
			text: "November 12: meeting 10-11",
			want: day(2024, time.November, 12),
		},
		{
			name: "slash date",
			text: "13/11 gym at 7am",
			want: day(2024, time.November, 13),
		},
		{
			name: "defaults to now",
			text: "write the quarterly report",
			want: monday,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got := r.ReferenceDate(tt.text, monday)
			if !sameDay(got, tt.want) {
				t.Errorf("ReferenceDate(%q) = %v, want day %v", tt.text, got, tt.want.Format("2006-01-02"))
			}
		})
	}

	if got := r.ReferenceDate("write the quarterly report", monday); !got.Equal(monday) {
		t.Errorf("Expected default reference date to be now, got %v", got)
	}
}

func TestResolver_ReferenceDate_IgnoresClockTimes(t *testing.T) {
	t.Parallel()

	r := newTestResolver()

	tests := []struct {
		text string
		want time.Time
	}{
		{text: "meeting 10-11, lunch with Sam", want: monday},
		{text: "standup 9:15 then code review", want: monday},
		{text: "tomorrow: meeting 10-11", want: day(2024, time.November, 12)},
		{text: "November 12: meeting 10-11", want: day(2024, time.November, 12)},
	}

	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			t.Parallel()

			if got := r.ReferenceDate(tt.text, monday); !got.Equal(tt.want) {
				t.Errorf("ReferenceDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}
