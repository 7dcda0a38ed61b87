package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

var clockPattern = regexp.MustCompile(`(?i)^(\d{1,2})(?:[:.](\d{2}))?\s*(a\.?m\.?|p\.?m\.?)?$`)

var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"15:04:05",
}

// AnchorTime places a time-of-day expression such as "10am" or "14:30" on
// the calendar day of ref. Only the clock of the parse is kept; the date
// always comes from ref. A false result means expr could not be read.
func (r *Resolver) AnchorTime(expr string, ref time.Time) (time.Time, bool) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return time.Time{}, false
	}
	day := r.StartOfDay(ref)

	hour, minute, ok := r.parseClock(expr, day)
	if !ok {
		return time.Time{}, false
	}
	return time.Date(day.Year(), day.Month(), day.Day(), hour, minute, 0, 0, r.location), true
}

func (r *Resolver) parseClock(expr string, day time.Time) (int, int, bool) {
	if h, m, ok := parseBareClock(expr); ok {
		return h, m, true
	}
	for _, layout := range timestampLayouts {
		if t, err := time.ParseInLocation(layout, expr, r.location); err == nil {
			t = t.In(r.location)
			return t.Hour(), t.Minute(), true
		}
	}
	if res, err := r.clock.Parse(expr, day); err == nil && res != nil {
		t := res.Time.In(r.location)
		return t.Hour(), t.Minute(), true
	}
	return 0, 0, false
}

// parseBareClock reads "10", "10:30", "3pm", "3 p.m." and "12am".
func parseBareClock(expr string) (int, int, bool) {
	m := clockPattern.FindStringSubmatch(strings.TrimSpace(expr))
	if m == nil {
		return 0, 0, false
	}
	hour, _ := strconv.Atoi(m[1])
	minute := 0
	if m[2] != "" {
		minute, _ = strconv.Atoi(m[2])
	}
	if minute > 59 {
		return 0, 0, false
	}
	meridiem := strings.ToLower(strings.ReplaceAll(m[3], ".", ""))
	switch meridiem {
	case "am", "pm":
		if hour < 1 || hour > 12 {
			return 0, 0, false
		}
		hour %= 12
		if meridiem == "pm" {
			hour += 12
		}
	default:
		if hour > 23 {
			return 0, 0, false
		}
	}
	return hour, minute, true
}
