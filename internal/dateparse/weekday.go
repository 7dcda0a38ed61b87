package dateparse

import (
	"strings"
	"time"
)

var weekdayNames = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// NextWeekday looks for a weekday name anywhere in text, including inside
// other words, and returns now moved forward 0-6 days to that weekday.
// When several names appear the earliest in the text wins.
func NextWeekday(text string, now time.Time) (time.Time, bool) {
	lower := strings.ToLower(text)
	best := -1
	var target time.Weekday
	for name, wd := range weekdayNames {
		idx := strings.Index(lower, name)
		if idx < 0 {
			continue
		}
		if best == -1 || idx < best {
			best, target = idx, wd
		}
	}
	if best == -1 {
		return time.Time{}, false
	}
	return now.AddDate(0, 0, daysUntil(now.Weekday(), target)), true
}

func daysUntil(from, to time.Weekday) int {
	return (int(to) - int(from) + 7) % 7
}
