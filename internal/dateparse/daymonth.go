package dateparse

import (
	"regexp"
	"strconv"
	"strings"
	"time"
)

const monthExpr = `jan(?:uary)?|feb(?:ruary)?|mar(?:ch)?|apr(?:il)?|may|june?|july?|aug(?:ust)?|sep(?:t(?:ember)?)?|oct(?:ober)?|nov(?:ember)?|dec(?:ember)?`

// dayMonthExpr captures day, month and an optional year.
const dayMonthExpr = `(\d{1,2})(?:st|nd|rd|th)?(?:\s+of)?\s+(` + monthExpr + `)\.?(?:,?\s+(\d{4}))?`

// monthDayExpr captures month, day and an optional year.
const monthDayExpr = `(` + monthExpr + `)\.?\s+(\d{1,2})(?:st|nd|rd|th)?\b(?:,?\s+(\d{4}))?`

// slashDateExpr captures day, month and an optional year, day first.
const slashDateExpr = `(\d{1,2})[/\\](\d{1,2})(?:[/\\](\d{4}))?`

var dayMonthPattern = regexp.MustCompile(`(?i)\b` + dayMonthExpr + `\b`)

// Keyed by the first three letters; every accepted month token, "sept"
// included, starts with its abbreviation.
var monthAbbreviations = map[string]time.Month{
	"jan": time.January,
	"feb": time.February,
	"mar": time.March,
	"apr": time.April,
	"may": time.May,
	"jun": time.June,
	"jul": time.July,
	"aug": time.August,
	"sep": time.September,
	"oct": time.October,
	"nov": time.November,
	"dec": time.December,
}

// ParseDayMonth matches "<day>[st|nd|rd|th] <Month> [year]" anywhere in
// text and returns local midnight of that date. A missing year means the
// current year of now, without any forward adjustment.
func ParseDayMonth(text string, now time.Time) (time.Time, bool) {
	m := dayMonthPattern.FindStringSubmatch(text)
	if m == nil {
		return time.Time{}, false
	}
	return buildDayMonth(m[1], m[2], m[3], now)
}

func buildDayMonth(dayText, monthText, yearText string, now time.Time) (time.Time, bool) {
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, false
	}
	monthText = strings.ToLower(monthText)
	if len(monthText) < 3 {
		return time.Time{}, false
	}
	month, ok := monthAbbreviations[monthText[:3]]
	if !ok {
		return time.Time{}, false
	}
	return buildDate(day, month, yearText, now)
}

func buildSlashDate(dayText, monthText, yearText string, now time.Time) (time.Time, bool) {
	day, err := strconv.Atoi(dayText)
	if err != nil {
		return time.Time{}, false
	}
	month, err := strconv.Atoi(monthText)
	if err != nil || month < 1 || month > 12 {
		return time.Time{}, false
	}
	return buildDate(day, time.Month(month), yearText, now)
}

// buildDate validates the day against the month. A missing year means the
// current year of now.
func buildDate(day int, month time.Month, yearText string, now time.Time) (time.Time, bool) {
	year := now.Year()
	if yearText != "" {
		var err error
		if year, err = strconv.Atoi(yearText); err != nil {
			return time.Time{}, false
		}
	}
	if day < 1 || day > daysIn(month, year) {
		return time.Time{}, false
	}
	return time.Date(year, month, day, 0, 0, 0, 0, now.Location()), true
}

func daysIn(month time.Month, year int) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
