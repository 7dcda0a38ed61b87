package dateparse

import (
	"regexp"
	"strings"
	"time"

	"github.com/olebedev/when"
	"github.com/olebedev/when/rules"
	"github.com/olebedev/when/rules/en"
)

// newNaturalParser builds the general-purpose parser. Rules are applied in
// registration order, so explicit calendar dates override a weekday name.
// The stock weekday, month and slash rules are replaced: the weekday rule
// jumps a full week when the weekday is today, the month rule drops an
// explicit year and the slash rule leaves later months unset.
func newNaturalParser() *when.Parser {
	p := when.New(nil)
	p.Add(
		en.CasualDate(rules.Override),
		en.CasualTime(rules.Override),
		en.Deadline(rules.Override),
		en.PastTime(rules.Override),
		en.HourMinute(rules.Override),
		en.Hour(rules.Override),
	)
	p.Add(calendarRules()...)
	return p
}

// newDateParser is newNaturalParser without the clock rules, so "10-11"
// in a plan is never read as a date.
func newDateParser() *when.Parser {
	p := when.New(nil)
	p.Add(
		en.CasualDate(rules.Override),
		en.Deadline(rules.Override),
		en.PastTime(rules.Override),
	)
	p.Add(calendarRules()...)
	return p
}

func calendarRules() []rules.Rule {
	return []rules.Rule{
		forwardWeekdayRule(),
		dayMonthRule(),
		monthDayRule(),
		slashDateRule(),
	}
}

// newClockParser only understands times of day.
func newClockParser() *when.Parser {
	p := when.New(nil)
	p.Add(
		en.CasualTime(rules.Override),
		en.HourMinute(rules.Override),
		en.Hour(rules.Override),
	)
	return p
}

func (r *Resolver) parseNatural(text string, now time.Time) (time.Time, bool) {
	return r.parseWith(r.natural, text, now)
}

func (r *Resolver) parseWith(p *when.Parser, text string, now time.Time) (time.Time, bool) {
	if strings.TrimSpace(text) == "" {
		return time.Time{}, false
	}
	res, err := p.Parse(text, now)
	if err != nil || res == nil {
		return time.Time{}, false
	}
	return res.Time.In(r.location), true
}

var weekdayRulePattern = regexp.MustCompile(`(?i)(?:\W|^)(?:(this|next|coming)\s+)?(sunday|monday|tuesday|wednesday|thursday|friday|saturday)(?:\W|$)`)

// forwardWeekdayRule resolves a weekday to its next occurrence on or after
// the reference day. "next <weekday>" on that same weekday means a week out.
func forwardWeekdayRule() rules.Rule {
	return &rules.F{
		RegExp: weekdayRulePattern,
		Applier: func(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
			var (
				target   time.Weekday
				found    bool
				nextWeek bool
			)
			for _, capture := range m.Captures {
				word := strings.ToLower(strings.TrimSpace(capture))
				if wd, ok := weekdayNames[word]; ok {
					target, found = wd, true
				}
				if word == "next" {
					nextWeek = true
				}
			}
			if !found {
				return false, nil
			}
			days := daysUntil(ref.Weekday(), target)
			if days == 0 && nextWeek {
				days = 7
			}
			c.Duration = ref.AddDate(0, 0, days).Sub(ref)
			return true, nil
		},
	}
}

var (
	dayMonthRulePattern  = regexp.MustCompile(`(?i)(?:\W|^)` + dayMonthExpr + `(?:\W|$)`)
	monthDayRulePattern  = regexp.MustCompile(`(?i)(?:\W|^)` + monthDayExpr + `(?:\W|$)`)
	slashDateRulePattern = regexp.MustCompile(`(?:\W|^)` + slashDateExpr + `(?:\W|$)`)
)

// dayMonthRule handles "12th Nov", "3 september 2025" and similar.
func dayMonthRule() rules.Rule {
	return &rules.F{RegExp: dayMonthRulePattern, Applier: applyNamedMonth}
}

// monthDayRule handles "November 12", "Nov 12, 2023" and "sept. 3rd".
func monthDayRule() rules.Rule {
	return &rules.F{RegExp: monthDayRulePattern, Applier: applyNamedMonth}
}

// applyNamedMonth sorts the captures by shape, so it serves both word orders.
func applyNamedMonth(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
	var day, month, year string
	for _, capture := range m.Captures {
		capture = strings.TrimSpace(capture)
		switch {
		case capture == "":
		case isDigits(capture) && len(capture) <= 2:
			day = capture
		case isDigits(capture) && len(capture) == 4:
			year = capture
		default:
			month = capture
		}
	}
	date, ok := buildDayMonth(day, month, year, ref)
	if !ok {
		return false, nil
	}
	setDay(c, date, ref)
	return true, nil
}

// slashDateRule handles day-first numeric dates: "12/11/2024" or "12/11".
func slashDateRule() rules.Rule {
	return &rules.F{
		RegExp: slashDateRulePattern,
		Applier: func(m *rules.Match, c *rules.Context, _ *rules.Options, ref time.Time) (bool, error) {
			if len(m.Captures) < 3 {
				return false, nil
			}
			date, ok := buildSlashDate(m.Captures[0], m.Captures[1], m.Captures[2], ref)
			if !ok {
				return false, nil
			}
			setDay(c, date, ref)
			return true, nil
		},
	}
}

// setDay moves ref to date while keeping ref's clock.
func setDay(c *rules.Context, date, ref time.Time) {
	target := time.Date(date.Year(), date.Month(), date.Day(),
		ref.Hour(), ref.Minute(), ref.Second(), ref.Nanosecond(), ref.Location())
	c.Duration = target.Sub(ref)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
