package ai

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/benvon/smart-planner/internal/models"
)

var (
	sentenceSplit = regexp.MustCompile(`[.,;]`)
	timeToken     = regexp.MustCompile(`(?i)\d{1,2}(?::\d{2})?\s*(?:am|pm)?`)
	fromFirstNum  = regexp.MustCompile(`\b\d.*$`)
)

// ExtractTaskDrafts pulls tasks out of free-form text. Each sentence or
// clause that mentions a time becomes one draft: the first two times found
// are its start and end and the words before the first number its title.
func ExtractTaskDrafts(text string) []models.TaskDraft {
	var drafts []models.TaskDraft
	for _, part := range sentenceSplit.Split(text, -1) {
		sentence := strings.TrimSpace(part)
		if sentence == "" {
			continue
		}
		times := timeToken.FindAllString(sentence, 2)
		if len(times) == 0 {
			continue
		}
		draft := models.TaskDraft{
			Title: capitalize(strings.TrimSpace(fromFirstNum.ReplaceAllString(sentence, ""))),
			Start: strings.TrimSpace(times[0]),
		}
		if len(times) > 1 {
			draft.End = strings.TrimSpace(times[1])
		}
		if draft.Title == "" {
			draft.Title = "Task"
		}
		drafts = append(drafts, draft)
	}
	return drafts
}

// capitalize upper-cases the first letter and lower-cases the rest.
func capitalize(s string) string {
	if s == "" {
		return s
	}
	r, size := utf8.DecodeRuneInString(s)
	return string(unicode.ToUpper(r)) + strings.ToLower(s[size:])
}
