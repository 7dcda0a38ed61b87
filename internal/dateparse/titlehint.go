package dateparse

import (
	"regexp"
	"strings"
	"unicode"
)

var quotedPatterns = []*regexp.Regexp{
	regexp.MustCompile(`"([^"]+)"`),
	regexp.MustCompile(`“([^”]+)”`),
	// single quotes must sit on word edges so apostrophes ("today's") don't pair up
	regexp.MustCompile(`(?:^|[\s(\[])'([^']+)'(?:$|[\s.,!?;:)\]])`),
	regexp.MustCompile(`‘([^’]+)’`),
}

var noiseWords = map[string]struct{}{}

func init() {
	for _, w := range []string{
		// command verbs
		"delete", "remove", "clear", "erase", "drop",
		// quantifiers
		"all", "every", "tasks", "events", "entries", "everything",
		// connectives
		"on", "for", "from", "at", "in", "between", "to", "by", "this", "next", "coming",
		// relative days
		"today", "tomorrow", "tonight",
	} {
		noiseWords[w] = struct{}{}
	}
	for name := range weekdayNames {
		noiseWords[name] = struct{}{}
	}
}

var (
	monthToken     = regexp.MustCompile(`^(?:` + monthExpr + `)$`)
	ordinalToken   = regexp.MustCompile(`^\d{1,2}(?:st|nd|rd|th)?$`)
	yearToken      = regexp.MustCompile(`^\d{4}$`)
	slashDateToken = regexp.MustCompile(`^` + slashDateExpr + `$`)
)

// ExtractTitleHint recovers the probable task title from a delete command.
// Quoted text is returned verbatim. Otherwise command, quantifier, connective
// and date words are stripped and the rest is returned only when at least two
// words survive, since a single leftover word is usually noise. Punctuation
// inside the surviving words is kept so the hint still occurs in stored titles.
func ExtractTitleHint(text string) (string, bool) {
	for _, re := range quotedPatterns {
		if m := re.FindStringSubmatch(text); m != nil {
			if quoted := strings.TrimSpace(m[1]); quoted != "" {
				return quoted, true
			}
		}
	}

	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, len(fields))
	for i, f := range fields {
		words[i] = trimPunct(f)
	}

	var kept []string
	count := 0
	for i, f := range fields {
		if isNoiseToken(words, i) {
			continue
		}
		kept = append(kept, f)
		if words[i] != "" {
			count++
		}
	}
	if count < 2 {
		return "", false
	}
	return trimPunct(strings.Join(kept, " ")), true
}

// isNoiseToken reports whether words[i] is a command or date word. "of" only
// counts when it joins a day to a month, as in "12th of november".
func isNoiseToken(words []string, i int) bool {
	w := words[i]
	if _, ok := noiseWords[w]; ok {
		return true
	}
	if w == "of" {
		return i > 0 && i+1 < len(words) &&
			ordinalToken.MatchString(words[i-1]) && monthToken.MatchString(words[i+1])
	}
	return monthToken.MatchString(w) || ordinalToken.MatchString(w) ||
		yearToken.MatchString(w) || slashDateToken.MatchString(w)
}

func trimPunct(s string) string {
	return strings.TrimFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsNumber(r)
	})
}
