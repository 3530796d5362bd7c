package quizgen

import (
	"regexp"
	"strings"
)

var (
	// First question marker: "1." followed by whitespace.
	firstQuestionRE = regexp.MustCompile(`1\.\s`)

	// An answer option line: a single letter A-D, then ")", "." or ":",
	// then at least one non-whitespace character.
	optionLineRE = regexp.MustCompile(`(?i)^\s*[a-d][).:]\s*\S`)
)

// Sanitize trims provider chatter around the question block: everything
// before the first "1. " marker and every line after the last answer option
// line. It is a best-effort trim, not a parser; malformed question bodies
// pass through untouched. Sanitize is idempotent.
func Sanitize(raw string) string {
	text := raw

	if loc := firstQuestionRE.FindStringIndex(text); loc != nil {
		text = text[loc[0]:]
	}

	lines := strings.Split(text, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		if optionLineRE.MatchString(lines[i]) {
			return strings.Join(lines[:i+1], "\n")
		}
	}

	// No option line found; leave the tail as-is.
	return text
}
