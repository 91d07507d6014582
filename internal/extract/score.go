package extract

import (
	"regexp"
	"strconv"
	"strings"
)

var scorePattern = regexp.MustCompile(`(?i)VALIDATION_SCORE:\s*(\d+)`)

// Validation is the structured result of an idea validation reply.
type Validation struct {
	Score     *int   // nil when the reply carried no score
	Reasoning string // reply text with the score token removed
}

// ParseValidation extracts the score and reasoning from a validation reply.
func ParseValidation(text string) Validation {
	return Validation{Score: ValidationScore(text), Reasoning: StripScore(text)}
}

// ValidationScore returns the integer following "VALIDATION_SCORE:", clamped
// to [0,100], or nil when the token is absent.  A literal 0 is returned as 0.
func ValidationScore(text string) *int {
	m := scorePattern.FindStringSubmatch(text)
	if m == nil {
		return nil
	}
	n, err := strconv.Atoi(m[1])
	if err != nil || n > 100 {
		// only digits reach here, so a parse error means overflow
		n = 100
	}
	return &n
}

// StripScore removes the first score token and trims the result.
func StripScore(text string) string {
	loc := scorePattern.FindStringIndex(text)
	if loc == nil {
		return strings.TrimSpace(text)
	}
	return strings.TrimSpace(text[:loc[0]] + text[loc[1]:])
}
