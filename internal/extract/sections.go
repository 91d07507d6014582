// Package extract pulls structured fields out of free-form model output.
//
// The model is told (by the system prompt and the per-feature prompts) to
// label its answer with uppercase anchors such as MVP_SCOPE or HARD_TRUTH,
// to end validations with "VALIDATION_SCORE: n" and to answer insight
// requests with a JSON array.  That contract is unversioned, so every regex
// and parsing rule that depends on it lives in this package.
package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Roadmap section labels in prompt order.
var RoadmapLabels = []string{"MVP_SCOPE", "TECH_STACK", "BUILD_TIME", "FIRST_USER_PATH", "STEPS"}

// Weekly review section labels in prompt order.
var ReviewLabels = []string{"WHAT_WORKED", "WHAT_DIDNT_WORK", "KEY_LEARNINGS", "NEXT_PRIORITIES", "HARD_TRUTH"}

// nextLabelLead matches what opens the following label's line: list
// numbering or a heading, and the opening half of its bold.  A star run only
// counts when whitespace separates it from the body.
var nextLabelLead = regexp.MustCompile(`(?:\n[ \t]*(?:\d+\.|#+)[ \t]*\**|\s\*+)[ \t]*$`)

// Sections returns the body of every label in labels, keyed by the label as
// given.  A body starts after the first case-insensitive occurrence of the
// label, the stars and colons glued to it, and any following whitespace or
// colons, and stops at the next
// occurrence of any label in the set (or the end of text).  Labels that are
// missing, or whose body is blank, map to nil.
func Sections(text string, labels []string) map[string]*string {
	out := make(map[string]*string, len(labels))
	if len(labels) == 0 {
		return out
	}
	anyLabel := labelPattern(labels)
	for _, label := range labels {
		out[label] = section(text, label, anyLabel)
	}
	return out
}

func section(text, label string, anyLabel *regexp.Regexp) *string {
	own := regexp.MustCompile(`(?i)` + regexp.QuoteMeta(label))
	loc := own.FindStringIndex(text)
	if loc == nil {
		return nil
	}
	start := loc[1]
	// "**HARD_TRUTH:**" closes its bold right after the label
	for start < len(text) && (text[start] == '*' || text[start] == ':') {
		start++
	}
	for start < len(text) {
		r, size := utf8.DecodeRuneInString(text[start:])
		if r != ':' && !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	end := len(text)
	if next := anyLabel.FindStringIndex(text[start:]); next != nil {
		end = start + next[0]
	}
	body := tidy(text[start:end])
	if body == "" {
		return nil
	}
	return &body
}

func labelPattern(labels []string) *regexp.Regexp {
	quoted := make([]string, 0, len(labels))
	for _, l := range labels {
		quoted = append(quoted, regexp.QuoteMeta(l))
	}
	return regexp.MustCompile(`(?i)(?:` + strings.Join(quoted, "|") + `)`)
}

// tidy trims whitespace and the decoration of the next label left at the end
// of the body ("\n**", "\n2. **", "\n## ").  Emphasis inside the body is
// kept.
func tidy(s string) string {
	s = strings.TrimRight(s, " \t")
	s = nextLabelLead.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
