package extract

import (
	"encoding/json"
	"regexp"
	"strings"
)

var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// Insight is one proactive suggestion shown on the dashboard.
type Insight struct {
	Type        string `json:"type"`
	Priority    string `json:"priority"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Action      string `json:"action"`
	DueInfo     string `json:"dueInfo,omitempty"`
}

// ParseInsights decodes a JSON array of insights, unwrapping a markdown code
// fence when present.  Anything that does not decode yields an empty list.
func ParseInsights(text string) []Insight {
	body := strings.TrimSpace(text)
	if m := fencePattern.FindStringSubmatch(body); m != nil {
		body = strings.TrimSpace(m[1])
	}
	var out []Insight
	if err := json.Unmarshal([]byte(body), &out); err != nil || out == nil {
		return []Insight{}
	}
	return out
}
