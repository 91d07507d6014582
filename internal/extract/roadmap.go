package extract

import (
	"regexp"
	"strings"
)

var stepLine = regexp.MustCompile(`^\d+\.`)
var stepPrefix = regexp.MustCompile(`^\d+\.\s*`)

// Step is a parsed roadmap step.  Number is the 1-based position among the
// step lines, not the digit the model wrote.
type Step struct {
	Number      int
	Title       string
	Description *string
}

// RoadmapPlan is the structured form of an MVP planning reply.
type RoadmapPlan struct {
	MVPScope      *string
	TechStack     []string
	BuildTime     *string
	FirstUserPath *string
	Steps         []Step
}

// ParseRoadmap extracts the five roadmap sections and the step list.
func ParseRoadmap(text string) RoadmapPlan {
	s := Sections(text, RoadmapLabels)
	plan := RoadmapPlan{
		MVPScope:      s["MVP_SCOPE"],
		TechStack:     splitList(s["TECH_STACK"]),
		BuildTime:     s["BUILD_TIME"],
		FirstUserPath: s["FIRST_USER_PATH"],
	}
	if steps := s["STEPS"]; steps != nil {
		plan.Steps = ParseSteps(*steps)
	}
	return plan
}

// ParseSteps turns "1. Title | Description" lines into steps.  Lines that do
// not start with a number and a dot are ignored.  The description is the
// text after the first '|' and is nil when missing or blank.
func ParseSteps(block string) []Step {
	var steps []Step
	for _, raw := range strings.Split(block, "\n") {
		line := strings.TrimSpace(raw)
		if !stepLine.MatchString(line) {
			continue
		}
		rest := stepPrefix.ReplaceAllString(line, "")
		title, desc, hasPipe := strings.Cut(rest, "|")
		title = strings.TrimSpace(title)
		if title == "" {
			title = strings.TrimSpace(rest)
		}
		step := Step{Number: len(steps) + 1, Title: title}
		if hasPipe {
			if d := strings.TrimSpace(desc); d != "" {
				step.Description = &d
			}
		}
		steps = append(steps, step)
	}
	return steps
}

func splitList(s *string) []string {
	out := []string{}
	if s == nil {
		return out
	}
	for _, part := range strings.Split(*s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
