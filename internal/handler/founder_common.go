package handler // handler defines http handlers

import (
    "strings"

    "github.com/iliyamo/founder-copilot/internal/logger"
    "github.com/iliyamo/founder-copilot/internal/repository"
    "github.com/iliyamo/founder-copilot/internal/service"
)

// FounderHandler bundles the repositories and services behind the founder
// workspace: profile, ideas, roadmaps, decisions, metrics, reviews and
// insights.
type FounderHandler struct {
    Profiles  *repository.ProfileRepo
    Ideas     *repository.IdeaRepo
    Decisions *repository.DecisionRepo
    Metrics   *repository.MetricRepo

    Validation *service.IdeaService
    Roadmaps   *service.RoadmapService
    Reviews    *service.ReviewService
    Insights   *service.InsightService

    Log *logger.Logger
}

// FounderDeps groups the constructor arguments.
type FounderDeps struct {
    Profiles   *repository.ProfileRepo
    Ideas      *repository.IdeaRepo
    Decisions  *repository.DecisionRepo
    Metrics    *repository.MetricRepo
    Validation *service.IdeaService
    Roadmaps   *service.RoadmapService
    Reviews    *service.ReviewService
    Insights   *service.InsightService
    Log        *logger.Logger
}

// NewFounderHandler panics if a dependency is missing; routes would
// otherwise fail on first use.
func NewFounderHandler(d FounderDeps) *FounderHandler {
    if d.Profiles == nil || d.Ideas == nil || d.Decisions == nil || d.Metrics == nil ||
        d.Validation == nil || d.Roadmaps == nil || d.Reviews == nil || d.Insights == nil {
        panic("nil dependency passed to NewFounderHandler")
    }
    if d.Log == nil {
        d.Log = logger.Nop()
    }
    return &FounderHandler{
        Profiles:   d.Profiles,
        Ideas:      d.Ideas,
        Decisions:  d.Decisions,
        Metrics:    d.Metrics,
        Validation: d.Validation,
        Roadmaps:   d.Roadmaps,
        Reviews:    d.Reviews,
        Insights:   d.Insights,
        Log:        d.Log,
    }
}

// lines splits free text into trimmed non-empty lines.
func lines(text string) []string {
    out := []string{}
    for _, l := range strings.Split(text, "\n") {
        if l = strings.TrimSpace(l); l != "" {
            out = append(out, l)
        }
    }
    return out
}

// cleanList trims entries and drops blanks.
func cleanList(in []string) []string {
    out := make([]string, 0, len(in))
    for _, s := range in {
        if s = strings.TrimSpace(s); s != "" {
            out = append(out, s)
        }
    }
    return out
}
