package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/iliyamo/founder-copilot/internal/extract"
	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/model"
)

// reviewMessageLimit caps the discussions quoted into a review prompt.
const reviewMessageLimit = 20

type WeekDecisions interface {
	ListBetween(ctx context.Context, userID uint64, from, to time.Time) ([]model.Decision, error)
}

type WeekMetrics interface {
	ListBetween(ctx context.Context, userID uint64, from, to time.Time) ([]model.Metric, error)
}

type WeekMessages interface {
	ListBetween(ctx context.Context, userID uint64, from, to time.Time, limit int) ([]model.ChatMessage, error)
}

type ReviewStore interface {
	Create(ctx context.Context, rv model.WeeklyReview) (uint64, error)
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.WeeklyReview, error)
}

// ProfileReader loads the founder's profile.
type ProfileReader interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Profile, error)
}

// ReviewService writes weekly co-founder reviews.
type ReviewService struct {
	Profiles  ProfileReader
	Decisions WeekDecisions
	Metrics   WeekMetrics
	Messages  WeekMessages
	Reviews   ReviewStore
	Gateway   StreamOpener
	Log       *logger.Logger
	Now       func() time.Time
}

// PreviousWeek returns the Sunday 00:00 to Saturday 23:59:59.999 window of
// the week before now, in loc.
func PreviousWeek(now time.Time, loc *time.Location) (time.Time, time.Time) {
	t := now.In(loc)
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
	thisSunday := day.AddDate(0, 0, -int(day.Weekday()))
	start := thisSunday.AddDate(0, 0, -7)
	return start, thisSunday.Add(-time.Millisecond)
}

// location reads the profile time zone; unknown or empty means UTC.
func location(p model.Profile) *time.Location {
	if p.Timezone == nil || *p.Timezone == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(*p.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func jsonList(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		return "[]"
	}
	return string(b)
}

// GenerateWeekly reviews last week's decisions, metrics and discussions and
// stores the five extracted sections.  Missing data sources degrade to
// empty lists; the gateway failing fails the call.
func (s *ReviewService) GenerateWeekly(ctx context.Context, userID uint64) (model.WeeklyReview, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}
	loc := time.UTC
	if p, err := s.Profiles.GetByUserID(ctx, userID); err == nil {
		loc = location(p)
	}
	start, end := PreviousWeek(now, loc)

	decisions, err := s.Decisions.ListBetween(ctx, userID, start, end)
	if err != nil {
		s.Log.Warn("weekly review: decisions unavailable", "user_id", userID, "error", err)
		decisions = []model.Decision{}
	}
	metrics, err := s.Metrics.ListBetween(ctx, userID, start, end)
	if err != nil {
		s.Log.Warn("weekly review: metrics unavailable", "user_id", userID, "error", err)
		metrics = []model.Metric{}
	}
	msgs, err := s.Messages.ListBetween(ctx, userID, start, end, reviewMessageLimit)
	if err != nil {
		s.Log.Warn("weekly review: messages unavailable", "user_id", userID, "error", err)
	}
	talk := make([]string, 0, len(msgs))
	for _, m := range msgs {
		talk = append(talk, m.Content)
	}

	prompt := llm.WeeklyReviewPrompt(start, end, jsonList(decisions), jsonList(metrics), talk)
	reply, err := generate(ctx, s.Gateway, llm.ContextReview, prompt)
	if err != nil {
		return model.WeeklyReview{}, err
	}

	sec := extract.ParseWeeklyReview(reply)
	rv := model.WeeklyReview{
		UserID:         userID,
		WeekStart:      start.UTC(),
		WeekEnd:        end.UTC(),
		WhatWorked:     sec.WhatWorked,
		WhatDidntWork:  sec.WhatDidntWork,
		KeyLearnings:   sec.KeyLearnings,
		NextPriorities: sec.NextPriorities,
		HardTruth:      sec.HardTruth,
		GeneratedAt:    now.UTC(),
	}
	id, err := s.Reviews.Create(ctx, rv)
	if err != nil {
		return model.WeeklyReview{}, err
	}
	rv.ID = id
	rv.CreatedAt = rv.GeneratedAt
	return rv, nil
}

// List returns stored reviews, newest week first.
func (s *ReviewService) List(ctx context.Context, userID uint64) ([]model.WeeklyReview, error) {
	return s.Reviews.ListByUser(ctx, userID, 0)
}
