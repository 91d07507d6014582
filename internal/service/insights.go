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

// Snapshot sizes sent with an insights request.
const (
	insightIdeas    = 5
	insightRoadmaps = 3
	insightMetrics  = 10
	insightReviews  = 2
)

type IdeaLister interface {
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Idea, error)
}

type RoadmapLister interface {
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Roadmap, error)
}

type MetricLister interface {
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Metric, error)
}

type ReviewLister interface {
	ListByUser(ctx context.Context, userID uint64, limit int) ([]model.WeeklyReview, error)
}

// InsightService produces proactive, time-sensitive suggestions.
type InsightService struct {
	Profiles  ProfileReader
	Ideas     IdeaLister
	Roadmaps  RoadmapLister
	Metrics   MetricLister
	Reviews   ReviewLister
	Completer Completer
	Log       *logger.Logger
	Now       func() time.Time
}

type startupState struct {
	Profile  *model.Profile       `json:"profile"`
	Ideas    []model.Idea         `json:"ideas"`
	Roadmaps []model.Roadmap      `json:"roadmaps"`
	Metrics  []model.Metric       `json:"metrics"`
	Reviews  []model.WeeklyReview `json:"reviews"`
}

// Generate builds the state snapshot, asks the model for insights and parses
// the JSON array it returns.  A gateway error is returned; an unparseable
// reply yields an empty list.
func (s *InsightService) Generate(ctx context.Context, userID uint64) ([]extract.Insight, error) {
	now := time.Now()
	if s.Now != nil {
		now = s.Now()
	}

	st := startupState{
		Ideas:    []model.Idea{},
		Roadmaps: []model.Roadmap{},
		Metrics:  []model.Metric{},
		Reviews:  []model.WeeklyReview{},
	}
	country := ""
	if p, err := s.Profiles.GetByUserID(ctx, userID); err == nil {
		st.Profile = &p
		if p.Country != nil {
			country = *p.Country
		}
	}
	if v, err := s.Ideas.ListByUser(ctx, userID, insightIdeas); err == nil {
		st.Ideas = v
	}
	if v, err := s.Roadmaps.ListByUser(ctx, userID, insightRoadmaps); err == nil {
		st.Roadmaps = v
	}
	if v, err := s.Metrics.ListByUser(ctx, userID, insightMetrics); err == nil {
		st.Metrics = v
	}
	if v, err := s.Reviews.ListByUser(ctx, userID, insightReviews); err == nil {
		st.Reviews = v
	}

	state, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return nil, err
	}
	reply, err := s.Completer.Complete(ctx, llm.InsightsSystemPrompt(now, country), llm.InsightsUserPrompt(string(state)))
	if err != nil {
		return nil, err
	}
	insights := extract.ParseInsights(reply)
	if len(insights) == 0 && reply != "" {
		s.Log.Warn("insights reply was not a JSON array", "user_id", userID)
	}
	return insights, nil
}
