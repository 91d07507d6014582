package service

import (
	"context"
	"time"

	"github.com/iliyamo/founder-copilot/internal/extract"
	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/model"
)

const revertTimeout = 5 * time.Second

// IdeaReader loads an idea owned by the user.
type IdeaReader interface {
	GetByID(ctx context.Context, userID, id uint64) (model.Idea, error)
}

// RoadmapStore persists roadmaps and their steps.
type RoadmapStore interface {
	Create(ctx context.Context, rm model.Roadmap) (uint64, error)
	GetLatestByIdea(ctx context.Context, userID, ideaID uint64) (model.Roadmap, error)
	SetStepCompleted(ctx context.Context, userID, stepID uint64, completed bool, at time.Time) (model.RoadmapStep, error)
}

// RoadmapService generates MVP roadmaps and tracks step completion.
type RoadmapService struct {
	Ideas    IdeaReader
	Roadmaps RoadmapStore
	Gateway  StreamOpener
	Log      *logger.Logger
	Now      func() time.Time
}

func (s *RoadmapService) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Generate asks for an MVP plan for the idea and stores it with its steps.
// Sections the model left out are stored as NULL.
func (s *RoadmapService) Generate(ctx context.Context, userID, ideaID uint64) (model.Roadmap, error) {
	idea, err := s.Ideas.GetByID(ctx, userID, ideaID)
	if err != nil {
		return model.Roadmap{}, err
	}
	reply, err := generate(ctx, s.Gateway, llm.ContextMVPPlanning, llm.RoadmapPrompt(idea))
	if err != nil {
		return model.Roadmap{}, err
	}

	plan := extract.ParseRoadmap(reply)
	rm := model.Roadmap{
		IdeaID:             ideaID,
		UserID:             userID,
		MVPScope:           plan.MVPScope,
		TechStack:          plan.TechStack,
		EstimatedBuildTime: plan.BuildTime,
		FirstUserPath:      plan.FirstUserPath,
		CreatedAt:          s.now(),
	}
	for _, st := range plan.Steps {
		rm.Steps = append(rm.Steps, model.RoadmapStep{StepNumber: st.Number, Title: st.Title, Description: st.Description})
	}
	if _, err := s.Roadmaps.Create(ctx, rm); err != nil {
		return model.Roadmap{}, err
	}
	s.Log.Info("roadmap generated", "user_id", userID, "idea_id", ideaID, "steps", len(rm.Steps))
	return s.Roadmaps.GetLatestByIdea(ctx, userID, ideaID)
}

// Get returns the latest roadmap of an idea.
func (s *RoadmapService) Get(ctx context.Context, userID, ideaID uint64) (model.Roadmap, error) {
	return s.Roadmaps.GetLatestByIdea(ctx, userID, ideaID)
}

// SetStep marks a step complete (stamped now) or incomplete (stamp cleared).
func (s *RoadmapService) SetStep(ctx context.Context, userID, stepID uint64, completed bool) (model.RoadmapStep, error) {
	return s.Roadmaps.SetStepCompleted(ctx, userID, stepID, completed, s.now())
}
