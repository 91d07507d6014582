package service

import (
	"context"
	"fmt"

	"github.com/iliyamo/founder-copilot/internal/extract"
	"github.com/iliyamo/founder-copilot/internal/llm"
	"github.com/iliyamo/founder-copilot/internal/logger"
	"github.com/iliyamo/founder-copilot/internal/model"
)

// IdeaStore is the subset of the idea repository validation needs.
type IdeaStore interface {
	GetByID(ctx context.Context, userID, id uint64) (model.Idea, error)
	SetStatus(ctx context.Context, userID, id uint64, status string) error
	SaveValidation(ctx context.Context, userID, id uint64, score *int, reasoning string) error
}

// IdeaService runs validation passes.
type IdeaService struct {
	Ideas   IdeaStore
	Gateway StreamOpener
	Log     *logger.Logger
}

// Validate asks the co-founder to assess the idea and stores the score and
// reasoning.  The idea is "validating" while the reply streams; any failure
// puts it back to "draft" and leaves a previous score untouched.
func (s *IdeaService) Validate(ctx context.Context, userID, ideaID uint64) (model.Idea, error) {
	idea, err := s.Ideas.GetByID(ctx, userID, ideaID)
	if err != nil {
		return model.Idea{}, err
	}
	if err := s.Ideas.SetStatus(ctx, userID, ideaID, model.IdeaValidating); err != nil {
		return model.Idea{}, err
	}

	reply, err := generate(ctx, s.Gateway, llm.ContextIdeaValidation, llm.IdeaValidationPrompt(idea))
	if err != nil {
		s.revert(userID, ideaID, err)
		return model.Idea{}, err
	}

	v := extract.ParseValidation(reply)
	if err := s.Ideas.SaveValidation(ctx, userID, ideaID, v.Score, v.Reasoning); err != nil {
		s.revert(userID, ideaID, err)
		return model.Idea{}, fmt.Errorf("save validation: %w", err)
	}
	s.Log.Info("idea validated", "user_id", userID, "idea_id", ideaID, "score", v.Score)
	return s.Ideas.GetByID(ctx, userID, ideaID)
}

// revert runs on a fresh context: the request context may be what failed.
func (s *IdeaService) revert(userID, ideaID uint64, cause error) {
	s.Log.Warn("idea validation failed, reverting to draft", "user_id", userID, "idea_id", ideaID, "error", cause)
	ctx, cancel := context.WithTimeout(context.Background(), revertTimeout)
	defer cancel()
	if err := s.Ideas.SetStatus(ctx, userID, ideaID, model.IdeaDraft); err != nil {
		s.Log.Error("revert idea status failed", "user_id", userID, "idea_id", ideaID, "error", err)
	}
}
