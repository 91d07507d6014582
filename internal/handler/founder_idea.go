package handler

import (
    "net/http"
    "strings"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/founder-copilot/internal/model"
)

// createIdeaReq is the body for POST /v1/ideas
type createIdeaReq struct {
    Title            string   `json:"title"`
    ProblemStatement *string  `json:"problem_statement"`
    TargetUser       *string  `json:"target_user"`
    MarketPain       *string  `json:"market_pain"`
    NicheFocus       *string  `json:"niche_focus"`
    Risks            []string `json:"risks"`
    Assumptions      []string `json:"assumptions"`
}

// CreateIdea stores a new draft idea.
func (h *FounderHandler) CreateIdea(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var req createIdeaReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Title = strings.TrimSpace(req.Title)
    if req.Title == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title is required"})
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    id, err := h.Ideas.Create(ctx, model.Idea{
        UserID:           uid,
        Title:            req.Title,
        ProblemStatement: optional(req.ProblemStatement),
        TargetUser:       optional(req.TargetUser),
        MarketPain:       optional(req.MarketPain),
        NicheFocus:       optional(req.NicheFocus),
        Risks:            cleanList(req.Risks),
        Assumptions:      cleanList(req.Assumptions),
        Status:           model.IdeaDraft,
    })
    if err != nil {
        return storeError(c, err, "failed to create idea")
    }
    idea, err := h.Ideas.GetByID(ctx, uid, id)
    if err != nil {
        return storeError(c, err, "failed to load idea")
    }
    return c.JSON(http.StatusCreated, idea)
}

// ListIdeas returns every idea of the founder, newest first.
func (h *FounderHandler) ListIdeas(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    ideas, err := h.Ideas.ListByUser(ctx, uid, 0)
    if err != nil {
        return storeError(c, err, "failed to list ideas")
    }
    return c.JSON(http.StatusOK, echo.Map{"ideas": ideas})
}

// GetIdea returns one idea.
func (h *FounderHandler) GetIdea(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id"})
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    idea, err := h.Ideas.GetByID(ctx, uid, id)
    if err != nil {
        return storeError(c, err, "failed to load idea")
    }
    return c.JSON(http.StatusOK, idea)
}

// ValidateIdea runs a validation pass and returns the updated idea.
func (h *FounderHandler) ValidateIdea(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    id, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id"})
    }
    ctx, cancel := llmCtx(c)
    defer cancel()

    idea, err := h.Validation.Validate(ctx, uid, id)
    if err != nil {
        return generationError(c, err)
    }
    return c.JSON(http.StatusOK, idea)
}
