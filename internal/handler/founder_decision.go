package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/founder-copilot/internal/model"
)

// createDecisionReq mirrors the decision form: options come as one option
// per line.
type createDecisionReq struct {
    IdeaID            *uint64 `json:"idea_id"`
    Title             string  `json:"title"`
    Description       string  `json:"description"`
    OptionsConsidered string  `json:"options_considered"`
    ChosenOption      string  `json:"chosen_option"`
    ConfidenceLevel   *string `json:"confidence_level"`
    Reasoning         *string `json:"reasoning"`
    ExpectedOutcome   *string `json:"expected_outcome"`
}

func validConfidence(s *string) bool {
    if s == nil {
        return true
    }
    switch *s {
    case model.ConfidenceLow, model.ConfidenceMedium, model.ConfidenceHigh:
        return true
    }
    return false
}

// CreateDecision logs a decision.
func (h *FounderHandler) CreateDecision(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var req createDecisionReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.Title = strings.TrimSpace(req.Title)
    req.ChosenOption = strings.TrimSpace(req.ChosenOption)
    if req.Title == "" || req.ChosenOption == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "title and chosen_option are required"})
    }
    confidence := optional(req.ConfidenceLevel)
    if confidence != nil {
        *confidence = strings.ToLower(*confidence)
    }
    if !validConfidence(confidence) {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "confidence_level must be low, medium or high"})
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    if req.IdeaID != nil {
        if _, err := h.Ideas.GetByID(ctx, uid, *req.IdeaID); err != nil {
            return storeError(c, err, "failed to load idea")
        }
    }
    d := model.Decision{
        UserID:            uid,
        IdeaID:            req.IdeaID,
        Title:             req.Title,
        Description:       strings.TrimSpace(req.Description),
        OptionsConsidered: lines(req.OptionsConsidered),
        ChosenOption:      req.ChosenOption,
        ConfidenceLevel:   confidence,
        Reasoning:         optional(req.Reasoning),
        ExpectedOutcome:   optional(req.ExpectedOutcome),
        CreatedAt:         time.Now().UTC(),
    }
    d.UpdatedAt = d.CreatedAt
    id, err := h.Decisions.Create(ctx, d)
    if err != nil {
        return storeError(c, err, "failed to create decision")
    }
    d.ID = id
    return c.JSON(http.StatusCreated, d)
}

// ListDecisions returns the founder's decisions, newest first.
func (h *FounderHandler) ListDecisions(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    list, err := h.Decisions.ListByUser(ctx, uid, 0)
    if err != nil {
        return storeError(c, err, "failed to list decisions")
    }
    return c.JSON(http.StatusOK, echo.Map{"decisions": list})
}
