package handler

import (
    "errors"
    "net/http"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/founder-copilot/internal/llm"
)

func insightsError(err error) (int, string) {
    if errors.Is(err, llm.ErrNotConfigured) {
        return http.StatusInternalServerError, llm.ErrNotConfigured.Error()
    }
    return http.StatusInternalServerError, "Failed to generate insights"
}

// GenerateReview writes the review of the previous week.
func (h *FounderHandler) GenerateReview(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := llmCtx(c)
    defer cancel()

    rv, err := h.Reviews.GenerateWeekly(ctx, uid)
    if err != nil {
        return generationError(c, err)
    }
    return c.JSON(http.StatusCreated, rv)
}

// ListReviews returns past reviews, newest first.
func (h *FounderHandler) ListReviews(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    list, err := h.Reviews.List(ctx, uid)
    if err != nil {
        return storeError(c, err, "failed to list reviews")
    }
    return c.JSON(http.StatusOK, echo.Map{"reviews": list})
}

// GetInsights returns the proactive suggestions.  Any model failure other
// than a missing key is reported with one fixed message.
func (h *FounderHandler) GetInsights(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := llmCtx(c)
    defer cancel()

    insights, err := h.Insights.Generate(ctx, uid)
    if err != nil {
        status, msg := insightsError(err)
        h.Log.Error("insights failed", "user_id", uid, "error", err)
        return c.JSON(status, echo.Map{"error": msg})
    }
    return c.JSON(http.StatusOK, echo.Map{"insights": insights})
}
