package handler

import (
    "net/http"

    "github.com/labstack/echo/v4"
)

type stepReq struct {
    Completed *bool `json:"completed"`
}

// GenerateRoadmap builds a new MVP roadmap for the idea.
func (h *FounderHandler) GenerateRoadmap(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ideaID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id"})
    }
    ctx, cancel := llmCtx(c)
    defer cancel()

    rm, err := h.Roadmaps.Generate(ctx, uid, ideaID)
    if err != nil {
        return generationError(c, err)
    }
    return c.JSON(http.StatusCreated, rm)
}

// GetRoadmap returns the latest roadmap generated for the idea.
func (h *FounderHandler) GetRoadmap(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ideaID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid idea id"})
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    rm, err := h.Roadmaps.Get(ctx, uid, ideaID)
    if err != nil {
        return storeError(c, err, "failed to load roadmap")
    }
    return c.JSON(http.StatusOK, rm)
}

// SetStep marks a roadmap step completed or open again.
func (h *FounderHandler) SetStep(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    stepID, ok := pathID(c, "id")
    if !ok {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid step id"})
    }
    var req stepReq
    if err := c.Bind(&req); err != nil || req.Completed == nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "completed is required"})
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    step, err := h.Roadmaps.SetStep(ctx, uid, stepID, *req.Completed)
    if err != nil {
        return storeError(c, err, "failed to update step")
    }
    return c.JSON(http.StatusOK, step)
}
