package handler

import (
    "net/http"
    "strings"
    "time"

    "github.com/labstack/echo/v4"

    "github.com/iliyamo/founder-copilot/internal/model"
)

type createMetricReq struct {
    IdeaID     *uint64    `json:"idea_id"`
    MetricType string     `json:"metric_type"`
    Value      string     `json:"value"`
    Notes      *string    `json:"notes"`
    RecordedAt *time.Time `json:"recorded_at"`
}

var metricTypes = map[string]bool{
    model.MetricUsers:      true,
    model.MetricRevenue:    true,
    model.MetricExperiment: true,
    model.MetricLearning:   true,
}

// CreateMetric logs one data point.  recorded_at defaults to now.
func (h *FounderHandler) CreateMetric(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    var req createMetricReq
    if err := c.Bind(&req); err != nil {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid body"})
    }
    req.MetricType = strings.ToLower(strings.TrimSpace(req.MetricType))
    req.Value = strings.TrimSpace(req.Value)
    if !metricTypes[req.MetricType] {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "metric_type must be users, revenue, experiment or learning"})
    }
    if req.Value == "" {
        return c.JSON(http.StatusBadRequest, echo.Map{"error": "value is required"})
    }

    ctx, cancel := dbCtx(c)
    defer cancel()

    if req.IdeaID != nil {
        if _, err := h.Ideas.GetByID(ctx, uid, *req.IdeaID); err != nil {
            return storeError(c, err, "failed to load idea")
        }
    }
    now := time.Now().UTC()
    m := model.Metric{
        UserID:     uid,
        IdeaID:     req.IdeaID,
        MetricType: req.MetricType,
        Value:      req.Value,
        Notes:      optional(req.Notes),
        RecordedAt: now,
        CreatedAt:  now,
    }
    if req.RecordedAt != nil && !req.RecordedAt.IsZero() {
        m.RecordedAt = req.RecordedAt.UTC()
    }
    id, err := h.Metrics.Create(ctx, m)
    if err != nil {
        return storeError(c, err, "failed to create metric")
    }
    m.ID = id
    return c.JSON(http.StatusCreated, m)
}

// ListMetrics returns the founder's metrics, newest first.
func (h *FounderHandler) ListMetrics(c echo.Context) error {
    uid, err := getUserID(c)
    if err != nil {
        return unauthorized(c)
    }
    ctx, cancel := dbCtx(c)
    defer cancel()

    list, err := h.Metrics.ListByUser(ctx, uid, 0)
    if err != nil {
        return storeError(c, err, "failed to list metrics")
    }
    return c.JSON(http.StatusOK, echo.Map{"metrics": list})
}
