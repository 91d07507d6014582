package model

import "time"

// Metric types.
const (
    MetricUsers      = "users"
    MetricRevenue    = "revenue"
    MetricExperiment = "experiment"
    MetricLearning   = "learning"
)

// Metric is one logged data point.  Value is free text ("120", "$40 MRR",
// "landing page A beat B").
type Metric struct {
    ID         uint64    `json:"id"`
    UserID     uint64    `json:"user_id"`
    IdeaID     *uint64   `json:"idea_id,omitempty"`
    MetricType string    `json:"metric_type"`
    Value      string    `json:"value"`
    Notes      *string   `json:"notes,omitempty"`
    RecordedAt time.Time `json:"recorded_at"`
    CreatedAt  time.Time `json:"created_at"`
}
