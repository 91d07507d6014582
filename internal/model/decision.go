package model

import "time"

// Confidence levels accepted for a decision.
const (
    ConfidenceLow    = "low"
    ConfidenceMedium = "medium"
    ConfidenceHigh   = "high"
)

// Decision records a choice the founder made and why.  ChosenOption is
// expected to be one of OptionsConsidered but this is not enforced.
type Decision struct {
    ID                uint64    `json:"id"`
    UserID            uint64    `json:"user_id"`
    IdeaID            *uint64   `json:"idea_id,omitempty"`
    Title             string    `json:"title"`
    Description       string    `json:"description"`
    OptionsConsidered []string  `json:"options_considered"`
    ChosenOption      string    `json:"chosen_option"`
    ConfidenceLevel   *string   `json:"confidence_level"`
    Reasoning         *string   `json:"reasoning,omitempty"`
    ExpectedOutcome   *string   `json:"expected_outcome,omitempty"`
    ActualOutcome     *string   `json:"actual_outcome,omitempty"`
    CreatedAt         time.Time `json:"created_at"`
    UpdatedAt         time.Time `json:"updated_at"`
}
