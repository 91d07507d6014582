package model

import "time"

// Idea status values.  draft -> validating -> validated, or back to draft
// when a validation attempt fails.
const (
    IdeaDraft      = "draft"
    IdeaValidating = "validating"
    IdeaValidated  = "validated"
)

// Idea is a startup idea under evaluation.
//
// ValidationScore is nil until a validation pass produced a score; zero is a
// real (very low) score.
type Idea struct {
    ID                  uint64    `json:"id"`
    UserID              uint64    `json:"user_id"`
    Title               string    `json:"title"`
    ProblemStatement    *string   `json:"problem_statement,omitempty"`
    TargetUser          *string   `json:"target_user,omitempty"`
    MarketPain          *string   `json:"market_pain,omitempty"`
    NicheFocus          *string   `json:"niche_focus,omitempty"`
    Risks               []string  `json:"risks"`
    Assumptions         []string  `json:"assumptions"`
    ValidationScore     *int      `json:"validation_score"`
    ValidationReasoning *string   `json:"validation_reasoning,omitempty"`
    Status              string    `json:"status"`
    CreatedAt           time.Time `json:"created_at"`
    UpdatedAt           time.Time `json:"updated_at"`
}
