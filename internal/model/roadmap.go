package model

import "time"

// Roadmap is the MVP plan generated for exactly one idea.
type Roadmap struct {
    ID                 uint64        `json:"id"`
    IdeaID             uint64        `json:"idea_id"`
    UserID             uint64        `json:"user_id"`
    MVPScope           *string       `json:"mvp_scope,omitempty"`
    TechStack          []string      `json:"tech_stack"`
    EstimatedBuildTime *string       `json:"estimated_build_time,omitempty"`
    FirstUserPath      *string       `json:"first_user_path,omitempty"`
    Steps              []RoadmapStep `json:"steps"`
    CreatedAt          time.Time     `json:"created_at"`
    UpdatedAt          time.Time     `json:"updated_at"`
}

// RoadmapStep is one ordered step of a roadmap.  StepNumber is unique within
// the roadmap and runs 1..N without gaps.
type RoadmapStep struct {
    ID          uint64     `json:"id"`
    RoadmapID   uint64     `json:"roadmap_id"`
    StepNumber  int        `json:"step_number"`
    Title       string     `json:"title"`
    Description *string    `json:"description"`
    Completed   bool       `json:"completed"`
    CompletedAt *time.Time `json:"completed_at"`
    CreatedAt   time.Time  `json:"created_at"`
}
