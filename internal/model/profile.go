package model

import "time"

// Subscription status values stored in profiles.subscription_status.
const (
    SubscriptionActive = "active"
)

// Profile is the founder's questionnaire answers plus the subscription
// fields the payment handshake maintains.  Entitlement is never stored
// here; it is derived from IsLegacyUser, SubscriptionStatus and
// SubscriptionEndDate each time it is needed.
type Profile struct {
    ID                     uint64     `json:"id"`                                // profiles.id
    UserID                 uint64     `json:"user_id"`                           // profiles.user_id
    FullName               *string    `json:"full_name,omitempty"`               // profiles.full_name
    Country                *string    `json:"country,omitempty"`                 // profiles.country
    Industry               *string    `json:"industry,omitempty"`                // profiles.industry
    ExperienceLevel        *string    `json:"experience_level,omitempty"`        // profiles.experience_level
    PrimaryRole            *string    `json:"primary_role,omitempty"`            // profiles.primary_role
    Goals                  *string    `json:"goals,omitempty"`                   // profiles.goals
    Constraints            *string    `json:"constraints,omitempty"`             // profiles.constraints
    RiskTolerance          *string    `json:"risk_tolerance,omitempty"`          // profiles.risk_tolerance
    TimeAvailabilityHours  *int       `json:"time_availability_hours,omitempty"` // profiles.time_availability_hours
    Timezone               *string    `json:"timezone,omitempty"`                // profiles.timezone
    ProfileCompleted       bool       `json:"profile_completed"`                 // profiles.profile_completed
    IsLegacyUser           bool       `json:"is_legacy_user"`                    // profiles.is_legacy_user
    SubscriptionStatus     *string    `json:"subscription_status,omitempty"`     // profiles.subscription_status
    SubscriptionPlan       *string    `json:"subscription_plan,omitempty"`       // profiles.subscription_plan
    SubscriptionID         *string    `json:"subscription_id,omitempty"`         // profiles.subscription_id
    SubscriptionStartDate  *time.Time `json:"subscription_start_date,omitempty"` // profiles.subscription_start_date
    SubscriptionEndDate    *time.Time `json:"subscription_end_date,omitempty"`   // profiles.subscription_end_date
    CreatedAt              time.Time  `json:"created_at"`                        // profiles.created_at
    UpdatedAt              time.Time  `json:"updated_at"`                        // profiles.updated_at
}

// SubscriptionUpdate is the set of profile columns written after a verified
// payment.
type SubscriptionUpdate struct {
    Status    string
    Plan      string
    ID        string
    StartDate time.Time
    EndDate   time.Time
}
