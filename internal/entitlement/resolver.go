// Package entitlement decides whether a founder may use the gated features.
//
// Access is derived, never stored: a legacy account always passes, otherwise
// the subscription must be "active" and end strictly after now.  End dates
// pass with wall-clock time, so every check re-evaluates against the clock.
package entitlement

import (
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

// State is the four profile inputs access depends on.
type State struct {
	IsLegacyUser bool
	Status       string
	Plan         string
	EndDate      *time.Time
}

// FromProfile copies the relevant columns out of a profile row.
func FromProfile(p model.Profile) State {
	s := State{IsLegacyUser: p.IsLegacyUser, EndDate: p.SubscriptionEndDate}
	if p.SubscriptionStatus != nil {
		s.Status = *p.SubscriptionStatus
	}
	if p.SubscriptionPlan != nil {
		s.Plan = *p.SubscriptionPlan
	}
	return s
}

// IsSubscribed reports whether the paid subscription alone grants access.
func IsSubscribed(s State, now time.Time) bool {
	return s.Status == model.SubscriptionActive && s.EndDate != nil && s.EndDate.After(now)
}

// HasAccess is IsLegacyUser OR (status == active AND end > now).  An end date
// equal to now does not grant access.
func HasAccess(s State, now time.Time) bool {
	return s.IsLegacyUser || IsSubscribed(s, now)
}

// DaysRemaining returns the whole days from now until end, truncated toward
// zero.  A negative result means the subscription has expired.
func DaysRemaining(end, now time.Time) int {
	return int(end.Sub(now) / (24 * time.Hour))
}
