package entitlement

import (
	"context"
	"sync"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

// ProfileLoader fetches the founder's profile row.
type ProfileLoader interface {
	GetByUserID(ctx context.Context, userID uint64) (model.Profile, error)
}

// Session holds one founder's entitlement inputs for the duration of a
// request (or a client session).  The inputs are only reloaded by Refetch;
// the access decision itself is recomputed on every call.
type Session struct {
	UserID uint64

	loader ProfileLoader
	clock  func() time.Time

	mu     sync.RWMutex
	state  State
	loaded bool
}

// NewSession creates an empty session.  Call Refetch before reading it.
func NewSession(userID uint64, loader ProfileLoader, clock func() time.Time) *Session {
	if clock == nil {
		clock = time.Now
	}
	return &Session{UserID: userID, loader: loader, clock: clock}
}

// Refetch reloads the profile.  On error the previous state is kept.
func (s *Session) Refetch(ctx context.Context) error {
	p, err := s.loader.GetByUserID(ctx, s.UserID)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.state = FromProfile(p)
	s.loaded = true
	s.mu.Unlock()
	return nil
}

// Invalidate forgets the loaded state; HasAccess is false until Refetch.
func (s *Session) Invalidate() {
	s.mu.Lock()
	s.state = State{}
	s.loaded = false
	s.mu.Unlock()
}

// HasAccess evaluates the loaded state against the current time.
func (s *Session) HasAccess() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded && HasAccess(s.state, s.clock())
}

// Snapshot is the read model served by GET /v1/subscription.
type Snapshot struct {
	IsLegacyUser  bool       `json:"is_legacy_user"`
	IsSubscribed  bool       `json:"is_subscribed"`
	HasAccess     bool       `json:"has_access"`
	Status        *string    `json:"status"`
	Plan          *string    `json:"plan"`
	EndDate       *time.Time `json:"end_date"`
	DaysRemaining *int       `json:"days_remaining"`
}

// Snapshot renders the state as of now.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	st, loaded := s.state, s.loaded
	s.mu.RUnlock()
	now := s.clock()
	snap := Snapshot{
		IsLegacyUser: st.IsLegacyUser,
		IsSubscribed: IsSubscribed(st, now),
		HasAccess:    loaded && HasAccess(st, now),
		EndDate:      st.EndDate,
	}
	if st.Status != "" {
		v := st.Status
		snap.Status = &v
	}
	if st.Plan != "" {
		v := st.Plan
		snap.Plan = &v
	}
	if st.EndDate != nil {
		d := DaysRemaining(*st.EndDate, now)
		snap.DaysRemaining = &d
	}
	return snap
}
