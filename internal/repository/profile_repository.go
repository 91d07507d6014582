package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

// ProfileRepo reads and writes the profiles table.  Rows are created by
// UserRepo.Create.
type ProfileRepo struct{ DB *sql.DB }

func NewProfileRepo(db *sql.DB) *ProfileRepo { return &ProfileRepo{DB: db} }

const profileColumns = `id,user_id,full_name,country,industry,experience_level,primary_role,goals,constraints,
risk_tolerance,time_availability_hours,timezone,profile_completed,is_legacy_user,subscription_status,
subscription_plan,subscription_id,subscription_start_date,subscription_end_date,created_at,updated_at`

// ProfileInput is the founder-editable part of a profile.  Nil fields are
// stored as NULL.
type ProfileInput struct {
	FullName              *string
	Country               *string
	Industry              *string
	ExperienceLevel       *string
	PrimaryRole           *string
	Goals                 *string
	Constraints           *string
	RiskTolerance         *string
	TimeAvailabilityHours *int
	Timezone              *string
	ProfileCompleted      bool
}

// GetByUserID returns ErrNotFound when the user has no profile row.
func (r *ProfileRepo) GetByUserID(ctx context.Context, userID uint64) (model.Profile, error) {
	var (
		p                                                   model.Profile
		fullName, country, industry, exp, role, goals, cons sql.NullString
		risk, tz, subStatus, subPlan, subID                 sql.NullString
		hours                                               sql.NullInt64
		subStart, subEnd                                    sql.NullTime
	)
	err := r.DB.QueryRowContext(ctx, "SELECT "+profileColumns+" FROM profiles WHERE user_id=? LIMIT 1", userID).Scan(
		&p.ID, &p.UserID, &fullName, &country, &industry, &exp, &role, &goals, &cons,
		&risk, &hours, &tz, &p.ProfileCompleted, &p.IsLegacyUser, &subStatus,
		&subPlan, &subID, &subStart, &subEnd, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return p, ErrNotFound
	}
	if err != nil {
		return p, err
	}
	p.FullName, p.Country, p.Industry = strPtr(fullName), strPtr(country), strPtr(industry)
	p.ExperienceLevel, p.PrimaryRole, p.Goals = strPtr(exp), strPtr(role), strPtr(goals)
	p.Constraints, p.RiskTolerance, p.Timezone = strPtr(cons), strPtr(risk), strPtr(tz)
	p.TimeAvailabilityHours = intPtr(hours)
	p.SubscriptionStatus, p.SubscriptionPlan, p.SubscriptionID = strPtr(subStatus), strPtr(subPlan), strPtr(subID)
	p.SubscriptionStartDate, p.SubscriptionEndDate = timePtr(subStart), timePtr(subEnd)
	return p, nil
}

// Update overwrites the questionnaire fields.
func (r *ProfileRepo) Update(ctx context.Context, userID uint64, in ProfileInput) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE profiles SET full_name=?, country=?, industry=?, experience_level=?,
primary_role=?, goals=?, constraints=?, risk_tolerance=?, time_availability_hours=?, timezone=?,
profile_completed=?, updated_at=? WHERE user_id=?`,
		nullStr(in.FullName), nullStr(in.Country), nullStr(in.Industry), nullStr(in.ExperienceLevel),
		nullStr(in.PrimaryRole), nullStr(in.Goals), nullStr(in.Constraints), nullStr(in.RiskTolerance),
		nullInt(in.TimeAvailabilityHours), nullStr(in.Timezone), in.ProfileCompleted, time.Now().UTC(), userID)
	return affectedOne(res, err)
}

// UpdateSubscription writes the subscription columns after a verified
// payment.
func (r *ProfileRepo) UpdateSubscription(ctx context.Context, userID uint64, u model.SubscriptionUpdate) error {
	res, err := r.DB.ExecContext(ctx, `UPDATE profiles SET subscription_status=?, subscription_plan=?, subscription_id=?,
subscription_start_date=?, subscription_end_date=?, updated_at=? WHERE user_id=?`,
		u.Status, u.Plan, u.ID, u.StartDate.UTC(), u.EndDate.UTC(), time.Now().UTC(), userID)
	return affectedOne(res, err)
}

// SetLegacy grants or revokes permanent access.
func (r *ProfileRepo) SetLegacy(ctx context.Context, userID uint64, legacy bool) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE profiles SET is_legacy_user=?, updated_at=? WHERE user_id=?",
		legacy, time.Now().UTC(), userID)
	return affectedOne(res, err)
}

// affectedOne turns "no row matched" into ErrNotFound.  MySQL reports zero
// affected rows when the new values equal the old ones, so the driver must be
// opened with clientFoundRows for this to be exact; see database.Open.
func affectedOne(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
