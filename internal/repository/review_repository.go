package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/founder-copilot/internal/model"
)

type ReviewRepo struct{ DB *sql.DB }

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{DB: db} }

const reviewColumns = `id,user_id,week_start,week_end,what_worked,what_didnt_work,key_learnings,next_priorities,
hard_truth,generated_at,created_at`

// Create stores a generated review.  Nil sections become NULL.
func (r *ReviewRepo) Create(ctx context.Context, rv model.WeeklyReview) (uint64, error) {
	generated := orNow(rv.GeneratedAt)
	res, err := r.DB.ExecContext(ctx, `INSERT INTO weekly_reviews (user_id,week_start,week_end,what_worked,what_didnt_work,
key_learnings,next_priorities,hard_truth,generated_at,created_at) VALUES (?,?,?,?,?,?,?,?,?,?)`,
		rv.UserID, rv.WeekStart.UTC(), rv.WeekEnd.UTC(), nullStr(rv.WhatWorked), nullStr(rv.WhatDidntWork),
		nullStr(rv.KeyLearnings), nullStr(rv.NextPriorities), nullStr(rv.HardTruth), generated, generated)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// ListByUser returns reviews by week, newest first.
func (r *ReviewRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.WeeklyReview, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+reviewColumns+" FROM weekly_reviews WHERE user_id=? ORDER BY week_start DESC, id DESC"+limitClause(limit), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.WeeklyReview{}
	for rows.Next() {
		var (
			rv                             model.WeeklyReview
			worked, didnt, learn, next, ht sql.NullString
		)
		if err := rows.Scan(&rv.ID, &rv.UserID, &rv.WeekStart, &rv.WeekEnd, &worked, &didnt, &learn, &next,
			&ht, &rv.GeneratedAt, &rv.CreatedAt); err != nil {
			return nil, err
		}
		rv.WhatWorked, rv.WhatDidntWork, rv.KeyLearnings = strPtr(worked), strPtr(didnt), strPtr(learn)
		rv.NextPriorities, rv.HardTruth = strPtr(next), strPtr(ht)
		out = append(out, rv)
	}
	return out, rows.Err()
}
