package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

type DecisionRepo struct{ DB *sql.DB }

func NewDecisionRepo(db *sql.DB) *DecisionRepo { return &DecisionRepo{DB: db} }

const decisionColumns = `id,user_id,idea_id,title,description,options_considered,chosen_option,confidence_level,
reasoning,expected_outcome,actual_outcome,created_at,updated_at`

func scanDecision(s rowScanner) (model.Decision, error) {
	var (
		d                                        model.Decision
		ideaID                                   sql.NullInt64
		options, confidence, reasoning, exp, act sql.NullString
	)
	if err := s.Scan(&d.ID, &d.UserID, &ideaID, &d.Title, &d.Description, &options, &d.ChosenOption, &confidence,
		&reasoning, &exp, &act, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return d, err
	}
	d.IdeaID = idPtr(ideaID)
	d.OptionsConsidered = decodeList(options)
	d.ConfidenceLevel, d.Reasoning = strPtr(confidence), strPtr(reasoning)
	d.ExpectedOutcome, d.ActualOutcome = strPtr(exp), strPtr(act)
	return d, nil
}

// Create inserts a decision and returns its id.
func (r *DecisionRepo) Create(ctx context.Context, d model.Decision) (uint64, error) {
	options, err := encodeList(d.OptionsConsidered)
	if err != nil {
		return 0, err
	}
	created := orNow(d.CreatedAt)
	res, err := r.DB.ExecContext(ctx, `INSERT INTO decisions (user_id,idea_id,title,description,options_considered,
chosen_option,confidence_level,reasoning,expected_outcome,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		d.UserID, nullID(d.IdeaID), d.Title, d.Description, options, d.ChosenOption, nullStr(d.ConfidenceLevel),
		nullStr(d.Reasoning), nullStr(d.ExpectedOutcome), created, created)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *DecisionRepo) list(ctx context.Context, query string, args ...any) ([]model.Decision, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Decision{}
	for rows.Next() {
		d, err := scanDecision(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// ListByUser returns decisions newest first.  limit <= 0 means no limit.
func (r *DecisionRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Decision, error) {
	return r.list(ctx, "SELECT "+decisionColumns+" FROM decisions WHERE user_id=? ORDER BY created_at DESC, id DESC"+limitClause(limit), userID)
}

// ListBetween returns decisions created within [from, to], oldest first.
func (r *DecisionRepo) ListBetween(ctx context.Context, userID uint64, from, to time.Time) ([]model.Decision, error) {
	return r.list(ctx, "SELECT "+decisionColumns+" FROM decisions WHERE user_id=? AND created_at>=? AND created_at<=? ORDER BY created_at ASC, id ASC",
		userID, from.UTC(), to.UTC())
}
