package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

type IdeaRepo struct{ DB *sql.DB }

func NewIdeaRepo(db *sql.DB) *IdeaRepo { return &IdeaRepo{DB: db} }

const ideaColumns = `id,user_id,title,problem_statement,target_user,market_pain,niche_focus,risks,assumptions,
validation_score,validation_reasoning,status,created_at,updated_at`

func scanIdea(s rowScanner) (model.Idea, error) {
	var (
		it                                  model.Idea
		problem, target, pain, niche, reasn sql.NullString
		risks, assumptions                  sql.NullString
		score                               sql.NullInt64
	)
	if err := s.Scan(&it.ID, &it.UserID, &it.Title, &problem, &target, &pain, &niche, &risks, &assumptions,
		&score, &reasn, &it.Status, &it.CreatedAt, &it.UpdatedAt); err != nil {
		return it, err
	}
	it.ProblemStatement, it.TargetUser, it.MarketPain, it.NicheFocus = strPtr(problem), strPtr(target), strPtr(pain), strPtr(niche)
	it.Risks, it.Assumptions = decodeList(risks), decodeList(assumptions)
	it.ValidationScore, it.ValidationReasoning = intPtr(score), strPtr(reasn)
	return it, nil
}

// Create inserts a draft idea and returns its id.
func (r *IdeaRepo) Create(ctx context.Context, it model.Idea) (uint64, error) {
	risks, err := encodeList(it.Risks)
	if err != nil {
		return 0, err
	}
	assumptions, err := encodeList(it.Assumptions)
	if err != nil {
		return 0, err
	}
	if it.Status == "" {
		it.Status = model.IdeaDraft
	}
	created := orNow(it.CreatedAt)
	res, err := r.DB.ExecContext(ctx, `INSERT INTO ideas (user_id,title,problem_statement,target_user,market_pain,niche_focus,
risks,assumptions,status,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		it.UserID, it.Title, nullStr(it.ProblemStatement), nullStr(it.TargetUser), nullStr(it.MarketPain),
		nullStr(it.NicheFocus), risks, assumptions, it.Status, created, created)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByID returns the idea if it belongs to userID, ErrNotFound otherwise.
func (r *IdeaRepo) GetByID(ctx context.Context, userID, id uint64) (model.Idea, error) {
	it, err := scanIdea(r.DB.QueryRowContext(ctx,
		"SELECT "+ideaColumns+" FROM ideas WHERE id=? AND user_id=? LIMIT 1", id, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return it, ErrNotFound
	}
	return it, err
}

// ListByUser returns ideas newest first.  limit <= 0 means no limit.
func (r *IdeaRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Idea, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+ideaColumns+" FROM ideas WHERE user_id=? ORDER BY created_at DESC, id DESC"+limitClause(limit), userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Idea{}
	for rows.Next() {
		it, err := scanIdea(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}

// SetStatus moves an idea between draft/validating/validated without
// touching its score.
func (r *IdeaRepo) SetStatus(ctx context.Context, userID, id uint64, status string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE ideas SET status=?, updated_at=? WHERE id=? AND user_id=?",
		status, time.Now().UTC(), id, userID)
	return affectedOne(res, err)
}

// SaveValidation stores the outcome of a validation pass and marks the idea
// validated.  A nil score is stored as NULL, not zero.
func (r *IdeaRepo) SaveValidation(ctx context.Context, userID, id uint64, score *int, reasoning string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE ideas SET validation_score=?, validation_reasoning=?, status=?, updated_at=? WHERE id=? AND user_id=?",
		nullInt(score), reasoning, model.IdeaValidated, time.Now().UTC(), id, userID)
	return affectedOne(res, err)
}
