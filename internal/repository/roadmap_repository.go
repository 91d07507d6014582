package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

type RoadmapRepo struct{ DB *sql.DB }

func NewRoadmapRepo(db *sql.DB) *RoadmapRepo { return &RoadmapRepo{DB: db} }

const roadmapColumns = "id,idea_id,user_id,mvp_scope,tech_stack,estimated_build_time,first_user_path,created_at,updated_at"

const stepColumns = "id,roadmap_id,step_number,title,description,completed,completed_at,created_at"

// Create inserts the roadmap and its steps in one transaction.  Steps are
// renumbered 1..N in slice order.
func (r *RoadmapRepo) Create(ctx context.Context, rm model.Roadmap) (uint64, error) {
	stack, err := encodeList(rm.TechStack)
	if err != nil {
		return 0, err
	}
	now := orNow(rm.CreatedAt)

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() { _ = tx.Rollback() }()

	res, err := tx.ExecContext(ctx, `INSERT INTO roadmaps (idea_id,user_id,mvp_scope,tech_stack,estimated_build_time,
first_user_path,created_at,updated_at) VALUES (?,?,?,?,?,?,?,?)`,
		rm.IdeaID, rm.UserID, nullStr(rm.MVPScope), stack, nullStr(rm.EstimatedBuildTime), nullStr(rm.FirstUserPath), now, now)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	for i, st := range rm.Steps {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO roadmap_steps (roadmap_id,step_number,title,description,completed,created_at) VALUES (?,?,?,?,?,?)",
			id, i+1, st.Title, nullStr(st.Description), false, now); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func scanRoadmap(s rowScanner) (model.Roadmap, error) {
	var (
		rm                  model.Roadmap
		scope, build, first sql.NullString
		stack               sql.NullString
	)
	if err := s.Scan(&rm.ID, &rm.IdeaID, &rm.UserID, &scope, &stack, &build, &first, &rm.CreatedAt, &rm.UpdatedAt); err != nil {
		return rm, err
	}
	rm.MVPScope, rm.EstimatedBuildTime, rm.FirstUserPath = strPtr(scope), strPtr(build), strPtr(first)
	rm.TechStack = decodeList(stack)
	rm.Steps = []model.RoadmapStep{}
	return rm, nil
}

func scanStep(s rowScanner) (model.RoadmapStep, error) {
	var (
		st   model.RoadmapStep
		desc sql.NullString
		done sql.NullTime
	)
	if err := s.Scan(&st.ID, &st.RoadmapID, &st.StepNumber, &st.Title, &desc, &st.Completed, &done, &st.CreatedAt); err != nil {
		return st, err
	}
	st.Description, st.CompletedAt = strPtr(desc), timePtr(done)
	return st, nil
}

func (r *RoadmapRepo) steps(ctx context.Context, roadmapID uint64) ([]model.RoadmapStep, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+stepColumns+" FROM roadmap_steps WHERE roadmap_id=? ORDER BY step_number ASC", roadmapID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.RoadmapStep{}
	for rows.Next() {
		st, err := scanStep(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetLatestByIdea returns the newest roadmap generated for the idea, with
// its steps ordered by step number.
func (r *RoadmapRepo) GetLatestByIdea(ctx context.Context, userID, ideaID uint64) (model.Roadmap, error) {
	rm, err := scanRoadmap(r.DB.QueryRowContext(ctx,
		"SELECT "+roadmapColumns+" FROM roadmaps WHERE idea_id=? AND user_id=? ORDER BY created_at DESC, id DESC LIMIT 1",
		ideaID, userID))
	if errors.Is(err, sql.ErrNoRows) {
		return rm, ErrNotFound
	}
	if err != nil {
		return rm, err
	}
	rm.Steps, err = r.steps(ctx, rm.ID)
	return rm, err
}

// ListByUser returns roadmaps newest first, each with its steps.
func (r *RoadmapRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Roadmap, error) {
	rows, err := r.DB.QueryContext(ctx,
		"SELECT "+roadmapColumns+" FROM roadmaps WHERE user_id=? ORDER BY created_at DESC, id DESC"+limitClause(limit), userID)
	if err != nil {
		return nil, err
	}
	out := []model.Roadmap{}
	for rows.Next() {
		rm, err := scanRoadmap(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		out = append(out, rm)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()
	// steps are loaded after the cursor is closed; the sqlite test pool has
	// a single connection
	for i := range out {
		if out[i].Steps, err = r.steps(ctx, out[i].ID); err != nil {
			return nil, err
		}
	}
	return out, nil
}

// SetStepCompleted marks a step done (stamping completed_at) or not done
// (clearing it).  The step must belong to one of userID's roadmaps.
func (r *RoadmapRepo) SetStepCompleted(ctx context.Context, userID, stepID uint64, completed bool, at time.Time) (model.RoadmapStep, error) {
	var completedAt any
	if completed {
		completedAt = at.UTC()
	}
	res, err := r.DB.ExecContext(ctx, `UPDATE roadmap_steps SET completed=?, completed_at=?
WHERE id=? AND roadmap_id IN (SELECT id FROM roadmaps WHERE user_id=?)`,
		completed, completedAt, stepID, userID)
	if err := affectedOne(res, err); err != nil {
		return model.RoadmapStep{}, err
	}
	st, err := scanStep(r.DB.QueryRowContext(ctx,
		"SELECT "+stepColumns+" FROM roadmap_steps WHERE id=? LIMIT 1", stepID))
	return st, notFound(err)
}
