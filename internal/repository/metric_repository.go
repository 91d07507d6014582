package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

type MetricRepo struct{ DB *sql.DB }

func NewMetricRepo(db *sql.DB) *MetricRepo { return &MetricRepo{DB: db} }

const metricColumns = "id,user_id,idea_id,metric_type,value,notes,recorded_at,created_at"

func scanMetric(s rowScanner) (model.Metric, error) {
	var (
		m      model.Metric
		ideaID sql.NullInt64
		notes  sql.NullString
	)
	if err := s.Scan(&m.ID, &m.UserID, &ideaID, &m.MetricType, &m.Value, &notes, &m.RecordedAt, &m.CreatedAt); err != nil {
		return m, err
	}
	m.IdeaID, m.Notes = idPtr(ideaID), strPtr(notes)
	return m, nil
}

// Create inserts a metric; a zero RecordedAt means now.
func (r *MetricRepo) Create(ctx context.Context, m model.Metric) (uint64, error) {
	recorded := orNow(m.RecordedAt)
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO metrics (user_id,idea_id,metric_type,value,notes,recorded_at,created_at) VALUES (?,?,?,?,?,?,?)",
		m.UserID, nullID(m.IdeaID), m.MetricType, m.Value, nullStr(m.Notes), recorded, time.Now().UTC())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *MetricRepo) list(ctx context.Context, query string, args ...any) ([]model.Metric, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Metric{}
	for rows.Next() {
		m, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListByUser returns metrics by recorded_at, newest first.
func (r *MetricRepo) ListByUser(ctx context.Context, userID uint64, limit int) ([]model.Metric, error) {
	return r.list(ctx, "SELECT "+metricColumns+" FROM metrics WHERE user_id=? ORDER BY recorded_at DESC, id DESC"+limitClause(limit), userID)
}

// ListBetween returns metrics recorded within [from, to], oldest first.
func (r *MetricRepo) ListBetween(ctx context.Context, userID uint64, from, to time.Time) ([]model.Metric, error) {
	return r.list(ctx, "SELECT "+metricColumns+" FROM metrics WHERE user_id=? AND recorded_at>=? AND recorded_at<=? ORDER BY recorded_at ASC, id ASC",
		userID, from.UTC(), to.UTC())
}
