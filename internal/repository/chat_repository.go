package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/founder-copilot/internal/model"
)

// ChatRepo appends and reads chat history.  Messages are never updated.
type ChatRepo struct{ DB *sql.DB }

func NewChatRepo(db *sql.DB) *ChatRepo { return &ChatRepo{DB: db} }

const chatColumns = "id,user_id,role,content,context_type,context_id,created_at"

// GeneralContext means "every conversation" when filtering history.
const GeneralContext = "general"

func scanChat(s rowScanner) (model.ChatMessage, error) {
	var (
		m       model.ChatMessage
		ct, cid sql.NullString
	)
	if err := s.Scan(&m.ID, &m.UserID, &m.Role, &m.Content, &ct, &cid, &m.CreatedAt); err != nil {
		return m, err
	}
	m.ContextType, m.ContextID = strPtr(ct), strPtr(cid)
	return m, nil
}

// Create appends one message and returns its id.
func (r *ChatRepo) Create(ctx context.Context, m model.ChatMessage) (uint64, error) {
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO chat_messages (user_id,role,content,context_type,context_id,created_at) VALUES (?,?,?,?,?,?)",
		m.UserID, m.Role, m.Content, nullStr(m.ContextType), nullStr(m.ContextID), orNow(m.CreatedAt))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

func (r *ChatRepo) list(ctx context.Context, query string, args ...any) ([]model.ChatMessage, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ChatMessage{}
	for rows.Next() {
		m, err := scanChat(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// ListRecent returns the newest messages first across every context.
func (r *ChatRepo) ListRecent(ctx context.Context, userID uint64, limit int) ([]model.ChatMessage, error) {
	return r.list(ctx, "SELECT "+chatColumns+" FROM chat_messages WHERE user_id=? ORDER BY created_at DESC, id DESC"+limitClause(limit), userID)
}

// History returns the latest limit messages of one conversation in
// chronological order.  contextType "general" (or empty) does not filter by
// type; an empty contextID does not filter by id.
func (r *ChatRepo) History(ctx context.Context, userID uint64, contextType, contextID string, limit int) ([]model.ChatMessage, error) {
	query := "SELECT " + chatColumns + " FROM chat_messages WHERE user_id=?"
	args := []any{userID}
	if contextType != "" && contextType != GeneralContext {
		query += " AND context_type=?"
		args = append(args, contextType)
	}
	if contextID != "" {
		query += " AND context_id=?"
		args = append(args, contextID)
	}
	query += " ORDER BY created_at DESC, id DESC" + limitClause(limit)

	msgs, err := r.list(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
	return msgs, nil
}

// ListBetween returns messages created within [from, to], oldest first.
func (r *ChatRepo) ListBetween(ctx context.Context, userID uint64, from, to time.Time, limit int) ([]model.ChatMessage, error) {
	return r.list(ctx, "SELECT "+chatColumns+" FROM chat_messages WHERE user_id=? AND created_at>=? AND created_at<=? ORDER BY created_at ASC, id ASC"+limitClause(limit),
		userID, from.UTC(), to.UTC())
}
