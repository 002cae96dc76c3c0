package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"studybuddy-service/internal/domain"
)

const (
	sessionColumns = `id, user_id, title, subject, created_at, updated_at`
	messageColumns = `id, session_id, role, content, subject, helpful, created_at`
)

// ChatRepository stores chat_sessions and their chat_messages.
type ChatRepository struct {
	pool *pgxpool.Pool
}

func NewChatRepository(pool *pgxpool.Pool) *ChatRepository {
	return &ChatRepository{pool: pool}
}

func (r *ChatRepository) CreateSession(ctx context.Context, info domain.ChatSessionInfo) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO chat_sessions (`+sessionColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
		info.ID, info.UserID, info.Title, info.Subject, info.CreatedAt, info.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert chat session: %w", err)
	}
	return nil
}

func (r *ChatRepository) GetSession(ctx context.Context, userID, id string) (domain.ChatSessionInfo, error) {
	var info domain.ChatSessionInfo
	err := r.pool.QueryRow(ctx, `SELECT `+sessionColumns+` FROM chat_sessions WHERE id=$1 AND user_id=$2`, id, userID).
		Scan(&info.ID, &info.UserID, &info.Title, &info.Subject, &info.CreatedAt, &info.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.ChatSessionInfo{}, domain.ErrSessionNotFound
	}
	if err != nil {
		return domain.ChatSessionInfo{}, fmt.Errorf("get chat session: %w", err)
	}
	return info, nil
}

// ListSessions returns the user's sessions, most recently updated first.
func (r *ChatRepository) ListSessions(ctx context.Context, userID string) ([]domain.ChatSessionInfo, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+sessionColumns+` FROM chat_sessions WHERE user_id=$1 ORDER BY updated_at DESC, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("list chat sessions: %w", err)
	}
	defer rows.Close()

	out := make([]domain.ChatSessionInfo, 0)
	for rows.Next() {
		var info domain.ChatSessionInfo
		if err := rows.Scan(&info.ID, &info.UserID, &info.Title, &info.Subject, &info.CreatedAt, &info.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan chat session: %w", err)
		}
		out = append(out, info)
	}
	return out, rows.Err()
}

func (r *ChatRepository) TouchSession(ctx context.Context, id string, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE chat_sessions SET updated_at=$2 WHERE id=$1`, id, at)
	if err != nil {
		return fmt.Errorf("touch chat session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

// DeleteSession removes the session; its messages go with it through ON DELETE CASCADE.
func (r *ChatRepository) DeleteSession(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM chat_sessions WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete chat session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *ChatRepository) AppendMessage(ctx context.Context, msg domain.Message) error {
	tag, err := r.pool.Exec(ctx, `INSERT INTO chat_messages (`+messageColumns+`)
		SELECT $1::text, $2::text, $3::text, $4::text, $5::text, $6::boolean, $7::timestamptz
		WHERE EXISTS (SELECT 1 FROM chat_sessions WHERE id=$2)`,
		msg.ID, msg.SessionID, string(msg.Role), msg.Content, msg.Subject, msg.Helpful, msg.Timestamp)
	if err != nil {
		return fmt.Errorf("insert chat message: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSessionNotFound
	}
	return nil
}

func (r *ChatRepository) GetMessage(ctx context.Context, id string) (domain.Message, error) {
	msg, err := scanMessage(r.pool.QueryRow(ctx, `SELECT `+messageColumns+` FROM chat_messages WHERE id=$1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Message{}, domain.ErrMessageNotFound
	}
	if err != nil {
		return domain.Message{}, fmt.Errorf("get chat message: %w", err)
	}
	return msg, nil
}

// SetHelpful only updates unrated messages, so a second rating loses.
func (r *ChatRepository) SetHelpful(ctx context.Context, id string, helpful bool) error {
	tag, err := r.pool.Exec(ctx, `UPDATE chat_messages SET helpful=$2 WHERE id=$1 AND helpful IS NULL`, id, helpful)
	if err != nil {
		return fmt.Errorf("set helpful: %w", err)
	}
	if tag.RowsAffected() == 1 {
		return nil
	}
	if _, err := r.GetMessage(ctx, id); err != nil {
		return err
	}
	return domain.ErrFeedbackAlreadySet
}

func (r *ChatRepository) ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+messageColumns+` FROM chat_messages WHERE session_id=$1 ORDER BY seq`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("list chat messages: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Message, 0)
	for rows.Next() {
		msg, err := scanMessage(rows)
		if err != nil {
			return nil, fmt.Errorf("scan chat message: %w", err)
		}
		out = append(out, msg)
	}
	return out, rows.Err()
}

func scanMessage(row pgx.Row) (domain.Message, error) {
	var (
		m    domain.Message
		role string
	)
	err := row.Scan(&m.ID, &m.SessionID, &role, &m.Content, &m.Subject, &m.Helpful, &m.Timestamp)
	m.Role = domain.Role(role)
	return m, err
}
