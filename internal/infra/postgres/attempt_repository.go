package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"studybuddy-service/internal/domain"
)

// AttemptRepository stores completed quizzes in the quiz_results table.
type AttemptRepository struct {
	pool *pgxpool.Pool
}

func NewAttemptRepository(pool *pgxpool.Pool) *AttemptRepository {
	return &AttemptRepository{pool: pool}
}

func (r *AttemptRepository) SaveAttempt(ctx context.Context, a domain.QuizAttempt) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO quiz_results
		(id, user_id, subject, topic, score, correct_answers, total_questions, total_time, completed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		a.ID, a.UserID, a.Subject, a.Topic, a.Score, a.Correct, a.Total, a.TotalTime, a.CompletedAt,
	)
	if err != nil {
		return fmt.Errorf("insert quiz result: %w", err)
	}
	return nil
}

// ListAttempts returns newest first. A non-positive limit returns everything.
func (r *AttemptRepository) ListAttempts(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error) {
	query := `SELECT id, user_id, subject, topic, score, correct_answers, total_questions, total_time, completed_at
		FROM quiz_results WHERE user_id=$1 ORDER BY seq DESC`
	args := []interface{}{userID}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list quiz results: %w", err)
	}
	defer rows.Close()

	out := make([]domain.QuizAttempt, 0)
	for rows.Next() {
		var a domain.QuizAttempt
		if err := rows.Scan(&a.ID, &a.UserID, &a.Subject, &a.Topic, &a.Score, &a.Correct, &a.Total, &a.TotalTime, &a.CompletedAt); err != nil {
			return nil, fmt.Errorf("scan quiz result: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
