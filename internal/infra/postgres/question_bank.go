package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v4/pgxpool"
	"studybuddy-service/internal/domain"
)

// QuestionBank loads question JSONB rows from Postgres in authoring order.
type QuestionBank struct {
	pool   *pgxpool.Pool
	quizID string
}

func NewQuestionBank(pool *pgxpool.Pool, quizID string) *QuestionBank {
	return &QuestionBank{pool: pool, quizID: quizID}
}

func (b *QuestionBank) Questions(ctx context.Context) ([]domain.Question, error) {
	rows, err := b.pool.Query(ctx, `SELECT data FROM questions WHERE quiz_id=$1 ORDER BY position`, b.quizID)
	if err != nil {
		return nil, fmt.Errorf("load questions: %w", err)
	}
	defer rows.Close()

	questions := make([]domain.Question, 0)
	for rows.Next() {
		var raw []byte
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		var q domain.Question
		if err := json.Unmarshal(raw, &q); err != nil {
			return nil, fmt.Errorf("unmarshal question: %w", err)
		}
		questions = append(questions, q)
	}
	return questions, rows.Err()
}
