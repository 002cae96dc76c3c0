package memory

import (
	"context"
	"sync"

	"studybuddy-service/internal/domain"
)

// AttemptRepository keeps completed quizzes per user.
type AttemptRepository struct {
	mu       sync.RWMutex
	attempts map[string][]domain.QuizAttempt
}

func NewAttemptRepository() *AttemptRepository {
	return &AttemptRepository{attempts: make(map[string][]domain.QuizAttempt)}
}

func (r *AttemptRepository) SaveAttempt(_ context.Context, attempt domain.QuizAttempt) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.attempts[attempt.UserID] = append(r.attempts[attempt.UserID], attempt)
	return nil
}

// ListAttempts returns newest first. A non-positive limit returns everything.
func (r *AttemptRepository) ListAttempts(_ context.Context, userID string, limit int) ([]domain.QuizAttempt, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := r.attempts[userID]
	out := make([]domain.QuizAttempt, 0, len(all))
	for i := len(all) - 1; i >= 0; i-- {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, all[i])
	}
	return out, nil
}
