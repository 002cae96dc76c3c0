package memory

import (
	"context"
	"sync"

	"studybuddy-service/internal/domain"
)

// ProgressRepository keeps progress rows and achievement awards in memory.
type ProgressRepository struct {
	mu           sync.RWMutex
	achievements []domain.Achievement
	progress     map[string]domain.UserProgress
	awards       map[string][]domain.UserAchievement
}

// NewProgressRepository seeds the given achievement definitions.
func NewProgressRepository(achievements []domain.Achievement) *ProgressRepository {
	return &ProgressRepository{
		achievements: achievements,
		progress:     make(map[string]domain.UserProgress),
		awards:       make(map[string][]domain.UserAchievement),
	}
}

func (r *ProgressRepository) GetProgress(_ context.Context, userID string) (domain.UserProgress, bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.progress[userID]
	return p, ok, nil
}

func (r *ProgressRepository) SaveProgress(_ context.Context, p domain.UserProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.progress[p.UserID] = p
	return nil
}

func (r *ProgressRepository) Achievements(_ context.Context) ([]domain.Achievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Achievement(nil), r.achievements...), nil
}

func (r *ProgressRepository) AwardAchievement(_ context.Context, award domain.UserAchievement) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.awards[award.UserID] {
		if a.Achievement == award.Achievement {
			return false, nil
		}
	}
	r.awards[award.UserID] = append(r.awards[award.UserID], award)
	return true, nil
}

func (r *ProgressRepository) UserAchievements(_ context.Context, userID string) ([]domain.UserAchievement, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.UserAchievement{}, r.awards[userID]...), nil
}
