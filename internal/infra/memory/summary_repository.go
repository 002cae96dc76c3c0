package memory

import (
	"context"
	"sort"
	"sync"

	"studybuddy-service/internal/domain"
)

// SummaryRepository keeps summaries per user, in creation order.
type SummaryRepository struct {
	mu     sync.RWMutex
	byUser map[string][]domain.Summary
}

func NewSummaryRepository() *SummaryRepository {
	return &SummaryRepository{byUser: make(map[string][]domain.Summary)}
}

func (r *SummaryRepository) CreateSummary(_ context.Context, summary domain.Summary) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byUser[summary.UserID] = append(r.byUser[summary.UserID], summary)
	return nil
}

func (r *SummaryRepository) GetSummary(_ context.Context, userID, id string) (domain.Summary, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, s := range r.byUser[userID] {
		if s.ID == id {
			return s, nil
		}
	}
	return domain.Summary{}, domain.ErrSummaryNotFound
}

func (r *SummaryRepository) DeleteSummary(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	list := r.byUser[userID]
	for i, s := range list {
		if s.ID == id {
			r.byUser[userID] = append(list[:i:i], list[i+1:]...)
			return nil
		}
	}
	return domain.ErrSummaryNotFound
}

// ListSummaries returns newest first. A zero limit returns every match.
func (r *SummaryRepository) ListSummaries(_ context.Context, userID string, filter domain.SummaryFilter) ([]domain.Summary, int, error) {
	r.mu.RLock()
	matches := make([]domain.Summary, 0, len(r.byUser[userID]))
	for _, s := range r.byUser[userID] {
		if filter.Format != "" && s.Format != filter.Format {
			continue
		}
		if filter.Language != "" && s.Language != filter.Language {
			continue
		}
		matches = append(matches, s)
	}
	r.mu.RUnlock()

	// creation order is oldest first; reverse and keep it stable for equal timestamps
	for i, j := 0, len(matches)-1; i < j; i, j = i+1, j-1 {
		matches[i], matches[j] = matches[j], matches[i]
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Timestamp.After(matches[j].Timestamp)
	})

	total := len(matches)
	if filter.Offset >= total {
		return []domain.Summary{}, total, nil
	}
	matches = matches[filter.Offset:]
	if filter.Limit > 0 && filter.Limit < len(matches) {
		matches = matches[:filter.Limit]
	}
	return matches, total, nil
}

func (r *SummaryRepository) CountSummaries(_ context.Context, userID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byUser[userID]), nil
}
