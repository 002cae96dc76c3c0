package redis

import (
	"context"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/infra/memory"
)

// QuizSessionStore is a Redis-aware implementation of app.QuizSessionRepository.
// Sessions live in process; Redis only carries a liveness marker per user so
// other instances and operators can see who has a quiz open.
type QuizSessionStore struct {
	client *redis.Client
	ttl    time.Duration
	local  *memory.QuizSessionStore
}

func NewQuizSessionStore(client *redis.Client, ttl time.Duration) *QuizSessionStore {
	return &QuizSessionStore{
		client: client,
		ttl:    ttl,
		local:  memory.NewQuizSessionStore(),
	}
}

// WithLocal replaces the in-process store, e.g. with one that expires idle
// sessions.
func (s *QuizSessionStore) WithLocal(local *memory.QuizSessionStore) *QuizSessionStore {
	s.local = local
	return s
}

func (s *QuizSessionStore) GetOrCreate(userID string, create func() *app.QuizSession) *app.QuizSession {
	session := s.local.GetOrCreate(userID, create)
	s.touch(userID)
	return session
}

func (s *QuizSessionStore) Get(userID string) (*app.QuizSession, bool) {
	session, ok := s.local.Get(userID)
	if ok {
		s.touch(userID)
	}
	return session, ok
}

func (s *QuizSessionStore) Delete(userID string) {
	s.local.Delete(userID)
	s.clear(userID)
}

func (s *QuizSessionStore) CloseAll() {
	users := s.local.Users()
	s.local.CloseAll()
	s.clear(users...)
}

// Sweep expires idle sessions and their markers.
func (s *QuizSessionStore) Sweep() []string {
	expired := s.local.Sweep()
	s.clear(expired...)
	return expired
}

// Active reports whether any instance holds a live quiz for userID.
func (s *QuizSessionStore) Active(ctx context.Context, userID string) (bool, error) {
	n, err := s.client.Exists(ctx, Key(userID)).Result()
	return n > 0, err
}

// touch refreshes the best-effort liveness marker.
func (s *QuizSessionStore) touch(userID string) {
	_ = s.client.Set(context.Background(), Key(userID), "1", s.ttl).Err()
}

func (s *QuizSessionStore) clear(userIDs ...string) {
	if len(userIDs) == 0 {
		return
	}
	keys := make([]string, len(userIDs))
	for i, userID := range userIDs {
		keys[i] = Key(userID)
	}
	if err := s.client.Del(context.Background(), keys...).Err(); err != nil {
		log.Printf("redis del quiz markers: %v", err)
	}
}

// Key is the liveness marker of userID's quiz session.
func Key(userID string) string {
	return "quiz:session:" + userID
}
