package memory

import (
	"sort"
	"sync"
	"time"

	"studybuddy-service/internal/app"
)

// QuizSessionStore is an in-memory implementation of app.QuizSessionRepository.
// It owns its sessions: Delete, CloseAll and idle expiry all close the
// session they remove, cancelling any pending generation.
type QuizSessionStore struct {
	idle time.Duration
	now  func() time.Time

	mu       sync.Mutex
	sessions map[string]*heldQuiz
}

type heldQuiz struct {
	session  *app.QuizSession
	lastSeen time.Time
}

func NewQuizSessionStore() *QuizSessionStore {
	return &QuizSessionStore{
		now:      time.Now,
		sessions: make(map[string]*heldQuiz),
	}
}

// WithIdleTimeout expires sessions left untouched for longer than d.
// Zero keeps sessions until they are deleted.
func (s *QuizSessionStore) WithIdleTimeout(d time.Duration) *QuizSessionStore {
	s.idle = d
	return s
}

// WithClock swaps the clock. Test-only.
func (s *QuizSessionStore) WithClock(now func() time.Time) *QuizSessionStore {
	s.now = now
	return s
}

// IdleTimeout reports the configured expiry, zero when sessions never expire.
func (s *QuizSessionStore) IdleTimeout() time.Duration {
	return s.idle
}

func (s *QuizSessionStore) GetOrCreate(userID string, create func() *app.QuizSession) *app.QuizSession {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if held, ok := s.liveLocked(userID, now); ok {
		held.lastSeen = now
		return held.session
	}
	session := create()
	s.sessions[userID] = &heldQuiz{session: session, lastSeen: now}
	return session
}

func (s *QuizSessionStore) Get(userID string) (*app.QuizSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	held, ok := s.liveLocked(userID, now)
	if !ok {
		return nil, false
	}
	held.lastSeen = now
	return held.session, true
}

// Delete closes and forgets userID's session.
func (s *QuizSessionStore) Delete(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if held, ok := s.sessions[userID]; ok {
		delete(s.sessions, userID)
		held.session.Close()
	}
}

func (s *QuizSessionStore) CloseAll() {
	s.mu.Lock()
	held := s.sessions
	s.sessions = make(map[string]*heldQuiz)
	s.mu.Unlock()

	for _, h := range held {
		h.session.Close()
	}
}

// Users lists the owners of the sessions currently held.
func (s *QuizSessionStore) Users() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := make([]string, 0, len(s.sessions))
	for userID := range s.sessions {
		users = append(users, userID)
	}
	sort.Strings(users)
	return users
}

// Sweep closes the sessions idle past the timeout and returns their owners.
func (s *QuizSessionStore) Sweep() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.idle <= 0 {
		return nil
	}
	now := s.now()
	var expired []string
	for userID, held := range s.sessions {
		if now.Sub(held.lastSeen) > s.idle {
			delete(s.sessions, userID)
			held.session.Close()
			expired = append(expired, userID)
		}
	}
	sort.Strings(expired)
	return expired
}

// liveLocked returns userID's session unless it has been idle too long, in
// which case it is closed and dropped.
func (s *QuizSessionStore) liveLocked(userID string, now time.Time) (*heldQuiz, bool) {
	held, ok := s.sessions[userID]
	if !ok {
		return nil, false
	}
	if s.idle > 0 && now.Sub(held.lastSeen) > s.idle {
		delete(s.sessions, userID)
		held.session.Close()
		return nil, false
	}
	return held, true
}
