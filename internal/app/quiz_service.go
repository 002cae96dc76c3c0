package app

import (
	"context"
	"log"
	"time"

	"studybuddy-service/internal/async"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/event"
)

// QuizService owns one quiz session per user and records completed attempts.
type QuizService struct {
	sessions QuizSessionRepository
	bank     QuestionBank
	attempts AttemptRepository
	progress *ProgressService
	events   event.Publisher
	delay    time.Duration
	now      func() time.Time
	newID    func() string
}

func NewQuizService(sessions QuizSessionRepository, bank QuestionBank, attempts AttemptRepository, progress *ProgressService, events event.Publisher, generateDelay time.Duration) *QuizService {
	return &QuizService{
		sessions: sessions,
		bank:     bank,
		attempts: attempts,
		progress: progress,
		events:   events,
		delay:    generateDelay,
		now:      time.Now,
		newID:    NewID,
	}
}

// WithClock swaps the clock used by sessions created afterwards. Test-only.
func (s *QuizService) WithClock(now func() time.Time) *QuizService {
	s.now = now
	return s
}

func (s *QuizService) session(userID string) *QuizSession {
	return s.sessions.GetOrCreate(userID, func() *QuizSession {
		return NewQuizSessionWithClock(s.bank, s.delay, s.now)
	})
}

// Snapshot returns the caller's quiz view, creating a fresh session if needed.
func (s *QuizService) Snapshot(ctx context.Context, userID string) (QuizSnapshot, error) {
	session := s.session(userID)
	snap := session.Snapshot()
	return snap, s.settle(ctx, userID, session)
}

func (s *QuizService) Configure(_ context.Context, userID string, cfg domain.QuizConfiguration) (QuizSnapshot, error) {
	return s.session(userID).Configure(cfg)
}

// Generate starts question generation and returns its future.
func (s *QuizService) Generate(_ context.Context, userID string) (*async.Future[[]domain.Question], error) {
	return s.session(userID).Generate()
}

func (s *QuizService) Start(_ context.Context, userID string) (QuizSnapshot, error) {
	return s.session(userID).Start()
}

func (s *QuizService) Answer(ctx context.Context, userID, questionID string, value domain.AnswerValue) (QuizSnapshot, error) {
	return s.apply(ctx, userID, func(qs *QuizSession) (QuizSnapshot, error) {
		return qs.Answer(questionID, value)
	})
}

func (s *QuizService) Next(ctx context.Context, userID string) (QuizSnapshot, error) {
	return s.apply(ctx, userID, (*QuizSession).Next)
}

func (s *QuizService) Previous(ctx context.Context, userID string) (QuizSnapshot, error) {
	return s.apply(ctx, userID, (*QuizSession).Previous)
}

func (s *QuizService) Complete(ctx context.Context, userID string) (QuizSnapshot, error) {
	return s.apply(ctx, userID, (*QuizSession).Complete)
}

// Reset backs the "Retake Quiz" action.
func (s *QuizService) Reset(_ context.Context, userID string) QuizSnapshot {
	return s.session(userID).Reset()
}

// History lists the caller's completed attempts, newest first.
func (s *QuizService) History(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error) {
	return s.attempts.ListAttempts(ctx, userID, limit)
}

// Subscribe returns a channel that receives quiz snapshots for userID.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizService) Subscribe(_ context.Context, userID string) (<-chan QuizSnapshot, func(), error) {
	ch, cancel := s.session(userID).Subscribe()
	return ch, cancel, nil
}

// Shutdown closes every session, cancelling pending generations and ending
// subscriptions.
func (s *QuizService) Shutdown() {
	s.sessions.CloseAll()
}

func (s *QuizService) apply(ctx context.Context, userID string, op func(*QuizSession) (QuizSnapshot, error)) (QuizSnapshot, error) {
	session, ok := s.sessions.Get(userID)
	if !ok {
		return QuizSnapshot{}, domain.ErrSessionNotFound
	}
	snap, err := op(session)
	if err != nil {
		return snap, err
	}
	return snap, s.settle(ctx, userID, session)
}

// settle persists a completion produced by the last operation, if any.
func (s *QuizService) settle(ctx context.Context, userID string, session *QuizSession) error {
	attempt, ok := session.TakeCompletion()
	if !ok {
		return nil
	}
	attempt.ID = s.newID()
	attempt.UserID = userID
	if err := s.attempts.SaveAttempt(ctx, attempt); err != nil {
		return err
	}
	if s.progress != nil {
		if _, err := s.progress.RecordQuiz(ctx, userID, attempt.Score, attempt.CompletedAt); err != nil {
			log.Printf("record quiz progress for %s: %v", userID, err)
		}
	}
	if err := s.events.Publish(ctx, event.QuizCompleted, attempt); err != nil {
		log.Printf("publish %s: %v", event.QuizCompleted, err)
	}
	return nil
}
