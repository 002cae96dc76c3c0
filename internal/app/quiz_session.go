package app

import (
	"context"
	"math"
	"strings"
	"sync"
	"time"

	"studybuddy-service/internal/async"
	"studybuddy-service/internal/domain"
)

// QuizState is the lifecycle position of a quiz session.
type QuizState string

const (
	QuizConfiguring QuizState = "configuring"
	QuizGenerating  QuizState = "generating"
	QuizReady       QuizState = "ready"
	QuizInProgress  QuizState = "in-progress"
	QuizCompleted   QuizState = "completed"
)

// QuizSnapshot is a read-only view of a session. Correct answers and
// explanations are withheld until the quiz is completed.
type QuizSnapshot struct {
	State         QuizState                     `json:"state"`
	Config        domain.QuizConfiguration      `json:"config"`
	Questions     []domain.Question             `json:"questions"`
	CurrentIndex  int                           `json:"currentQuestion"`
	Answers       map[string]domain.AnswerValue `json:"answers"`
	TimeRemaining int                           `json:"timeRemaining"` // seconds, 0 without a limit
	Report        *domain.QuizReport            `json:"report,omitempty"`
}

// QuizSession is the configure/generate/take/score state machine of one user.
type QuizSession struct {
	bank  QuestionBank
	delay time.Duration
	now   func() time.Time

	lifetime context.Context
	close    context.CancelFunc

	mu          sync.Mutex
	state       QuizState
	config      domain.QuizConfiguration
	questions   []domain.Question
	current     int
	answers     map[string]domain.AnswerValue
	spent       map[string]time.Duration
	viewedAt    time.Time
	startedAt   time.Time
	deadline    time.Time
	report      *domain.QuizReport
	generation  uint64
	cancelGen   context.CancelFunc
	unclaimed   *domain.QuizAttempt
	closed      bool
	subscribers map[chan QuizSnapshot]struct{}
}

// NewQuizSession creates a session in the configuring state. delay is the
// simulated generation latency.
func NewQuizSession(bank QuestionBank, delay time.Duration) *QuizSession {
	return NewQuizSessionWithClock(bank, delay, time.Now)
}

// NewQuizSessionWithClock is used by tests for deterministic countdowns.
func NewQuizSessionWithClock(bank QuestionBank, delay time.Duration, now func() time.Time) *QuizSession {
	lifetime, cancel := context.WithCancel(context.Background())
	return &QuizSession{
		bank:        bank,
		delay:       delay,
		now:         now,
		lifetime:    lifetime,
		close:       cancel,
		state:       QuizConfiguring,
		config:      domain.DefaultQuizConfiguration(),
		answers:     make(map[string]domain.AnswerValue),
		spent:       make(map[string]time.Duration),
		subscribers: make(map[chan QuizSnapshot]struct{}),
	}
}

// Configure replaces the configuration. Only allowed while configuring.
func (s *QuizSession) Configure(cfg domain.QuizConfiguration) (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizConfiguring {
		return QuizSnapshot{}, domain.ErrInvalidTransition
	}
	cfg.QuestionTypes = append([]domain.QuestionType(nil), cfg.QuestionTypes...)
	s.config = cfg
	return s.broadcastLocked(), nil
}

// Generate moves to generating and, once the delay has elapsed, draws the
// first NumQuestions questions of the bank. The returned future resolves to
// the drawn questions. Reset or Close cancel a pending generation, and a
// cancelled generation leaves the session untouched.
func (s *QuizSession) Generate() (*async.Future[[]domain.Question], error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizConfiguring {
		return nil, domain.ErrInvalidTransition
	}
	if strings.TrimSpace(s.config.Subject) == "" {
		return nil, domain.ErrSubjectRequired
	}

	s.state = QuizGenerating
	s.generation++
	seq := s.generation
	n := s.config.NumQuestions
	ctx, cancel := context.WithCancel(s.lifetime)
	s.cancelGen = cancel
	s.broadcastLocked()

	return async.After(ctx, s.delay, func(ctx context.Context) ([]domain.Question, error) {
		defer cancel()
		return s.finishGeneration(ctx, seq, n)
	}), nil
}

func (s *QuizSession) finishGeneration(ctx context.Context, seq uint64, n int) ([]domain.Question, error) {
	bank, err := s.bank.Questions(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	if seq != s.generation || s.state != QuizGenerating {
		return nil, context.Canceled
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return nil, ctxErr
	}
	s.cancelGen = nil
	if err != nil {
		s.state = QuizConfiguring
		s.broadcastLocked()
		return nil, err
	}

	if n > len(bank) {
		n = len(bank)
	}
	if n < 0 {
		n = 0
	}
	s.questions = append([]domain.Question(nil), bank[:n]...)
	s.state = QuizReady
	s.broadcastLocked()
	return append([]domain.Question(nil), s.questions...), nil
}

// Start begins the countdown. Only allowed once questions are ready.
func (s *QuizSession) Start() (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizReady {
		return QuizSnapshot{}, domain.ErrInvalidTransition
	}
	now := s.now()
	s.state = QuizInProgress
	s.current = 0
	s.answers = make(map[string]domain.AnswerValue)
	s.spent = make(map[string]time.Duration)
	s.startedAt = now
	s.viewedAt = now
	s.deadline = time.Time{}
	if s.config.TimeLimit > 0 {
		s.deadline = now.Add(time.Duration(s.config.TimeLimit) * time.Minute)
	}
	return s.broadcastLocked(), nil
}

// Answer records value for questionID, replacing any earlier answer. An empty
// value clears the answer. Past the deadline the quiz is completed instead.
func (s *QuizSession) Answer(questionID string, value domain.AnswerValue) (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizInProgress {
		return QuizSnapshot{}, domain.ErrInvalidTransition
	}
	now := s.now()
	if s.expiredLocked(now) {
		s.completeLocked(now)
		return s.broadcastLocked(), nil
	}
	if !s.hasQuestionLocked(questionID) {
		return QuizSnapshot{}, domain.ErrQuestionNotFound
	}
	if prev, ok := s.answers[questionID]; ok && prev.Equal(value) {
		return s.snapshotLocked(now), nil
	}
	if value.IsEmpty() {
		delete(s.answers, questionID)
	} else {
		s.answers[questionID] = value
	}
	return s.broadcastLocked(), nil
}

// Next advances to the following question. On the last question it
// completes the quiz.
func (s *QuizSession) Next() (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizInProgress {
		return QuizSnapshot{}, domain.ErrInvalidTransition
	}
	now := s.now()
	if s.expiredLocked(now) || s.current >= len(s.questions)-1 {
		s.completeLocked(now)
		return s.broadcastLocked(), nil
	}
	s.accrueLocked(now)
	s.current++
	return s.broadcastLocked(), nil
}

// Previous steps back one question, staying on the first one.
func (s *QuizSession) Previous() (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizInProgress {
		return QuizSnapshot{}, domain.ErrInvalidTransition
	}
	now := s.now()
	if s.expiredLocked(now) {
		s.completeLocked(now)
		return s.broadcastLocked(), nil
	}
	s.accrueLocked(now)
	if s.current > 0 {
		s.current--
	}
	return s.broadcastLocked(), nil
}

// Complete scores the quiz immediately.
func (s *QuizSession) Complete() (QuizSnapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != QuizInProgress {
		return QuizSnapshot{}, domain.ErrInvalidTransition
	}
	s.completeLocked(s.now())
	return s.broadcastLocked(), nil
}

// Reset returns to configuring with the default configuration, cancelling
// any pending generation.
func (s *QuizSession) Reset() QuizSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stopGenerationLocked()
	s.state = QuizConfiguring
	s.config = domain.DefaultQuizConfiguration()
	s.questions = nil
	s.current = 0
	s.answers = make(map[string]domain.AnswerValue)
	s.spent = make(map[string]time.Duration)
	s.startedAt = time.Time{}
	s.deadline = time.Time{}
	s.report = nil
	s.unclaimed = nil
	return s.broadcastLocked()
}

// Snapshot returns the current view, completing the quiz first when its time
// limit has run out.
func (s *QuizSession) Snapshot() QuizSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if s.state == QuizInProgress && s.expiredLocked(now) {
		s.completeLocked(now)
		return s.broadcastLocked()
	}
	return s.snapshotLocked(now)
}

// State returns the lifecycle position.
func (s *QuizSession) State() QuizState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// TakeCompletion returns the attempt produced by the latest completion. Each
// completion is handed out exactly once.
func (s *QuizSession) TakeCompletion() (domain.QuizAttempt, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.unclaimed == nil {
		return domain.QuizAttempt{}, false
	}
	attempt := *s.unclaimed
	s.unclaimed = nil
	return attempt, true
}

// Subscribe returns a channel receiving a snapshot after every transition,
// starting with the current one. The channel is closed when the session is.
// The caller must invoke the returned cancel function to avoid leaks.
func (s *QuizSession) Subscribe() (<-chan QuizSnapshot, func()) {
	ch := make(chan QuizSnapshot, 8)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	s.subscribers[ch] = struct{}{}
	ch <- s.snapshotLocked(s.now())
	s.mu.Unlock()

	cancel := func() {
		s.mu.Lock()
		if _, ok := s.subscribers[ch]; ok {
			delete(s.subscribers, ch)
			close(ch)
		}
		s.mu.Unlock()
	}
	return ch, cancel
}

// Close cancels pending work and ends every subscription. The session must
// not be used afterwards.
func (s *QuizSession) Close() {
	s.mu.Lock()
	s.stopGenerationLocked()
	if !s.closed {
		s.closed = true
		for ch := range s.subscribers {
			delete(s.subscribers, ch)
			close(ch)
		}
	}
	s.mu.Unlock()
	s.close()
}

func (s *QuizSession) stopGenerationLocked() {
	s.generation++
	if s.cancelGen != nil {
		s.cancelGen()
		s.cancelGen = nil
	}
}

func (s *QuizSession) expiredLocked(now time.Time) bool {
	return !s.deadline.IsZero() && !now.Before(s.deadline)
}

func (s *QuizSession) hasQuestionLocked(id string) bool {
	for _, q := range s.questions {
		if q.ID == id {
			return true
		}
	}
	return false
}

// accrueLocked charges the time since the current question was shown to it.
func (s *QuizSession) accrueLocked(now time.Time) {
	if s.current < len(s.questions) {
		end := now
		if s.expiredLocked(now) {
			end = s.deadline
		}
		if d := end.Sub(s.viewedAt); d > 0 {
			s.spent[s.questions[s.current].ID] += d
		}
	}
	s.viewedAt = now
}

func (s *QuizSession) completeLocked(now time.Time) {
	s.accrueLocked(now)
	end := now
	if s.expiredLocked(now) {
		end = s.deadline
	}
	report := Score(s.questions, s.answers, s.spent)
	s.report = &report
	s.state = QuizCompleted
	s.deadline = time.Time{}
	s.unclaimed = &domain.QuizAttempt{
		Subject:     s.config.Subject,
		Topic:       s.config.Topic,
		Score:       report.Accuracy,
		Correct:     report.Correct,
		Total:       report.Total,
		TotalTime:   int(end.Sub(s.startedAt).Seconds()),
		CompletedAt: end,
	}
}

func (s *QuizSession) snapshotLocked(now time.Time) QuizSnapshot {
	snap := QuizSnapshot{
		State:        s.state,
		Config:       s.config,
		CurrentIndex: s.current,
		Answers:      make(map[string]domain.AnswerValue, len(s.answers)),
	}
	snap.Config.QuestionTypes = append([]domain.QuestionType(nil), s.config.QuestionTypes...)
	for id, v := range s.answers {
		snap.Answers[id] = v
	}
	snap.Questions = make([]domain.Question, len(s.questions))
	for i, q := range s.questions {
		q.Options = append([]string(nil), q.Options...)
		if s.state != QuizCompleted {
			q.CorrectAnswer = domain.AnswerValue{}
			q.Explanation = ""
		}
		snap.Questions[i] = q
	}
	if s.state == QuizInProgress && !s.deadline.IsZero() {
		if left := s.deadline.Sub(now); left > 0 {
			snap.TimeRemaining = int(math.Ceil(left.Seconds()))
		}
	}
	if s.report != nil {
		report := *s.report
		report.Results = append([]domain.QuizResult(nil), s.report.Results...)
		snap.Report = &report
	}
	return snap
}

func (s *QuizSession) broadcastLocked() QuizSnapshot {
	snap := s.snapshotLocked(s.now())
	for ch := range s.subscribers {
		select {
		case ch <- snap:
		default:
			// subscriber is behind: replace its oldest pending snapshot
			select {
			case <-ch:
			default:
			}
			ch <- snap
		}
	}
	return snap
}

// Score compares every submitted answer with the correct one. Unanswered
// questions count as incorrect with an empty submission.
func Score(questions []domain.Question, answers map[string]domain.AnswerValue, spent map[string]time.Duration) domain.QuizReport {
	report := domain.QuizReport{
		Results: make([]domain.QuizResult, 0, len(questions)),
		Total:   len(questions),
	}
	for _, q := range questions {
		submitted := answers[q.ID]
		correct := !submitted.IsEmpty() && submitted.Equal(q.CorrectAnswer)
		if correct {
			report.Correct++
		}
		report.Results = append(report.Results, domain.QuizResult{
			QuestionID: q.ID,
			Submitted:  submitted,
			Correct:    correct,
			TimeSpent:  spent[q.ID],
		})
	}
	if report.Total > 0 {
		report.Accuracy = int(math.Round(float64(report.Correct) / float64(report.Total) * 100))
	}
	return report
}
