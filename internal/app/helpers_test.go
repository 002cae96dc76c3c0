package app_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/event"
	"studybuddy-service/internal/infra/memory"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2024, 1, 15, 14, 30, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func sequentialIDs(prefix string) func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("%s-%d", prefix, n)
	}
}

func sampleBank() app.QuestionBank {
	return memory.NewStaticQuestionBank(domain.DefaultQuestionBank())
}

// readyQuiz drives a session to the ready state with the given question count.
func readyQuiz(t *testing.T, session *app.QuizSession, n, timeLimit int) []domain.Question {
	t.Helper()
	cfg := domain.DefaultQuizConfiguration()
	cfg.Subject = "Biology"
	cfg.NumQuestions = n
	cfg.TimeLimit = timeLimit
	if _, err := session.Configure(cfg); err != nil {
		t.Fatalf("configure: %v", err)
	}
	future, err := session.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	questions, err := future.Wait(context.Background())
	if err != nil {
		t.Fatalf("generation: %v", err)
	}
	return questions
}

type testDeps struct {
	events   *event.Recorder
	progress *app.ProgressService
	attempts *memory.AttemptRepository
}

func newTestDeps() testDeps {
	events := &event.Recorder{}
	return testDeps{
		events:   events,
		progress: app.NewProgressService(memory.NewProgressRepository(domain.DefaultAchievements()), events),
		attempts: memory.NewAttemptRepository(),
	}
}
