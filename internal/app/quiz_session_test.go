package app_test

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

func TestGenerateDrawsAtMostBankSize(t *testing.T) {
	for _, tc := range []struct{ asked, expected int }{{2, 2}, {10, 3}, {0, 0}} {
		session := app.NewQuizSession(sampleBank(), 0)
		questions := readyQuiz(t, session, tc.asked, 15)
		if len(questions) != tc.expected {
			t.Fatalf("asked for %d: expected %d questions, got %d", tc.asked, tc.expected, len(questions))
		}
		if session.State() != app.QuizReady {
			t.Fatalf("expected ready, got %s", session.State())
		}
	}
}

func TestGenerateRequiresSubject(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	if _, err := session.Generate(); !errors.Is(err, domain.ErrSubjectRequired) {
		t.Fatalf("expected ErrSubjectRequired, got %v", err)
	}
	if session.State() != app.QuizConfiguring {
		t.Fatalf("expected to stay configuring, got %s", session.State())
	}
}

func TestConfigureOnlyWhileConfiguring(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	readyQuiz(t, session, 3, 15)
	if _, err := session.Configure(domain.DefaultQuizConfiguration()); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestAllCorrectScoresHundred(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	questions := readyQuiz(t, session, 3, 15)
	if _, err := session.Start(); err != nil {
		t.Fatalf("start: %v", err)
	}

	for _, q := range questions {
		// answering twice with the same value is a no-op
		for i := 0; i < 2; i++ {
			if _, err := session.Answer(q.ID, q.CorrectAnswer); err != nil {
				t.Fatalf("answer %s: %v", q.ID, err)
			}
		}
	}
	snap, err := session.Complete()
	if err != nil {
		t.Fatalf("complete: %v", err)
	}
	if snap.State != app.QuizCompleted || snap.Report == nil {
		t.Fatalf("expected completed report, got %+v", snap)
	}
	if snap.Report.Accuracy != 100 || snap.Report.Correct != 3 || snap.Report.Total != 3 {
		t.Fatalf("expected 3/3 at 100%%, got %+v", snap.Report)
	}
	if snap.Questions[0].Explanation == "" {
		t.Fatalf("explanations are revealed once completed")
	}
}

func TestUnansweredAndWrongScoreZero(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	readyQuiz(t, session, 3, 15)
	_, _ = session.Start()

	// "1" as text never equals option index 1
	if _, err := session.Answer("1", domain.TextAnswer("1")); err != nil {
		t.Fatalf("answer: %v", err)
	}
	snap, _ := session.Complete()

	if snap.Report.Accuracy != 0 || snap.Report.Correct != 0 {
		t.Fatalf("expected 0%%, got %+v", snap.Report)
	}
	if !snap.Report.Results[1].Submitted.IsEmpty() || snap.Report.Results[1].Correct {
		t.Fatalf("unanswered question must be incorrect and empty, got %+v", snap.Report.Results[1])
	}
}

func TestAnswerIndexZeroCounts(t *testing.T) {
	bank := []domain.Question{{ID: "q", Type: domain.QuestionMCQ, Options: []string{"a", "b"}, CorrectAnswer: domain.IndexAnswer(0)}}
	report := app.Score(bank, map[string]domain.AnswerValue{"q": domain.IndexAnswer(0)}, nil)
	if report.Correct != 1 || report.Accuracy != 100 {
		t.Fatalf("index 0 is a real answer, got %+v", report)
	}
}

func TestScoreRoundsAccuracy(t *testing.T) {
	questions := domain.DefaultQuestionBank()
	answers := map[string]domain.AnswerValue{"1": questions[0].CorrectAnswer}
	if got := app.Score(questions, answers, nil).Accuracy; got != 33 {
		t.Fatalf("expected 33, got %d", got)
	}
	answers["2"] = questions[1].CorrectAnswer
	if got := app.Score(questions, answers, nil).Accuracy; got != 67 {
		t.Fatalf("expected 67, got %d", got)
	}
	if got := app.Score(nil, nil, nil).Accuracy; got != 0 {
		t.Fatalf("empty quiz scores 0, got %d", got)
	}
}

func TestNavigationClampsAndCompletesOnLast(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	readyQuiz(t, session, 2, 15)
	_, _ = session.Start()

	snap, _ := session.Previous()
	if snap.CurrentIndex != 0 {
		t.Fatalf("previous must clamp at 0, got %d", snap.CurrentIndex)
	}
	snap, _ = session.Next()
	if snap.CurrentIndex != 1 || snap.State != app.QuizInProgress {
		t.Fatalf("expected second question, got %+v", snap)
	}
	snap, _ = session.Next()
	if snap.State != app.QuizCompleted {
		t.Fatalf("next on the last question completes, got %s", snap.State)
	}
	if _, err := session.Next(); !errors.Is(err, domain.ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition after completion, got %v", err)
	}
}

func TestUnknownQuestionRejected(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	readyQuiz(t, session, 1, 15)
	_, _ = session.Start()
	if _, err := session.Answer("3", domain.IndexAnswer(1)); !errors.Is(err, domain.ErrQuestionNotFound) {
		t.Fatalf("expected ErrQuestionNotFound, got %v", err)
	}
}

func TestResetCancelsGeneration(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), time.Hour)
	cfg := domain.DefaultQuizConfiguration()
	cfg.Subject = "Physics"
	_, _ = session.Configure(cfg)
	future, err := session.Generate()
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if session.State() != app.QuizGenerating {
		t.Fatalf("expected generating, got %s", session.State())
	}

	snap := session.Reset()
	if _, err := future.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled generation, got %v", err)
	}
	if snap.State != app.QuizConfiguring || len(snap.Questions) != 0 || snap.Config.Subject != "" {
		t.Fatalf("expected a clean configuring session, got %+v", snap)
	}
	if got := session.Snapshot(); len(got.Questions) != 0 || got.State != app.QuizConfiguring {
		t.Fatalf("cancelled generation must not mutate the session, got %+v", got)
	}
}

func TestCloseCancelsGeneration(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), time.Hour)
	cfg := domain.DefaultQuizConfiguration()
	cfg.Subject = "Physics"
	_, _ = session.Configure(cfg)
	future, _ := session.Generate()

	session.Close()
	if _, err := future.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled generation, got %v", err)
	}
}

func TestTimeLimitCompletesOnNextOperation(t *testing.T) {
	clock := newFakeClock()
	session := app.NewQuizSessionWithClock(sampleBank(), 0, clock.Now)
	questions := readyQuiz(t, session, 3, 1)
	snap, _ := session.Start()
	if snap.TimeRemaining != 60 {
		t.Fatalf("expected 60s remaining, got %d", snap.TimeRemaining)
	}

	_, _ = session.Answer(questions[0].ID, questions[0].CorrectAnswer)
	clock.Advance(61 * time.Second)

	snap, err := session.Answer(questions[1].ID, questions[1].CorrectAnswer)
	if err != nil {
		t.Fatalf("answer after expiry: %v", err)
	}
	if snap.State != app.QuizCompleted {
		t.Fatalf("expected expiry to complete the quiz, got %s", snap.State)
	}
	if snap.Report.Correct != 1 {
		t.Fatalf("late answer must not count, got %+v", snap.Report)
	}
	attempt, ok := session.TakeCompletion()
	if !ok || attempt.TotalTime != 60 {
		t.Fatalf("expected attempt capped at the limit, got %+v ok=%v", attempt, ok)
	}
	if _, ok := session.TakeCompletion(); ok {
		t.Fatalf("completion must be handed out once")
	}
}

func TestTimeSpentPerQuestion(t *testing.T) {
	clock := newFakeClock()
	session := app.NewQuizSessionWithClock(sampleBank(), 0, clock.Now)
	readyQuiz(t, session, 2, 0)
	_, _ = session.Start()

	clock.Advance(10 * time.Second)
	_, _ = session.Next()
	clock.Advance(5 * time.Second)
	_, _ = session.Previous()
	clock.Advance(3 * time.Second)
	snap, _ := session.Complete()

	if got := snap.Report.Results[0].TimeSpent; got != 13*time.Second {
		t.Fatalf("expected 13s on first question, got %s", got)
	}
	if got := snap.Report.Results[1].TimeSpent; got != 5*time.Second {
		t.Fatalf("expected 5s on second question, got %s", got)
	}
	if snap.TimeRemaining != 0 {
		t.Fatalf("no limit means no countdown, got %d", snap.TimeRemaining)
	}
}

func TestSnapshotHidesAnswersUntilCompleted(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	readyQuiz(t, session, 3, 15)
	snap, _ := session.Start()
	for _, q := range snap.Questions {
		if !q.CorrectAnswer.IsEmpty() || q.Explanation != "" {
			t.Fatalf("question %s leaks its answer: %+v", q.ID, q)
		}
	}
}

func TestSubscribeReceivesSnapshots(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	ch, cancel := session.Subscribe()
	defer cancel()

	initial := <-ch
	if initial.State != app.QuizConfiguring {
		t.Fatalf("expected configuring snapshot, got %s", initial.State)
	}

	cfg := domain.DefaultQuizConfiguration()
	cfg.Subject = "Chemistry"
	_, _ = session.Configure(cfg)
	update := <-ch
	if update.Config.Subject != "Chemistry" {
		t.Fatalf("expected configured subject, got %+v", update.Config)
	}
}

func TestRepeatedAnswerLeavesReportUnchanged(t *testing.T) {
	run := func(times int) domain.QuizReport {
		clock := newFakeClock()
		session := app.NewQuizSessionWithClock(sampleBank(), 0, clock.Now)
		questions := readyQuiz(t, session, 3, 15)
		_, _ = session.Start()
		for i := 0; i < times; i++ {
			if _, err := session.Answer(questions[0].ID, questions[0].CorrectAnswer); err != nil {
				t.Fatalf("answer: %v", err)
			}
		}
		_, _ = session.Answer(questions[1].ID, domain.TextAnswer("not it"))
		snap, err := session.Complete()
		if err != nil {
			t.Fatalf("complete: %v", err)
		}
		return *snap.Report
	}

	once, twice := run(1), run(2)
	if !reflect.DeepEqual(once, twice) {
		t.Fatalf("answering twice changed the result:\nonce  %+v\ntwice %+v", once, twice)
	}
	if once.Correct != 1 || once.Accuracy != 33 {
		t.Fatalf("expected 1/3 at 33%%, got %+v", once)
	}
}

func TestLaterAnswerReplacesEarlierOne(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	questions := readyQuiz(t, session, 1, 15)
	_, _ = session.Start()
	q := questions[0]

	_, _ = session.Answer(q.ID, domain.TextAnswer("not it"))
	snap, _ := session.Answer(q.ID, q.CorrectAnswer)
	if !snap.Answers[q.ID].Equal(q.CorrectAnswer) {
		t.Fatalf("expected the later answer to be kept, got %+v", snap.Answers[q.ID])
	}
	snap, _ = session.Complete()
	if snap.Report.Correct != 1 {
		t.Fatalf("expected the replacement to be scored, got %+v", snap.Report)
	}

	session = app.NewQuizSession(sampleBank(), 0)
	questions = readyQuiz(t, session, 1, 15)
	_, _ = session.Start()
	_, _ = session.Answer(q.ID, q.CorrectAnswer)
	_, _ = session.Answer(q.ID, domain.TextAnswer("not it"))
	snap, _ = session.Complete()
	if snap.Report.Correct != 0 {
		t.Fatalf("a wrong replacement must not keep the earlier credit, got %+v", snap.Report)
	}
}

func TestSubscriberSeesSnapshotsInOrder(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	const rounds = 200

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 1; i <= rounds; i++ {
			cfg := domain.DefaultQuizConfiguration()
			cfg.Subject = "Biology"
			cfg.NumQuestions = i
			_, _ = session.Configure(cfg)
		}
	}()

	ch, cancel := session.Subscribe()
	defer cancel()
	last := -1
	for {
		select {
		case snap := <-ch:
			if snap.Config.NumQuestions < last {
				t.Fatalf("snapshot for %d arrived after %d", snap.Config.NumQuestions, last)
			}
			last = snap.Config.NumQuestions
			if last == rounds {
				<-done
				return
			}
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out at %d", last)
		}
	}
}

func TestClosedSessionEndsSubscriptions(t *testing.T) {
	session := app.NewQuizSession(sampleBank(), 0)
	ch, cancel := session.Subscribe()
	defer cancel()
	<-ch

	session.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("expected the subscription to end")
	}
	late, lateCancel := session.Subscribe()
	defer lateCancel()
	if _, ok := <-late; ok {
		t.Fatalf("subscribing to a closed session must not deliver snapshots")
	}
}
