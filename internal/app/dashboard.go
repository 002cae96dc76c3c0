package app

import (
	"context"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"studybuddy-service/internal/domain"
)

// Tab is a dashboard section.
type Tab struct {
	Key   string `json:"key"`
	Label string `json:"label"`
}

// Tabs lists the dashboard sections in display order. The first one is the default.
func Tabs() []Tab {
	return []Tab{
		{Key: "overview", Label: "Overview"},
		{Key: "planner", Label: "Planner"},
		{Key: "summarizer", Label: "Summarizer"},
		{Key: "quiz", Label: "Quiz"},
		{Key: "chat", Label: "Chat"},
	}
}

// SelectTab resolves key to a tab, falling back to the overview.
func SelectTab(key string) Tab {
	tabs := Tabs()
	for _, t := range tabs {
		if t.Key == key {
			return t
		}
	}
	return tabs[0]
}

// Overview is the landing tab of the dashboard.
type Overview struct {
	Greeting      string                   `json:"greeting"`
	Today         []domain.StudyTask       `json:"todayTasks"`
	Tasks         domain.TaskStats         `json:"tasks"`
	Summaries     domain.SummaryStats      `json:"summaries"`
	Chat          domain.ChatStats         `json:"chat"`
	RecentQuizzes []domain.QuizAttempt     `json:"recentQuizzes"`
	Progress      domain.UserProgress      `json:"progress"`
	Achievements  []domain.UserAchievement `json:"achievements"`
}

// Dashboard composes the per-feature services behind the signed-in user.
type Dashboard struct {
	Tasks     *TaskService
	Summaries *SummaryService
	Quiz      *QuizService
	Chat      *ChatService
	Progress  *ProgressService
	now       func() time.Time
}

func NewDashboard(tasks *TaskService, summaries *SummaryService, quiz *QuizService, chat *ChatService, progress *ProgressService) *Dashboard {
	return &Dashboard{Tasks: tasks, Summaries: summaries, Quiz: quiz, Chat: chat, Progress: progress, now: time.Now}
}

// Overview gathers every section's figures concurrently.
func (d *Dashboard) Overview(ctx context.Context, user domain.User) (Overview, error) {
	out := Overview{Greeting: "Good morning, " + FirstName(user.Name) + "!"}
	today := d.now().Format(domain.DateLayout)

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		out.Today, err = d.Tasks.TasksForDate(ctx, user.ID, today)
		return err
	})
	g.Go(func() (err error) {
		out.Tasks, err = d.Tasks.Stats(ctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Summaries, err = d.Summaries.Stats(ctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Chat, err = d.Chat.Stats(ctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		out.RecentQuizzes, err = d.Quiz.History(ctx, user.ID, 5)
		return err
	})
	g.Go(func() (err error) {
		out.Progress, err = d.Progress.Progress(ctx, user.ID)
		return err
	})
	g.Go(func() (err error) {
		out.Achievements, err = d.Progress.Achievements(ctx, user.ID)
		return err
	})
	if err := g.Wait(); err != nil {
		return Overview{}, err
	}
	return out, nil
}

// Shutdown cancels pending replies and generations.
func (d *Dashboard) Shutdown() {
	d.Quiz.Shutdown()
	d.Chat.Shutdown()
	d.Summaries.Shutdown()
}

// FirstName returns the first word of name, or "Student".
func FirstName(name string) string {
	if fields := strings.Fields(name); len(fields) > 0 {
		return fields[0]
	}
	return "Student"
}
