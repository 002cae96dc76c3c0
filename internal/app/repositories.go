package app

import (
	"context"
	"time"

	"studybuddy-service/internal/domain"
)

// QuestionBank loads the ordered question list quizzes are drawn from.
type QuestionBank interface {
	Questions(ctx context.Context) ([]domain.Question, error)
}

// QuizSessionRepository abstracts where live quiz sessions are kept (in-memory, Redis-marked, etc).
// The repository owns the sessions it holds: whatever removes a session
// closes it.
type QuizSessionRepository interface {
	GetOrCreate(userID string, create func() *QuizSession) *QuizSession
	Get(userID string) (*QuizSession, bool)
	// CloseAll closes and forgets every session.
	CloseAll()
}

// AttemptRepository stores completed quizzes.
type AttemptRepository interface {
	SaveAttempt(ctx context.Context, attempt domain.QuizAttempt) error
	ListAttempts(ctx context.Context, userID string, limit int) ([]domain.QuizAttempt, error)
}

// TaskRepository stores study tasks. Get, Update and Delete return
// domain.ErrTaskNotFound for unknown IDs or tasks owned by another user.
type TaskRepository interface {
	CreateTask(ctx context.Context, task domain.StudyTask) error
	GetTask(ctx context.Context, userID, id string) (domain.StudyTask, error)
	UpdateTask(ctx context.Context, task domain.StudyTask) error
	DeleteTask(ctx context.Context, userID, id string) error
	ListTasks(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.StudyTask, error)
}

// SummaryRepository stores summaries. ListSummaries returns newest first and
// the total number of matches before paging.
type SummaryRepository interface {
	CreateSummary(ctx context.Context, summary domain.Summary) error
	GetSummary(ctx context.Context, userID, id string) (domain.Summary, error)
	DeleteSummary(ctx context.Context, userID, id string) error
	ListSummaries(ctx context.Context, userID string, filter domain.SummaryFilter) ([]domain.Summary, int, error)
	CountSummaries(ctx context.Context, userID string) (int, error)
}

// ChatRepository stores chat sessions and their append-only messages.
type ChatRepository interface {
	CreateSession(ctx context.Context, info domain.ChatSessionInfo) error
	GetSession(ctx context.Context, userID, id string) (domain.ChatSessionInfo, error)
	ListSessions(ctx context.Context, userID string) ([]domain.ChatSessionInfo, error)
	TouchSession(ctx context.Context, id string, at time.Time) error
	DeleteSession(ctx context.Context, userID, id string) error

	AppendMessage(ctx context.Context, msg domain.Message) error
	GetMessage(ctx context.Context, id string) (domain.Message, error)
	// SetHelpful records feedback once. It returns domain.ErrFeedbackAlreadySet
	// when the message was already rated.
	SetHelpful(ctx context.Context, id string, helpful bool) error
	ListMessages(ctx context.Context, sessionID string) ([]domain.Message, error)
}

// ProgressRepository stores per-user progress and achievement awards.
type ProgressRepository interface {
	GetProgress(ctx context.Context, userID string) (domain.UserProgress, bool, error)
	SaveProgress(ctx context.Context, progress domain.UserProgress) error
	Achievements(ctx context.Context) ([]domain.Achievement, error)
	// AwardAchievement reports false when the user already holds the achievement.
	AwardAchievement(ctx context.Context, award domain.UserAchievement) (bool, error)
	UserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error)
}

// UserRepository stores users produced by the sign-in flows.
type UserRepository interface {
	UpsertUser(ctx context.Context, user domain.User) (domain.User, error)
	GetUser(ctx context.Context, id string) (domain.User, error)
}
