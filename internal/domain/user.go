package domain

import "time"

// Provider records how a user signed in.
type Provider string

const (
	ProviderGoogle Provider = "google"
	ProviderEmail  Provider = "email"
)

// User is the object produced by the mocked sign-in flows.
type User struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Email    string   `json:"email"`
	Avatar   string   `json:"avatar"`
	Provider Provider `json:"provider"`
}

// UserProgress accumulates a user's activity.
type UserProgress struct {
	UserID           string    `json:"userId"`
	StudyStreak      int       `json:"studyStreak"`
	TotalHours       float64   `json:"totalHours"`
	QuizzesCompleted int       `json:"quizzesCompleted"`
	AverageScore     float64   `json:"averageScore"`
	LastScore        int       `json:"lastScore"`
	SummariesCreated int       `json:"summariesCreated"`
	Level            int       `json:"level"`
	XP               int       `json:"xp"`
	LastActiveDate   time.Time `json:"lastActiveDate"`
}

// Achievement is a rule-based award. Condition is a JSON rule such as
// {"type": "quizzes", "value": 20}.
type Achievement struct {
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Icon        string    `json:"icon"`
	XPReward    int       `json:"xpReward"`
	Condition   string    `json:"condition"`
	CreatedAt   time.Time `json:"createdAt"`
}

// UserAchievement records an award.
type UserAchievement struct {
	UserID      string    `json:"userId"`
	Achievement string    `json:"achievement"`
	EarnedAt    time.Time `json:"earnedAt"`
}

// DefaultAchievements are the seeded achievement definitions.
func DefaultAchievements() []Achievement {
	return []Achievement{
		{Name: "Study Streak Master", Description: "Maintain a study streak for 10+ consecutive days", Icon: "Target", XPReward: 100, Condition: `{"type": "streak", "value": 10}`},
		{Name: "Quiz Champion", Description: "Complete 20+ quizzes", Icon: "Trophy", XPReward: 150, Condition: `{"type": "quizzes", "value": 20}`},
		{Name: "Night Owl", Description: "Study after 10 PM", Icon: "Clock", XPReward: 50, Condition: `{"type": "time", "value": "22:00"}`},
		{Name: "Early Bird", Description: "Study before 7 AM", Icon: "BookOpen", XPReward: 50, Condition: `{"type": "time", "value": "07:00"}`},
		{Name: "Summarizer Pro", Description: "Create 50+ summaries", Icon: "FileText", XPReward: 200, Condition: `{"type": "summaries", "value": 50}`},
		{Name: "Perfect Score", Description: "Score 100% on a quiz", Icon: "Award", XPReward: 100, Condition: `{"type": "quiz_score", "value": 100}`},
	}
}
