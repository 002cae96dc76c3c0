package domain

import "time"

// QuestionType is the rendering and scoring mode of a question.
type QuestionType string

const (
	QuestionMCQ       QuestionType = "mcq"
	QuestionTrueFalse QuestionType = "true-false"
	QuestionFillBlank QuestionType = "fill-blank"
)

// Difficulty tags questions and quiz configurations.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Question is an authored quiz item. Questions are never mutated after authoring.
type Question struct {
	ID            string       `json:"id"`
	Type          QuestionType `json:"type"`
	Prompt        string       `json:"question"`
	Options       []string     `json:"options,omitempty"`
	CorrectAnswer AnswerValue  `json:"correctAnswer"`
	Explanation   string       `json:"explanation"`
	Difficulty    Difficulty   `json:"difficulty"`
	Topic         string       `json:"topic"`
}

// QuizConfiguration is edited before generation and read once when generating.
type QuizConfiguration struct {
	Subject       string         `json:"subject"`
	Topic         string         `json:"topic"`
	NumQuestions  int            `json:"numQuestions"`
	Difficulty    Difficulty     `json:"difficulty"`
	QuestionTypes []QuestionType `json:"questionTypes"`
	TimeLimit     int            `json:"timeLimit"` // minutes
}

// DefaultQuizConfiguration mirrors the initial state of the configuration form.
func DefaultQuizConfiguration() QuizConfiguration {
	return QuizConfiguration{
		NumQuestions:  10,
		Difficulty:    DifficultyMedium,
		QuestionTypes: []QuestionType{QuestionMCQ, QuestionTrueFalse},
		TimeLimit:     15,
	}
}

// QuizResult is the scored outcome of one question.
type QuizResult struct {
	QuestionID string        `json:"questionId"`
	Submitted  AnswerValue   `json:"userAnswer"`
	Correct    bool          `json:"isCorrect"`
	TimeSpent  time.Duration `json:"-"`
}

// QuizReport aggregates the results of a completed quiz.
type QuizReport struct {
	Results  []QuizResult `json:"results"`
	Correct  int          `json:"correctAnswers"`
	Total    int          `json:"totalQuestions"`
	Accuracy int          `json:"accuracy"` // whole percent
}

// QuizAttempt is the stored record of a completed quiz.
type QuizAttempt struct {
	ID          string    `json:"id"`
	UserID      string    `json:"userId"`
	Subject     string    `json:"subject"`
	Topic       string    `json:"topic"`
	Score       int       `json:"score"`
	Correct     int       `json:"correctAnswers"`
	Total       int       `json:"totalQuestions"`
	TotalTime   int       `json:"totalTime"` // seconds
	CompletedAt time.Time `json:"completedAt"`
}
