package domain

import "time"

// Priority ranks study tasks.
type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

// TaskStatus tracks study task progress.
type TaskStatus string

const (
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in-progress"
	TaskCompleted  TaskStatus = "completed"
)

// DateLayout is the calendar key tasks are partitioned by.
const DateLayout = "2006-01-02"

// DefaultTaskTime is assigned to tasks created without an explicit time.
const DefaultTaskTime = "09:00"

// StudyTask is a scheduled study activity.
type StudyTask struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Subject     string     `json:"subject"`
	Topic       string     `json:"topic"`
	Duration    int        `json:"duration"` // minutes
	Priority    Priority   `json:"priority"`
	Date        string     `json:"date"`
	Time        string     `json:"time"`
	Status      TaskStatus `json:"status"`
	Description string     `json:"description,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// TaskFilter narrows task listings. Empty fields match everything.
type TaskFilter struct {
	Date    string
	Status  TaskStatus
	Subject string
}

// SubjectLoad aggregates tasks for one subject.
type SubjectLoad struct {
	Subject       string `json:"subject"`
	Count         int    `json:"count"`
	TotalDuration int    `json:"totalDuration"`
}

// TaskStats summarizes a user's planner.
type TaskStats struct {
	TotalTasks      int           `json:"totalTasks"`
	CompletedTasks  int           `json:"completedTasks"`
	PendingTasks    int           `json:"pendingTasks"`
	TotalStudyHours float64       `json:"totalStudyHours"`
	BySubject       []SubjectLoad `json:"tasksBySubject"`
}
