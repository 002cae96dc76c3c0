package app

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/samber/lo"
	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/event"
)

// NewTask is the planner form. Zero fields take their defaults.
type NewTask struct {
	Subject     string          `json:"subject"`
	Topic       string          `json:"topic"`
	Duration    int             `json:"duration"`
	Priority    domain.Priority `json:"priority"`
	Date        string          `json:"date"`
	Time        string          `json:"time"`
	Description string          `json:"description"`
}

// TaskUpdate carries the fields of an edit. Nil fields are left unchanged.
type TaskUpdate struct {
	Subject     *string            `json:"subject"`
	Topic       *string            `json:"topic"`
	Duration    *int               `json:"duration"`
	Priority    *domain.Priority   `json:"priority"`
	Date        *string            `json:"date"`
	Time        *string            `json:"time"`
	Status      *domain.TaskStatus `json:"status"`
	Description *string            `json:"description"`
}

// StatusChange is published whenever a task changes status.
type StatusChange struct {
	TaskID string            `json:"taskId"`
	UserID string            `json:"userId"`
	From   domain.TaskStatus `json:"from"`
	To     domain.TaskStatus `json:"to"`
}

// TaskService is the study planner.
type TaskService struct {
	repo     TaskRepository
	progress *ProgressService
	events   event.Publisher
	now      func() time.Time
	newID    func() string
}

func NewTaskService(repo TaskRepository, progress *ProgressService, events event.Publisher) *TaskService {
	return &TaskService{repo: repo, progress: progress, events: events, now: time.Now, newID: NewID}
}

// WithClock swaps the clock. Test-only.
func (s *TaskService) WithClock(now func() time.Time) *TaskService {
	s.now = now
	return s
}

// AddTask stores a pending task. The date defaults to today, the time to 09:00.
func (s *TaskService) AddTask(ctx context.Context, userID string, in NewTask) (domain.StudyTask, error) {
	now := s.now()
	task := domain.StudyTask{
		ID:          s.newID(),
		UserID:      userID,
		Subject:     in.Subject,
		Topic:       in.Topic,
		Duration:    in.Duration,
		Priority:    in.Priority,
		Date:        in.Date,
		Time:        in.Time,
		Status:      domain.TaskPending,
		Description: in.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if task.Duration == 0 {
		task.Duration = 60
	}
	if task.Priority == "" {
		task.Priority = domain.PriorityMedium
	}
	if task.Date == "" {
		task.Date = now.Format(domain.DateLayout)
	}
	if task.Time == "" {
		task.Time = domain.DefaultTaskTime
	}
	if err := s.repo.CreateTask(ctx, task); err != nil {
		return domain.StudyTask{}, err
	}
	return task, nil
}

// ToggleStatus flips pending to completed. Any other status goes back to pending.
func (s *TaskService) ToggleStatus(ctx context.Context, userID, id string) (domain.StudyTask, error) {
	task, err := s.repo.GetTask(ctx, userID, id)
	if err != nil {
		return domain.StudyTask{}, err
	}
	next := domain.TaskPending
	if task.Status == domain.TaskPending {
		next = domain.TaskCompleted
	}
	return s.setStatus(ctx, task, next)
}

func (s *TaskService) setStatus(ctx context.Context, task domain.StudyTask, next domain.TaskStatus) (domain.StudyTask, error) {
	prev := task.Status
	now := s.now()
	task.Status = next
	task.UpdatedAt = now
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.StudyTask{}, err
	}
	if prev == next {
		return task, nil
	}
	if next == domain.TaskCompleted && s.progress != nil {
		if _, err := s.progress.RecordStudy(ctx, task.UserID, task.Duration, now); err != nil {
			log.Printf("record study for %s: %v", task.UserID, err)
		}
	}
	change := StatusChange{TaskID: task.ID, UserID: task.UserID, From: prev, To: next}
	if err := s.events.Publish(ctx, event.TaskStatusChanged, change); err != nil {
		log.Printf("publish %s: %v", event.TaskStatusChanged, err)
	}
	return task, nil
}

// TasksForDate returns the tasks scheduled on date (YYYY-MM-DD), ordered by time.
func (s *TaskService) TasksForDate(ctx context.Context, userID, date string) ([]domain.StudyTask, error) {
	return s.List(ctx, userID, domain.TaskFilter{Date: date})
}

// List returns the tasks matching filter, ordered by date and time.
func (s *TaskService) List(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.StudyTask, error) {
	tasks, err := s.repo.ListTasks(ctx, userID, filter)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].Date != tasks[j].Date {
			return tasks[i].Date < tasks[j].Date
		}
		return tasks[i].Time < tasks[j].Time
	})
	return tasks, nil
}

func (s *TaskService) Get(ctx context.Context, userID, id string) (domain.StudyTask, error) {
	return s.repo.GetTask(ctx, userID, id)
}

// Update applies an edit. A status change goes through the same bookkeeping as a toggle.
func (s *TaskService) Update(ctx context.Context, userID, id string, in TaskUpdate) (domain.StudyTask, error) {
	task, err := s.repo.GetTask(ctx, userID, id)
	if err != nil {
		return domain.StudyTask{}, err
	}
	if in.Subject != nil {
		task.Subject = *in.Subject
	}
	if in.Topic != nil {
		task.Topic = *in.Topic
	}
	if in.Duration != nil {
		task.Duration = *in.Duration
	}
	if in.Priority != nil {
		task.Priority = *in.Priority
	}
	if in.Date != nil {
		task.Date = *in.Date
	}
	if in.Time != nil {
		task.Time = *in.Time
	}
	if in.Description != nil {
		task.Description = *in.Description
	}
	if in.Status != nil {
		return s.setStatus(ctx, task, *in.Status)
	}
	task.UpdatedAt = s.now()
	if err := s.repo.UpdateTask(ctx, task); err != nil {
		return domain.StudyTask{}, err
	}
	return task, nil
}

func (s *TaskService) Delete(ctx context.Context, userID, id string) error {
	return s.repo.DeleteTask(ctx, userID, id)
}

// Stats summarizes the planner. Study hours only count completed tasks.
func (s *TaskService) Stats(ctx context.Context, userID string) (domain.TaskStats, error) {
	tasks, err := s.repo.ListTasks(ctx, userID, domain.TaskFilter{})
	if err != nil {
		return domain.TaskStats{}, err
	}
	completed := lo.Filter(tasks, func(t domain.StudyTask, _ int) bool { return t.Status == domain.TaskCompleted })
	pending := lo.CountBy(tasks, func(t domain.StudyTask) bool { return t.Status == domain.TaskPending })
	minutes := lo.SumBy(completed, func(t domain.StudyTask) int { return t.Duration })

	bySubject := lo.GroupBy(tasks, func(t domain.StudyTask) string { return t.Subject })
	loads := make([]domain.SubjectLoad, 0, len(bySubject))
	for _, subject := range lo.Keys(bySubject) {
		group := bySubject[subject]
		loads = append(loads, domain.SubjectLoad{
			Subject:       subject,
			Count:         len(group),
			TotalDuration: lo.SumBy(group, func(t domain.StudyTask) int { return t.Duration }),
		})
	}
	sort.Slice(loads, func(i, j int) bool {
		if loads[i].Count != loads[j].Count {
			return loads[i].Count > loads[j].Count
		}
		return loads[i].Subject < loads[j].Subject
	})

	return domain.TaskStats{
		TotalTasks:      len(tasks),
		CompletedTasks:  len(completed),
		PendingTasks:    pending,
		TotalStudyHours: float64(minutes) / 60,
		BySubject:       loads,
	}, nil
}

// Week returns the dates of the planner week offset weeks from the current one.
func (s *TaskService) Week(offset int) []string {
	return WeekDates(s.now(), offset)
}

// WeekDates returns the seven YYYY-MM-DD dates, Monday first, of the week
// offset weeks away from the week containing today.
func WeekDates(today time.Time, offset int) []string {
	weekday := int(today.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	monday := dayOf(today).AddDate(0, 0, 1-weekday+offset*7)
	dates := make([]string, 7)
	for i := range dates {
		dates[i] = monday.AddDate(0, 0, i).Format(domain.DateLayout)
	}
	return dates
}
