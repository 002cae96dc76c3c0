package memory

import (
	"context"
	"sync"

	"studybuddy-service/internal/domain"
)

// TaskRepository keeps study tasks in a map keyed by task ID.
type TaskRepository struct {
	mu    sync.RWMutex
	tasks map[string]domain.StudyTask
	order []string
}

func NewTaskRepository() *TaskRepository {
	return &TaskRepository{tasks: make(map[string]domain.StudyTask)}
}

func (r *TaskRepository) CreateTask(_ context.Context, task domain.StudyTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tasks[task.ID]; !ok {
		r.order = append(r.order, task.ID)
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *TaskRepository) GetTask(_ context.Context, userID, id string) (domain.StudyTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return domain.StudyTask{}, domain.ErrTaskNotFound
	}
	return task, nil
}

func (r *TaskRepository) UpdateTask(_ context.Context, task domain.StudyTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.tasks[task.ID]
	if !ok || existing.UserID != task.UserID {
		return domain.ErrTaskNotFound
	}
	r.tasks[task.ID] = task
	return nil
}

func (r *TaskRepository) DeleteTask(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	task, ok := r.tasks[id]
	if !ok || task.UserID != userID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	for i, tid := range r.order {
		if tid == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return nil
}

// ListTasks returns matches in insertion order.
func (r *TaskRepository) ListTasks(_ context.Context, userID string, filter domain.TaskFilter) ([]domain.StudyTask, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]domain.StudyTask, 0)
	for _, id := range r.order {
		task := r.tasks[id]
		if task.UserID != userID {
			continue
		}
		if filter.Date != "" && task.Date != filter.Date {
			continue
		}
		if filter.Status != "" && task.Status != filter.Status {
			continue
		}
		if filter.Subject != "" && task.Subject != filter.Subject {
			continue
		}
		out = append(out, task)
	}
	return out, nil
}
