package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"studybuddy-service/internal/domain"
)

const taskColumns = `id, user_id, subject, topic, duration, priority, date, time, status, description, created_at, updated_at`

// TaskRepository stores study tasks in the study_tasks table.
type TaskRepository struct {
	pool *pgxpool.Pool
}

func NewTaskRepository(pool *pgxpool.Pool) *TaskRepository {
	return &TaskRepository{pool: pool}
}

func (r *TaskRepository) CreateTask(ctx context.Context, t domain.StudyTask) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO study_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		t.ID, t.UserID, t.Subject, t.Topic, t.Duration, string(t.Priority), t.Date, t.Time,
		string(t.Status), t.Description, t.CreatedAt, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (r *TaskRepository) GetTask(ctx context.Context, userID, id string) (domain.StudyTask, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+taskColumns+` FROM study_tasks WHERE id=$1 AND user_id=$2`, id, userID)
	task, err := scanTask(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.StudyTask{}, domain.ErrTaskNotFound
	}
	if err != nil {
		return domain.StudyTask{}, fmt.Errorf("get task: %w", err)
	}
	return task, nil
}

func (r *TaskRepository) UpdateTask(ctx context.Context, t domain.StudyTask) error {
	tag, err := r.pool.Exec(ctx, `UPDATE study_tasks
		SET subject=$3, topic=$4, duration=$5, priority=$6, date=$7, time=$8, status=$9, description=$10, updated_at=$11
		WHERE id=$1 AND user_id=$2`,
		t.ID, t.UserID, t.Subject, t.Topic, t.Duration, string(t.Priority), t.Date, t.Time,
		string(t.Status), t.Description, t.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *TaskRepository) DeleteTask(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM study_tasks WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ListTasks returns matches in insertion order.
func (r *TaskRepository) ListTasks(ctx context.Context, userID string, filter domain.TaskFilter) ([]domain.StudyTask, error) {
	where, args := "WHERE user_id=$1", []interface{}{userID}
	if filter.Date != "" {
		args = append(args, filter.Date)
		where += fmt.Sprintf(" AND date=$%d", len(args))
	}
	if filter.Status != "" {
		args = append(args, string(filter.Status))
		where += fmt.Sprintf(" AND status=$%d", len(args))
	}
	if filter.Subject != "" {
		args = append(args, filter.Subject)
		where += fmt.Sprintf(" AND subject=$%d", len(args))
	}

	rows, err := r.pool.Query(ctx, `SELECT `+taskColumns+` FROM study_tasks `+where+` ORDER BY seq`, args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]domain.StudyTask, 0)
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func scanTask(row pgx.Row) (domain.StudyTask, error) {
	var (
		t                domain.StudyTask
		priority, status string
	)
	err := row.Scan(&t.ID, &t.UserID, &t.Subject, &t.Topic, &t.Duration, &priority, &t.Date, &t.Time,
		&status, &t.Description, &t.CreatedAt, &t.UpdatedAt)
	t.Priority = domain.Priority(priority)
	t.Status = domain.TaskStatus(status)
	return t, err
}
