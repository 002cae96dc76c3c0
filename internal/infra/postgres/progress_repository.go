package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"studybuddy-service/internal/domain"
)

// ProgressRepository stores user_progress rows and achievement awards.
type ProgressRepository struct {
	pool *pgxpool.Pool
}

func NewProgressRepository(pool *pgxpool.Pool) *ProgressRepository {
	return &ProgressRepository{pool: pool}
}

func (r *ProgressRepository) GetProgress(ctx context.Context, userID string) (domain.UserProgress, bool, error) {
	var (
		p          domain.UserProgress
		lastActive *time.Time
	)
	err := r.pool.QueryRow(ctx, `SELECT user_id, study_streak, total_hours, quizzes_completed, average_score,
		last_score, summaries_created, level, xp, last_active_date
		FROM user_progress WHERE user_id=$1`, userID).
		Scan(&p.UserID, &p.StudyStreak, &p.TotalHours, &p.QuizzesCompleted, &p.AverageScore,
			&p.LastScore, &p.SummariesCreated, &p.Level, &p.XP, &lastActive)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.UserProgress{}, false, nil
	}
	if err != nil {
		return domain.UserProgress{}, false, fmt.Errorf("get progress: %w", err)
	}
	if lastActive != nil {
		p.LastActiveDate = *lastActive
	}
	return p, true, nil
}

func (r *ProgressRepository) SaveProgress(ctx context.Context, p domain.UserProgress) error {
	var lastActive *time.Time
	if !p.LastActiveDate.IsZero() {
		lastActive = &p.LastActiveDate
	}
	_, err := r.pool.Exec(ctx, `INSERT INTO user_progress
		(user_id, study_streak, total_hours, quizzes_completed, average_score, last_score, summaries_created, level, xp, last_active_date)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (user_id) DO UPDATE SET
			study_streak=EXCLUDED.study_streak,
			total_hours=EXCLUDED.total_hours,
			quizzes_completed=EXCLUDED.quizzes_completed,
			average_score=EXCLUDED.average_score,
			last_score=EXCLUDED.last_score,
			summaries_created=EXCLUDED.summaries_created,
			level=EXCLUDED.level,
			xp=EXCLUDED.xp,
			last_active_date=EXCLUDED.last_active_date`,
		p.UserID, p.StudyStreak, p.TotalHours, p.QuizzesCompleted, p.AverageScore, p.LastScore,
		p.SummariesCreated, p.Level, p.XP, lastActive,
	)
	if err != nil {
		return fmt.Errorf("save progress: %w", err)
	}
	return nil
}

func (r *ProgressRepository) Achievements(ctx context.Context) ([]domain.Achievement, error) {
	rows, err := r.pool.Query(ctx, `SELECT name, description, icon, xp_reward, condition::text, created_at
		FROM achievements ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("list achievements: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Achievement, 0)
	for rows.Next() {
		var a domain.Achievement
		if err := rows.Scan(&a.Name, &a.Description, &a.Icon, &a.XPReward, &a.Condition, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *ProgressRepository) AwardAchievement(ctx context.Context, award domain.UserAchievement) (bool, error) {
	tag, err := r.pool.Exec(ctx, `INSERT INTO user_achievements (user_id, achievement, earned_at)
		VALUES ($1, $2, $3) ON CONFLICT (user_id, achievement) DO NOTHING`,
		award.UserID, award.Achievement, award.EarnedAt)
	if err != nil {
		return false, fmt.Errorf("award achievement: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

func (r *ProgressRepository) UserAchievements(ctx context.Context, userID string) ([]domain.UserAchievement, error) {
	rows, err := r.pool.Query(ctx, `SELECT user_id, achievement, earned_at
		FROM user_achievements WHERE user_id=$1 ORDER BY earned_at, achievement`, userID)
	if err != nil {
		return nil, fmt.Errorf("list user achievements: %w", err)
	}
	defer rows.Close()

	out := make([]domain.UserAchievement, 0)
	for rows.Next() {
		var a domain.UserAchievement
		if err := rows.Scan(&a.UserID, &a.Achievement, &a.EarnedAt); err != nil {
			return nil, fmt.Errorf("scan user achievement: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
