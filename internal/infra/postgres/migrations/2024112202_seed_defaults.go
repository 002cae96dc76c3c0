package migrations

import (
	"context"

	"github.com/uptrace/bun"
	"studybuddy-service/internal/domain"
)

// SampleQuizID is the quiz the default question bank is stored under.
const SampleQuizID = "sample"

type quizRow struct {
	bun.BaseModel `bun:"table:quizzes"`

	ID      string `bun:"id,pk"`
	Title   string `bun:"title"`
	Subject string `bun:"subject"`
}

type questionRow struct {
	bun.BaseModel `bun:"table:questions"`

	ID       string          `bun:"id,pk"`
	QuizID   string          `bun:"quiz_id,pk"`
	Position int             `bun:"position"`
	Data     domain.Question `bun:"data,type:jsonb"`
}

type achievementRow struct {
	bun.BaseModel `bun:"table:achievements"`

	Name        string `bun:"name,pk"`
	Description string `bun:"description"`
	Icon        string `bun:"icon"`
	XPReward    int    `bun:"xp_reward"`
	Condition   string `bun:"condition,type:jsonb"`
}

func init() {
	Migrations.MustRegister(
		func(ctx context.Context, db *bun.DB) error {
			return db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
				if _, err := tx.NewInsert().
					Model(&quizRow{ID: SampleQuizID, Title: "Sample Quiz"}).
					On("CONFLICT (id) DO NOTHING").
					Exec(ctx); err != nil {
					return err
				}

				bank := domain.DefaultQuestionBank()
				questions := make([]questionRow, len(bank))
				for i, q := range bank {
					questions[i] = questionRow{ID: q.ID, QuizID: SampleQuizID, Position: i, Data: q}
				}
				if _, err := tx.NewInsert().
					Model(&questions).
					On("CONFLICT (quiz_id, id) DO NOTHING").
					Exec(ctx); err != nil {
					return err
				}

				defaults := domain.DefaultAchievements()
				achievements := make([]achievementRow, len(defaults))
				for i, a := range defaults {
					achievements[i] = achievementRow{
						Name:        a.Name,
						Description: a.Description,
						Icon:        a.Icon,
						XPReward:    a.XPReward,
						Condition:   a.Condition,
					}
				}
				_, err := tx.NewInsert().
					Model(&achievements).
					On("CONFLICT (name) DO NOTHING").
					Exec(ctx)
				return err
			})
		},
		func(ctx context.Context, db *bun.DB) error {
			_, err := db.ExecContext(ctx, `DELETE FROM quizzes WHERE id = ?`, SampleQuizID)
			if err != nil {
				return err
			}
			_, err = db.ExecContext(ctx, `TRUNCATE achievements CASCADE`)
			return err
		},
	)
}
