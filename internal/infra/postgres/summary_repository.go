package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"studybuddy-service/internal/domain"
)

const summaryColumns = `id, user_id, title, original_length, summary_length, language, format, content, created_at`

// SummaryRepository stores summaries in the summaries table.
type SummaryRepository struct {
	pool *pgxpool.Pool
}

func NewSummaryRepository(pool *pgxpool.Pool) *SummaryRepository {
	return &SummaryRepository{pool: pool}
}

func (r *SummaryRepository) CreateSummary(ctx context.Context, s domain.Summary) error {
	_, err := r.pool.Exec(ctx, `INSERT INTO summaries (`+summaryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		s.ID, s.UserID, s.Title, s.OriginalLength, s.SummaryLength, s.Language, string(s.Format), s.Content, s.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("insert summary: %w", err)
	}
	return nil
}

func (r *SummaryRepository) GetSummary(ctx context.Context, userID, id string) (domain.Summary, error) {
	row := r.pool.QueryRow(ctx, `SELECT `+summaryColumns+` FROM summaries WHERE id=$1 AND user_id=$2`, id, userID)
	s, err := scanSummary(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.Summary{}, domain.ErrSummaryNotFound
	}
	if err != nil {
		return domain.Summary{}, fmt.Errorf("get summary: %w", err)
	}
	return s, nil
}

func (r *SummaryRepository) DeleteSummary(ctx context.Context, userID, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM summaries WHERE id=$1 AND user_id=$2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete summary: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrSummaryNotFound
	}
	return nil
}

// ListSummaries returns newest first. A zero limit returns every match.
func (r *SummaryRepository) ListSummaries(ctx context.Context, userID string, filter domain.SummaryFilter) ([]domain.Summary, int, error) {
	where, args := "WHERE user_id=$1", []interface{}{userID}
	if filter.Format != "" {
		args = append(args, string(filter.Format))
		where += fmt.Sprintf(" AND format=$%d", len(args))
	}
	if filter.Language != "" {
		args = append(args, filter.Language)
		where += fmt.Sprintf(" AND language=$%d", len(args))
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM summaries `+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count summaries: %w", err)
	}

	query := `SELECT ` + summaryColumns + ` FROM summaries ` + where + ` ORDER BY created_at DESC, seq DESC`
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("list summaries: %w", err)
	}
	defer rows.Close()

	out := make([]domain.Summary, 0)
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan summary: %w", err)
		}
		out = append(out, s)
	}
	return out, total, rows.Err()
}

func (r *SummaryRepository) CountSummaries(ctx context.Context, userID string) (int, error) {
	var n int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM summaries WHERE user_id=$1`, userID).Scan(&n)
	return n, err
}

func scanSummary(row pgx.Row) (domain.Summary, error) {
	var (
		s      domain.Summary
		format string
	)
	err := row.Scan(&s.ID, &s.UserID, &s.Title, &s.OriginalLength, &s.SummaryLength, &s.Language, &format, &s.Content, &s.Timestamp)
	s.Format = domain.SummaryFormat(format)
	return s, err
}
