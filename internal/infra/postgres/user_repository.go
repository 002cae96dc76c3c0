package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"studybuddy-service/internal/domain"
)

// UserRepository stores signed-in users keyed by email.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

// UpsertUser stores user, reusing the ID of an existing user with the same email.
func (r *UserRepository) UpsertUser(ctx context.Context, user domain.User) (domain.User, error) {
	var provider string
	err := r.pool.QueryRow(ctx, `INSERT INTO users (id, name, email, avatar, provider)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (email) DO UPDATE SET name=EXCLUDED.name, avatar=EXCLUDED.avatar, provider=EXCLUDED.provider
		RETURNING id, name, email, avatar, provider`,
		user.ID, user.Name, user.Email, user.Avatar, string(user.Provider),
	).Scan(&user.ID, &user.Name, &user.Email, &user.Avatar, &provider)
	if err != nil {
		return domain.User{}, fmt.Errorf("upsert user: %w", err)
	}
	user.Provider = domain.Provider(provider)
	return user, nil
}

func (r *UserRepository) GetUser(ctx context.Context, id string) (domain.User, error) {
	var (
		user     domain.User
		provider string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, name, email, avatar, provider FROM users WHERE id=$1`, id).
		Scan(&user.ID, &user.Name, &user.Email, &user.Avatar, &provider)
	if errors.Is(err, pgx.ErrNoRows) {
		return domain.User{}, domain.ErrUserNotFound
	}
	if err != nil {
		return domain.User{}, fmt.Errorf("get user: %w", err)
	}
	user.Provider = domain.Provider(provider)
	return user, nil
}
