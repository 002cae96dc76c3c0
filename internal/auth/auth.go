// Package auth implements the mocked sign-in flows and the bearer tokens that
// gate the API.
package auth

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

// GoogleProfile is the fixed profile returned by the mocked Google flow.
var GoogleProfile = domain.User{
	ID:       "1",
	Name:     "Alex Johnson",
	Email:    "alex.johnson@gmail.com",
	Avatar:   "https://images.unsplash.com/photo-1472099645785-5658abf4ff4e?w=150&h=150&fit=crop&crop=face",
	Provider: domain.ProviderGoogle,
}

// DefaultName is used by the email flow when no name is given.
const DefaultName = "Student"

// Session is the result of a sign-in.
type Session struct {
	User  domain.User `json:"user"`
	Token string      `json:"token"`
}

// Service signs users in and verifies their tokens.
type Service struct {
	users  app.UserRepository
	secret []byte
	ttl    time.Duration
	now    func() time.Time
	newID  func() string
}

func NewService(users app.UserRepository, secret string, ttl time.Duration) *Service {
	return &Service{users: users, secret: []byte(secret), ttl: ttl, now: time.Now, newID: app.NewID}
}

// LoginGoogle signs in the fixed mock Google profile.
func (s *Service) LoginGoogle(ctx context.Context) (Session, error) {
	return s.login(ctx, GoogleProfile)
}

// LoginEmail signs in any address. The password is never checked.
func (s *Service) LoginEmail(ctx context.Context, email, name string) (Session, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return Session{}, domain.ErrEmailRequired
	}
	name = strings.TrimSpace(name)
	if name == "" {
		name = DefaultName
	}
	return s.login(ctx, domain.User{
		ID:       s.newID(),
		Name:     name,
		Email:    email,
		Avatar:   AvatarURL(name),
		Provider: domain.ProviderEmail,
	})
}

func (s *Service) login(ctx context.Context, user domain.User) (Session, error) {
	stored, err := s.users.UpsertUser(ctx, user)
	if err != nil {
		return Session{}, err
	}
	token, err := s.issue(stored)
	if err != nil {
		return Session{}, err
	}
	return Session{User: stored, Token: token}, nil
}

func (s *Service) issue(user domain.User) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"user_id":  user.ID,
		"email":    user.Email,
		"provider": string(user.Provider),
		"iat":      now.Unix(),
		"exp":      now.Add(s.ttl).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Authenticate verifies a bearer token and loads its user.
func (s *Service) Authenticate(ctx context.Context, tokenStr string) (domain.User, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return domain.User{}, errors.Join(domain.ErrUnauthorized, err)
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return domain.User{}, domain.ErrUnauthorized
	}
	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return domain.User{}, domain.ErrUnauthorized
	}
	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return domain.User{}, domain.ErrUnauthorized
		}
		return domain.User{}, err
	}
	return user, nil
}

// AvatarURL renders the generated initials avatar for name.
func AvatarURL(name string) string {
	// encoded like encodeURIComponent: spaces become %20, not +
	escaped := strings.ReplaceAll(url.QueryEscape(name), "+", "%20")
	return "https://ui-avatars.com/api/?name=" + escaped + "&background=3b82f6&color=fff"
}

type contextKey string

const userKey contextKey = "user"

// WithUser attaches the signed-in user to ctx.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFrom returns the signed-in user attached to ctx.
func UserFrom(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}
