package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"studybuddy-service/internal/domain"
	"studybuddy-service/internal/infra/memory"
)

func TestLoginGoogleReturnsMockProfile(t *testing.T) {
	svc := NewService(memory.NewUserRepository(), "secret", time.Hour)
	session, err := svc.LoginGoogle(context.Background())
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User != GoogleProfile || session.Token == "" {
		t.Fatalf("unexpected session %+v", session)
	}

	user, err := svc.Authenticate(context.Background(), session.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if user.Email != "alex.johnson@gmail.com" {
		t.Fatalf("unexpected user %+v", user)
	}
}

func TestLoginEmailDefaultsName(t *testing.T) {
	svc := NewService(memory.NewUserRepository(), "secret", time.Hour)
	session, err := svc.LoginEmail(context.Background(), "sam@example.com", "")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	if session.User.Name != DefaultName || session.User.Provider != domain.ProviderEmail {
		t.Fatalf("unexpected user %+v", session.User)
	}
	if want := "https://ui-avatars.com/api/?name=Student&background=3b82f6&color=fff"; session.User.Avatar != want {
		t.Fatalf("expected %q, got %q", want, session.User.Avatar)
	}

	if _, err := svc.LoginEmail(context.Background(), " ", "x"); !errors.Is(err, domain.ErrEmailRequired) {
		t.Fatalf("expected ErrEmailRequired, got %v", err)
	}
}

func TestAvatarURLEncodesLikeBrowsers(t *testing.T) {
	if got := AvatarURL("Mary Ann"); got != "https://ui-avatars.com/api/?name=Mary%20Ann&background=3b82f6&color=fff" {
		t.Fatalf("unexpected avatar %q", got)
	}
}

func TestAuthenticateRejectsBadTokens(t *testing.T) {
	users := memory.NewUserRepository()
	svc := NewService(users, "secret", time.Hour)
	other := NewService(users, "other-secret", time.Hour)
	session, _ := other.LoginGoogle(context.Background())

	if _, err := svc.Authenticate(context.Background(), session.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for a foreign signature, got %v", err)
	}
	if _, err := svc.Authenticate(context.Background(), "garbage"); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for garbage, got %v", err)
	}

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	valid, _ := NewService(users, "secret", time.Hour).LoginGoogle(context.Background())
	if _, err := svc.Authenticate(context.Background(), valid.Token); !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized for an expired token, got %v", err)
	}
}

func TestUserContextRoundTrip(t *testing.T) {
	ctx := WithUser(context.Background(), GoogleProfile)
	if user, ok := UserFrom(ctx); !ok || user.ID != "1" {
		t.Fatalf("expected user in context, got %+v", user)
	}
	if _, ok := UserFrom(context.Background()); ok {
		t.Fatalf("expected no user")
	}
}
