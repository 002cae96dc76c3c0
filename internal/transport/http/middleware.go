package http

import (
	"net/http"
	"strings"

	"studybuddy-service/internal/auth"
	"studybuddy-service/internal/domain"
)

// Authenticator resolves the bearer token to a user. Browsers cannot set
// headers on websocket upgrades, so a token query parameter is accepted too.
func Authenticator(svc *auth.Service) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				handleServiceError(w, r, domain.ErrUnauthorized)
				return
			}
			user, err := svc.Authenticate(r.Context(), token)
			if err != nil {
				handleServiceError(w, r, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(auth.WithUser(r.Context(), user)))
		})
	}
}

func bearerToken(r *http.Request) string {
	if header := r.Header.Get("Authorization"); header != "" {
		parts := strings.SplitN(header, " ", 2)
		if len(parts) == 2 && parts[0] == "Bearer" {
			return strings.TrimSpace(parts[1])
		}
		return ""
	}
	return r.URL.Query().Get("token")
}

// currentUser is only valid behind Authenticator.
func currentUser(r *http.Request) domain.User {
	user, _ := auth.UserFrom(r.Context())
	return user
}
