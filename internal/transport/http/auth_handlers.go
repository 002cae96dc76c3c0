package http

import (
	"net/http"

	"studybuddy-service/internal/app"
	"studybuddy-service/internal/responder"
)

type emailLoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (h *Handler) loginGoogle(w http.ResponseWriter, r *http.Request) {
	session, err := h.auth.LoginGoogle(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

// loginEmail accepts any password; the form only requires one to be present client side.
func (h *Handler) loginEmail(w http.ResponseWriter, r *http.Request) {
	var req emailLoginRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	session, err := h.auth.LoginEmail(r.Context(), req.Email, req.Name)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, session)
}

func (h *Handler) me(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, currentUser(r))
}

func (h *Handler) dashboardTabs(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"user":     user,
		"greeting": "Good morning, " + app.FirstName(user.Name) + "!",
		"tabs":     app.Tabs(),
		"active":   app.SelectTab(r.URL.Query().Get("tab")),
	})
}

func (h *Handler) overview(w http.ResponseWriter, r *http.Request) {
	overview, err := h.dashboard.Overview(r.Context(), currentUser(r))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}

func (h *Handler) progress(w http.ResponseWriter, r *http.Request) {
	user := currentUser(r)
	progress, err := h.dashboard.Progress.Progress(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	achievements, err := h.dashboard.Progress.Achievements(r.Context(), user.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"progress":     progress,
		"achievements": achievements,
	})
}

type respondRequest struct {
	Question string `json:"question"`
	Subject  string `json:"subject"`
}

func (h *Handler) respond(w http.ResponseWriter, r *http.Request) {
	var req respondRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"response": responder.Respond(req.Question, req.Subject)})
}
