package http

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"studybuddy-service/internal/responder"
)

type createSessionRequest struct {
	Title   string `json:"title"`
	Subject string `json:"subject"`
}

type sendMessageRequest struct {
	Text    string `json:"text"`
	Subject string `json:"subject"`
}

type feedbackRequest struct {
	Helpful *bool `json:"helpful"`
}

func (h *Handler) listChatSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := h.dashboard.Chat.ListSessions(r.Context(), currentUser(r).ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessions)
}

func (h *Handler) createChatSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	// an empty body creates a default session
	if err := decode(r, &req); err != nil && !errors.Is(err, io.EOF) {
		badRequest(w, r, "invalid request body")
		return
	}
	userID := currentUser(r).ID
	info, err := h.dashboard.Chat.CreateSession(r.Context(), userID, req.Title, req.Subject)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	_, messages, err := h.dashboard.Chat.GetSession(r.Context(), userID, info.ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"session":  info,
		"messages": messages,
	})
}

func (h *Handler) getChatSession(w http.ResponseWriter, r *http.Request) {
	info, messages, err := h.dashboard.Chat.GetSession(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"session":  info,
		"messages": messages,
	})
}

func (h *Handler) deleteChatSession(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.Chat.DeleteSession(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// sendChatMessage returns once the bot has replied.
func (h *Handler) sendChatMessage(w http.ResponseWriter, r *http.Request) {
	var req sendMessageRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	msg, reply, err := h.dashboard.Chat.Send(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), req.Text, req.Subject)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	bot, err := reply.Wait(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"message": msg,
		"reply":   bot,
	})
}

func (h *Handler) chatFeedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := decode(r, &req); err != nil || req.Helpful == nil {
		badRequest(w, r, "helpful must be true or false")
		return
	}
	msg, err := h.dashboard.Chat.Feedback(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), *req.Helpful)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, msg)
}

func (h *Handler) chatStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Chat.Stats(r.Context(), currentUser(r).ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) quickQuestions(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, responder.QuickQuestions())
}
