package http

import (
	"net/http"

	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

type answerRequest struct {
	QuestionID string             `json:"questionId"`
	Answer     domain.AnswerValue `json:"answer"`
}

func (h *Handler) quizSnapshot(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Quiz.Snapshot(r.Context(), currentUser(r).ID)
	h.writeSnapshot(w, r, snap, err)
}

func (h *Handler) configureQuiz(w http.ResponseWriter, r *http.Request) {
	cfg := domain.DefaultQuizConfiguration()
	if err := decode(r, &cfg); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	snap, err := h.dashboard.Quiz.Configure(r.Context(), currentUser(r).ID, cfg)
	h.writeSnapshot(w, r, snap, err)
}

// generateQuiz waits for the questions. The generation belongs to the quiz
// session, so a client that hangs up does not cancel it.
func (h *Handler) generateQuiz(w http.ResponseWriter, r *http.Request) {
	userID := currentUser(r).ID
	future, err := h.dashboard.Quiz.Generate(r.Context(), userID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	if _, err := future.Wait(r.Context()); err != nil {
		handleServiceError(w, r, err)
		return
	}
	snap, err := h.dashboard.Quiz.Snapshot(r.Context(), userID)
	h.writeSnapshot(w, r, snap, err)
}

func (h *Handler) startQuiz(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Quiz.Start(r.Context(), currentUser(r).ID)
	h.writeSnapshot(w, r, snap, err)
}

func (h *Handler) answerQuiz(w http.ResponseWriter, r *http.Request) {
	var req answerRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	snap, err := h.dashboard.Quiz.Answer(r.Context(), currentUser(r).ID, req.QuestionID, req.Answer)
	h.writeSnapshot(w, r, snap, err)
}

func (h *Handler) nextQuestion(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Quiz.Next(r.Context(), currentUser(r).ID)
	h.writeSnapshot(w, r, snap, err)
}

func (h *Handler) previousQuestion(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Quiz.Previous(r.Context(), currentUser(r).ID)
	h.writeSnapshot(w, r, snap, err)
}

func (h *Handler) completeQuiz(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dashboard.Quiz.Complete(r.Context(), currentUser(r).ID)
	h.writeSnapshot(w, r, snap, err)
}

func (h *Handler) resetQuiz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.dashboard.Quiz.Reset(r.Context(), currentUser(r).ID))
}

func (h *Handler) quizHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := intParam(r.URL.Query().Get("limit"))
	if err != nil {
		badRequest(w, r, "limit must be an integer")
		return
	}
	attempts, err := h.dashboard.Quiz.History(r.Context(), currentUser(r).ID, limit)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, attempts)
}

func (h *Handler) writeSnapshot(w http.ResponseWriter, r *http.Request, snap app.QuizSnapshot, err error) {
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}
