package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/auth"
)

// Handler exposes the dashboard over HTTP and WebSocket.
type Handler struct {
	dashboard *app.Dashboard
	auth      *auth.Service
	ws        *WSHandler
}

func NewHandler(dashboard *app.Dashboard, authSvc *auth.Service) *Handler {
	return &Handler{dashboard: dashboard, auth: authSvc, ws: NewWSHandler(dashboard)}
}

// Router builds the chi route tree.
func (h *Handler) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/auth/google", h.loginGoogle)
		r.Post("/auth/email", h.loginEmail)

		r.Group(func(r chi.Router) {
			r.Use(Authenticator(h.auth))

			r.Get("/me", h.me)
			r.Get("/dashboard", h.dashboardTabs)
			r.Get("/dashboard/overview", h.overview)
			r.Get("/progress", h.progress)
			r.Post("/respond", h.respond)

			r.Route("/tasks", func(r chi.Router) {
				r.Get("/", h.listTasks)
				r.Post("/", h.createTask)
				r.Get("/stats", h.taskStats)
				r.Get("/week", h.taskWeek)
				r.Get("/{id}", h.getTask)
				r.Put("/{id}", h.updateTask)
				r.Delete("/{id}", h.deleteTask)
				r.Patch("/{id}/toggle-status", h.toggleTask)
			})

			r.Route("/summaries", func(r chi.Router) {
				r.Get("/", h.listSummaries)
				r.Post("/", h.createSummary)
				r.Get("/stats", h.summaryStats)
				r.Get("/{id}", h.getSummary)
				r.Delete("/{id}", h.deleteSummary)
				r.Get("/{id}/export", h.exportSummary)
			})

			r.Route("/quiz", func(r chi.Router) {
				r.Get("/", h.quizSnapshot)
				r.Put("/config", h.configureQuiz)
				r.Post("/generate", h.generateQuiz)
				r.Post("/start", h.startQuiz)
				r.Post("/answer", h.answerQuiz)
				r.Post("/next", h.nextQuestion)
				r.Post("/previous", h.previousQuestion)
				r.Post("/complete", h.completeQuiz)
				r.Post("/reset", h.resetQuiz)
				r.Get("/history", h.quizHistory)
			})

			r.Route("/chat", func(r chi.Router) {
				r.Get("/sessions", h.listChatSessions)
				r.Post("/sessions", h.createChatSession)
				r.Get("/sessions/{id}", h.getChatSession)
				r.Delete("/sessions/{id}", h.deleteChatSession)
				r.Post("/sessions/{id}/messages", h.sendChatMessage)
				r.Patch("/messages/{id}/feedback", h.chatFeedback)
				r.Get("/stats", h.chatStats)
				r.Get("/quick-questions", h.quickQuestions)
			})
		})
	})

	r.Group(func(r chi.Router) {
		r.Use(Authenticator(h.auth))
		r.Get("/ws/chat", h.ws.ServeChat)
		r.Get("/ws/quiz", h.ws.ServeQuiz)
	})
	return r
}
