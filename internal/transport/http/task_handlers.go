package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

func (h *Handler) listTasks(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tasks, err := h.dashboard.Tasks.List(r.Context(), currentUser(r).ID, domain.TaskFilter{
		Date:    q.Get("date"),
		Status:  domain.TaskStatus(q.Get("status")),
		Subject: q.Get("subject"),
	})
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *Handler) createTask(w http.ResponseWriter, r *http.Request) {
	var req app.NewTask
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	task, err := h.dashboard.Tasks.AddTask(r.Context(), currentUser(r).ID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *Handler) getTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.dashboard.Tasks.Get(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) updateTask(w http.ResponseWriter, r *http.Request) {
	var req app.TaskUpdate
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	task, err := h.dashboard.Tasks.Update(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) deleteTask(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.Tasks.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) toggleTask(w http.ResponseWriter, r *http.Request) {
	task, err := h.dashboard.Tasks.ToggleStatus(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *Handler) taskStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Tasks.Stats(r.Context(), currentUser(r).ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) taskWeek(w http.ResponseWriter, r *http.Request) {
	offset := 0
	if raw := r.URL.Query().Get("offset"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			badRequest(w, r, "offset must be an integer")
			return
		}
		offset = n
	}
	user := currentUser(r)
	dates := h.dashboard.Tasks.Week(offset)
	days := make([]map[string]interface{}, 0, len(dates))
	for _, date := range dates {
		tasks, err := h.dashboard.Tasks.TasksForDate(r.Context(), user.ID, date)
		if err != nil {
			handleServiceError(w, r, err)
			return
		}
		days = append(days, map[string]interface{}{"date": date, "tasks": tasks})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"offset": offset, "days": days})
}
