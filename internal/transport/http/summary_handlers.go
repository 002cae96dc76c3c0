package http

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"studybuddy-service/internal/app"
	"studybuddy-service/internal/domain"
)

// createSummary waits for the simulated generation. A client that hangs up
// cancels it and nothing is stored.
func (h *Handler) createSummary(w http.ResponseWriter, r *http.Request) {
	var req app.SummaryRequest
	if err := decode(r, &req); err != nil {
		badRequest(w, r, "invalid request body")
		return
	}
	future, err := h.dashboard.Summaries.Generate(r.Context(), currentUser(r).ID, req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	summary, err := future.Wait(r.Context())
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"summary":   summary,
		"reduction": app.Reduction(summary),
	})
}

func (h *Handler) listSummaries(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := domain.SummaryFilter{
		Format:   domain.SummaryFormat(q.Get("type")),
		Language: q.Get("language"),
	}
	var err error
	if filter.Limit, err = intParam(q.Get("limit")); err != nil {
		badRequest(w, r, "limit must be an integer")
		return
	}
	if filter.Offset, err = intParam(q.Get("offset")); err != nil {
		badRequest(w, r, "offset must be an integer")
		return
	}
	summaries, total, err := h.dashboard.Summaries.List(r.Context(), currentUser(r).ID, filter)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"summaries": summaries,
		"total":     total,
	})
}

func (h *Handler) getSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.dashboard.Summaries.Get(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handler) deleteSummary(w http.ResponseWriter, r *http.Request) {
	if err := h.dashboard.Summaries.Delete(r.Context(), currentUser(r).ID, chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) exportSummary(w http.ResponseWriter, r *http.Request) {
	export, err := h.dashboard.Summaries.Export(r.Context(), currentUser(r).ID, chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(export.Body))
}

func (h *Handler) summaryStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.dashboard.Summaries.Stats(r.Context(), currentUser(r).ID)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func intParam(raw string) (int, error) {
	if raw == "" {
		return 0, nil
	}
	return strconv.Atoi(raw)
}
