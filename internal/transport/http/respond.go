package http

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"studybuddy-service/internal/domain"
)

type apiError struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type errorResponse struct {
	Error apiError `json:"error"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("write response: %v", err)
	}
}

func errorResp(code, message string, r *http.Request) errorResponse {
	return errorResponse{Error: apiError{
		Code:      code,
		Message:   message,
		RequestID: middleware.GetReqID(r.Context()),
	}}
}

func badRequest(w http.ResponseWriter, r *http.Request, message string) {
	writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", message, r))
}

// handleServiceError maps domain sentinels to HTTP statuses.
func handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResp("UNAUTHORIZED", "invalid or missing token", r))
	case errors.Is(err, domain.ErrSubjectRequired),
		errors.Is(err, domain.ErrEmptyMessage),
		errors.Is(err, domain.ErrEmptyText),
		errors.Is(err, domain.ErrInvalidFormat),
		errors.Is(err, domain.ErrEmailRequired):
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrQuestionNotFound),
		errors.Is(err, domain.ErrMessageNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrSummaryNotFound),
		errors.Is(err, domain.ErrUserNotFound):
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", err.Error(), r))
	case errors.Is(err, domain.ErrInvalidTransition),
		errors.Is(err, domain.ErrReplyPending),
		errors.Is(err, domain.ErrFeedbackAlreadySet):
		writeJSON(w, http.StatusConflict, errorResp("CONFLICT", err.Error(), r))
	case errors.Is(err, context.Canceled):
		// superseded by a reset or a newer request
		writeJSON(w, http.StatusConflict, errorResp("CANCELLED", "operation was cancelled", r))
	default:
		log.Printf("request %s: %v", middleware.GetReqID(r.Context()), err)
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "an unexpected error occurred", r))
	}
}

func decode(r *http.Request, dst interface{}) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
