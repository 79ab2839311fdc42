package web

import (
	"encoding/json"
	"log/slog"
	"net/http"
)

// Problem is an RFC 7807-style error document. Every error the API surfaces
// is a user-facing message; nothing bubbles up unhandled.
type Problem struct {
	Title  string              `json:"title,omitempty"`
	Status int                 `json:"status"`
	Detail string              `json:"detail,omitempty"`
	Errors map[string][]string `json:"errors,omitempty"`
}

func (h *handler) Error(w http.ResponseWriter, r *http.Request, status int, detail string) {
	h.problem(w, r, Problem{
		Title:  http.StatusText(status),
		Status: status,
		Detail: detail,
	})
}

func (h *handler) ValidationError(w http.ResponseWriter, r *http.Request, errs map[string][]string) {
	h.problem(w, r, Problem{
		Title:  http.StatusText(http.StatusBadRequest),
		Status: http.StatusBadRequest,
		Detail: "validation failed",
		Errors: errs,
	})
}

func (h *handler) ServerError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	slog.ErrorContext(r.Context(), msg, slog.Any("err", err))
	h.Error(w, r, http.StatusInternalServerError, msg)
}

func (h *handler) problem(w http.ResponseWriter, r *http.Request, p Problem) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(p.Status)
	if err := json.NewEncoder(w).Encode(p); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode problem response", slog.Any("err", err))
	}
}

// JSON writes a successful JSON response.
func (h *handler) JSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.ErrorContext(r.Context(), "Failed to encode response", slog.Any("err", err))
	}
}
