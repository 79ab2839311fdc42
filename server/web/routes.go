package web

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/wego-social/wego-tools/internal/middlewares"
	"github.com/wego-social/wego-tools/server"
)

type handler struct {
	*server.Server
}

func Routes(srv *server.Server) http.Handler {
	h := &handler{
		Server: srv,
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", h.Health)

	mux.HandleFunc("GET /login", h.Login)
	mux.HandleFunc("GET /login/callback", h.LoginCallback)
	mux.HandleFunc("GET /logout", h.Logout)

	mux.HandleFunc("GET /api/activities", h.Activities)
	mux.HandleFunc("GET /api/activities/full", h.FullActivities)
	mux.HandleFunc("GET /api/activities/{activity_id}", h.Activity)

	mux.HandleFunc("POST /api/resolve/{target_id}", h.ResolveTarget)
	mux.HandleFunc("GET  /api/resolve/{target_id}", h.Resolution)

	mux.HandleFunc("GET  /api/targets/{target_id}/reviews", h.Reviews)
	mux.HandleFunc("POST /api/targets/{target_id}/reviews", h.CreateReview)
	mux.HandleFunc("POST /api/targets/{target_id}/report", h.CreateReport)
	mux.HandleFunc("GET  /api/targets/{target_id}/has-reported", h.HasReported)

	mux.HandleFunc("GET /api/reports", h.Reports)

	mux.HandleFunc("POST /api/dm/open", h.DMOpen)
	mux.HandleFunc("POST /api/dm/close", h.DMClose)
	mux.HandleFunc("GET  /api/dm/peers", h.DMPeers)
	mux.HandleFunc("GET  /api/dm/messages", h.DMMessages)
	mux.HandleFunc("POST /api/dm/send", h.DMSend)

	mux.Handle("GET /activities/{activity_id}/qr", middlewares.Cache(http.HandlerFunc(h.ActivityQR)))

	mux.HandleFunc("GET /ws", h.WS)

	mux.HandleFunc("/", h.NotFound)

	return cleanPath(logRequests(h.Auth.Middleware(mux)))
}

func (h *handler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.DB.Ping(r.Context()); err != nil {
		slog.ErrorContext(r.Context(), "Health check failed", slog.Any("err", err))
		http.Error(w, "unhealthy", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.Error(w, r, http.StatusNotFound, "not found")
}

func cleanPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r)
	})
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		slog.DebugContext(r.Context(), "Handled request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Duration("duration", time.Since(start)),
		)
	})
}
