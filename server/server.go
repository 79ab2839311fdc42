package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wego-social/wego-tools/server/auth"
	"github.com/wego-social/wego-tools/server/database"
	"github.com/wego-social/wego-tools/server/dm"
	"github.com/wego-social/wego-tools/server/realtime"
	"github.com/wego-social/wego-tools/server/resolve"
	"github.com/wego-social/wego-tools/server/wego"
)

func New(cfg Config) (*Server, error) {
	db, err := database.New(cfg.Database)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	httpClient := &http.Client{
		Timeout: 30 * time.Second,
	}

	notifier, err := NewNotifier(cfg.Notifications)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize notifier: %w", err)
	}

	client := wego.New(cfg.WeGo, httpClient)

	s := &Server{
		Cfg:        cfg,
		HTTPClient: httpClient,
		Client:     client,
		DB:         db,
		Auth:       auth.New(cfg.Auth, db),
		Hub:        realtime.NewHub(),
		DMs:        dm.NewRegistry(),
		Resolvers:  resolve.NewRegistry(client),
		Notifier:   notifier,
	}
	s.server = &http.Server{
		Addr: cfg.Server.Addr,
	}

	if cfg.Refresh.Enabled {
		go s.refreshActivities()
	}

	return s, nil
}

type Server struct {
	Cfg        Config
	HTTPClient *http.Client
	Client     *wego.Client
	DB         *database.Database
	Auth       *auth.Auth
	Hub        *realtime.Hub
	DMs        *dm.Registry
	Resolvers  *resolve.Registry
	Notifier   *Notifier

	server *http.Server
}

func (s *Server) Start(handler http.Handler) {
	s.server.Handler = handler
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server failed", slog.Any("err", err))
	}
}

func (s *Server) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.server.Shutdown(ctx); err != nil {
		slog.Error("Server shutdown failed", slog.Any("err", err))
	}

	s.Hub.Close()

	if err := s.DB.Close(); err != nil {
		slog.Error("Database close failed", slog.Any("err", err))
	}
}
