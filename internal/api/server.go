// Package api serves an engine over HTTP and a websocket stream.
//
// Commands are posted to /v1/commands and run through the engine's
// single-writer queue, so an Engine.Run loop must be active. Reads take the
// engine lock directly. The websocket hub only broadcasts; nothing a client
// sends over the socket mutates the timeline.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/roach88/cutroom/internal/engine"
)

type Server struct {
	httpServer *http.Server
	engine     *engine.Engine
	hub        *Hub
	logger     *slog.Logger
}

type ServerConfig struct {
	Addr      string
	Engine    *engine.Engine
	Logger    *slog.Logger
	StartTime time.Time
}

func NewServer(cfg ServerConfig) *Server {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.StartTime.IsZero() {
		cfg.StartTime = time.Now()
	}
	hub := NewHub(cfg.Logger)
	hub.Attach(cfg.Engine)

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr,
			Handler:      NewRouter(cfg, hub),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 0,
			IdleTimeout:  60 * time.Second,
		},
		engine: cfg.Engine,
		hub:    hub,
		logger: cfg.Logger,
	}
}

// Run serves until ctx is cancelled, then shuts down gracefully. It also
// drives the engine's command loop and the websocket hub.
func (s *Server) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go s.hub.Run(ctx)
	engineDone := make(chan error, 1)
	go func() { engineDone <- s.engine.Run(ctx) }()

	serveErr := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", s.httpServer.Addr)
		err := s.httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
			return
		}
		serveErr <- nil
	}()

	select {
	case err := <-serveErr:
		cancel()
		<-engineDone
		return err
	case <-ctx.Done():
	}

	shutdownCtx, stop := context.WithTimeout(context.Background(), 5*time.Second)
	defer stop()
	if err := s.Shutdown(shutdownCtx); err != nil {
		return err
	}
	<-engineDone
	return <-serveErr
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down HTTP server")
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) Addr() string {
	return s.httpServer.Addr
}
