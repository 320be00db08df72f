// Package server wires the HTTP surface: routing, middleware, the upstream
// credential probe, and graceful lifecycle management.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"runtime/debug"

	"golang.org/x/sync/errgroup"

	"github.com/chatkurd/chatkurd/internal/config"
	"github.com/chatkurd/chatkurd/internal/logger"
)

// Server hosts the chat API over HTTP.
type Server struct {
	httpServer *http.Server
	probe      *Probe
	cfg        config.ServerConfig
	log        *slog.Logger
}

// New assembles the server around the chat handler. authMiddleware may be
// nil, in which case requests are not authenticated.
func New(cfg config.ServerConfig, log *slog.Logger, chatHandler http.Handler, authMiddleware func(http.Handler) http.Handler, probe *Probe) *Server {
	s := &Server{
		probe: probe,
		cfg:   cfg,
		log:   log.With("component", "server"),
	}

	chat := chatHandler
	if authMiddleware != nil {
		chat = authMiddleware(chat)
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", chat)
	mux.HandleFunc("GET /api/chat", s.handleHealth)

	handler := logger.Middleware(log)(s.recover(mux))

	s.httpServer = &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s
}

// Run starts the probe and the HTTP listener and blocks until ctx is
// cancelled or the listener fails. Shutdown drains in-flight requests for
// up to the configured timeout.
func (s *Server) Run(ctx context.Context) error {
	if err := s.probe.Start(ctx); err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.InfoContext(ctx, "listening", "addr", s.cfg.Addr)
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-ctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()

		s.log.InfoContext(shutdownCtx, "shutting down")
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			s.log.ErrorContext(shutdownCtx, "shutdown failed", "error", err)
		}

		if err := s.probe.Stop(); err != nil {
			s.log.WarnContext(shutdownCtx, "probe shutdown failed", "error", err)
		}

		return nil
	})

	return g.Wait()
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	body := map[string]string{
		"message":  "Chat API is working",
		"upstream": s.probe.Status(),
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		s.log.ErrorContext(r.Context(), "failed to write health response", "error", err)
	}
}

// recover converts handler panics into 500 responses instead of killing
// the connection.
func (s *Server) recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				s.log.ErrorContext(r.Context(), "handler panic",
					"panic", rec, "stack", string(debug.Stack()))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_, _ = w.Write([]byte(`{"message":"Failed to process request"}` + "\n"))
			}
		}()

		next.ServeHTTP(w, r)
	})
}
