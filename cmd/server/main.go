// Package main contains the entrypoint for the chat API server.
package main

import (
	"context"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatkurd/chatkurd/internal/auth"
	"github.com/chatkurd/chatkurd/internal/chat"
	"github.com/chatkurd/chatkurd/internal/config"
	"github.com/chatkurd/chatkurd/internal/gemini"
	"github.com/chatkurd/chatkurd/internal/logger"
	"github.com/chatkurd/chatkurd/internal/persona"
	"github.com/chatkurd/chatkurd/internal/server"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	exitCode := run(ctx)
	stop()
	os.Exit(exitCode)
}

// run initializes all components (config, logger, model clients, handler,
// server), blocks until shutdown, and returns the process exit code.
func run(ctx context.Context) int {
	configPath := flag.String("config", "./config.yaml", "Path to configuration file")
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		slog.Error("Failed to load configuration", "path", *configPath, "error", err)
		return 1
	}

	log := logger.NewLogger(cfg.Logger.Level, cfg.Logger.JSON)
	slog.SetDefault(log)
	log.Info("Logger initialized", "level", cfg.Logger.Level, "json", cfg.Logger.JSON)

	primary, err := gemini.NewClient(ctx, cfg.Gemini.PrimaryAPIKey, "primary", cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize primary Gemini client", "error", err)
		return 1
	}
	secondary, err := gemini.NewClient(ctx, cfg.Gemini.SecondaryAPIKey, "secondary", cfg.Gemini, log)
	if err != nil {
		log.Error("Failed to initialize secondary Gemini client", "error", err)
		return 1
	}
	invoker := gemini.NewFallback(primary, secondary, log)

	var authMiddleware func(http.Handler) http.Handler
	if cfg.Auth.Enabled {
		verifier, err := auth.NewVerifier(cfg.Auth, log)
		if err != nil {
			log.Error("Failed to initialize auth verifier", "error", err)
			return 1
		}
		authMiddleware = verifier.Middleware
		log.Info("Auth verification enabled", "url", cfg.Auth.URL)
	}

	probe, err := server.NewProbe(
		[]server.Pinger{primary, secondary},
		cfg.Server.ProbeInterval,
		log,
	)
	if err != nil {
		log.Error("Failed to initialize upstream probe", "error", err)
		return 1
	}

	handler := chat.NewHandler(log, persona.NewCatalog(), invoker, cfg.Chat)
	srv := server.New(cfg.Server, log, handler, authMiddleware, probe)

	log.Info("Starting server...", "addr", cfg.Server.Addr)
	runErr := srv.Run(ctx)
	log.Info("Server run loop finished. Initiating shutdown...")

	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		log.Error("Server stopped due to error", "error", runErr)
		time.Sleep(time.Second)
		return 1
	}

	log.Info("Server stopped gracefully.")
	time.Sleep(time.Second)
	return 0
}
