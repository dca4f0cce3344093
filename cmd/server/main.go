package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/ryanshoover/account-statuses/internal/config"
	"github.com/ryanshoover/account-statuses/internal/logging"
	"github.com/ryanshoover/account-statuses/internal/lookup"
	"github.com/ryanshoover/account-statuses/internal/pipeline"
	"github.com/ryanshoover/account-statuses/internal/web"
)

func main() {
	// Load .env if present (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"lookup_base_url", cfg.Lookup.BaseURL,
		"lookup_concurrency", cfg.Lookup.Concurrency,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"strict", cfg.Pipeline.Strict,
	)

	client := lookup.NewClient(lookup.Config{
		BaseURL:     cfg.Lookup.BaseURL,
		Timeout:     cfg.Lookup.Timeout,
		Concurrency: cfg.Lookup.Concurrency,
		KeyField:    cfg.Lookup.KeyField,
	})

	pipe := pipeline.New(client, pipeline.Config{Strict: cfg.Pipeline.Strict})

	server := web.NewServer(cfg, pipe)

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	slog.Info("server starting", "addr", cfg.Server.Addr())
	if err := server.Start(); err != nil {
		slog.Info("server stopped", "error", err)
	}
}
