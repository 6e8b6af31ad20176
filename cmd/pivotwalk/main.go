// Package main is the entry point for pivotwalk.
package main

import (
	"context"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"

	"github.com/joho/godotenv"

	"github.com/samdwyer/pivotwalk/internal/game"
	"github.com/samdwyer/pivotwalk/internal/telemetry"
)

func main() {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		// Not fatal - env vars might be set directly
		log.Printf("Note: .env file not loaded: %v", err)
	}

	setupOTelEnv()

	cfg, err := game.ConfigFromEnv()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// tcell owns the terminal, so logs go to a file.
	logFile, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	defer logFile.Close()
	logger := slog.New(slog.NewTextHandler(logFile, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	// Initialize telemetry
	shutdown, err := telemetry.Setup(ctx)
	if err != nil {
		log.Printf("Warning: telemetry setup failed: %v", err)
		log.Printf("Game will run without observability")
	} else {
		defer func() {
			if err := shutdown(context.Background()); err != nil {
				logger.Error("telemetry shutdown failed", "error", err)
			}
		}()
	}

	g, err := game.New(cfg, logger)
	if err != nil {
		log.Fatalf("Failed to initialize game: %v", err)
	}

	if err := g.Run(ctx); err != nil {
		logger.Error("game error", "error", err)
		fmt.Fprintf(os.Stderr, "Game error: %v\n", err)
		os.Exit(1)
	}
}

// setupOTelEnv points the OTLP exporter at Honeycomb when an API key is
// configured and no endpoint was set explicitly.
func setupOTelEnv() {
	apiKey := os.Getenv("HONEYCOMB_PIVOTWALK_API_KEY")
	if apiKey == "" {
		return
	}
	if os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT") == "" {
		os.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "https://api.honeycomb.io")
	}

	// The .env file may hold an unexpanded variable reference, so the header
	// is always built here.
	dataset := os.Getenv("HONEYCOMB_PIVOTWALK_DATASET")
	if dataset == "" {
		dataset = "pivotwalk"
	}
	os.Setenv("OTEL_EXPORTER_OTLP_HEADERS",
		fmt.Sprintf("x-honeycomb-team=%s,x-honeycomb-dataset=%s", apiKey, dataset))
}
