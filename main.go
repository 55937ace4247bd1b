package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/mrsingh-rishi/transcribe-widget/config"
	"github.com/mrsingh-rishi/transcribe-widget/logging"
	"github.com/mrsingh-rishi/transcribe-widget/server"
	"github.com/mrsingh-rishi/transcribe-widget/stt"
)

func main() {
	// Load .env if present
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, falling back to environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}

	logger := logging.New(cfg.LogLevel, cfg.LogFormat)

	transcriber, err := stt.New(cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create transcriber")
	}

	srv := server.New(*cfg, transcriber, logger)

	go func() {
		sigint := make(chan os.Signal, 1)
		signal.Notify(sigint, os.Interrupt, syscall.SIGTERM)
		<-sigint

		logger.Info().Msg("shutting down")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error().Err(err).Msg("error during shutdown")
		}
	}()

	if err := srv.Listen(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}
