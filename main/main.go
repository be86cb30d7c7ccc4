package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/Nazarious-ucu/travel-planner-api/internal/app"
	"github.com/Nazarious-ucu/travel-planner-api/internal/config"
	"github.com/Nazarious-ucu/travel-planner-api/pkg/logger"
)

// @title Travel Planner API
// @version 1.0
// @description Accounts, sessions and budget based travel package recommendations for Maharashtra cities.
// @host localhost:8080
// @BasePath /
func main() {
	if err := godotenv.Load(".env"); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.NewConfig()
	if err != nil {
		log.Panicf("failed to load configuration: %v", err)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Printf("unknown log level %q, using info", cfg.LogLevel)
		level = zerolog.InfoLevel
	}

	l := logger.NewLogger(cfg.LogsPath, "travel-planner", level)

	application := app.New(*cfg, l)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Start(ctx); err != nil {
		l.Panic().Err(err).Msg("application stopped with error")
	}
}
