package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/audit"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/config"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/redis"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/setup"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/setup/logger"
	"github.com/rs/zerolog"
)

func main() {
	// Load env
	_ = godotenv.Load()

	cfg := setup.LoadConfig()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	appLogger := logger.New(cfg.LogLevel, os.Stderr, true)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	settings, err := config.LoadAssistantConfig()
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to load assistant config")
	}

	client, err := redis.ConnectRedis(ctx, redis.Config{
		Addr:       cfg.RedisAddr,
		Password:   cfg.RedisPassword,
		DB:         cfg.RedisDB,
		MaxRetries: cfg.RedisRetries,
	}, &appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer client.Close()

	hostname, _ := os.Hostname()
	consumer := audit.NewConsumer(client, settings.Audit.Stream, "crm-assistant-auditwatch", hostname, &appLogger)
	if err := consumer.Setup(ctx); err != nil {
		appLogger.Fatal().Err(err).Msg("Failed to setup consumer")
	}

	go func() {
		if err := consumer.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
			appLogger.Error().Err(err).Msg("Consumer stopped with error")
		}
	}()

	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			logStats(&appLogger, consumer.Snapshot())
			appLogger.Info().Msg("Audit watcher stopped")
			return
		case <-ticker.C:
			logStats(&appLogger, consumer.Snapshot())
		}
	}
}

func logStats(log *zerolog.Logger, stats audit.Stats) {
	event := log.Info().Int("total", stats.Total).Int("safe", stats.Safe)
	for reason, n := range stats.Rejected {
		event = event.Int(string(reason), n)
	}
	event.Msg("Verdict totals")
}
