package setup

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/povarna/generative-ai-agents/crm-assistant/internal/assistant"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/audit"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/cache"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/config"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/database"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/formatter"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/llm"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/llm/bedrock"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/llm/gpt"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/models"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/querygen"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/redis"
	"github.com/povarna/generative-ai-agents/crm-assistant/internal/sqlguard"
	"github.com/rs/zerolog"
)

type Config struct {
	AWSRegion       string
	ClaudeModelID   string
	OpenAIKey       string
	OpenAIModelID   string
	DefaultProvider string
	LLMMaxRetries   int

	DBHost           string
	DBPort           string
	DBUser           string
	DBPassword       string
	DBName           string
	DBSSLMode        string
	DBMaxConns       int
	DBConnectRetries int

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisRetries  int

	// OrganizationID is the tenant for single-tenant surfaces such as the MCP server.
	OrganizationID string
	APIPort        string
	LogLevel       string
	ShutdownGrace  time.Duration
}

type Dependencies struct {
	Assistant *assistant.Service
	Validator *sqlguard.Validator
	Tenant    models.TenantContext
	Settings  *config.Config
	Logger    *zerolog.Logger

	closers []func()
}

// Close releases connections in reverse order of creation.
func (d *Dependencies) Close() {
	for i := len(d.closers) - 1; i >= 0; i-- {
		d.closers[i]()
	}
}

func LoadConfig() *Config {
	return &Config{
		AWSRegion:       getEnv("AWS_REGION", "us-east-1"),
		ClaudeModelID:   getEnv("CLAUDE_MODEL_ID", ""),
		OpenAIKey:       getEnv("OPEN_AI_KEY", ""),
		OpenAIModelID:   getEnv("OPEN_AI_MODEL_ID", ""),
		DefaultProvider: getEnv("DEFAULT_LLM_PROVIDER", "bedrock"),
		LLMMaxRetries:   getEnvInt("LLM_MAX_RETRIES", 3),

		DBHost:           getEnv("DB_HOST", "localhost"),
		DBPort:           getEnv("DB_PORT", "5432"),
		DBUser:           getEnv("DB_USER", "crm_readonly"),
		DBPassword:       getEnv("DB_PASSWORD", ""),
		DBName:           getEnv("DB_NAME", "crm"),
		DBSSLMode:        getEnv("DB_SSLMODE", "disable"),
		DBMaxConns:       getEnvInt("DB_MAX_CONNS", 10),
		DBConnectRetries: getEnvInt("DB_CONNECT_RETRIES", 5),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt("REDIS_DB", 0),
		RedisRetries:  getEnvInt("REDIS_CONNECT_RETRIES", 5),

		OrganizationID: getEnv("CRM_ORGANIZATION_ID", ""),
		APIPort:        getEnv("CRM_ASSISTANT_API_PORT", "18083"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		ShutdownGrace:  getEnvDuration("SHUTDOWN_GRACE", 10*time.Second),
	}
}

func Wire(ctx context.Context, cfg *Config, logger *zerolog.Logger) (*Dependencies, error) {
	settings, err := config.LoadAssistantConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load assistant config: %w", err)
	}

	deps := &Dependencies{
		Validator: sqlguard.NewValidator(settings.Sandbox.MaxLimit),
		Tenant:    models.TenantContext{OrganizationID: cfg.OrganizationID},
		Settings:  settings,
		Logger:    logger,
	}

	llmClient, err := createLLMClient(ctx, cfg.DefaultProvider, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create LLM client: %w", err)
	}

	generator, err := querygen.NewGenerator(settings.QueryGen, settings.Sandbox.MaxLimit, llmClient, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build query generator: %w", err)
	}

	summarizer, err := formatter.NewLLMSummarizer(llmClient, settings.Formatter, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to build summarizer: %w", err)
	}
	answerFormatter := formatter.New(summarizer, formatter.Options{
		DisplayCap:     settings.Formatter.DisplayCap,
		CurrencySymbol: settings.Formatter.CurrencySymbol,
		Locale:         settings.Formatter.Locale,
	}, logger)

	db, err := database.NewWithBackoff(ctx, database.Config{
		Host:     cfg.DBHost,
		Port:     cfg.DBPort,
		User:     cfg.DBUser,
		Password: cfg.DBPassword,
		Database: cfg.DBName,
		SSLMode:  cfg.DBSSLMode,
		MaxConns: int32(cfg.DBMaxConns),
	}, cfg.DBConnectRetries, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	deps.closers = append(deps.closers, db.Close)

	executor := database.NewExecutor(db.Pool, settings.Sandbox.MaxLimit, settings.Sandbox.StatementTimeout, logger)

	var answerCache assistant.AnswerCache
	var recorder assistant.VerdictRecorder
	if settings.Cache.Enabled || settings.Audit.Enabled {
		redisClient, err := redis.ConnectRedis(ctx, redis.Config{
			Addr:       cfg.RedisAddr,
			Password:   cfg.RedisPassword,
			DB:         cfg.RedisDB,
			MaxRetries: cfg.RedisRetries,
		}, logger)
		if err != nil {
			deps.Close()
			return nil, err
		}
		deps.closers = append(deps.closers, func() { redisClient.Close() })

		if settings.Cache.Enabled {
			answerCache = cache.NewAnswerCache(redisClient, settings.Cache, logger)
		}
		if settings.Audit.Enabled {
			recorder = audit.NewRecorder(redisClient, settings.Audit, logger)
		}
	}

	deps.Assistant = assistant.NewService(generator, deps.Validator, executor, answerFormatter, answerCache, recorder, logger)

	logger.Info().
		Str("provider", cfg.DefaultProvider).
		Int("max_limit", settings.Sandbox.MaxLimit).
		Bool("cache", answerCache != nil).
		Bool("audit", recorder != nil).
		Msg("Dependencies wired")

	return deps, nil
}

func getEnv(key string, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		value = defaultValue
	}

	return value
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		value = defaultValue
	}

	return value
}

func createLLMClient(ctx context.Context, provider string, cfg *Config) (llm.LLMClient, error) {
	switch provider {
	case "openai":
		return gpt.NewClient(cfg.OpenAIKey, cfg.OpenAIModelID, cfg.LLMMaxRetries)
	case "bedrock", "":
		client, err := bedrock.NewClient(ctx, cfg.AWSRegion, cfg.ClaudeModelID)
		if err != nil {
			return nil, err
		}
		client.MaxRetries = cfg.LLMMaxRetries
		return client, nil
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", provider)
	}
}
