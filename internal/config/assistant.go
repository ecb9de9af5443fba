package config

import (
	"fmt"
	"os"
	"text/template"
	"time"

	"go.yaml.in/yaml/v3"
)

const defaultConfigPath = "configs/assistant.yaml"

// LoadAssistantConfig reads the file named by ASSISTANT_CONFIG_PATH, or the
// default path when the variable is unset.
func LoadAssistantConfig() (*Config, error) {
	path := os.Getenv("ASSISTANT_CONFIG_PATH")
	if path == "" {
		path = defaultConfigPath
	}
	return LoadFile(path)
}

func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func applyDefaults(cfg *Config) {
	if cfg.DefaultModel.MaxTokens == 0 {
		cfg.DefaultModel.MaxTokens = 512
	}

	if cfg.Sandbox.MaxLimit == 0 {
		cfg.Sandbox.MaxLimit = 50
	}
	if cfg.Sandbox.StatementTimeout == 0 {
		cfg.Sandbox.StatementTimeout = 5 * time.Second
	}

	if cfg.QueryGen.Timeout == 0 {
		cfg.QueryGen.Timeout = 20 * time.Second
	}
	cfg.QueryGen.Model = mergeModel(cfg.QueryGen.Model, cfg.DefaultModel)

	if cfg.Formatter.DisplayCap == 0 {
		cfg.Formatter.DisplayCap = 10
	}
	if cfg.Formatter.CurrencySymbol == "" {
		cfg.Formatter.CurrencySymbol = "$"
	}
	if cfg.Formatter.Locale == "" {
		cfg.Formatter.Locale = "en-US"
	}
	if cfg.Formatter.Timeout == 0 {
		cfg.Formatter.Timeout = 10 * time.Second
	}
	cfg.Formatter.Model = mergeModel(cfg.Formatter.Model, cfg.DefaultModel)

	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = 5 * time.Minute
	}
	if cfg.Cache.KeyPrefix == "" {
		cfg.Cache.KeyPrefix = "crm-assistant:answer"
	}

	if cfg.Audit.Stream == "" {
		cfg.Audit.Stream = "crm-assistant:verdicts"
	}
	if cfg.Audit.MaxLen == 0 {
		cfg.Audit.MaxLen = 10000
	}
}

// mergeModel fills the zero fields of a stage override from the defaults.
// Retry and temperature are taken as written once an override exists.
func mergeModel(override *ModelParams, defaults ModelParams) *ModelParams {
	if override == nil {
		m := defaults
		return &m
	}
	if override.MaxTokens == 0 {
		override.MaxTokens = defaults.MaxTokens
	}
	return override
}

func (c *Config) Validate() error {
	if c.Sandbox.MaxLimit < 1 || c.Sandbox.MaxLimit > 1000 {
		return fmt.Errorf("sandbox.max_limit must be between 1 and 1000, got %d", c.Sandbox.MaxLimit)
	}
	if c.Sandbox.StatementTimeout < 0 {
		return fmt.Errorf("sandbox.statement_timeout must not be negative")
	}

	if c.QueryGen.Prompt == "" {
		return fmt.Errorf("query_generation.prompt is required")
	}
	if _, err := template.New("query_generation").Parse(c.QueryGen.Prompt); err != nil {
		return fmt.Errorf("query_generation.prompt is not a valid template: %w", err)
	}

	if c.Formatter.DisplayCap < 1 {
		return fmt.Errorf("formatter.display_cap must be positive, got %d", c.Formatter.DisplayCap)
	}

	if c.Cache.Enabled && c.Cache.TTL < time.Second {
		return fmt.Errorf("cache.ttl must be at least 1s when the cache is enabled")
	}
	if c.Audit.MaxLen < 0 {
		return fmt.Errorf("audit.max_len must not be negative")
	}

	return nil
}
