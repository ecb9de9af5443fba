package config

import (
	"time"
)

// Config is the assistant configuration loaded from YAML.
type Config struct {
	DefaultModel ModelParams     `yaml:"default_model"`
	Sandbox      SandboxConfig   `yaml:"sandbox"`
	QueryGen     QueryGenConfig  `yaml:"query_generation"`
	Formatter    FormatterConfig `yaml:"formatter"`
	Cache        CacheConfig     `yaml:"cache"`
	Audit        AuditConfig     `yaml:"audit"`
}

// ModelParams are the completion parameters for one stage. A stage without
// its own block inherits default_model.
type ModelParams struct {
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float64 `yaml:"temperature"`
	Retry       bool    `yaml:"retry"`
}

// SandboxConfig bounds what a validated query may do at execution time.
type SandboxConfig struct {
	MaxLimit         int           `yaml:"max_limit"`
	StatementTimeout time.Duration `yaml:"statement_timeout"`
}

// QueryGenConfig holds the prompts that turn a question into a candidate query.
// Prompt is a text/template rendered with the question and the schema.
type QueryGenConfig struct {
	System  string        `yaml:"system"`
	Prompt  string        `yaml:"prompt"`
	Schema  string        `yaml:"schema"`
	Timeout time.Duration `yaml:"timeout"`
	Model   *ModelParams  `yaml:"model"`
}

type FormatterConfig struct {
	System         string        `yaml:"system"`
	DisplayCap     int           `yaml:"display_cap"`
	CurrencySymbol string        `yaml:"currency_symbol"`
	Locale         string        `yaml:"locale"`
	Timeout        time.Duration `yaml:"timeout"`
	Model          *ModelParams  `yaml:"model"`
}

// CacheConfig controls the per-tenant answer cache.
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled"`
	TTL       time.Duration `yaml:"ttl"`
	KeyPrefix string        `yaml:"key_prefix"`
}

// AuditConfig controls the verdict audit stream.
type AuditConfig struct {
	Enabled bool   `yaml:"enabled"`
	Stream  string `yaml:"stream"`
	MaxLen  int64  `yaml:"max_len"`
}
