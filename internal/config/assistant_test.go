package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "assistant.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestLoadAssistantConfig_Success(t *testing.T) {
	path := writeConfig(t, `default_model:
  max_tokens: 400
  temperature: 0.0
  retry: true

sandbox:
  max_limit: 25
  statement_timeout: 3s

query_generation:
  system: "You write PostgreSQL."
  prompt: |
    Schema: {{.Schema}}
    Question: {{.Question}}
  model:
    max_tokens: 300
    temperature: 0.0
    retry: false

formatter:
  system: "Summarize rows."
  display_cap: 5
  currency_symbol: "€"

cache:
  enabled: true
  ttl: 2m
`)

	t.Setenv("ASSISTANT_CONFIG_PATH", path)

	cfg, err := LoadAssistantConfig()
	if err != nil {
		t.Fatalf("LoadAssistantConfig() failed: %v", err)
	}

	if cfg.Sandbox.MaxLimit != 25 {
		t.Errorf("Expected max_limit=25, got %d", cfg.Sandbox.MaxLimit)
	}
	if cfg.Sandbox.StatementTimeout != 3*time.Second {
		t.Errorf("Expected statement_timeout=3s, got %v", cfg.Sandbox.StatementTimeout)
	}

	// Override keeps its own values
	if cfg.QueryGen.Model.MaxTokens != 300 {
		t.Errorf("Expected query generation max_tokens=300, got %d", cfg.QueryGen.Model.MaxTokens)
	}
	if cfg.QueryGen.Model.Retry {
		t.Error("Expected query generation retry=false")
	}

	// No override: inherits default_model
	if cfg.Formatter.Model == nil {
		t.Fatal("Expected formatter model to be populated with defaults")
	}
	if cfg.Formatter.Model.MaxTokens != 400 || !cfg.Formatter.Model.Retry {
		t.Errorf("Expected formatter model to inherit defaults, got %+v", *cfg.Formatter.Model)
	}

	if cfg.Formatter.DisplayCap != 5 {
		t.Errorf("Expected display_cap=5, got %d", cfg.Formatter.DisplayCap)
	}
	if cfg.Formatter.CurrencySymbol != "€" {
		t.Errorf("Expected currency symbol €, got %s", cfg.Formatter.CurrencySymbol)
	}
	if cfg.Cache.TTL != 2*time.Minute {
		t.Errorf("Expected cache ttl=2m, got %v", cfg.Cache.TTL)
	}
}

func TestLoadAssistantConfig_Defaults(t *testing.T) {
	path := writeConfig(t, `query_generation:
  prompt: "{{.Question}}"
`)
	t.Setenv("ASSISTANT_CONFIG_PATH", path)

	cfg, err := LoadAssistantConfig()
	if err != nil {
		t.Fatalf("LoadAssistantConfig() failed: %v", err)
	}

	tests := []struct {
		name string
		got  any
		want any
	}{
		{"max limit", cfg.Sandbox.MaxLimit, 50},
		{"statement timeout", cfg.Sandbox.StatementTimeout, 5 * time.Second},
		{"display cap", cfg.Formatter.DisplayCap, 10},
		{"currency", cfg.Formatter.CurrencySymbol, "$"},
		{"locale", cfg.Formatter.Locale, "en-US"},
		{"formatter timeout", cfg.Formatter.Timeout, 10 * time.Second},
		{"default max tokens", cfg.DefaultModel.MaxTokens, 512},
		{"cache prefix", cfg.Cache.KeyPrefix, "crm-assistant:answer"},
		{"audit stream", cfg.Audit.Stream, "crm-assistant:verdicts"},
		{"audit max len", cfg.Audit.MaxLen, int64(10000)},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.want, tt.got)
		}
	}
}

func TestLoadAssistantConfig_DefaultPath(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG_PATH", "")

	_, err := LoadAssistantConfig()
	if err == nil {
		t.Log("Default config file loaded successfully")
		return
	}
	if !strings.Contains(err.Error(), defaultConfigPath) {
		t.Errorf("Expected error to mention default path %q, got: %v", defaultConfigPath, err)
	}
}

func TestLoadAssistantConfig_FileNotFound(t *testing.T) {
	t.Setenv("ASSISTANT_CONFIG_PATH", "/nonexistent/path/assistant.yaml")

	_, err := LoadAssistantConfig()
	if err == nil {
		t.Fatal("Expected error for nonexistent config file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("Expected 'failed to read config file' error, got: %v", err)
	}
}

func TestLoadAssistantConfig_InvalidYAML(t *testing.T) {
	path := writeConfig(t, `sandbox:
  max_limit: 10
    wrong_level
`)
	t.Setenv("ASSISTANT_CONFIG_PATH", path)

	_, err := LoadAssistantConfig()
	if err == nil {
		t.Fatal("Expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("Expected 'failed to parse YAML' error, got: %v", err)
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{QueryGen: QueryGenConfig{Prompt: "{{.Question}}"}}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(*Config) {}, ""},
		{"limit too large", func(c *Config) { c.Sandbox.MaxLimit = 5000 }, "max_limit"},
		{"negative limit", func(c *Config) { c.Sandbox.MaxLimit = -1 }, "max_limit"},
		{"missing prompt", func(c *Config) { c.QueryGen.Prompt = "" }, "prompt is required"},
		{"broken template", func(c *Config) { c.QueryGen.Prompt = "{{.Question" }, "not a valid template"},
		{"zero display cap", func(c *Config) { c.Formatter.DisplayCap = 0 }, "display_cap"},
		{"short cache ttl", func(c *Config) { c.Cache.Enabled = true; c.Cache.TTL = time.Millisecond }, "cache.ttl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Expected no error, got %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Expected error containing %q, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestLoadFile_ShippedConfig(t *testing.T) {
	cfg, err := LoadFile("../../configs/assistant.yaml")
	if err != nil {
		t.Fatalf("Shipped config failed to load: %v", err)
	}

	if cfg.Sandbox.MaxLimit != 50 {
		t.Errorf("Expected max_limit 50, got %d", cfg.Sandbox.MaxLimit)
	}
	if cfg.QueryGen.Model == nil || cfg.QueryGen.Model.MaxTokens != 400 {
		t.Errorf("Expected query generation model override, got %+v", cfg.QueryGen.Model)
	}
	if cfg.Formatter.Model == nil || cfg.Formatter.Model.Temperature != 0.2 {
		t.Errorf("Expected formatter model override, got %+v", cfg.Formatter.Model)
	}
	if !cfg.Cache.Enabled || cfg.Audit.Stream != "crm-assistant:verdicts" {
		t.Errorf("Expected cache and audit settings, got %+v / %+v", cfg.Cache, cfg.Audit)
	}
}
