// Package config provides YAML-based configuration for ragcore.
// Configuration is loaded with a layered precedence: defaults → YAML file → env vars.
// Environment variables always win, so existing workflows are unaffected.
//
// File search order:
//  1. --config CLI flag (explicit path)
//  2. RAGCORE_CONFIG environment variable
//  3. ~/.ragcore/config.yaml
//  4. ./ragcore.yaml
//
// If no file is found the system runs entirely from env vars.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the top-level YAML configuration structure.
// Field names use yaml tags that mirror the env var naming (lowercase, underscored).
type Config struct {
	// Database configures the Postgres connection used by the vector store.
	Database DatabaseConfig `yaml:"database"`

	// AWS configures the shared region for Bedrock/S3/Textract clients.
	AWS AWSConfig `yaml:"aws"`

	// Embedding configures the embedding model.
	Embedding EmbeddingConfig `yaml:"embedding"`

	// LLM configures the primary/fallback generation models.
	LLM LLMConfig `yaml:"llm"`

	// Agent holds the peripheral agent-wrapper defaults.
	Agent AgentConfig `yaml:"agent"`

	// Server configures the thin HTTP gateway.
	Server ServerConfig `yaml:"server"`

	// Logging configures structured logging.
	Logging LoggingConfig `yaml:"logging"`

	// Ingestion tunes extractor/chunker behavior not fixed by the spec.
	Ingestion IngestionConfig `yaml:"ingestion"`
}

// DatabaseConfig holds Postgres connection settings.
type DatabaseConfig struct {
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
}

// AWSConfig holds the shared AWS region for all service clients.
type AWSConfig struct {
	Region string `yaml:"region"`
}

// EmbeddingConfig holds embedding model settings.
type EmbeddingConfig struct {
	// Model is the Bedrock model id. Defaults to cohere.embed-v4:0.
	Model string `yaml:"model"`
}

// LLMConfig holds primary/fallback generation model settings.
type LLMConfig struct {
	// MainModel is the primary Bedrock model id.
	MainModel string `yaml:"main_model"`
	// FallbackModel is invoked only after the primary exhausts its retries.
	FallbackModel string `yaml:"fallback_model"`
	// OutputTokens is the max_tokens hint sent with every generate call.
	OutputTokens int `yaml:"output_tokens"`
}

// AgentConfig holds the peripheral agent-wrapper defaults referenced by
// spec.md §6 (AGENT_MODEL_ID / AGENT_NAME / AGENT_DESCRIPTION). Load exports
// them as those environment variables; the default agent row created by the
// Schema Provisioner uses built-in name, description and template and does
// not read them.
type AgentConfig struct {
	ModelID     string `yaml:"model_id"`
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ServerConfig holds the thin HTTP gateway's settings.
type ServerConfig struct {
	Host            string  `yaml:"host"`
	Port            int     `yaml:"port"`
	RateLimitRPS    float64 `yaml:"rate_limit_rps"`
	RateLimitBurst  int     `yaml:"rate_limit_burst"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// IngestionConfig tunes the Extractor's OCR polling loop.
type IngestionConfig struct {
	// OCRPollMaxAttempts bounds the OCR polling loop (exponential backoff).
	OCRPollMaxAttempts int `yaml:"ocr_poll_max_attempts"`
	// OCRPollBaseInterval is the base backoff interval in seconds.
	OCRPollBaseInterval int `yaml:"ocr_poll_base_interval_seconds"`
}

// envMapping maps YAML config fields to their corresponding env var names.
// Only non-empty YAML values are applied; env vars always take precedence.
var envMapping = []struct {
	envKey string
	value  func(*Config) string
}{
	{"DB_NAME", func(c *Config) string { return c.Database.Name }},
	{"DB_USER", func(c *Config) string { return c.Database.User }},
	{"DB_PASSWORD", func(c *Config) string { return c.Database.Password }},
	{"DB_HOST", func(c *Config) string { return c.Database.Host }},
	{"DB_PORT", func(c *Config) string { return intStr(c.Database.Port) }},
	{"AWS_REGION", func(c *Config) string { return c.AWS.Region }},
	{"EMBEDDINGS_MODEL", func(c *Config) string { return c.Embedding.Model }},
	{"MAIN_LLM_MODEL", func(c *Config) string { return c.LLM.MainModel }},
	{"FALLBACK_LLM_MODEL", func(c *Config) string { return c.LLM.FallbackModel }},
	{"OUTPUT_TOKENS", func(c *Config) string { return intStr(c.LLM.OutputTokens) }},
	{"AGENT_MODEL_ID", func(c *Config) string { return c.Agent.ModelID }},
	{"AGENT_NAME", func(c *Config) string { return c.Agent.Name }},
	{"AGENT_DESCRIPTION", func(c *Config) string { return c.Agent.Description }},
	{"SERVER_HOST", func(c *Config) string { return c.Server.Host }},
	{"SERVER_PORT", func(c *Config) string { return intStr(c.Server.Port) }},
	{"RATE_LIMIT_RPS", func(c *Config) string { return float64Str(c.Server.RateLimitRPS) }},
	{"RATE_LIMIT_BURST", func(c *Config) string { return intStr(c.Server.RateLimitBurst) }},
	{"LOG_LEVEL", func(c *Config) string { return c.Logging.Level }},
	{"LOG_FORMAT", func(c *Config) string { return c.Logging.Format }},
	{"OCR_POLL_MAX_ATTEMPTS", func(c *Config) string { return intStr(c.Ingestion.OCRPollMaxAttempts) }},
	{"OCR_POLL_BASE_INTERVAL", func(c *Config) string { return intStr(c.Ingestion.OCRPollBaseInterval) }},
}

// Load reads a YAML config file and applies non-empty values as environment
// variables. Existing env vars are never overwritten (env always wins).
// Returns the path that was loaded, or empty string if no file was found.
func Load(explicitPath string, log *slog.Logger) (string, error) {
	path := resolveConfigPath(explicitPath)
	if path == "" {
		log.Debug("config: no YAML config file found, using env vars only")
		return "", nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return "", fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	applied := 0
	for _, m := range envMapping {
		yamlVal := m.value(&cfg)
		if yamlVal == "" || yamlVal == "0" || yamlVal == "false" {
			continue
		}
		if os.Getenv(m.envKey) != "" {
			continue // env var already set — do not override
		}
		os.Setenv(m.envKey, yamlVal)
		applied++
	}

	log.Info("config: loaded YAML config",
		slog.String("path", path),
		slog.Int("keys_applied", applied),
	)

	return path, nil
}

// resolveConfigPath returns the first config file path that exists.
func resolveConfigPath(explicit string) string {
	if explicit != "" {
		if _, err := os.Stat(explicit); err == nil {
			return explicit
		}
		return ""
	}

	if envPath := os.Getenv("RAGCORE_CONFIG"); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	home, err := os.UserHomeDir()
	if err == nil {
		p := filepath.Join(home, ".ragcore", "config.yaml")
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}

	if _, err := os.Stat("ragcore.yaml"); err == nil {
		return "ragcore.yaml"
	}

	return ""
}

// intStr converts an int to string, returning "" for zero values.
func intStr(v int) string {
	if v == 0 {
		return ""
	}
	return fmt.Sprintf("%d", v)
}

// float64Str converts a float64 to string, returning "" for zero values.
func float64Str(v float64) string {
	if v == 0 {
		return ""
	}
	return strings.TrimRight(strings.TrimRight(fmt.Sprintf("%.4f", v), "0"), ".")
}
