// Package config loads VoidCat Reasoning Core's runtime configuration from
// the environment (optionally via a .env file), reading each setting from
// a single env var with a typed default.
package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config is the fully resolved runtime configuration.
type Config struct {
	// Server surfaces.
	Mode       string // "http", "stdio", or "both"
	HTTPAddr   string // host:port for the HTTP gateway
	MaxQueryConcurrency int

	// Knowledge store.
	KnowledgeDir string

	// Task/Memory persistence.
	DataDir string

	// LLM gateway.
	LLMProvider    string // "openai", "anthropic", or "custom"
	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	LLMMaxRetries  int
}

// Load reads environment variables, overlaid from envFilePath (./.env when
// envFilePath is empty; a missing file is ignored), and returns a validated
// Config.
func Load(envFilePath string) (*Config, error) {
	if envFilePath != "" {
		_ = godotenv.Overload(envFilePath)
	} else {
		_ = godotenv.Overload(".env")
	}

	cfg := &Config{
		Mode:         getEnvDefault("VOIDCAT_MODE", "both"),
		HTTPAddr:     getEnvDefault("VOIDCAT_HTTP_ADDR", "0.0.0.0:8069"),
		KnowledgeDir: getEnvDefault("VOIDCAT_KNOWLEDGE_DIR", "./knowledge"),
		DataDir:      getEnvDefault("VOIDCAT_DATA_DIR", "./data"),

		LLMProvider: getEnvDefault("LLM_PROVIDER", "openai"),
		LLMBaseURL:  os.Getenv("LLM_BASE_URL"),
		LLMAPIKey:   os.Getenv("LLM_API_KEY"),
		LLMModel:    getEnvDefault("LLM_MODEL", "gpt-4o-mini"),
	}

	cfg.MaxQueryConcurrency = getEnvInt("VOIDCAT_MAX_CONCURRENT_QUERIES", 8)
	cfg.LLMMaxRetries = getEnvInt("LLM_MAX_RETRIES", 3)
	cfg.LLMTemperature = getEnvFloat("LLM_TEMPERATURE", 0.7)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration is internally consistent. The caller
// maps a validation failure to CLI exit code 2 (bad config); a missing LLM
// key is checked separately by RequireLLMKey.
func (c *Config) Validate() error {
	switch c.Mode {
	case "http", "stdio", "both":
	default:
		return fmt.Errorf("invalid mode %q: must be http, stdio, or both", c.Mode)
	}
	if c.LLMProvider != "openai" && c.LLMProvider != "anthropic" && c.LLMProvider != "custom" {
		return fmt.Errorf("invalid LLM_PROVIDER %q: must be openai, anthropic, or custom", c.LLMProvider)
	}
	if c.MaxQueryConcurrency <= 0 {
		return fmt.Errorf("VOIDCAT_MAX_CONCURRENT_QUERIES must be positive")
	}
	return nil
}

// RequireLLMKey reports whether LLM_API_KEY is missing, mapped by the
// caller to exit code 4 ("LLM not configured").
func (c *Config) RequireLLMKey() error {
	if c.LLMAPIKey == "" {
		return fmt.Errorf("LLM_API_KEY environment variable is required")
	}
	return nil
}

func getEnvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvFloat(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return def
}
