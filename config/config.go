// Package config loads application settings from the environment.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/moneypilot/moneypilot/client"
	"github.com/moneypilot/moneypilot/internal/retry"
)

// DefaultLLMBaseURL is the OpenAI endpoint used when LLM_API_BASE_URL is unset.
const DefaultLLMBaseURL = "https://api.openai.com/v1"

// Settings holds the configuration loaded from environment variables.
type Settings struct {
	// Application
	AppName  string
	Version  string
	Debug    bool
	LogLevel string // DEBUG, INFO, WARNING, ERROR

	// HTTP
	HTTPAddr    string
	APIPrefix   string
	CORSOrigins []string

	// LLM
	LLMProvider   string
	LLMAPIKey     string
	LLMBaseURL    string
	LLMModel      string
	LLMTimeout    time.Duration
	LLMMaxRetries int
	LLMRateLimit  float64 // requests per second, 0 disables

	// MCPServers are commands whose tools are discovered at startup.
	MCPServers []string
}

// Load reads a .env file if present, then the environment, and validates
// the result.
func Load() (*Settings, error) {
	godotenv.Load() // missing file is fine

	s := &Settings{
		AppName:       getEnvOrDefault("APP_NAME", "MoneyPilot"),
		Version:       getEnvOrDefault("VERSION", "0.1.0"),
		Debug:         getEnvBoolOrDefault("DEBUG", false),
		LogLevel:      strings.ToUpper(getEnvOrDefault("LOG_LEVEL", "INFO")),
		HTTPAddr:      getEnvOrDefault("HTTP_ADDR", ":8000"),
		APIPrefix:     getEnvOrDefault("API_PREFIX", "/api/v1"),
		CORSOrigins:   splitList(getEnvOrDefault("CORS_ORIGINS", "http://localhost:3000"), ","),
		LLMProvider:   strings.ToLower(getEnvOrDefault("LLM_PROVIDER", string(client.ProviderOpenAI))),
		LLMAPIKey:     os.Getenv("LLM_API_KEY"),
		LLMBaseURL:    getEnvOrDefault("LLM_API_BASE_URL", DefaultLLMBaseURL),
		LLMModel:      getEnvOrDefault("LLM_MODEL_NAME", "gpt-4"),
		LLMTimeout:    time.Duration(getEnvIntOrDefault("LLM_TIMEOUT_SECONDS", 600)) * time.Second,
		LLMMaxRetries: getEnvIntOrDefault("LLM_MAX_RETRIES", retry.DefaultMaxAttempts),
		LLMRateLimit:  getEnvFloatOrDefault("LLM_RATE_LIMIT", 0),
		MCPServers:    splitList(os.Getenv("MCP_SERVERS"), ";"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

var logLevels = map[string]bool{"DEBUG": true, "INFO": true, "WARNING": true, "WARN": true, "ERROR": true}

// Validate checks that the loaded values are usable.
func (s *Settings) Validate() error {
	if !logLevels[strings.ToUpper(s.LogLevel)] {
		return fmt.Errorf("LOG_LEVEL must be one of DEBUG, INFO, WARNING, ERROR, got %q", s.LogLevel)
	}
	if !client.Provider(s.LLMProvider).Valid() {
		return fmt.Errorf("unknown LLM_PROVIDER: %s (must be openai, anthropic, or google)", s.LLMProvider)
	}
	if s.LLMTimeout <= 0 {
		return fmt.Errorf("LLM_TIMEOUT_SECONDS must be positive, got %d", int(s.LLMTimeout/time.Second))
	}
	if s.LLMMaxRetries <= 0 {
		return fmt.Errorf("LLM_MAX_RETRIES must be positive, got %d", s.LLMMaxRetries)
	}
	if s.LLMRateLimit < 0 {
		return fmt.Errorf("LLM_RATE_LIMIT must not be negative, got %g", s.LLMRateLimit)
	}
	return nil
}

// LLMConfigured reports whether an API key is set.
func (s *Settings) LLMConfigured() bool {
	return s.LLMAPIKey != ""
}

// ClientConfig returns the LLM client configuration. The base URL is only
// forwarded when it applies to the selected provider.
func (s *Settings) ClientConfig() client.Config {
	cfg := client.Config{
		Provider:  client.Provider(s.LLMProvider),
		APIKey:    s.LLMAPIKey,
		Model:     s.LLMModel,
		Timeout:   s.LLMTimeout,
		RateLimit: s.LLMRateLimit,
	}
	if cfg.Provider == client.ProviderOpenAI || s.LLMBaseURL != DefaultLLMBaseURL {
		cfg.BaseURL = s.LLMBaseURL
	}
	r := retry.DefaultConfig()
	r.MaxAttempts = s.LLMMaxRetries
	cfg.Retry = r
	return cfg
}

// FeatureSummary reports the settings safe to expose publicly.
func (s *Settings) FeatureSummary() map[string]any {
	return map[string]any{
		"app_name":       s.AppName,
		"version":        s.Version,
		"debug":          s.Debug,
		"llm_configured": s.LLMConfigured(),
		"api_prefix":     s.APIPrefix,
	}
}

func splitList(value, sep string) []string {
	var out []string
	for _, part := range strings.Split(value, sep) {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
