package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the client, CLI and gateway
// ⭐ SSOT: 모든 환경변수는 여기서만 읽음
type Config struct {
	// Gateway
	Port        string
	Env         string // development, staging, production
	CORSOrigins []string

	// External APIs
	GoAPI GoAPIConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// GoAPIConfig holds GoAPI.io configuration
type GoAPIConfig struct {
	APIKey  string
	BaseURL string
	Timeout time.Duration
}

// Load reads configuration from environment variables
// ⭐ SSOT: 이 함수만 os.Getenv()를 호출함
func Load() (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		// Gateway
		Port:        getEnv("PORT", "8089"),
		Env:         getEnv("ENV", "development"),
		CORSOrigins: getEnvAsList("CORS_ALLOWED_ORIGINS", "*"),

		GoAPI: GoAPIConfig{
			APIKey:  getEnv("GOAPI_API_KEY", ""),
			BaseURL: getEnv("GOAPI_BASE_URL", "https://api.goapi.io"),
			Timeout: getEnvAsDuration("GOAPI_TIMEOUT", "30s"),
		},

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate() error {
	if c.GoAPI.APIKey == "" {
		return fmt.Errorf("GOAPI_API_KEY is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	if c.GoAPI.Timeout <= 0 {
		return fmt.Errorf("GOAPI_TIMEOUT must be positive")
	}

	u, err := url.Parse(c.GoAPI.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("GOAPI_BASE_URL must be an absolute URL, got %q", c.GoAPI.BaseURL)
	}

	return nil
}

// Helper functions (private, only used within this file)

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsList splits a comma-separated value, dropping blank entries
func getEnvAsList(key, defaultValue string) []string {
	var list []string
	for _, item := range strings.Split(getEnv(key, defaultValue), ",") {
		if item = strings.TrimSpace(item); item != "" {
			list = append(list, item)
		}
	}
	return list
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		// Fallback to default
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}
