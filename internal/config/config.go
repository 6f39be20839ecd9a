package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"
)

// Config holds all application configuration loaded from environment variables
type Config struct {
	// Detection provider configuration
	ACRBaseURL      string
	ACRToken        string
	ProviderTimeout time.Duration

	// Time-zone handling: fixed UTC offset applied to provider timestamps.
	// Static by design; the reconciliation model does not handle DST.
	UTCOffsetMinutes int

	// Database configuration
	DatabasePath string

	// Server configuration
	ServerPort string
	APIKey     string

	// Logging configuration
	LogLevel  string
	LogFormat string

	// Housekeeping
	ProjectRetentionDays int
	SeedSampleData       bool
}

// Load reads configuration from environment variables and returns a Config instance
func Load() (*Config, error) {
	cfg := &Config{
		// Provider configuration (token required)
		ACRBaseURL: getEnvOrDefault("ACR_BASE_URL", "https://api-v2.acrcloud.com"),
		ACRToken:   os.Getenv("ACR_TOKEN"),

		// Database configuration
		DatabasePath: getEnvOrDefault("DATABASE_PATH", "./data/aircheck.db"),

		// Server configuration
		ServerPort: getEnvOrDefault("SERVER_PORT", "8080"),
		APIKey:     os.Getenv("API_KEY"),

		// Logging configuration
		LogLevel:  getEnvOrDefault("LOG_LEVEL", "info"),
		LogFormat: getEnvOrDefault("LOG_FORMAT", "text"),

		SeedSampleData: os.Getenv("SEED_SAMPLE_DATA") == "true",
	}

	offset, err := strconv.Atoi(getEnvOrDefault("UTC_OFFSET_MINUTES", "-360"))
	if err != nil {
		return nil, fmt.Errorf("invalid UTC_OFFSET_MINUTES format: %w", err)
	}
	cfg.UTCOffsetMinutes = offset

	timeoutSeconds, err := strconv.Atoi(getEnvOrDefault("PROVIDER_TIMEOUT_SECONDS", "30"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROVIDER_TIMEOUT_SECONDS format: %w", err)
	}
	cfg.ProviderTimeout = time.Duration(timeoutSeconds) * time.Second

	retention, err := strconv.Atoi(getEnvOrDefault("PROJECT_RETENTION_DAYS", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid PROJECT_RETENTION_DAYS format: %w", err)
	}
	cfg.ProjectRetentionDays = retention

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that all required configuration values are present and valid
func (c *Config) Validate() error {
	if c.ACRToken == "" {
		return fmt.Errorf("ACR_TOKEN environment variable is required")
	}

	if c.ACRBaseURL == "" {
		return fmt.Errorf("ACR_BASE_URL cannot be empty")
	}

	if c.DatabasePath == "" {
		return fmt.Errorf("DATABASE_PATH cannot be empty")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("SERVER_PORT cannot be empty")
	}

	if c.ProviderTimeout <= 0 {
		return fmt.Errorf("PROVIDER_TIMEOUT_SECONDS must be positive, got %s", c.ProviderTimeout)
	}

	// Offsets beyond a day mean a typo in minutes-vs-hours
	if c.UTCOffsetMinutes < -12*60 || c.UTCOffsetMinutes > 14*60 {
		return fmt.Errorf("UTC_OFFSET_MINUTES must be within [-720, 840], got %d", c.UTCOffsetMinutes)
	}

	if c.ProjectRetentionDays < 0 {
		return fmt.Errorf("PROJECT_RETENTION_DAYS cannot be negative, got %d", c.ProjectRetentionDays)
	}

	return nil
}

// LogConfiguration logs all loaded configuration values, excluding secrets
func (c *Config) LogConfiguration() {
	log.Println("=== Application Configuration ===")
	log.Printf("ACR Base URL: %s", c.ACRBaseURL)
	log.Printf("ACR Token: %s", maskSecret(c.ACRToken))
	log.Printf("Provider Timeout: %s", c.ProviderTimeout)
	log.Printf("UTC Offset Minutes: %d", c.UTCOffsetMinutes)
	log.Printf("Database Path: %s", c.DatabasePath)
	log.Printf("Server Port: %s", c.ServerPort)
	log.Printf("API Key: %s", maskSecret(c.APIKey))
	log.Printf("Log Level: %s", c.LogLevel)
	log.Printf("Project Retention Days: %d", c.ProjectRetentionDays)

	if c.APIKey == "" {
		log.Println("WARNING: API_KEY not set - report endpoints are unauthenticated")
	}

	log.Println("=================================")
}

// getEnvOrDefault returns the environment variable value or a default if not set
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// maskSecret masks a secret string for logging, showing only first 4 characters
func maskSecret(secret string) string {
	if secret == "" {
		return "[not set]"
	}
	if len(secret) <= 4 {
		return "****"
	}
	return secret[:4] + "****"
}
