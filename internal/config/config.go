package config

import (
	"os"
	"strconv"

	"nirlamp/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server ServerConfig
	Upload UploadConfig
	Report ReportConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port string
}

// UploadConfig holds limits for incoming export files
type UploadConfig struct {
	MaxUploadMB int64
}

// ReportConfig holds settings for exported reports
type ReportConfig struct {
	Dir string
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port: getEnvOrDefault("PORT", "8080"),
		},
		Upload: UploadConfig{
			MaxUploadMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 32)),
		},
		Report: ReportConfig{
			Dir: getEnvOrDefault("REPORT_DIR", "."),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxUploadMB <= 0 {
		return errors.ConfigInvalid("upload limit must be positive")
	}
	if config.Report.Dir == "" {
		return errors.ConfigInvalid("report directory is required")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
