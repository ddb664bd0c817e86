package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server ServerConfig
	Viewer ViewerConfig
	Log    LogConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Host string
	Port string
}

// Addr is the listen address.
func (s ServerConfig) Addr() string {
	return s.Host + ":" + s.Port
}

// ViewerConfig holds archive loading and session lifecycle settings.
type ViewerConfig struct {
	DBFileName      string
	MaxArchiveBytes int64
	TempDir         string
	SessionTTL      time.Duration
	SweepSchedule   string
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Missing .env files are fine when configuration comes from the environment.
		_ = godotenv.Load()
	}

	maxMB, err := strconv.ParseInt(getenvWithDefault("VIEWER_MAX_ARCHIVE_MB", "512"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("VIEWER_MAX_ARCHIVE_MB: %w", err)
	}

	ttl, err := time.ParseDuration(getenvWithDefault("VIEWER_SESSION_TTL", "2h"))
	if err != nil {
		return nil, fmt.Errorf("VIEWER_SESSION_TTL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Host: getenvWithDefault("APP_HOST", "127.0.0.1"),
			Port: getenvWithDefault("APP_PORT", "8080"),
		},
		Viewer: ViewerConfig{
			DBFileName:      getenvWithDefault("VIEWER_DB_FILENAME", "farm.db"),
			MaxArchiveBytes: maxMB << 20,
			TempDir:         os.Getenv("VIEWER_TEMP_DIR"),
			SessionTTL:      ttl,
			SweepSchedule:   getenvWithDefault("VIEWER_SWEEP_SCHEDULE", "*/15 * * * *"),
		},
		Log: LogConfig{
			Level: getenvWithDefault("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	switch {
	case c.Viewer.DBFileName == "":
		return errors.New("VIEWER_DB_FILENAME must not be empty")
	case c.Viewer.MaxArchiveBytes <= 0:
		return errors.New("VIEWER_MAX_ARCHIVE_MB must be positive")
	case c.Viewer.SessionTTL <= 0:
		return errors.New("VIEWER_SESSION_TTL must be positive")
	case c.Viewer.SweepSchedule == "":
		return errors.New("VIEWER_SWEEP_SCHEDULE must be provided")
	}

	if c.Viewer.TempDir != "" {
		info, err := os.Stat(c.Viewer.TempDir)
		if err != nil {
			return fmt.Errorf("VIEWER_TEMP_DIR: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("VIEWER_TEMP_DIR %s is not a directory", c.Viewer.TempDir)
		}
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
