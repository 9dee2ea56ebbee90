// Package config loads the service configuration.
//
// Configuration can be loaded from:
//  1. YAML file (config.yaml), with ${VAR} expansion
//  2. Environment variables (fallback)
//
// Example usage:
//
//	cfg := config.LoadOrEnv()
//	db, err := config.InitDB(cfg.Database)
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"bank-reconciliation-backend/internal/services/matching"
)

// Config represents the entire application configuration
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Matching MatchingConfig `yaml:"matching"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// ServerConfig holds HTTP listener settings
type ServerConfig struct {
	Port           string        `yaml:"port"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	ShutdownGrace  time.Duration `yaml:"shutdown_grace"`
}

// Addr returns the listen address for gin.
func (s ServerConfig) Addr() string {
	if strings.HasPrefix(s.Port, ":") {
		return s.Port
	}
	return ":" + s.Port
}

// DatabaseConfig selects the gorm dialector. An empty driver keeps runs in
// memory only.
type DatabaseConfig struct {
	Driver   string `yaml:"driver"` // postgres, sqlite or empty
	DSN      string `yaml:"dsn"`
	LogLevel string `yaml:"log_level"`
}

// MatchingConfig holds the defaults applied to reconcile requests
type MatchingConfig struct {
	DateToleranceDays   int           `yaml:"date_tolerance_days"`
	ValueTolerance      string        `yaml:"value_tolerance"`
	SimilarityThreshold float64       `yaml:"similarity_threshold"`
	Locale              string        `yaml:"locale"`
	Timeout             time.Duration `yaml:"timeout"`
	Profile             string        `yaml:"profile"`
	ManualMatchRetries  int           `yaml:"manual_match_retries"`
}

// Tolerances converts the configured defaults into a validated
// ToleranceConfig.
func (m MatchingConfig) Tolerances() (matching.ToleranceConfig, error) {
	value, err := decimal.NewFromString(strings.TrimSpace(m.ValueTolerance))
	if err != nil {
		return matching.ToleranceConfig{}, fmt.Errorf("matching.value_tolerance %q: %w", m.ValueTolerance, err)
	}
	cfg := matching.ToleranceConfig{
		DateToleranceDays:   m.DateToleranceDays,
		ValueTolerance:      value,
		SimilarityThreshold: m.SimilarityThreshold,
	}
	if err := cfg.Validate(); err != nil {
		return matching.ToleranceConfig{}, fmt.Errorf("matching defaults: %w", err)
	}
	return cfg, nil
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // text or json
}

// Default returns the configuration used when nothing else is set.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:           "8080",
			AllowedOrigins: []string{"http://localhost:3000"},
			ShutdownGrace:  10 * time.Second,
		},
		Database: DatabaseConfig{
			Driver:   "sqlite",
			DSN:      "reconciliation.db",
			LogLevel: "warn",
		},
		Matching: MatchingConfig{
			DateToleranceDays:   1,
			ValueTolerance:      "0.02",
			SimilarityThreshold: 0.70,
			Locale:              string(matching.LocaleDot),
			Timeout:             30 * time.Second,
			Profile:             "default",
			ManualMatchRetries:  3,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads and parses the config file. Keys missing from the file keep
// their defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Expand environment variables (e.g., ${DATABASE_URL})
	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// LoadFromEnv loads configuration from environment variables only
func LoadFromEnv() *Config {
	d := Default()
	return &Config{
		Server: ServerConfig{
			Port:           getEnv("PORT", d.Server.Port),
			AllowedOrigins: getEnvList("CORS_ALLOWED_ORIGINS", d.Server.AllowedOrigins),
			ShutdownGrace:  getEnvDuration("SHUTDOWN_GRACE", d.Server.ShutdownGrace),
		},
		Database: DatabaseConfig{
			Driver:   getEnv("DB_DRIVER", d.Database.Driver),
			DSN:      getEnv("DATABASE_URL", d.Database.DSN),
			LogLevel: getEnv("DB_LOG_LEVEL", d.Database.LogLevel),
		},
		Matching: MatchingConfig{
			DateToleranceDays:   getEnvInt("MATCH_DATE_TOLERANCE_DAYS", d.Matching.DateToleranceDays),
			ValueTolerance:      getEnv("MATCH_VALUE_TOLERANCE", d.Matching.ValueTolerance),
			SimilarityThreshold: getEnvFloat("MATCH_SIMILARITY_THRESHOLD", d.Matching.SimilarityThreshold),
			Locale:              getEnv("MATCH_LOCALE", d.Matching.Locale),
			Timeout:             getEnvDuration("MATCH_TIMEOUT", d.Matching.Timeout),
			Profile:             getEnv("MATCH_PROFILE", d.Matching.Profile),
			ManualMatchRetries:  getEnvInt("MATCH_MANUAL_RETRIES", d.Matching.ManualMatchRetries),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", d.Logging.Level),
			Format: getEnv("LOG_FORMAT", d.Logging.Format),
		},
	}
}

// LoadOrEnv tries to load from config.yaml, falls back to environment variables
func LoadOrEnv() *Config {
	return LoadOrEnvWithPath(getEnv("CONFIG_PATH", "config.yaml"))
}

// LoadOrEnvWithPath tries to load from the specified path, falls back to
// environment variables
func LoadOrEnvWithPath(path string) *Config {
	if cfg, err := Load(path); err == nil {
		return cfg
	}
	return LoadFromEnv()
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		var result int
		if _, err := fmt.Sscanf(val, "%d", &result); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		var result float64
		if _, err := fmt.Sscanf(val, "%g", &result); err == nil {
			return result
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

// getEnvList splits a comma separated variable
func getEnvList(key string, fallback []string) []string {
	val := os.Getenv(key)
	if val == "" {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(val, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
