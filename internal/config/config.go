package config

import (
	"os"
	"strconv"
	"time"

	"csvprof/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Engine   EngineConfig
	Server   ServerConfig
	Database DatabaseConfig
}

// EngineConfig holds the profiling engine parameters. The threshold values
// are the documented constants behind the bounded-memory guarantee; they were
// tuned empirically, not derived, and can be overridden per deployment.
type EngineConfig struct {
	// Classification
	ClassifySampleRows  int     // prefix rows inspected by the type classifier
	ClassifyThreshold   float64 // minimum predicate match rate
	CategoricalMaxRatio float64 // unique/total ratio above which a column is not categorical

	// Sampling tiers (row counts)
	SamplingLowThreshold  int64 // below: exact full-stream processing
	SamplingHighThreshold int64 // between: systematic sampling to target size
	MaxSampleSize         int64 // absolute cap on rows any run consumes

	// Quantile estimation
	ExactSortThreshold int // values retained and sorted exactly below this
	ReservoirCapacity  int // fixed reservoir size above the threshold

	// Reporting
	TopCorrelations int // size of the ranked top-|r| list
	MaxOutlierRows  int // offending row indices retained per column
	BatchSize       int // rows between cancellation checks
	RunTimeout      time.Duration
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// DatabaseConfig holds report store connection settings.
// URL may be empty: persistence is optional and caller-owned.
type DatabaseConfig struct {
	URL string
}

// DefaultEngineConfig returns the documented engine defaults
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ClassifySampleRows:    1000,
		ClassifyThreshold:     0.90,
		CategoricalMaxRatio:   0.5,
		SamplingLowThreshold:  50000,
		SamplingHighThreshold: 1000000,
		MaxSampleSize:         100000,
		ExactSortThreshold:    50000,
		ReservoirCapacity:     10000,
		TopCorrelations:       10,
		MaxOutlierRows:        1000,
		BatchSize:             1000,
		RunTimeout:            5 * time.Minute,
	}
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Engine:   loadEngineConfig(),
		Server:   loadServerConfig(),
		Database: loadDatabaseConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadEngineConfig() EngineConfig {
	cfg := DefaultEngineConfig()
	cfg.ClassifySampleRows = getEnvIntOrDefault("CLASSIFY_SAMPLE_ROWS", cfg.ClassifySampleRows)
	cfg.ClassifyThreshold = getEnvFloatOrDefault("CLASSIFY_THRESHOLD", cfg.ClassifyThreshold)
	cfg.CategoricalMaxRatio = getEnvFloatOrDefault("CATEGORICAL_MAX_RATIO", cfg.CategoricalMaxRatio)
	cfg.SamplingLowThreshold = getEnvInt64OrDefault("SAMPLING_LOW_THRESHOLD", cfg.SamplingLowThreshold)
	cfg.SamplingHighThreshold = getEnvInt64OrDefault("SAMPLING_HIGH_THRESHOLD", cfg.SamplingHighThreshold)
	cfg.MaxSampleSize = getEnvInt64OrDefault("MAX_SAMPLE_SIZE", cfg.MaxSampleSize)
	cfg.ExactSortThreshold = getEnvIntOrDefault("EXACT_SORT_THRESHOLD", cfg.ExactSortThreshold)
	cfg.ReservoirCapacity = getEnvIntOrDefault("RESERVOIR_CAPACITY", cfg.ReservoirCapacity)
	cfg.TopCorrelations = getEnvIntOrDefault("TOP_CORRELATIONS", cfg.TopCorrelations)
	cfg.MaxOutlierRows = getEnvIntOrDefault("MAX_OUTLIER_ROWS", cfg.MaxOutlierRows)
	cfg.BatchSize = getEnvIntOrDefault("ENGINE_BATCH_SIZE", cfg.BatchSize)
	cfg.RunTimeout = getEnvDurationOrDefault("RUN_TIMEOUT", cfg.RunTimeout)
	return cfg
}

func loadServerConfig() ServerConfig {
	return ServerConfig{
		Port: getEnvOrDefault("PORT", "8080"),
	}
}

func loadDatabaseConfig() DatabaseConfig {
	return DatabaseConfig{
		URL: getEnvOrDefault("DATABASE_URL", ""),
	}
}

func validateConfig(config *Config) error {
	e := config.Engine
	if e.ClassifyThreshold <= 0 || e.ClassifyThreshold > 1 {
		return errors.ConfigInvalid("CLASSIFY_THRESHOLD must be in (0, 1]")
	}
	if e.SamplingLowThreshold <= 0 {
		return errors.ConfigInvalid("SAMPLING_LOW_THRESHOLD must be positive")
	}
	if e.SamplingHighThreshold < e.SamplingLowThreshold {
		return errors.ConfigInvalid("SAMPLING_HIGH_THRESHOLD must be >= SAMPLING_LOW_THRESHOLD")
	}
	if e.MaxSampleSize <= 0 {
		return errors.ConfigInvalid("MAX_SAMPLE_SIZE must be positive")
	}
	if e.ReservoirCapacity <= 0 {
		return errors.ConfigInvalid("RESERVOIR_CAPACITY must be positive")
	}
	if e.BatchSize <= 0 {
		return errors.ConfigInvalid("ENGINE_BATCH_SIZE must be positive")
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

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
