package config

import (
	"os"
	"strconv"

	"datavet/internal/errors"
	"datavet/internal/validator"
)

// Config represents the complete application configuration
type Config struct {
	Server    ServerConfig
	Validator validator.Config
	LogLevel  string
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port string
}

// Load reads configuration from environment variables and validates it.
// Every field has a working default; only malformed values fail.
func Load() (*Config, error) {
	cfg := &Config{
		Server:    ServerConfig{Port: getEnv("PORT", "8080")},
		Validator: validator.DefaultConfig(),
		LogLevel:  getEnv("LOG_LEVEL", "INFO"),
	}

	var err error
	if cfg.Validator.EnumThreshold, err = getEnvInt("ENUM_THRESHOLD", cfg.Validator.EnumThreshold); err != nil {
		return nil, err
	}
	if cfg.Validator.MaxDomainViolationSamples, err = getEnvInt("MAX_DOMAIN_VIOLATION_SAMPLES", cfg.Validator.MaxDomainViolationSamples); err != nil {
		return nil, err
	}
	if cfg.Validator.SkewThreshold, err = getEnvFloat("SKEW_THRESHOLD", cfg.Validator.SkewThreshold); err != nil {
		return nil, err
	}
	if cfg.Validator.NewFeaturesAreWarnings, err = getEnvBool("NEW_FEATURES_ARE_WARNINGS", cfg.Validator.NewFeaturesAreWarnings); err != nil {
		return nil, err
	}

	if cfg.Validator.EnumThreshold <= 0 {
		return nil, errors.ConfigInvalid("ENUM_THRESHOLD must be positive")
	}
	if cfg.Validator.SkewThreshold <= 0 {
		return nil, errors.ConfigInvalid("SKEW_THRESHOLD must be positive")
	}
	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.Wrapf(errors.ConfigInvalid(key+" is not an integer"), "parsing %s", key)
	}
	return parsed, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, errors.Wrapf(errors.ConfigInvalid(key+" is not a number"), "parsing %s", key)
	}
	return parsed, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	parsed, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.Wrapf(errors.ConfigInvalid(key+" is not a boolean"), "parsing %s", key)
	}
	return parsed, nil
}
