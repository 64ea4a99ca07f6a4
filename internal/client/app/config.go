package app

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	BaseURL      string        // Required: VRES backend base URL (default: http://localhost:8080)
	DatabaseFile string        // Optional: path to SQLite state file (default: ./vres.db)
	SecretFile   string        // Optional: path to state sealing key file (default: ./vres.key)
	Env          string        // Environment (dev, staging, prod) (default: dev)
	LogLevel     string        // Log level (debug, info, warn, error) (default: info)
	LogFormat    string        // Log format (json, text) (default: text)
	HTTPTimeout  time.Duration // Optional: per-request timeout (default: 10s)
}

// fileConfig is the optional YAML overlay. Environment variables win over
// file values, file values win over defaults.
type fileConfig struct {
	BaseURL      string `yaml:"base_url"`
	DatabaseFile string `yaml:"database_file"`
	SecretFile   string `yaml:"secret_file"`
	Env          string `yaml:"env"`
	LogLevel     string `yaml:"log_level"`
	LogFormat    string `yaml:"log_format"`
	HTTPTimeout  string `yaml:"http_timeout"`
}

func LoadConfig() (Config, error) {
	cfg := Config{
		BaseURL:      "http://localhost:8080",
		DatabaseFile: "vres.db",
		SecretFile:   "vres.key",
		Env:          "dev",
		LogLevel:     "info",
		LogFormat:    "text",
		HTTPTimeout:  10 * time.Second,
	}

	if path := getEnvOrDefault("VRES_CONFIG_FILE", "vres.yaml"); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}

	cfg.BaseURL = getEnvOrDefault("VRES_BASE_URL", cfg.BaseURL)
	cfg.DatabaseFile = getEnvOrDefault("VRES_DATABASE_FILE", cfg.DatabaseFile)
	cfg.SecretFile = getEnvOrDefault("VRES_SECRET_FILE", cfg.SecretFile)
	cfg.Env = getEnvOrDefault("ENV", cfg.Env)
	cfg.LogLevel = getEnvOrDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnvOrDefault("LOG_FORMAT", cfg.LogFormat)
	cfg.HTTPTimeout = getEnvDurationOrDefault("VRES_HTTP_TIMEOUT", cfg.HTTPTimeout)

	return cfg, nil
}

// overlayFile applies values from a YAML config file when it exists. A
// missing file is not an error; only VRES_CONFIG_FILE pointing at an
// unreadable or malformed one is.
func overlayFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && os.Getenv("VRES_CONFIG_FILE") == "" {
			return nil
		}
		return fmt.Errorf("read config file %s: %w", path, err)
	}

	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	if fc.BaseURL != "" {
		cfg.BaseURL = fc.BaseURL
	}
	if fc.DatabaseFile != "" {
		cfg.DatabaseFile = fc.DatabaseFile
	}
	if fc.SecretFile != "" {
		cfg.SecretFile = fc.SecretFile
	}
	if fc.Env != "" {
		cfg.Env = fc.Env
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = fc.LogLevel
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = fc.LogFormat
	}
	if fc.HTTPTimeout != "" {
		d, err := time.ParseDuration(fc.HTTPTimeout)
		if err != nil {
			return fmt.Errorf("parse config file %s: http_timeout: %w", path, err)
		}
		cfg.HTTPTimeout = d
	}

	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	return defaultValue
}
