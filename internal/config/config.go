package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/cnharrison/har-insights/internal/analyzer"
	"github.com/cnharrison/har-insights/internal/observability"
)

// Config is the service configuration
type Config struct {
	Addr            string              `yaml:"addr"`
	LogLevel        string              `yaml:"log_level"`
	LogFormat       string              `yaml:"log_format"`
	Workers         int                 `yaml:"workers"`
	QueueSize       int                 `yaml:"queue_size"`
	MaxUploadBytes  int64               `yaml:"max_upload_bytes"`
	AnalysisTimeout time.Duration       `yaml:"analysis_timeout"`
	Thresholds      analyzer.Thresholds `yaml:"thresholds"`
	Store           StoreConfig         `yaml:"store"`
	Insights        InsightsConfig      `yaml:"insights"`
}

// StoreConfig configures result persistence. An empty path keeps results in memory.
type StoreConfig struct {
	Path       string        `yaml:"path"`
	TTL        time.Duration `yaml:"ttl"`
	GCInterval time.Duration `yaml:"gc_interval"`
}

// InsightsConfig configures the text-generation backend
type InsightsConfig struct {
	APIKey    string        `yaml:"api_key"`
	Model     string        `yaml:"model"`
	BaseURL   string        `yaml:"base_url"`
	MaxTokens int           `yaml:"max_tokens"`
	Timeout   time.Duration `yaml:"timeout"`
}

// Enabled reports whether insights can be generated
func (c InsightsConfig) Enabled() bool {
	return c.APIKey != ""
}

// Default returns the built-in configuration
func Default() Config {
	return Config{
		Addr:            ":8080",
		LogLevel:        "info",
		LogFormat:       observability.FormatJSON,
		Workers:         4,
		QueueSize:       64,
		MaxUploadBytes:  100 << 20,
		AnalysisTimeout: 30 * time.Second,
		Thresholds:      analyzer.DefaultThresholds(),
		Store: StoreConfig{
			TTL:        24 * time.Hour,
			GCInterval: 10 * time.Minute,
		},
		Insights: InsightsConfig{
			Model:     "gpt-4o-mini",
			MaxTokens: 1024,
			Timeout:   60 * time.Second,
		},
	}
}

// Load reads the YAML file at path over the defaults, then applies
// environment overrides and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.Addr = getEnv("HARINSIGHTS_ADDR", c.Addr)
	c.LogLevel = getEnv("HARINSIGHTS_LOG_LEVEL", c.LogLevel)
	c.LogFormat = getEnv("HARINSIGHTS_LOG_FORMAT", c.LogFormat)
	c.Store.Path = getEnv("HARINSIGHTS_STORE_PATH", c.Store.Path)
	c.Insights.APIKey = getEnv("OPENAI_API_KEY", c.Insights.APIKey)
	c.Insights.Model = getEnv("OPENAI_MODEL", c.Insights.Model)
	c.Insights.BaseURL = getEnv("OPENAI_BASE_URL", c.Insights.BaseURL)

	var err error
	if c.Workers, err = getEnvInt("HARINSIGHTS_WORKERS", c.Workers); err != nil {
		return err
	}
	if c.QueueSize, err = getEnvInt("HARINSIGHTS_QUEUE_SIZE", c.QueueSize); err != nil {
		return err
	}
	if c.Store.TTL, err = getEnvDuration("HARINSIGHTS_STORE_TTL", c.Store.TTL); err != nil {
		return err
	}
	if c.AnalysisTimeout, err = getEnvDuration("HARINSIGHTS_ANALYSIS_TIMEOUT", c.AnalysisTimeout); err != nil {
		return err
	}
	return nil
}

// Validate rejects configurations the service cannot run with
func (c Config) Validate() error {
	var errs []error
	if c.Addr == "" {
		errs = append(errs, errors.New("addr must not be empty"))
	}
	if c.Workers < 1 {
		errs = append(errs, fmt.Errorf("workers must be at least 1, got %d", c.Workers))
	}
	if c.QueueSize < 1 {
		errs = append(errs, fmt.Errorf("queue_size must be at least 1, got %d", c.QueueSize))
	}
	if c.MaxUploadBytes <= 0 {
		errs = append(errs, fmt.Errorf("max_upload_bytes must be positive, got %d", c.MaxUploadBytes))
	}
	if c.AnalysisTimeout <= 0 {
		errs = append(errs, fmt.Errorf("analysis_timeout must be positive, got %s", c.AnalysisTimeout))
	}
	if c.Store.TTL < 0 {
		errs = append(errs, fmt.Errorf("store.ttl must not be negative, got %s", c.Store.TTL))
	}
	switch strings.ToLower(c.LogFormat) {
	case observability.FormatJSON, observability.FormatConsole:
	default:
		errs = append(errs, fmt.Errorf("log_format must be json or console, got %q", c.LogFormat))
	}
	if c.Insights.Enabled() && c.Insights.Model == "" {
		errs = append(errs, errors.New("insights.model must be set when an api key is configured"))
	}
	return errors.Join(errs...)
}

func getEnv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) (int, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return n, nil
}

func getEnvDuration(key string, def time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", key, err)
	}
	return d, nil
}
