package config

import (
	"fmt"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/gyeh/vitalrisk/internal/fetch"
	"github.com/gyeh/vitalrisk/internal/report"
	"github.com/gyeh/vitalrisk/internal/transport"
)

// Defaults applied when neither a flag nor the config file sets a value.
const (
	DefaultPageSize   = 20
	DefaultOutputPath = "patients.json"
	DefaultLogFormat  = "text"
	DefaultLogLevel   = "info"
)

// RetryConfig tunes the page fetch retry schedule.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts"`
	BaseDelay      time.Duration `yaml:"base_delay"`
	RateLimitDelay time.Duration `yaml:"rate_limit_delay"`
}

// Config holds all runtime configuration for a vitalrisk run.
type Config struct {
	BaseURL      string        `yaml:"base_url"`
	APIKey       string        `yaml:"api_key"`
	PageSize     int           `yaml:"page_size"`
	Timeout      time.Duration `yaml:"timeout"`
	Retry        RetryConfig   `yaml:"retry"`
	OutputPath   string        `yaml:"output"`
	OutputFormat string        `yaml:"format"` // json, parquet or xlsx; inferred from OutputPath when empty
	MetricsFile  string        `yaml:"metrics_file"`
	DSN          string        `yaml:"dsn"`
	LogFormat    string        `yaml:"log_format"` // "text" or "json"
	LogLevel     string        `yaml:"log_level"`
	DryRun       bool          `yaml:"dry_run"`
}

// Defaults returns a Config populated with the default tunables.
func Defaults() Config {
	return Config{
		PageSize: DefaultPageSize,
		Timeout:  transport.DefaultTimeout,
		Retry: RetryConfig{
			MaxAttempts:    fetch.DefaultMaxAttempts,
			BaseDelay:      fetch.DefaultBaseDelay,
			RateLimitDelay: fetch.DefaultRateLimitDelay,
		},
		OutputPath: DefaultOutputPath,
		LogFormat:  DefaultLogFormat,
		LogLevel:   DefaultLogLevel,
	}
}

// yamlConfig is the on-disk YAML structure. Pointer fields distinguish
// "absent" from zero values.
type yamlConfig struct {
	BaseURL  *string        `yaml:"base_url"`
	APIKey   *string        `yaml:"api_key"`
	PageSize *int           `yaml:"page_size"`
	Timeout  *time.Duration `yaml:"timeout"`
	Retry    struct {
		MaxAttempts    *int           `yaml:"max_attempts"`
		BaseDelay      *time.Duration `yaml:"base_delay"`
		RateLimitDelay *time.Duration `yaml:"rate_limit_delay"`
	} `yaml:"retry"`
	OutputPath   *string `yaml:"output"`
	OutputFormat *string `yaml:"format"`
	MetricsFile  *string `yaml:"metrics_file"`
	DSN          *string `yaml:"dsn"`
	LogFormat    *string `yaml:"log_format"`
	LogLevel     *string `yaml:"log_level"`
	DryRun       *bool   `yaml:"dry_run"`
}

// LoadFromFile reads a YAML config file and merges its values into Config.
// Values whose flag is reported as set by flagSet are left untouched; a nil
// flagSet lets the file override everything.
func (c *Config) LoadFromFile(path string, flagSet func(name string) bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	var yc yamlConfig
	if err := yaml.Unmarshal(data, &yc); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	if flagSet == nil {
		flagSet = func(string) bool { return false }
	}

	mergeValue(&c.BaseURL, yc.BaseURL, flagSet("base-url"))
	mergeValue(&c.APIKey, yc.APIKey, flagSet("api-key"))
	mergeValue(&c.PageSize, yc.PageSize, flagSet("page-size"))
	mergeValue(&c.Timeout, yc.Timeout, flagSet("timeout"))
	mergeValue(&c.Retry.MaxAttempts, yc.Retry.MaxAttempts, flagSet("max-attempts"))
	mergeValue(&c.Retry.BaseDelay, yc.Retry.BaseDelay, flagSet("base-delay"))
	mergeValue(&c.Retry.RateLimitDelay, yc.Retry.RateLimitDelay, flagSet("rate-limit-delay"))
	mergeValue(&c.OutputPath, yc.OutputPath, flagSet("output"))
	mergeValue(&c.OutputFormat, yc.OutputFormat, flagSet("format"))
	mergeValue(&c.MetricsFile, yc.MetricsFile, flagSet("metrics-file"))
	mergeValue(&c.DSN, yc.DSN, flagSet("dsn"))
	mergeValue(&c.LogFormat, yc.LogFormat, flagSet("log-format"))
	mergeValue(&c.LogLevel, yc.LogLevel, flagSet("log-level"))
	mergeValue(&c.DryRun, yc.DryRun, flagSet("dry-run"))
	return nil
}

func mergeValue[T any](dst *T, src *T, flagSet bool) {
	if src != nil && !flagSet {
		*dst = *src
	}
}

// Format returns the effective output format.
func (c *Config) Format() string {
	if c.OutputFormat != "" {
		return c.OutputFormat
	}
	return report.FormatFromPath(c.OutputPath)
}

// Validate checks required fields and returns an error if the config is invalid.
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("--base-url or VITALRISK_BASE_URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("invalid base url %q", c.BaseURL)
	}
	if c.APIKey == "" {
		return fmt.Errorf("--api-key or VITALRISK_API_KEY is required")
	}
	if c.PageSize < 1 {
		return fmt.Errorf("page size must be positive, got %d", c.PageSize)
	}
	if c.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", c.Timeout)
	}
	if c.Retry.MaxAttempts < 1 {
		return fmt.Errorf("max attempts must be at least 1, got %d", c.Retry.MaxAttempts)
	}
	if c.Retry.BaseDelay < 0 || c.Retry.RateLimitDelay < 0 {
		return fmt.Errorf("retry delays must not be negative")
	}
	return c.ValidateOutput()
}

// ValidateOutput checks the output settings only.
func (c *Config) ValidateOutput() error {
	if c.OutputPath == "" {
		return fmt.Errorf("--output is required")
	}
	if !report.ValidFormat(c.Format()) {
		return fmt.Errorf("unknown output format %q (want one of %v)", c.Format(), report.Formats)
	}
	return nil
}

// ValidateWithDSN checks the DSN on top of Validate.
func (c *Config) ValidateWithDSN() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.DSN == "" {
		return fmt.Errorf("--dsn or VITALRISK_DB_URL is required")
	}
	return nil
}
