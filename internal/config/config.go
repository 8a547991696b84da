// Package config handles configuration loading and validation for
// gatekeeper.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/andy-wilson/gatekeeper/internal/bbapi"
)

// Config is the complete configuration for a gatekeeper run.
type Config struct {
	RepoOwner string        `yaml:"repo_owner"`
	RepoSlugs []string      `yaml:"repo_slugs"`
	Auth      AuthConfig    `yaml:"auth"`
	RateLimit RateLimit     `yaml:"rate_limit"`
	Logging   LoggingConfig `yaml:"logging"`
	Report    ReportConfig  `yaml:"report"`
}

// AuthConfig holds Bitbucket Basic Auth credentials.
type AuthConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
}

// RateLimit holds rate limiting settings for the Bitbucket API client.
type RateLimit struct {
	RequestsPerHour        int     `yaml:"requests_per_hour"`
	BurstSize              int     `yaml:"burst_size"`
	MaxRetries             int     `yaml:"max_retries"`
	RetryBackoffSeconds    int     `yaml:"retry_backoff_seconds"`
	RetryBackoffMultiplier float64 `yaml:"retry_backoff_multiplier"`
	MaxBackoffSeconds      int     `yaml:"max_backoff_seconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ReportConfig holds the optional structured-report settings.
type ReportConfig struct {
	JSONPath string `yaml:"json_path"`
}

// Default returns a Config with sensible default values.
func Default() *Config {
	rl := bbapi.DefaultRateLimiterConfig()
	return &Config{
		RateLimit: RateLimit{
			RequestsPerHour:        rl.RequestsPerHour,
			BurstSize:              rl.BurstSize,
			MaxRetries:             rl.MaxRetries,
			RetryBackoffSeconds:    rl.RetryBackoffSeconds,
			RetryBackoffMultiplier: rl.RetryBackoffMultiplier,
			MaxBackoffSeconds:      rl.MaxBackoffSeconds,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// ToRateLimiterConfig converts the config's rate-limit section to the
// bbapi client's configuration shape.
func (c *Config) ToRateLimiterConfig() bbapi.RateLimiterConfig {
	return bbapi.RateLimiterConfig{
		RequestsPerHour:        c.RateLimit.RequestsPerHour,
		BurstSize:              c.RateLimit.BurstSize,
		MaxRetries:             c.RateLimit.MaxRetries,
		RetryBackoffSeconds:    c.RateLimit.RetryBackoffSeconds,
		RetryBackoffMultiplier: c.RateLimit.RetryBackoffMultiplier,
		MaxBackoffSeconds:      c.RateLimit.MaxBackoffSeconds,
	}
}

// Load reads a configuration file and returns a Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}
	return Parse(data)
}

// Parse parses configuration from YAML bytes. Environment variables in the
// form ${VAR_NAME} are substituted before parsing.
func Parse(data []byte) (*Config, error) {
	expanded := expandEnvVars(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parsing config YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// envVarRegex matches ${VAR_NAME} patterns.
var envVarRegex = regexp.MustCompile(`\$\{([a-zA-Z_][a-zA-Z0-9_]*)\}`)

// expandEnvVars replaces ${VAR_NAME} with the value of the environment
// variable. If the variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	return envVarRegex.ReplaceAllStringFunc(s, func(match string) string {
		varName := match[2 : len(match)-1]
		return os.Getenv(varName)
	})
}

// Validate checks that the configuration is complete and internally
// consistent.
func (c *Config) Validate() error {
	var errs []string

	if c.RepoOwner == "" {
		errs = append(errs, "repo_owner is required")
	}
	if len(c.RepoSlugs) == 0 {
		errs = append(errs, "repo_slugs must name at least one repository or glob pattern")
	}
	if c.Auth.Username == "" {
		errs = append(errs, "auth.username is required")
	}
	if c.Auth.Password == "" {
		errs = append(errs, "auth.password is required")
	}

	if c.RateLimit.RequestsPerHour <= 0 {
		errs = append(errs, "rate_limit.requests_per_hour must be positive")
	}
	if c.RateLimit.BurstSize <= 0 {
		errs = append(errs, "rate_limit.burst_size must be positive")
	}
	if c.RateLimit.MaxRetries < 0 {
		errs = append(errs, "rate_limit.max_retries must be non-negative")
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, fmt.Sprintf("logging.level must be debug/info/warn/error, got %q", c.Logging.Level))
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		errs = append(errs, fmt.Sprintf("logging.format must be text/json, got %q", c.Logging.Format))
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}

	return nil
}
