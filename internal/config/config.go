// Package config defines and loads the result checker configuration.
package config

import (
	"fmt"
	"net/url"
	"time"
)

// Config is the root configuration for the result checker.
type Config struct {
	Endpoint EndpointConfig `mapstructure:"endpoint"`
	Suites   SuitesConfig   `mapstructure:"suites"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// EndpointConfig describes the remote validation service.
type EndpointConfig struct {
	// URL is the base URL of the validation service. Required.
	URL string `mapstructure:"url"`

	// Username and Password enable HTTP basic authentication.
	// Either both or neither must be set.
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// Timeout bounds every remote call, including test data uploads.
	Timeout time.Duration `mapstructure:"timeout"`

	// PollInterval is how often a started run is polled for progress.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// SuitesConfig describes where data-driven test suites live.
type SuitesConfig struct {
	// Dir is the directory holding one subdirectory per test suite.
	Dir string `mapstructure:"dir"`
}

// LoggingConfig mirrors logging.Config for file-based configuration.
type LoggingConfig struct {
	Level        string `mapstructure:"level"`
	Format       string `mapstructure:"format"`
	EnableCaller bool   `mapstructure:"enable_caller"`
}

// DefaultConfig returns the configuration defaults.
func DefaultConfig() *Config {
	return &Config{
		Endpoint: EndpointConfig{
			// 45 minutes covers large test data uploads.
			Timeout:      45 * time.Minute,
			PollInterval: 2 * time.Second,
		},
		Suites: SuitesConfig{
			Dir: "ddt",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Validate checks the configuration for structural errors.
func (c *Config) Validate() error {
	if c.Endpoint.URL == "" {
		return fmt.Errorf("endpoint.url is required")
	}
	u, err := url.Parse(c.Endpoint.URL)
	if err != nil {
		return fmt.Errorf("endpoint.url is not a valid URL: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint.url must use http or https, got %q", u.Scheme)
	}
	if (c.Endpoint.Username == "") != (c.Endpoint.Password == "") {
		return fmt.Errorf("endpoint.username and endpoint.password must be set together")
	}
	if c.Endpoint.Timeout <= 0 {
		return fmt.Errorf("endpoint.timeout must be positive")
	}
	if c.Endpoint.PollInterval <= 0 {
		return fmt.Errorf("endpoint.poll_interval must be positive")
	}
	if c.Suites.Dir == "" {
		return fmt.Errorf("suites.dir is required")
	}
	return nil
}
