package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("ETF_ENDPOINT_URL", "http://localhost:8080/etf-webapp")

	cfg, err := LoadDefault()
	require.NoError(t, err)

	assert.Equal(t, 45*time.Minute, cfg.Endpoint.Timeout)
	assert.Equal(t, 2*time.Second, cfg.Endpoint.PollInterval)
	assert.Equal(t, "ddt", cfg.Suites.Dir)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
}

func TestLoad_FromFile(t *testing.T) {
	path := writeConfigFile(t, `
endpoint:
  url: https://inspire.example.org/validator
  username: tester
  password: secret
  poll_interval: 500ms
suites:
  dir: /srv/ddt
logging:
  level: debug
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://inspire.example.org/validator", cfg.Endpoint.URL)
	assert.Equal(t, "tester", cfg.Endpoint.Username)
	assert.Equal(t, 500*time.Millisecond, cfg.Endpoint.PollInterval)
	assert.Equal(t, "/srv/ddt", cfg.Suites.Dir)
	assert.Equal(t, "debug", cfg.Logging.Level)
	// Unset keys keep their defaults.
	assert.Equal(t, 45*time.Minute, cfg.Endpoint.Timeout)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	path := writeConfigFile(t, `
endpoint:
  url: https://file.example.org/validator
`)
	t.Setenv("ETF_ENDPOINT_URL", "https://env.example.org/validator")
	t.Setenv("ETF_SUITES_DIR", "/data/suites")

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://env.example.org/validator", cfg.Endpoint.URL)
	assert.Equal(t, "/data/suites", cfg.Suites.Dir)
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoad_TildeExpansion(t *testing.T) {
	t.Setenv("ETF_ENDPOINT_URL", "http://localhost:8080/etf-webapp")
	t.Setenv("ETF_SUITES_DIR", "~/ddt-suites")

	cfg, err := LoadDefault()
	require.NoError(t, err)

	home, err := os.UserHomeDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "ddt-suites"), cfg.Suites.Dir)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		cfg := DefaultConfig()
		cfg.Endpoint.URL = "http://localhost:8080/etf-webapp"
		return cfg
	}

	t.Run("valid", func(t *testing.T) {
		require.NoError(t, base().Validate())
	})

	t.Run("missing url", func(t *testing.T) {
		cfg := base()
		cfg.Endpoint.URL = ""
		require.ErrorContains(t, cfg.Validate(), "endpoint.url is required")
	})

	t.Run("bad scheme", func(t *testing.T) {
		cfg := base()
		cfg.Endpoint.URL = "ftp://example.org"
		require.ErrorContains(t, cfg.Validate(), "http or https")
	})

	t.Run("username without password", func(t *testing.T) {
		cfg := base()
		cfg.Endpoint.Username = "tester"
		require.ErrorContains(t, cfg.Validate(), "set together")
	})

	t.Run("non-positive poll interval", func(t *testing.T) {
		cfg := base()
		cfg.Endpoint.PollInterval = 0
		require.ErrorContains(t, cfg.Validate(), "poll_interval")
	})

	t.Run("missing suites dir", func(t *testing.T) {
		cfg := base()
		cfg.Suites.Dir = ""
		require.ErrorContains(t, cfg.Validate(), "suites.dir")
	})
}
