package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gcastro-vish/llm-fake-news-detector/internal/llm"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadConfig(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "sk-env")
		path := writeConfig(t, "providers:\n  - type: openai\n    api_key: ${OPENAI_API_KEY}\n")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "8000", cfg.Server.Port)
		assert.Equal(t, "release", cfg.Server.Mode)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, 3, cfg.MaxFailuresBeforeSwitch)
		assert.Equal(t, "http://localhost:8000", cfg.Evaluate.ServiceURL)
		assert.Equal(t, "sk-env", cfg.Evaluate.APIKey)
		assert.Equal(t, "data/true.txt", cfg.Evaluate.TruePath)
		assert.Equal(t, "data/fake.txt", cfg.Evaluate.FakePath)
		assert.Equal(t, "output/output.csv", cfg.Evaluate.OutputPath)
		assert.Equal(t, 30*time.Second, cfg.Evaluate.Timeout)
		assert.Equal(t, 0, cfg.Evaluate.MaxConcurrency)
	})

	t.Run("expands environment variables", func(t *testing.T) {
		t.Setenv("GROQ_API_KEY", "gsk-test")
		t.Setenv("FACADE_TOKEN", "secret")
		path := writeConfig(t, `
server:
  port: "9000"
  auth_token: ${FACADE_TOKEN}
providers:
  - type: groq
    api_key: ${GROQ_API_KEY}
    requests_per_minute: 30
    retry_delay: 500ms
evaluate:
  service_url: http://facade:9000
  api_key: ${FACADE_TOKEN}
  max_concurrency: 8
  timeout: 10s
`)

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, "9000", cfg.Server.Port)
		assert.Equal(t, "secret", cfg.Server.AuthToken)
		require.Len(t, cfg.Providers, 1)
		assert.Equal(t, llm.ProviderGroq, cfg.Providers[0].Type)
		assert.Equal(t, "gsk-test", cfg.Providers[0].APIKey)
		assert.Equal(t, 30, cfg.Providers[0].RequestsPerMinute)
		assert.Equal(t, 500*time.Millisecond, cfg.Providers[0].RetryDelay)
		assert.Equal(t, "http://facade:9000", cfg.Evaluate.ServiceURL)
		assert.Equal(t, "secret", cfg.Evaluate.APIKey)
		assert.Equal(t, 8, cfg.Evaluate.MaxConcurrency)
		assert.Equal(t, 10*time.Second, cfg.Evaluate.Timeout)
	})

	t.Run("negative concurrency means unbounded", func(t *testing.T) {
		path := writeConfig(t, "evaluate:\n  max_concurrency: -1\n")

		cfg, err := LoadConfig(path)

		require.NoError(t, err)
		assert.Equal(t, 0, cfg.Evaluate.MaxConcurrency)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yml"))

		assert.Error(t, err)
	})

	t.Run("invalid yaml", func(t *testing.T) {
		path := writeConfig(t, "server: [unclosed")

		_, err := LoadConfig(path)

		assert.Error(t, err)
	})
}

func TestPath(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	assert.Equal(t, DefaultPath, Path())

	t.Setenv("CONFIG_PATH", "/etc/detector.yml")
	assert.Equal(t, "/etc/detector.yml", Path())
}
