package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0644))
	return path
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 100*time.Millisecond, cfg.Debounce.Cards)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce.Description)
	assert.Equal(t, 100*time.Millisecond, cfg.Acquire.Interval)
	assert.Equal(t, 10*time.Second, cfg.Acquire.Timeout)
	assert.Equal(t, "jobhl-mark", cfg.MarkerClass)
	assert.Len(t, cfg.Locators.JobTitle, 9)
	assert.True(t, cfg.Browser.Headless)
	assert.False(t, cfg.TelegramEnabled())
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
keywords_path: data/kw.yaml
sensitive_terms: [Clearance]
debounce:
  cards: 50ms
acquire:
  timeout: 2s
locators:
  description: [".job-details", "#description"]
browser:
  url: https://example.com/jobs
  headless: false
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "data/kw.yaml", cfg.KeywordsPath)
	assert.Equal(t, []string{"Clearance"}, cfg.SensitiveTerms)
	assert.Equal(t, 50*time.Millisecond, cfg.Debounce.Cards)
	assert.Equal(t, 300*time.Millisecond, cfg.Debounce.Description)
	assert.Equal(t, 2*time.Second, cfg.Acquire.Timeout)
	assert.Equal(t, "https://example.com/jobs", cfg.Browser.URL)
	assert.False(t, cfg.Browser.Headless)

	ec, err := cfg.Engine()
	require.NoError(t, err)
	require.Len(t, ec.Locators.Description.Strategies, 2)
	assert.Equal(t, "#description", ec.Locators.Description.Strategies[1].Selector)
	assert.Len(t, ec.Locators.Cards.Title.Strategies, 9)
	assert.Equal(t, 50*time.Millisecond, ec.CardDebounce)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("TELEGRAM_BOT_TOKEN", "token")
	t.Setenv("TELEGRAM_CHAT_ID", "42")
	t.Setenv("PORT", "9090")
	t.Setenv("JOBHL_URL", "https://example.com")
	t.Setenv("JOBHL_HEADLESS", "false")

	cfg, err := Load(writeConfig(t, "port: \"8000\"\n"))
	require.NoError(t, err)

	assert.True(t, cfg.TelegramEnabled())
	assert.Equal(t, int64(42), cfg.TelegramChatID)
	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "https://example.com", cfg.Browser.URL)
	assert.False(t, cfg.Browser.Headless)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		body string
		env  map[string]string
	}{
		{"Bad YAML", "debounce: [", nil},
		{"Bad duration", "debounce:\n  cards: soon\n", nil},
		{"Zero debounce", "debounce:\n  description: 0s\n", nil},
		{"Timeout below interval", "acquire:\n  interval: 1s\n  timeout: 10ms\n", nil},
		{"Bad selector", "locators:\n  card: [\"div[\"]\n", nil},
		{"Empty locator", "locators:\n  status: []\n", nil},
		{"Bad chat id", "", map[string]string{"TELEGRAM_CHAT_ID": "abc"}},
		{"Bad headless", "", map[string]string{"JOBHL_HEADLESS": "maybe"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load(writeConfig(t, tt.body))
			assert.Error(t, err)
		})
	}
}
