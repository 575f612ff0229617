package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLoad_FeedParameters_Defaults(t *testing.T) {
	envVars := []string{
		"FEED_PAGE_SIZE",
		"FEED_BATCH_SIZE",
		"FEED_LOW_WATER_MARK",
		"FEED_HISTORY_WINDOW",
		"FEED_RATE_LIMIT",
		"FEED_LOCK_TIMEOUT_SECONDS",
		"FEED_CONCURRENT_WAIT_SECONDS",
	}
	for _, key := range envVars {
		_ = os.Unsetenv(key)
	}

	cfg := Load()

	assert.Equal(t, 20, cfg.PageSize)
	assert.Equal(t, 20, cfg.BatchSize)
	assert.Equal(t, 20, cfg.LowWaterMark)
	assert.Equal(t, 25, cfg.HistoryWindow)
	assert.Equal(t, 30, cfg.RateLimit)
	assert.Equal(t, 60, cfg.LockTimeout)
	assert.Equal(t, 4, cfg.ConcurrentWait)
}

func TestLoad_FeedParameters_FromEnv(t *testing.T) {
	t.Setenv("FEED_PAGE_SIZE", "10")
	t.Setenv("FEED_RATE_LIMIT", "3")
	t.Setenv("FEED_LOW_WATER_MARK", "30")

	cfg := Load()

	assert.Equal(t, 10, cfg.PageSize)
	assert.Equal(t, 3, cfg.RateLimit)
	assert.Equal(t, 30, cfg.LowWaterMark)
}

func TestLoad_Secrets_FromFile(t *testing.T) {
	path := t.TempDir() + "/openai_key"
	if err := os.WriteFile(path, []byte("sk-test\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("OPENAI_API_KEY_FILE", path)
	_ = os.Unsetenv("OPENAI_API_KEY")

	cfg := Load()

	assert.Equal(t, "sk-test", cfg.OpenAIAPIKey)
}

func TestLoad_StorageDriver_Default(t *testing.T) {
	_ = os.Unsetenv("STORAGE_DRIVER")

	cfg := Load()

	assert.Equal(t, "postgres", cfg.StorageDriver)
}
