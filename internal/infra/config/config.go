package config

import (
	"os"
	"strconv"
	"strings"
)

type Config struct {
	Env  string
	Port string

	// StorageDriver selects "postgres" or "file".
	StorageDriver string
	FileStorePath string

	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string
	LLMTimeout    int // seconds

	// Feed pipeline tunables. The observed production values are the
	// defaults; none of them is contractual.
	PageSize       int
	BatchSize      int
	LowWaterMark   int
	HistoryWindow  int
	RateLimit      int
	RateWindow     int // seconds
	LockTimeout    int // seconds
	ConcurrentWait int // seconds
	TrendingLimit  int

	WarmerInterval int // seconds, 0 disables the feed warmer

	// HTTP-level per-IP limiter, in front of the per-scroller window.
	HTTPRatePerSec float64
	HTTPBurst      int
}

func Load() *Config {
	return &Config{
		Env:  getEnv("ENV", "development"),
		Port: getEnv("PORT", "9020"),

		StorageDriver: getEnv("STORAGE_DRIVER", "postgres"),
		FileStorePath: getEnv("FILE_STORE_PATH", "scroll-db.json"),

		DBHost:     getEnv("DB_HOST", "scroll-db"),
		DBPort:     getEnv("DB_PORT", "5432"),
		DBUser:     getEnv("DB_USER", "scroll_user"),
		DBPassword: getSecret("DB_PASSWORD", "DB_PASSWORD_FILE", "scroll_password"),
		DBName:     getEnv("DB_NAME", "scroll_db"),

		OpenAIAPIKey:  getSecret("OPENAI_API_KEY", "OPENAI_API_KEY_FILE", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		LLMTimeout:    getEnvInt("LLM_TIMEOUT_SECONDS", 120),

		PageSize:       getEnvInt("FEED_PAGE_SIZE", 20),
		BatchSize:      getEnvInt("FEED_BATCH_SIZE", 20),
		LowWaterMark:   getEnvInt("FEED_LOW_WATER_MARK", 20),
		HistoryWindow:  getEnvInt("FEED_HISTORY_WINDOW", 25),
		RateLimit:      getEnvInt("FEED_RATE_LIMIT", 30),
		RateWindow:     getEnvInt("FEED_RATE_WINDOW_SECONDS", 60),
		LockTimeout:    getEnvInt("FEED_LOCK_TIMEOUT_SECONDS", 60),
		ConcurrentWait: getEnvInt("FEED_CONCURRENT_WAIT_SECONDS", 4),
		TrendingLimit:  getEnvInt("FEED_TRENDING_LIMIT", 4),

		WarmerInterval: getEnvInt("FEED_WARMER_INTERVAL_SECONDS", 30),

		HTTPRatePerSec: getEnvFloat("HTTP_RATE_PER_SECOND", 10),
		HTTPBurst:      getEnvInt("HTTP_RATE_BURST", 20),
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getSecret(envKey, fileEnvKey, fallback string) string {
	if value, ok := os.LookupEnv(envKey); ok {
		return value
	}

	if filePath, ok := os.LookupEnv(fileEnvKey); ok {
		content, err := os.ReadFile(filePath)
		if err == nil {
			return strings.TrimSpace(string(content))
		}
	}

	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if value, ok := os.LookupEnv(key); ok {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return fallback
}
