package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config хранит все конфигурационные параметры приложения.
type Config struct {
	DatabaseURL  string
	JWTSecretKey string
	ServerPort   int
	LogLevel     slog.Level

	// Прогнозы закрываются за это время до начала матча
	PredictionDeadlineBuffer time.Duration
	CORSAllowedOrigins       []string

	SyncConcurrency int
	SyncRatePerSec  float64

	ResultsFeedURL      string
	ResultsFeedAPIKey   string
	ResultsSyncSchedule string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// AvatarStorageEnabled is true when every R2 setting is present.
func (c *Config) AvatarStorageEnabled() bool {
	return c.R2AccountID != "" && c.R2AccessKeyID != "" && c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" && c.R2PublicBaseURL != ""
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	jwtKey := os.Getenv("JWT_SECRET_KEY")
	if jwtKey == "" {
		return nil, fmt.Errorf("JWT_SECRET_KEY environment variable is not set")
	}

	port, err := strconv.Atoi(getEnvOrDefault("SERVER_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnvOrDefault("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL environment variable: %w", err)
	}

	deadlineBuffer, err := time.ParseDuration(getEnvOrDefault("PREDICTION_DEADLINE_BUFFER", "1h"))
	if err != nil {
		return nil, fmt.Errorf("invalid PREDICTION_DEADLINE_BUFFER environment variable: %w", err)
	}
	if deadlineBuffer < 0 {
		return nil, fmt.Errorf("PREDICTION_DEADLINE_BUFFER must not be negative, got %s", deadlineBuffer)
	}

	syncConcurrency, err := strconv.Atoi(getEnvOrDefault("SYNC_CONCURRENCY", "4"))
	if err != nil || syncConcurrency <= 0 {
		return nil, fmt.Errorf("SYNC_CONCURRENCY must be a positive integer, got %q", os.Getenv("SYNC_CONCURRENCY"))
	}

	syncRate, err := strconv.ParseFloat(getEnvOrDefault("SYNC_RATE_PER_SEC", "10"), 64)
	if err != nil || syncRate <= 0 {
		return nil, fmt.Errorf("SYNC_RATE_PER_SEC must be a positive number, got %q", os.Getenv("SYNC_RATE_PER_SEC"))
	}

	cfg := &Config{
		DatabaseURL:              dbURL,
		JWTSecretKey:             jwtKey,
		ServerPort:               port,
		LogLevel:                 level,
		PredictionDeadlineBuffer: deadlineBuffer,
		CORSAllowedOrigins:       splitList(getEnvOrDefault("CORS_ALLOWED_ORIGINS", "*")),
		SyncConcurrency:          syncConcurrency,
		SyncRatePerSec:           syncRate,
		ResultsFeedURL:           strings.TrimRight(os.Getenv("RESULTS_FEED_URL"), "/"),
		ResultsFeedAPIKey:        os.Getenv("RESULTS_FEED_API_KEY"),
		ResultsSyncSchedule:      getEnvOrDefault("RESULTS_SYNC_SCHEDULE", "@every 5m"),
		R2AccountID:              os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:            os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:        os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:             os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:          os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
