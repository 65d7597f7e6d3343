package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	// Sheet endpoint (Google Apps Script web app). May be empty: the
	// service stays up, reads return empty results and submits fail with
	// a configuration message.
	SheetAPIURL string

	// HTTP server
	HTTPAddr string

	// Read cache
	CacheTTL  time.Duration
	RedisAddr string // empty = in-memory cache
	RedisPass string

	// Logging
	LogLevel  string
	LogFormat string

	// Telegram Bot (optional)
	TelegramBotToken string
	AuthorizedChatID string
}

func LoadConfig() (*Config, error) {
	// .env is optional; real deployments set env vars directly
	godotenv.Load()

	return &Config{
		SheetAPIURL:      os.Getenv("SHEET_API_URL"),
		HTTPAddr:         getEnv("HTTP_ADDR", ":8080"),
		CacheTTL:         time.Duration(parseInt(getEnv("CACHE_TTL_SECONDS", "120"), 120)) * time.Second,
		RedisAddr:        os.Getenv("REDIS_ADDR"),
		RedisPass:        os.Getenv("REDIS_PASSWORD"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "json"),
		TelegramBotToken: os.Getenv("TELEGRAM_BOT_TOKEN"),
		AuthorizedChatID: os.Getenv("AUTHORIZED_CHAT_ID"),
	}, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func parseInt(s string, fallback int) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return fallback
	}
	return n
}
