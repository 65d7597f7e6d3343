package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"

	"energy-checklist-bot/bot"
	"energy-checklist-bot/config"
	"energy-checklist-bot/internal/cache"
	"energy-checklist-bot/internal/handlers"
	"energy-checklist-bot/internal/logger"
	"energy-checklist-bot/internal/schedule"
	"energy-checklist-bot/internal/services"
	"energy-checklist-bot/internal/sheetapi"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	zlog, err := logger.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer zlog.Sync()
	zlog.Info("config loaded", zap.Bool("sheet_configured", cfg.SheetAPIURL != ""))

	// Create application context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Setup signal handling for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		zlog.Info("shutdown signal received")
		cancel()
	}()

	// Initialize application dependencies
	handler, client := initApplication(cfg, zlog)

	// Initialize Telegram Bot
	if err := initBot(cfg, client); err != nil {
		zlog.Warn("failed to init Telegram bot", zap.Error(err))
	}

	// Setup HTTP server
	mux := http.NewServeMux()
	handler.Register(mux)
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	server := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		zlog.Info("server starting", zap.String("addr", cfg.HTTPAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zlog.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for shutdown signal
	<-ctx.Done()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zlog.Error("server shutdown error", zap.Error(err))
	}

	zlog.Info("server stopped gracefully")
}

// initBot initializes the Telegram bot; the service runs fine without it
func initBot(cfg *config.Config, client *sheetapi.Client) error {
	if cfg.TelegramBotToken == "" {
		return nil
	}
	if err := bot.Init(cfg.TelegramBotToken, cfg.AuthorizedChatID); err != nil {
		return err
	}

	bot.SetDataSource(client)
	bot.StartPolling()
	return nil
}

// initApplication wires the cache store, sheet client, session manager and
// HTTP handler together
func initApplication(cfg *config.Config, zlog *zap.Logger) (*handlers.ChecklistHandler, *sheetapi.Client) {
	var store cache.Store
	if cfg.RedisAddr != "" {
		redisClient := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPass,
		})
		store = cache.NewRedisStore(redisClient, "energy-check:", zlog)
		zlog.Info("using redis cache", zap.String("addr", cfg.RedisAddr))
	} else {
		store = cache.NewMemoryStore()
	}

	client := sheetapi.New(cfg.SheetAPIURL, store, cfg.CacheTTL, zlog)
	manager := services.NewManager(schedule.Static{}, client, bot.NewNotifier(), zlog)
	handler := handlers.NewChecklistHandler(manager, client, zlog)

	return handler, client
}
