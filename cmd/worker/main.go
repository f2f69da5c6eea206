package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/config"
	"github.com/drivingschool/backend/internal/logger"
	"github.com/drivingschool/backend/internal/mailer"
	"github.com/drivingschool/backend/internal/metrics"
	"github.com/drivingschool/backend/internal/notifier"
	"github.com/drivingschool/backend/internal/tasks"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v\n", err)
	}

	// Initialize logger
	if err := logger.Init(cfg.Logging.Level); err != nil {
		log.Fatalf("Failed to initialize logger: %v\n", err)
	}
	defer logger.Sync()

	logger.Logger.Info("Starting Driving School Worker")

	// Test Redis connection
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	rdb.Close()

	// Create Asynq server
	srv := asynq.NewServer(
		asynq.RedisClientOpt{
			Addr:     cfg.RedisAddr(),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		asynq.Config{
			Queues: tasks.Queues,
		},
	)

	telegram := notifier.NewTelegramClient(cfg.Telegram.NotifyURL, cfg.Telegram.NotifyToken)
	if !telegram.Configured() {
		logger.Logger.Warn("TELEGRAM_NOTIFY_URL is not set, chat-bot notifications will be skipped")
	}
	smtp := mailer.New(cfg.SMTP.Host, cfg.SMTP.Port, cfg.SMTP.Username, cfg.SMTP.Password, cfg.SMTP.From)

	// Create worker instance
	worker := NewWorker(logger.Logger, telegram, smtp)

	// Register task handlers
	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeTelegramNotification, worker.HandleTelegramNotification)
	mux.HandleFunc(tasks.TypeEmail, worker.HandleEmail)

	// Expose task metrics
	metricsSrv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Worker.MetricsPort),
		Handler:      auth.APIKeyMiddleware(cfg.Metrics.APIKey)(metrics.Handler()),
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}
	go func() {
		if err := metricsSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Logger.Error("Metrics server failed", zap.Error(err))
		}
	}()

	// Start worker
	go func() {
		if err := srv.Run(mux); err != nil {
			logger.Logger.Fatal("Failed to start worker", zap.Error(err))
		}
	}()

	logger.Logger.Info("Worker started", zap.Int("metrics_port", cfg.Worker.MetricsPort))

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down worker...")
	srv.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := metricsSrv.Shutdown(ctx); err != nil {
		logger.Logger.Error("Metrics server forced to shutdown", zap.Error(err))
	}
	logger.Logger.Info("Worker exited")
}
