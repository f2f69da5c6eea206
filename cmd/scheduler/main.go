package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drivingschool/backend/internal/config"
	"github.com/drivingschool/backend/internal/database"
	"github.com/drivingschool/backend/internal/logger"
	"github.com/drivingschool/backend/internal/repositories"
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

	logger.Logger.Info("Starting Driving School Scheduler")

	// Connect to database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

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

	// Create Asynq client
	asynqClient := asynq.NewClient(asynq.RedisClientOpt{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer asynqClient.Close()

	location, err := time.LoadLocation(cfg.Scheduler.Timezone)
	if err != nil {
		logger.Logger.Fatal("Failed to load timezone", zap.Error(err))
	}

	bookingRepo := repositories.NewBookingRepository(db, logger.Logger)
	userTokenRepo := repositories.NewUserTokenRepository(db, logger.Logger)
	enqueuer := tasks.NewEnqueuer(asynqClient, cfg.Telegram.AdminChatID, logger.Logger)

	// Create scheduler instance
	scheduler := NewScheduler(bookingRepo, enqueuer, userTokenRepo, cfg.JWT.RefreshTokenExpiry, location, logger.Logger)

	// Start scheduler
	if err := scheduler.Start(cfg.Scheduler.ReminderCron); err != nil {
		logger.Logger.Fatal("Failed to start scheduler", zap.Error(err))
	}
	defer func() {
		logger.Logger.Info("Shutting down scheduler...")
		scheduler.Stop()
		logger.Logger.Info("Scheduler exited")
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
}
