package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/drivingschool/backend/docs"
	"github.com/drivingschool/backend/internal/auth"
	"github.com/drivingschool/backend/internal/cache"
	"github.com/drivingschool/backend/internal/config"
	"github.com/drivingschool/backend/internal/database"
	"github.com/drivingschool/backend/internal/handlers"
	"github.com/drivingschool/backend/internal/logger"
	"github.com/drivingschool/backend/internal/metrics"
	"github.com/drivingschool/backend/internal/middleware"
	"github.com/drivingschool/backend/internal/models"
	"github.com/drivingschool/backend/internal/payments"
	"github.com/drivingschool/backend/internal/repositories"
	"github.com/drivingschool/backend/internal/services"
	"github.com/drivingschool/backend/internal/tasks"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/httprate"
	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"
)

// @title Driving School API
// @version 1.0
// @description Booking assistant backend: sign-in, anxiety assessment, instructors, lesson bookings, progress, support and payments.

// @contact.name API Support
// @contact.email support@drivingschool.local

// @host localhost:8080
// @BasePath /api/v1
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
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

	logger.Logger.Info("Starting Driving School API")

	// Connect to database
	db, err := database.Connect(cfg.DSN())
	if err != nil {
		logger.Logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	// Run migrations
	if err := database.RunMigrations(db); err != nil {
		logger.Logger.Fatal("Failed to run migrations", zap.Error(err))
	}

	// Connect to Redis
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr(),
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		logger.Logger.Fatal("Failed to connect to Redis", zap.Error(err))
	}

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

	// Initialize JWT token generator
	tokenGenerator := auth.NewTokenGenerator(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
	)

	// Initialize repositories
	userRepo := repositories.NewUserRepository(db, logger.Logger)
	userTokenRepo := repositories.NewUserTokenRepository(db, logger.Logger)
	instructorRepo := repositories.NewInstructorRepository(db, logger.Logger)
	reviewRepo := repositories.NewReviewRepository(db, logger.Logger)
	bookingRepo := repositories.NewBookingRepository(db, logger.Logger)
	progressRepo := repositories.NewProgressRepository(db, logger.Logger)
	skillRepo := repositories.NewSkillRepository(db, logger.Logger)
	supportRepo := repositories.NewSupportRepository(db, logger.Logger)

	instructorCache := cache.NewInstructorCache(rdb, cfg.Instructors.CacheTTL, logger.Logger)
	enqueuer := tasks.NewEnqueuer(asynqClient, cfg.Telegram.AdminChatID, logger.Logger)

	// Hosted checkout is optional; static payment links are served without it
	var gateway services.CheckoutGateway
	if cfg.Stripe.SecretKey != "" {
		gateway = payments.NewStripeGateway(cfg.Stripe.SecretKey, cfg.Stripe.SuccessURL, cfg.Stripe.CancelURL)
	} else {
		logger.Logger.Info("STRIPE_SECRET_KEY is not set, checkout uses static payment links")
	}

	// Initialize services
	progressService := services.NewProgressService(progressRepo, skillRepo, userRepo, logger.Logger)
	authService := services.NewAuthService(userRepo, userTokenRepo, progressService, tokenGenerator, logger.Logger)
	profileService := services.NewProfileService(userRepo, logger.Logger)
	instructorService := services.NewInstructorService(instructorRepo, bookingRepo, instructorCache, location, logger.Logger)
	assessmentService := services.NewAssessmentService(userRepo, instructorService, logger.Logger)
	bookingService := services.NewBookingService(bookingRepo, instructorRepo, userRepo, progressRepo, enqueuer, location, logger.Logger)
	reviewService := services.NewReviewService(reviewRepo, instructorRepo, userRepo, instructorCache, logger.Logger)
	supportService := services.NewSupportService(supportRepo, enqueuer, logger.Logger)
	paymentService := services.NewPaymentService(gateway, cfg.Stripe.PaymentLinks, userRepo, logger.Logger)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(
		authService,
		cfg.JWT.AccessTokenExpiry,
		cfg.JWT.RefreshTokenExpiry,
		cfg.Server.SecureCookies,
		logger.Logger,
	)
	profileHandler := handlers.NewProfileHandler(profileService, logger.Logger)
	assessmentHandler := handlers.NewAssessmentHandler(assessmentService, logger.Logger)
	instructorHandler := handlers.NewInstructorHandler(instructorService, logger.Logger)
	reviewHandler := handlers.NewReviewHandler(reviewService, logger.Logger)
	bookingHandler := handlers.NewBookingHandler(bookingService, logger.Logger)
	progressHandler := handlers.NewProgressHandler(progressService, logger.Logger)
	supportHandler := handlers.NewSupportHandler(supportService, logger.Logger)
	paymentHandler := handlers.NewPaymentHandler(paymentService, logger.Logger)

	// Initialize auth middleware
	authMiddleware := auth.AuthMiddleware(tokenGenerator)
	optionalAuthMiddleware := auth.OptionalAuthMiddleware(tokenGenerator)
	staffMiddleware := auth.RoleMiddleware(tokenGenerator, int(models.RoleInstructor))
	adminMiddleware := auth.RoleMiddleware(tokenGenerator, int(models.RoleAdmin))

	// Setup router
	r := chi.NewRouter()

	// Apply middleware
	r.Use(middleware.RequestIDMiddleware)
	r.Use(middleware.LoggerMiddleware(logger.Logger))
	r.Use(middleware.RecoveryMiddleware(logger.Logger))
	r.Use(middleware.CORSMiddleware(cfg.CORS.AllowedOrigins))
	r.Use(httprate.LimitByIP(cfg.Server.RateLimitPerMinute, time.Minute))
	r.Use(middleware.RequestSizeLimitMiddleware(10 * 1024 * 1024)) // 10MB
	r.Use(metrics.InstrumentHandler)

	r.With(auth.APIKeyMiddleware(cfg.Metrics.APIKey)).Handle("/metrics", metrics.Handler())

	// Swagger documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL(fmt.Sprintf("http://localhost:%d/swagger/doc.json", cfg.Server.Port)),
	))

	// Scope router to /api/v1
	r.Route("/api/v1", func(r chi.Router) {
		authHandler.RegisterRoutes(r)
		profileHandler.RegisterRoutes(r, authMiddleware)
		assessmentHandler.RegisterRoutes(r, authMiddleware)
		instructorHandler.RegisterRoutes(r, adminMiddleware)
		reviewHandler.RegisterRoutes(r, authMiddleware)
		bookingHandler.RegisterRoutes(r, authMiddleware, staffMiddleware)
		progressHandler.RegisterRoutes(r, authMiddleware, staffMiddleware)
		supportHandler.RegisterRoutes(r, optionalAuthMiddleware, adminMiddleware)
		paymentHandler.RegisterRoutes(r, authMiddleware)
	})

	// Start server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Logger.Info("Server starting", zap.Int("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Logger.Info("Shutting down server...")

	// Graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Logger.Error("Server forced to shutdown", zap.Error(err))
	}

	logger.Logger.Info("Server exited")
}
