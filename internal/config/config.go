// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	Database    DatabaseConfig
	Redis       RedisConfig
	Server      ServerConfig
	Logging     LoggingConfig
	CORS        CORSConfig
	JWT         JWTConfig
	SMTP        SMTPConfig
	Telegram    TelegramConfig
	Stripe      StripeConfig
	Scheduler   SchedulerConfig
	Instructors InstructorsConfig
	Worker      WorkerConfig
	Metrics     MetricsConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port               int
	RateLimitPerMinute int
	SecureCookies      bool
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// JWTConfig holds JWT token configuration
type JWTConfig struct {
	Secret             string
	AccessTokenExpiry  time.Duration
	RefreshTokenExpiry time.Duration
}

// SMTPConfig holds SMTP server configuration
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
}

// TelegramConfig holds the chat-bot notification endpoint settings
type TelegramConfig struct {
	NotifyURL   string
	NotifyToken string
	AdminChatID string
}

// StripeConfig holds hosted checkout settings.
// Empty SecretKey means static payment links are used.
type StripeConfig struct {
	SecretKey    string
	SuccessURL   string
	CancelURL    string
	PaymentLinks map[string]string // package id -> hosted payment link
}

// SchedulerConfig holds reminder scheduler settings
type SchedulerConfig struct {
	ReminderCron string
	Timezone     string
}

// InstructorsConfig holds instructor catalogue settings
type InstructorsConfig struct {
	CacheTTL time.Duration
}

// WorkerConfig holds background worker settings
type WorkerConfig struct {
	MetricsPort int
}

// MetricsConfig guards the /metrics endpoints. Empty APIKey leaves them open.
type MetricsConfig struct {
	APIKey string
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := &Config{}

	// Database configuration
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return nil, fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPortStr := os.Getenv("DB_PORT")
	if dbPortStr == "" {
		return nil, fmt.Errorf("DB_PORT is required")
	}
	dbPort, err := strconv.Atoi(dbPortStr)
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return nil, fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	dbPassword := os.Getenv("DB_PASSWORD")
	if dbPassword == "" {
		return nil, fmt.Errorf("DB_PASSWORD is required")
	}
	cfg.Database.Password = dbPassword

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return nil, fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	// Server configuration
	cfg.Server.Port, err = intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, err
	}
	cfg.Server.RateLimitPerMinute, err = intEnv("RATE_LIMIT_PER_MINUTE", 100)
	if err != nil {
		return nil, err
	}
	cfg.Server.SecureCookies = os.Getenv("COOKIE_SECURE") != "false"

	// Logging configuration
	cfg.Logging.Level = stringEnv("LOG_LEVEL", "info")

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// JWT configuration
	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}
	cfg.JWT.Secret = jwtSecret

	cfg.JWT.AccessTokenExpiry, err = durationEnv("JWT_ACCESS_TOKEN_EXPIRY", time.Hour)
	if err != nil {
		return nil, err
	}
	cfg.JWT.RefreshTokenExpiry, err = durationEnv("JWT_REFRESH_TOKEN_EXPIRY", 7*24*time.Hour)
	if err != nil {
		return nil, err
	}

	// Redis configuration
	cfg.Redis.Host = stringEnv("REDIS_HOST", "localhost")
	cfg.Redis.Port, err = intEnv("REDIS_PORT", 6379)
	if err != nil {
		return nil, err
	}
	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional
	cfg.Redis.DB, err = intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, err
	}

	// SMTP configuration
	cfg.SMTP.Host = stringEnv("SMTP_HOST", "localhost")
	cfg.SMTP.Port, err = intEnv("SMTP_PORT", 587)
	if err != nil {
		return nil, err
	}
	cfg.SMTP.Username = os.Getenv("SMTP_USERNAME") // optional
	cfg.SMTP.Password = os.Getenv("SMTP_PASSWORD") // optional
	cfg.SMTP.From = stringEnv("SMTP_FROM", "noreply@drivingschool.local")

	// Telegram notification endpoint (optional, notifications are dropped when unset)
	cfg.Telegram.NotifyURL = os.Getenv("TELEGRAM_NOTIFY_URL")
	cfg.Telegram.NotifyToken = os.Getenv("TELEGRAM_NOTIFY_TOKEN")
	cfg.Telegram.AdminChatID = os.Getenv("TELEGRAM_ADMIN_CHAT_ID")

	// Stripe configuration (optional)
	cfg.Stripe.SecretKey = os.Getenv("STRIPE_SECRET_KEY")
	cfg.Stripe.SuccessURL = stringEnv("STRIPE_SUCCESS_URL", "http://localhost:3000/payment/success")
	cfg.Stripe.CancelURL = stringEnv("STRIPE_CANCEL_URL", "http://localhost:3000/payment/cancel")
	cfg.Stripe.PaymentLinks = parsePaymentLinks(os.Getenv("STRIPE_PAYMENT_LINKS"))

	// Scheduler configuration
	cfg.Scheduler.ReminderCron = stringEnv("REMINDER_CRON", "0 18 * * *")
	cfg.Scheduler.Timezone = stringEnv("SCHEDULER_TIMEZONE", "UTC")
	if _, err := time.LoadLocation(cfg.Scheduler.Timezone); err != nil {
		return nil, fmt.Errorf("invalid SCHEDULER_TIMEZONE: %w", err)
	}

	cfg.Instructors.CacheTTL, err = durationEnv("INSTRUCTOR_CACHE_TTL", 5*time.Minute)
	if err != nil {
		return nil, err
	}

	cfg.Worker.MetricsPort, err = intEnv("WORKER_METRICS_PORT", 9091)
	if err != nil {
		return nil, err
	}
	cfg.Metrics.APIKey = os.Getenv("METRICS_API_KEY")

	return cfg, nil
}

// DSN returns the database connection string
func (c *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4&clientFoundRows=true",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.DBName,
	)
}

// parsePaymentLinks parses "id=url,id=url" pairs; malformed pairs are skipped
func parsePaymentLinks(raw string) map[string]string {
	links := map[string]string{}
	for _, pair := range strings.Split(raw, ",") {
		id, link, ok := strings.Cut(strings.TrimSpace(pair), "=")
		if !ok || strings.TrimSpace(id) == "" || strings.TrimSpace(link) == "" {
			continue
		}
		links[strings.TrimSpace(id)] = strings.TrimSpace(link)
	}
	return links
}

// RedisAddr returns the host:port address of Redis
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}

// parseOrigins splits a comma-separated origin list.
// An empty list allows all origins (development default).
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	origins := strings.Split(raw, ",")
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
