package config

import (
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server       ServerConfig
	Database     DatabaseConfig
	JWT          JWTConfig
	Payment      PaymentConfig
	LiberecMpesa LiberecMpesaConfig
	Redis        RedisConfig
	Mail         MailConfig
	Scheduler    SchedulerConfig
}

type ServerConfig struct {
	Port         string
	Env          string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

type DatabaseConfig struct {
	Driver          string // mysql | postgres | sqlite
	DSN             string
	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

type JWTConfig struct {
	AccessSecret string
	AccessExpiry time.Duration
	Issuer       string
}

type PaymentConfig struct {
	WebhookSecret string
	// PaymentExpiry is how long a payment may stay pending before the sweeper fails it.
	PaymentExpiry time.Duration
	Currency      string
}

// LiberecMpesaConfig for M-Pesa STK via TheLiberec Card API. Empty Email disables STK push.
type LiberecMpesaConfig struct {
	BaseURL        string
	Email          string
	Password       string
	WebhookBaseURL string // callback will be WebhookBaseURL + /api/v1/webhooks/mpesa
}

// RedisConfig is optional; with no Addr the field-config cache stays in process.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type MailConfig struct {
	Host       string
	Port       int
	Username   string
	Password   string
	Sender     string
	AdminEmail string
}

type SchedulerConfig struct {
	Enabled      bool
	SweepSpec    string
	ReminderSpec string
}

// Load reads .env (if present) and the process environment on top of defaults.
func Load() *Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	}
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8099"),
			Env:          getEnv("APP_ENV", "development"),
			ReadTimeout:  getDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Driver:          getEnv("DB_DRIVER", "mysql"),
			DSN:             getEnv("DB_DSN", "bellissimo:bellissimo@tcp(localhost:3306)/bellissimo?charset=utf8mb4&parseTime=True&loc=Local"),
			MaxIdleConns:    getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns:    getInt("DB_MAX_OPEN_CONNS", 100),
			ConnMaxLifetime: getDuration("DB_CONN_MAX_LIFETIME", time.Hour),
		},
		JWT: JWTConfig{
			AccessSecret: getEnv("JWT_ACCESS_SECRET", "change-me-in-production"),
			AccessExpiry: getDuration("JWT_ACCESS_EXPIRY", 15*time.Minute),
			Issuer:       getEnv("JWT_ISSUER", "bellissimo"),
		},
		Payment: PaymentConfig{
			WebhookSecret: getEnv("PAYMENT_WEBHOOK_SECRET", ""),
			PaymentExpiry: getDuration("PAYMENT_EXPIRY", 30*time.Minute),
			Currency:      getEnv("PAYMENT_CURRENCY", "KES"),
		},
		LiberecMpesa: LiberecMpesaConfig{
			BaseURL:        getEnv("MPESA_BASE_URL", "https://card-api.theliberec.com"),
			Email:          getEnv("MPESA_EMAIL", ""),
			Password:       getEnv("MPESA_PASSWORD", ""),
			WebhookBaseURL: getEnv("MPESA_WEBHOOK_BASE_URL", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getInt("REDIS_DB", 0),
			TTL:      getDuration("FIELD_CONFIG_CACHE_TTL", 10*time.Minute),
		},
		Mail: MailConfig{
			Host:       getEnv("SMTP_HOST", ""),
			Port:       getInt("SMTP_PORT", 465),
			Username:   getEnv("SMTP_USER", ""),
			Password:   getEnv("SMTP_PASS", ""),
			Sender:     getEnv("SMTP_SENDER", "no-reply@bellissimo.co.ke"),
			AdminEmail: getEnv("ADMIN_EMAIL", ""),
		},
		Scheduler: SchedulerConfig{
			Enabled:      getBool("SCHEDULER_ENABLED", true),
			SweepSpec:    getEnv("SCHEDULER_SWEEP_SPEC", "@every 5m"),
			ReminderSpec: getEnv("SCHEDULER_REMINDER_SPEC", "0 8 * * *"),
		},
	}
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil {
		return fallback
	}
	return v
}
