package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const defaultJWTSecret = "change-this-secret-in-production"

type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	CORS      CORSConfig
	RateLimit RateLimitConfig
	Redis     RedisConfig
	Email     EmailConfig
	Notifier  NotifierConfig
	Printer   PrinterConfig
	Shop      ShopConfig
	Admin     AdminConfig
	Log       LogConfig
}

type AppConfig struct {
	Name            string
	Env             string
	Port            string
	Debug           bool
	ShutdownTimeout time.Duration
}

type DatabaseConfig struct {
	Driver       string // postgres or sqlite
	Host         string
	Port         string
	Name         string
	User         string
	Password     string
	SSLMode      string
	Timezone     string
	SQLitePath   string
	MaxIdleConns int
	MaxOpenConns int
}

type JWTConfig struct {
	Secret             string
	ExpiryHours        time.Duration
	RefreshExpiryHours time.Duration
}

type CORSConfig struct {
	AllowedOrigins []string
	AllowedMethods []string
	AllowedHeaders []string
}

type RateLimitConfig struct {
	Requests int
	Duration int // seconds
}

type RedisConfig struct {
	URL       string
	Address   string
	Password  string
	DB        int
	Namespace string
}

type EmailConfig struct {
	SMTPHost     string
	SMTPPort     int
	SMTPUsername string
	SMTPPassword string
	FromName     string
	FromEmail    string
}

// NotifierConfig controls the invoice dispatcher
type NotifierConfig struct {
	Enabled      bool
	PollInterval time.Duration
	BatchSize    int
	MaxAttempts  int
	BaseBackoff  time.Duration
	MaxBackoff   time.Duration
	SendRetries  uint64
	LockTTL      time.Duration
}

type PrinterConfig struct {
	Type    string
	USBPath string
	Address string
	Width   int
}

type ShopConfig struct {
	Name    string
	Address string
	Phone   string
	TaxID   string
	// Denominations seeded into an empty till, and how many of each
	Denominations            []int64
	DefaultDenominationCount int
}

type AdminConfig struct {
	Name     string
	Email    string
	Password string
}

type LogConfig struct {
	Level  string
	Format string
}

// Load reads .env and the environment into a Config.
func Load() *Config {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		log.Warn().Err(err).Msg(".env file not found, using environment variables")
	}

	return FromViper(viper.GetViper())
}

// SetDefaults registers every default on v
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_NAME", "posbilling")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("APP_DEBUG", true)
	v.SetDefault("APP_SHUTDOWN_TIMEOUT_SECONDS", 15)

	v.SetDefault("DB_DRIVER", "postgres")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_NAME", "posbilling")
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_TIMEZONE", "UTC")
	v.SetDefault("DB_SQLITE_PATH", "posbilling.db")
	v.SetDefault("DB_MAX_IDLE_CONNS", 10)
	v.SetDefault("DB_MAX_OPEN_CONNS", 50)

	v.SetDefault("JWT_SECRET", defaultJWTSecret)
	v.SetDefault("JWT_EXPIRY_HOURS", 12)
	v.SetDefault("JWT_REFRESH_EXPIRY_HOURS", 168)

	v.SetDefault("CORS_ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("RATE_LIMIT_REQUESTS", 120)
	v.SetDefault("RATE_LIMIT_DURATION", 60)

	v.SetDefault("REDIS_NAMESPACE", "pos")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_FROM_NAME", "Point of Sale")
	v.SetDefault("SMTP_FROM_EMAIL", "no-reply@localhost")

	v.SetDefault("NOTIFIER_ENABLED", true)
	v.SetDefault("NOTIFIER_POLL_INTERVAL_SECONDS", 5)
	v.SetDefault("NOTIFIER_BATCH_SIZE", 20)
	v.SetDefault("NOTIFIER_MAX_ATTEMPTS", 5)
	v.SetDefault("NOTIFIER_BASE_BACKOFF_SECONDS", 30)
	v.SetDefault("NOTIFIER_MAX_BACKOFF_SECONDS", 3600)
	v.SetDefault("NOTIFIER_SEND_RETRIES", 2)
	v.SetDefault("NOTIFIER_LOCK_TTL_SECONDS", 60)

	v.SetDefault("PRINTER_TYPE", "none")
	v.SetDefault("PRINTER_WIDTH", 32)

	v.SetDefault("SHOP_NAME", "Point of Sale")
	v.SetDefault("SHOP_DENOMINATIONS", "500,50,20,10,5,2,1")
	v.SetDefault("SHOP_DEFAULT_DENOMINATION_COUNT", 0)

	v.SetDefault("ADMIN_NAME", "Shop Admin")

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// FromViper builds a Config from v, applying defaults first.
func FromViper(v *viper.Viper) *Config {
	SetDefaults(v)

	return &Config{
		App: AppConfig{
			Name:            v.GetString("APP_NAME"),
			Env:             v.GetString("APP_ENV"),
			Port:            v.GetString("APP_PORT"),
			Debug:           v.GetBool("APP_DEBUG"),
			ShutdownTimeout: seconds(v, "APP_SHUTDOWN_TIMEOUT_SECONDS"),
		},
		Database: DatabaseConfig{
			Driver:       strings.ToLower(v.GetString("DB_DRIVER")),
			Host:         v.GetString("DB_HOST"),
			Port:         v.GetString("DB_PORT"),
			Name:         v.GetString("DB_NAME"),
			User:         v.GetString("DB_USER"),
			Password:     v.GetString("DB_PASSWORD"),
			SSLMode:      v.GetString("DB_SSL_MODE"),
			Timezone:     v.GetString("DB_TIMEZONE"),
			SQLitePath:   v.GetString("DB_SQLITE_PATH"),
			MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
			MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		},
		JWT: JWTConfig{
			Secret:             v.GetString("JWT_SECRET"),
			ExpiryHours:        time.Duration(v.GetInt("JWT_EXPIRY_HOURS")) * time.Hour,
			RefreshExpiryHours: time.Duration(v.GetInt("JWT_REFRESH_EXPIRY_HOURS")) * time.Hour,
		},
		CORS: CORSConfig{
			AllowedOrigins: csv(v.GetString("CORS_ALLOWED_ORIGINS")),
			AllowedMethods: csv(v.GetString("CORS_ALLOWED_METHODS")),
			AllowedHeaders: csv(v.GetString("CORS_ALLOWED_HEADERS")),
		},
		RateLimit: RateLimitConfig{
			Requests: v.GetInt("RATE_LIMIT_REQUESTS"),
			Duration: v.GetInt("RATE_LIMIT_DURATION"),
		},
		Redis: RedisConfig{
			URL:       v.GetString("REDIS_URL"),
			Address:   v.GetString("REDIS_ADDRESS"),
			Password:  v.GetString("REDIS_PASSWORD"),
			DB:        v.GetInt("REDIS_DB"),
			Namespace: v.GetString("REDIS_NAMESPACE"),
		},
		Email: EmailConfig{
			SMTPHost:     v.GetString("SMTP_HOST"),
			SMTPPort:     v.GetInt("SMTP_PORT"),
			SMTPUsername: v.GetString("SMTP_USERNAME"),
			SMTPPassword: v.GetString("SMTP_PASSWORD"),
			FromName:     v.GetString("SMTP_FROM_NAME"),
			FromEmail:    v.GetString("SMTP_FROM_EMAIL"),
		},
		Notifier: NotifierConfig{
			Enabled:      v.GetBool("NOTIFIER_ENABLED"),
			PollInterval: seconds(v, "NOTIFIER_POLL_INTERVAL_SECONDS"),
			BatchSize:    v.GetInt("NOTIFIER_BATCH_SIZE"),
			MaxAttempts:  v.GetInt("NOTIFIER_MAX_ATTEMPTS"),
			BaseBackoff:  seconds(v, "NOTIFIER_BASE_BACKOFF_SECONDS"),
			MaxBackoff:   seconds(v, "NOTIFIER_MAX_BACKOFF_SECONDS"),
			SendRetries:  v.GetUint64("NOTIFIER_SEND_RETRIES"),
			LockTTL:      seconds(v, "NOTIFIER_LOCK_TTL_SECONDS"),
		},
		Printer: PrinterConfig{
			Type:    v.GetString("PRINTER_TYPE"),
			USBPath: v.GetString("PRINTER_USB_PATH"),
			Address: v.GetString("PRINTER_ADDRESS"),
			Width:   v.GetInt("PRINTER_WIDTH"),
		},
		Shop: ShopConfig{
			Name:                     v.GetString("SHOP_NAME"),
			Address:                  v.GetString("SHOP_ADDRESS"),
			Phone:                    v.GetString("SHOP_PHONE"),
			TaxID:                    v.GetString("SHOP_TAX_ID"),
			Denominations:            int64List(v.GetString("SHOP_DENOMINATIONS")),
			DefaultDenominationCount: v.GetInt("SHOP_DEFAULT_DENOMINATION_COUNT"),
		},
		Admin: AdminConfig{
			Name:     v.GetString("ADMIN_NAME"),
			Email:    v.GetString("ADMIN_EMAIL"),
			Password: v.GetString("ADMIN_PASSWORD"),
		},
		Log: LogConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
	}
}

// Validate rejects settings the service cannot start with
func (c *Config) Validate() error {
	var errs []error
	if c.Database.Driver != "postgres" && c.Database.Driver != "sqlite" {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be postgres or sqlite, got %q", c.Database.Driver))
	}
	if c.App.Env == "production" && (c.JWT.Secret == "" || c.JWT.Secret == defaultJWTSecret) {
		errs = append(errs, errors.New("JWT_SECRET must be set in production"))
	}
	if len(c.Shop.Denominations) == 0 {
		errs = append(errs, errors.New("SHOP_DENOMINATIONS must list at least one positive value"))
	}
	if c.Shop.DefaultDenominationCount < 0 {
		errs = append(errs, errors.New("SHOP_DEFAULT_DENOMINATION_COUNT must not be negative"))
	}
	if c.Notifier.MaxAttempts < 1 {
		errs = append(errs, errors.New("NOTIFIER_MAX_ATTEMPTS must be at least 1"))
	}
	return errors.Join(errs...)
}

// IsProduction reports whether the service runs in production
func (c *AppConfig) IsProduction() bool {
	return c.Env == "production"
}

func (c *DatabaseConfig) DSN() string {
	return "host=" + c.Host +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" port=" + c.Port +
		" sslmode=" + c.SSLMode +
		" TimeZone=" + c.Timezone
}

func seconds(v *viper.Viper, key string) time.Duration {
	return time.Duration(v.GetInt(key)) * time.Second
}

func csv(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func int64List(raw string) []int64 {
	var out []int64
	for _, part := range csv(raw) {
		n, err := strconv.ParseInt(part, 10, 64)
		if err != nil || n <= 0 {
			log.Warn().Str("value", part).Msg("ignoring invalid denomination")
			continue
		}
		out = append(out, n)
	}
	return out
}
