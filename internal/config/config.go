package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Logger    LoggerConfig
	Auth      AuthConfig
	Redis     RedisConfig
	OTP       OTPConfig
	Mail      MailConfig
	Templates TemplateConfig
	S3        S3Config
	Push      PushConfig
	Payment   PaymentConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds server-related configuration.
type ServerConfig struct {
	Host string
	Port int
	// Mode is the gin mode: debug, release or test.
	Mode string
}

// DatabaseConfig holds database-related configuration.
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	Database        string
	MaxConnections  int
	MinConnections  int
	MaxConnLifetime int // seconds
}

// LoggerConfig holds logger-related configuration.
type LoggerConfig struct {
	Level  string
	Format string // "json" or "console"
}

// AuthConfig holds authentication configuration for admin routes.
type AuthConfig struct {
	APIKey string
}

// RedisConfig holds the Redis connection used by the redis OTP store.
type RedisConfig struct {
	URL string
}

// OTP store backends.
const (
	OTPStorePostgres = "postgres"
	OTPStoreRedis    = "redis"
)

// OTPConfig controls one-time password issuance.
type OTPConfig struct {
	Store         string
	TTL           time.Duration
	EnforceExpiry bool
}

// MailConfig holds SMTP settings.
type MailConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	// Disabled skips SMTP delivery and only logs outgoing mail.
	Disabled bool
}

// TemplateConfig controls where mail templates are read from.
// Embedded defaults are used when Dir is empty and S3 is disabled.
type TemplateConfig struct {
	Dir string
}

// S3Config holds AWS S3 configuration for mail templates.
type S3Config struct {
	Enabled bool
	Bucket  string
	Region  string
	Prefix  string // Path prefix within bucket (e.g., "templates/")
}

// PushConfig holds Expo push settings.
type PushConfig struct {
	URL         string
	AccessToken string
	BatchSize   int
}

// PaymentConfig is injected into the order workflow and the gateways.
type PaymentConfig struct {
	PhonePe  PhonePeConfig
	Razorpay RazorpayConfig
	// SuccessURL and FailureURL are the storefront pages the gateway callback
	// redirects to. When empty the callback answers with JSON.
	SuccessURL string
	FailureURL string
	// AdminUserID receives a push notification for every cash-on-delivery order.
	AdminUserID string
}

// PhonePeConfig holds PhonePe merchant settings.
type PhonePeConfig struct {
	Enabled     bool
	BaseURL     string
	MerchantID  string
	SaltKey     string
	KeyIndex    int
	RedirectURL string
}

// RazorpayConfig holds Razorpay API credentials.
type RazorpayConfig struct {
	Enabled   bool
	KeyID     string
	KeySecret string
	Currency  string
}

// RateLimitConfig configures the per-client limiter on OTP routes.
type RateLimitConfig struct {
	RequestsPerSecond float64
	Burst             int
}

// LoadDotEnv loads variables from an optional .env file. Variables already
// present in the process environment are left untouched.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	v := newViper()

	cfg := &Config{
		Server: ServerConfig{
			Host: v.GetString("SERVER_HOST"),
			Port: v.GetInt("SERVER_PORT"),
			Mode: v.GetString("GIN_MODE"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("DB_HOST"),
			Port:            v.GetInt("DB_PORT"),
			User:            v.GetString("DB_USER"),
			Password:        v.GetString("DB_PASSWORD"),
			Database:        v.GetString("DB_NAME"),
			MaxConnections:  v.GetInt("DB_MAX_CONNECTIONS"),
			MinConnections:  v.GetInt("DB_MIN_CONNECTIONS"),
			MaxConnLifetime: v.GetInt("DB_MAX_CONN_LIFETIME"),
		},
		Logger: LoggerConfig{
			Level:  v.GetString("LOG_LEVEL"),
			Format: v.GetString("LOG_FORMAT"),
		},
		Auth: AuthConfig{
			APIKey: v.GetString("API_KEY"),
		},
		Redis: RedisConfig{
			URL: v.GetString("REDIS_URL"),
		},
		OTP: OTPConfig{
			Store:         v.GetString("OTP_STORE"),
			TTL:           v.GetDuration("OTP_TTL"),
			EnforceExpiry: v.GetBool("OTP_ENFORCE_EXPIRY"),
		},
		Mail: MailConfig{
			Host:     v.GetString("SMTP_HOST"),
			Port:     v.GetInt("SMTP_PORT"),
			Username: v.GetString("SMTP_USERNAME"),
			Password: v.GetString("SMTP_PASSWORD"),
			From:     v.GetString("MAIL_FROM"),
			Disabled: v.GetBool("MAIL_DISABLED"),
		},
		Templates: TemplateConfig{
			Dir: v.GetString("TEMPLATE_DIR"),
		},
		S3: S3Config{
			Enabled: v.GetBool("S3_ENABLED"),
			Bucket:  v.GetString("S3_BUCKET"),
			Region:  v.GetString("S3_REGION"),
			Prefix:  v.GetString("S3_PREFIX"),
		},
		Push: PushConfig{
			URL:         v.GetString("EXPO_PUSH_URL"),
			AccessToken: v.GetString("EXPO_ACCESS_TOKEN"),
			BatchSize:   v.GetInt("EXPO_BATCH_SIZE"),
		},
		Payment: PaymentConfig{
			PhonePe: PhonePeConfig{
				Enabled:     v.GetBool("PHONEPE_ENABLED"),
				BaseURL:     v.GetString("PHONEPE_BASE_URL"),
				MerchantID:  v.GetString("PHONEPE_MERCHANT_ID"),
				SaltKey:     v.GetString("PHONEPE_SALT_KEY"),
				KeyIndex:    v.GetInt("PHONEPE_KEY_INDEX"),
				RedirectURL: v.GetString("PHONEPE_REDIRECT_URL"),
			},
			Razorpay: RazorpayConfig{
				Enabled:   v.GetBool("RAZORPAY_ENABLED"),
				KeyID:     v.GetString("RAZORPAY_KEY_ID"),
				KeySecret: v.GetString("RAZORPAY_KEY_SECRET"),
				Currency:  v.GetString("RAZORPAY_CURRENCY"),
			},
			SuccessURL:  v.GetString("PAYMENT_SUCCESS_URL"),
			FailureURL:  v.GetString("PAYMENT_FAILURE_URL"),
			AdminUserID: v.GetString("ADMIN_USER_ID"),
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: v.GetFloat64("RATE_LIMIT_RPS"),
			Burst:             v.GetInt("RATE_LIMIT_BURST"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()
	v.AutomaticEnv()

	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", 5000)
	v.SetDefault("GIN_MODE", "release")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "")
	v.SetDefault("DB_NAME", "quickcart")
	v.SetDefault("DB_MAX_CONNECTIONS", 25)
	v.SetDefault("DB_MIN_CONNECTIONS", 5)
	v.SetDefault("DB_MAX_CONN_LIFETIME", 300)

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")

	v.SetDefault("OTP_STORE", OTPStorePostgres)
	v.SetDefault("OTP_TTL", 5*time.Minute)
	v.SetDefault("OTP_ENFORCE_EXPIRY", true)

	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("MAIL_DISABLED", false)

	v.SetDefault("S3_ENABLED", false)
	v.SetDefault("S3_REGION", "us-east-1")
	v.SetDefault("S3_PREFIX", "templates/")

	v.SetDefault("EXPO_PUSH_URL", "https://exp.host/--/api/v2/push/send")
	v.SetDefault("EXPO_BATCH_SIZE", 100)

	v.SetDefault("PHONEPE_ENABLED", false)
	v.SetDefault("PHONEPE_BASE_URL", "https://api-preprod.phonepe.com/apis/pg-sandbox")
	v.SetDefault("PHONEPE_KEY_INDEX", 1)
	v.SetDefault("PHONEPE_REDIRECT_URL", "http://localhost:5000/api/shop/order/status")

	v.SetDefault("RAZORPAY_ENABLED", false)
	v.SetDefault("RAZORPAY_CURRENCY", "INR")

	v.SetDefault("RATE_LIMIT_RPS", 1.0)
	v.SetDefault("RATE_LIMIT_BURST", 5)

	return v
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Database.Host == "" {
		return fmt.Errorf("database host is required")
	}

	if c.Database.Port < 1 || c.Database.Port > 65535 {
		return fmt.Errorf("invalid database port: %d", c.Database.Port)
	}

	if c.Database.User == "" {
		return fmt.Errorf("database user is required")
	}

	if c.Database.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if c.Database.MaxConnections < 1 {
		return fmt.Errorf("database max connections must be at least 1")
	}

	if c.Database.MinConnections < 1 {
		return fmt.Errorf("database min connections must be at least 1")
	}

	if c.Database.MinConnections > c.Database.MaxConnections {
		return fmt.Errorf("database min connections cannot exceed max connections")
	}

	if c.Auth.APIKey == "" {
		return fmt.Errorf("API key is required")
	}

	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLogLevels[c.Logger.Level] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.Logger.Level)
	}

	if c.Logger.Format != "json" && c.Logger.Format != "console" {
		return fmt.Errorf("invalid log format: %s (must be json or console)", c.Logger.Format)
	}

	switch c.OTP.Store {
	case OTPStorePostgres:
	case OTPStoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("redis URL is required when the OTP store is redis")
		}
	default:
		return fmt.Errorf("invalid OTP store: %s (must be postgres or redis)", c.OTP.Store)
	}

	if c.OTP.TTL <= 0 {
		return fmt.Errorf("OTP TTL must be positive")
	}

	if !c.Mail.Disabled && c.Mail.From == "" {
		return fmt.Errorf("mail sender address is required")
	}

	if c.S3.Enabled {
		if c.S3.Bucket == "" {
			return fmt.Errorf("S3 bucket is required when S3 is enabled")
		}
		if c.S3.Region == "" {
			return fmt.Errorf("S3 region is required when S3 is enabled")
		}
	}

	if c.Push.BatchSize < 1 {
		return fmt.Errorf("push batch size must be at least 1")
	}

	if c.Payment.PhonePe.Enabled {
		if c.Payment.PhonePe.MerchantID == "" || c.Payment.PhonePe.SaltKey == "" {
			return fmt.Errorf("PhonePe merchant ID and salt key are required when PhonePe is enabled")
		}
	}

	if c.Payment.Razorpay.Enabled {
		if c.Payment.Razorpay.KeyID == "" || c.Payment.Razorpay.KeySecret == "" {
			return fmt.Errorf("Razorpay key ID and secret are required when Razorpay is enabled")
		}
	}

	if c.RateLimit.RequestsPerSecond <= 0 || c.RateLimit.Burst < 1 {
		return fmt.Errorf("rate limit must allow at least one request")
	}

	return nil
}

// ConnectionString returns the PostgreSQL connection string.
func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Database,
	)
}

// Address returns the server address.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
