package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config represents the full application configuration surface.
type Config struct {
	Server    ServerConfig
	MongoDB   MongoDBConfig
	Auth      AuthConfig
	RateLimit RateLimitConfig
	Gateway   GatewayConfig
	Sheets    SheetsConfig
	Jobs      JobsConfig
}

// ServerConfig holds HTTP server related options.
type ServerConfig struct {
	Port           string
	AllowedOrigins []string
}

// MongoDBConfig holds settings for MongoDB.
type MongoDBConfig struct {
	URI    string
	DBName string
}

// AuthConfig holds token and OTP settings.
type AuthConfig struct {
	JWTSecret  string
	SessionTTL time.Duration
	OTPTTL     time.Duration
	OTPDigits  int
}

// RateLimitConfig holds the default per-organization limiter settings,
// applied when an organization record carries no override.
type RateLimitConfig struct {
	DefaultRPS   float64
	DefaultBurst int
}

// GatewayConfig contains credentials for the OTP delivery provider.
type GatewayConfig struct {
	BaseURL  string
	APIKey   string
	SenderID string
}

// SheetsConfig contains configuration for the bulk feed import source.
type SheetsConfig struct {
	CredentialsPath string
	SpreadsheetID   string
	ImportRange     string
}

// JobsConfig holds scheduler-related settings.
type JobsConfig struct {
	OTPPurgeSchedule    string
	UsageRollupSchedule string
}

// Load reads environment variables (optionally from the provided file) and
// materializes a Config instance.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, fmt.Errorf("failed loading env file %s: %w", envFile, err)
			}
		}
	} else {
		// Ignore the returned error here; missing .env files are acceptable when
		// configuration comes from the environment directly.
		_ = godotenv.Load()
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           getenvWithDefault("APP_PORT", "8080"),
			AllowedOrigins: []string{getenvWithDefault("CORS_ALLOWED_ORIGIN", "*")},
		},
		MongoDB: MongoDBConfig{
			URI:    getenvWithDefault("MONGODB_URI", "mongodb://localhost:27017"),
			DBName: getenvWithDefault("MONGODB_DB_NAME", "dairyfeed"),
		},
		Auth: AuthConfig{
			JWTSecret:  os.Getenv("JWT_SECRET"),
			SessionTTL: getenvDuration("SESSION_TTL", 12*time.Hour),
			OTPTTL:     getenvDuration("OTP_TTL", 5*time.Minute),
			OTPDigits:  getenvInt("OTP_DIGITS", 6),
		},
		RateLimit: RateLimitConfig{
			DefaultRPS:   getenvFloat("RATE_LIMIT_RPS", 5),
			DefaultBurst: getenvInt("RATE_LIMIT_BURST", 10),
		},
		Gateway: GatewayConfig{
			BaseURL:  getenvWithDefault("OTP_GATEWAY_URL", "https://api.smsgateway.example"),
			APIKey:   os.Getenv("OTP_GATEWAY_KEY"),
			SenderID: getenvWithDefault("OTP_SENDER_ID", "DAIRYFEED"),
		},
		Sheets: SheetsConfig{
			CredentialsPath: os.Getenv("GOOGLE_SHEETS_CREDENTIALS_PATH"),
			SpreadsheetID:   os.Getenv("GOOGLE_SHEET_FEEDS_ID"),
			ImportRange:     getenvWithDefault("GOOGLE_SHEET_FEEDS_RANGE", "Feeds!A2:T"),
		},
		Jobs: JobsConfig{
			OTPPurgeSchedule:    getenvWithDefault("OTP_PURGE_SCHEDULE", "0 3 * * *"),
			UsageRollupSchedule: getenvWithDefault("USAGE_ROLLUP_SCHEDULE", "30 0 * * *"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate ensures that required configuration fields are populated.
func (c *Config) Validate() error {
	if c == nil {
		return errors.New("config is nil")
	}

	if c.Server.Port == "" {
		return errors.New("APP_PORT must be provided")
	}

	if c.MongoDB.URI == "" {
		return errors.New("MONGODB_URI must be provided")
	}
	if c.MongoDB.DBName == "" {
		return errors.New("MONGODB_DB_NAME must be provided")
	}

	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be provided")
	}
	if c.Auth.OTPDigits < 4 || c.Auth.OTPDigits > 8 {
		return errors.New("OTP_DIGITS must be between 4 and 8")
	}

	if c.RateLimit.DefaultRPS <= 0 {
		return errors.New("RATE_LIMIT_RPS must be positive")
	}
	if c.RateLimit.DefaultBurst < 1 {
		return errors.New("RATE_LIMIT_BURST must be at least 1")
	}

	if c.Jobs.OTPPurgeSchedule == "" {
		return errors.New("OTP_PURGE_SCHEDULE must be provided")
	}
	if c.Jobs.UsageRollupSchedule == "" {
		return errors.New("USAGE_ROLLUP_SCHEDULE must be provided")
	}

	return nil
}

func getenvWithDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.Atoi(raw); err == nil {
			return v
		}
	}
	return fallback
}

func getenvFloat(key string, fallback float64) float64 {
	if raw := os.Getenv(key); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			return v
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if raw := os.Getenv(key); raw != "" {
		if v, err := time.ParseDuration(raw); err == nil {
			return v
		}
	}
	return fallback
}
