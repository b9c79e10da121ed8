package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Environment Environment

	// Server configuration
	ServerHost      string
	ServerPort      string
	ShutdownTimeout time.Duration
	AllowedOrigins  []string

	// Recipe generation webhook
	WebhookURL          string
	WebhookTimeout      time.Duration
	WebhookMaxBodyBytes int64

	// Document store
	DatabaseURL       string
	DBMaxOpenConns    int
	DBMaxIdleConns    int
	DBConnMaxLifetime time.Duration

	// Redis backed rate limiting, disabled when RedisURL is empty
	RedisURL           string
	GenerateRateLimit  int
	GenerateRateWindow time.Duration

	// Session tokens issued by the magic-link provider, disabled when empty
	SessionJWTSecret string

	// S3 archive for upstream bodies that failed to decode, disabled when empty
	PayloadArchiveBucket string
	AWSRegion            string

	LogLevel  string
	LogFormat string
}

// Address returns the listen address for the HTTP server
func (c *Config) Address() string {
	return c.ServerHost + ":" + c.ServerPort
}

// SessionAuthEnabled reports whether saved-recipe endpoints require a session token
func (c *Config) SessionAuthEnabled() bool {
	return c.SessionJWTSecret != ""
}

// RateLimitEnabled reports whether generation requests are rate limited
func (c *Config) RateLimitEnabled() bool {
	return c.RedisURL != ""
}

// LoadConfig reads configuration from the process environment and Docker
// secrets, then validates it. Missing required values fail here rather than on
// the first request.
func LoadConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	setDefaults(v)

	// The webhook URL keeps the names used by earlier deployments
	_ = v.BindEnv("RECIPE_WEBHOOK_URL", "RECIPE_WEBHOOK_URL", "N8N_WEBHOOK_URL", "NEXT_PUBLIC_N8N_WEBHOOK_URL")

	cfg := &Config{
		Environment:          GetEnvironment(),
		ServerHost:           v.GetString("SERVER_HOST"),
		ServerPort:           v.GetString("SERVER_PORT"),
		ShutdownTimeout:      v.GetDuration("SHUTDOWN_TIMEOUT"),
		AllowedOrigins:       splitList(v.GetString("ALLOWED_ORIGINS")),
		WebhookURL:           strings.TrimSpace(v.GetString("RECIPE_WEBHOOK_URL")),
		WebhookTimeout:       v.GetDuration("WEBHOOK_TIMEOUT"),
		WebhookMaxBodyBytes:  v.GetInt64("WEBHOOK_MAX_BODY_BYTES"),
		DatabaseURL:          secretOrEnv(v, "DATABASE_URL", "database_url"),
		DBMaxOpenConns:       v.GetInt("DB_MAX_OPEN_CONNS"),
		DBMaxIdleConns:       v.GetInt("DB_MAX_IDLE_CONNS"),
		DBConnMaxLifetime:    v.GetDuration("DB_CONN_MAX_LIFETIME"),
		RedisURL:             secretOrEnv(v, "REDIS_URL", "redis_url"),
		GenerateRateLimit:    v.GetInt("GENERATE_RATE_LIMIT"),
		GenerateRateWindow:   v.GetDuration("GENERATE_RATE_WINDOW"),
		SessionJWTSecret:     secretOrEnv(v, "SESSION_JWT_SECRET", "session_jwt_secret"),
		PayloadArchiveBucket: v.GetString("PAYLOAD_ARCHIVE_BUCKET"),
		AWSRegion:            v.GetString("AWS_REGION"),
		LogLevel:             v.GetString("LOG_LEVEL"),
		LogFormat:            v.GetString("LOG_FORMAT"),
	}

	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_HOST", "0.0.0.0")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SHUTDOWN_TIMEOUT", "10s")
	v.SetDefault("ALLOWED_ORIGINS", "http://localhost:3000")
	v.SetDefault("WEBHOOK_TIMEOUT", "30s")
	v.SetDefault("WEBHOOK_MAX_BODY_BYTES", 1<<20)
	v.SetDefault("DB_MAX_OPEN_CONNS", 25)
	v.SetDefault("DB_MAX_IDLE_CONNS", 25)
	v.SetDefault("DB_CONN_MAX_LIFETIME", "5m")
	v.SetDefault("GENERATE_RATE_LIMIT", 20)
	v.SetDefault("GENERATE_RATE_WINDOW", "1h")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
}

// secretOrEnv prefers the environment variable and falls back to a Docker secret
func secretOrEnv(v *viper.Viper, key, secret string) string {
	if value := strings.TrimSpace(v.GetString(key)); value != "" {
		return value
	}
	return readSecret(secret)
}

// readSecret reads a Docker secret from the secrets directory
func readSecret(name string) string {
	secretsDir := os.Getenv("SECRETS_DIR")
	if secretsDir == "" {
		secretsDir = "/run/secrets"
	}
	if data, err := os.ReadFile(filepath.Join(secretsDir, name)); err == nil {
		return strings.TrimSpace(string(data))
	}
	return ""
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
