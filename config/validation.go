package config

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/pageza/recipegen/backend/internal/apperrors"
)

// ValidationError represents a configuration validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found in one pass
type ValidationErrors []ValidationError

func (v ValidationErrors) Error() string {
	msgs := make([]string, 0, len(v))
	for _, e := range v {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// ValidateConfig checks the configuration and returns a configuration error
// listing every offending field
func ValidateConfig(cfg *Config) error {
	var errs ValidationErrors

	if cfg.WebhookURL == "" {
		errs = append(errs, ValidationError{"RECIPE_WEBHOOK_URL", "recipe generation webhook URL is not configured"})
	} else if u, err := url.Parse(cfg.WebhookURL); err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		errs = append(errs, ValidationError{"RECIPE_WEBHOOK_URL", "must be an absolute http(s) URL"})
	}

	if cfg.DatabaseURL == "" {
		errs = append(errs, ValidationError{"DATABASE_URL", "document store connection string is not configured"})
	}

	if port, err := strconv.Atoi(cfg.ServerPort); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, ValidationError{"SERVER_PORT", fmt.Sprintf("invalid port %q", cfg.ServerPort)})
	}

	if cfg.WebhookTimeout <= 0 {
		errs = append(errs, ValidationError{"WEBHOOK_TIMEOUT", "must be a positive duration"})
	}
	if cfg.WebhookMaxBodyBytes <= 0 {
		errs = append(errs, ValidationError{"WEBHOOK_MAX_BODY_BYTES", "must be positive"})
	}

	if cfg.RateLimitEnabled() {
		if cfg.GenerateRateLimit <= 0 {
			errs = append(errs, ValidationError{"GENERATE_RATE_LIMIT", "must be positive when REDIS_URL is set"})
		}
		if cfg.GenerateRateWindow <= 0 {
			errs = append(errs, ValidationError{"GENERATE_RATE_WINDOW", "must be a positive duration when REDIS_URL is set"})
		}
	}

	if cfg.LogFormat != "json" && cfg.LogFormat != "console" {
		errs = append(errs, ValidationError{"LOG_FORMAT", "must be json or console"})
	}

	if len(errs) > 0 {
		return apperrors.Wrap(apperrors.KindConfiguration, "configuration validation failed", errs)
	}
	return nil
}
