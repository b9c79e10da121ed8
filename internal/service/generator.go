package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/metrics"
	"github.com/pageza/recipegen/backend/internal/types"
	"go.uber.org/zap"
)

// GeneratorConfig holds the outbound webhook settings
type GeneratorConfig struct {
	WebhookURL   string
	Timeout      time.Duration
	MaxBodyBytes int64

	RateLimitEnabled   bool
	SessionAuthEnabled bool
}

// GeneratorService forwards generation requests to the recipe webhook and
// normalises whatever comes back into a fixed recipe shape.
type GeneratorService struct {
	cfg      GeneratorConfig
	client   *http.Client
	archiver PayloadArchiver
	metrics  *metrics.Metrics
	logger   *zap.Logger
}

type GeneratorOption func(*GeneratorService)

func WithHTTPClient(client *http.Client) GeneratorOption {
	return func(s *GeneratorService) { s.client = client }
}

func WithArchiver(archiver PayloadArchiver) GeneratorOption {
	return func(s *GeneratorService) { s.archiver = archiver }
}

func WithMetrics(m *metrics.Metrics) GeneratorOption {
	return func(s *GeneratorService) { s.metrics = m }
}

// NewGeneratorService creates a new GeneratorService instance
func NewGeneratorService(cfg GeneratorConfig, logger *zap.Logger, opts ...GeneratorOption) *GeneratorService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = 1 << 20
	}
	s := &GeneratorService{
		cfg:    cfg,
		client: &http.Client{},
		logger: logger.Named("generator"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Generate validates the request, calls the webhook exactly once and returns
// the normalised recipe
func (s *GeneratorService) Generate(ctx context.Context, req types.GenerateRequest) (*types.GeneratedRecipe, error) {
	start := time.Now()
	recipe, called, err := s.generate(ctx, req)

	var elapsed time.Duration
	if called {
		elapsed = time.Since(start)
	}
	if err != nil {
		s.metrics.RecordGeneration(string(apperrors.KindOf(err)), elapsed)
		return nil, err
	}
	s.metrics.RecordGeneration("success", elapsed)
	return recipe, nil
}

func (s *GeneratorService) generate(ctx context.Context, req types.GenerateRequest) (*types.GeneratedRecipe, bool, error) {
	payload, err := cleanGenerateRequest(req)
	if err != nil {
		return nil, false, err
	}
	if s.cfg.WebhookURL == "" {
		return nil, false, apperrors.Configuration("recipe generation webhook URL is not configured")
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.KindInternal, "failed to encode generation request", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.cfg.WebhookURL, bytes.NewReader(jsonData))
	if err != nil {
		return nil, false, apperrors.Wrap(apperrors.KindConfiguration, "invalid recipe generation webhook URL", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		s.logger.Error("webhook request failed", zap.Error(err))
		return nil, true, apperrors.FromTransport(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, s.cfg.MaxBodyBytes+1))
	if err != nil {
		s.logger.Error("failed to read webhook response", zap.Error(err))
		return nil, true, apperrors.FromTransport(err)
	}
	if int64(len(body)) > s.cfg.MaxBodyBytes {
		return nil, true, apperrors.Upstream(fmt.Sprintf("recipe generator response exceeds %d bytes", s.cfg.MaxBodyBytes), nil)
	}

	s.logger.Debug("raw webhook response",
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", body),
	)

	if len(bytes.TrimSpace(body)) == 0 {
		return nil, true, apperrors.UpstreamEmptyResponse("recipe generator returned an empty response")
	}

	var decoded interface{}
	if err := json.Unmarshal(body, &decoded); err != nil {
		s.logger.Error("invalid JSON from webhook",
			zap.Int("status", resp.StatusCode),
			zap.ByteString("body", body),
			zap.Error(err),
		)
		s.archive(ctx, body)
		return nil, true, apperrors.UpstreamParse("invalid JSON response from recipe generator", err)
	}

	fields := RootObject(decoded)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := normalizeText(firstPresent(fields, "error"), "")
		if message == "" {
			message = fmt.Sprintf("recipe generator error: %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
		}
		s.logger.Warn("webhook returned error status",
			zap.Int("status", resp.StatusCode),
			zap.String("message", message),
		)
		return nil, true, apperrors.Upstream(message, nil)
	}

	recipe := Normalize(fields, payload.Diet)
	s.logger.Info("recipe generated",
		zap.String("title", recipe.Title),
		zap.Int("steps", len(recipe.Steps)),
	)
	return &recipe, true, nil
}

func (s *GeneratorService) archive(ctx context.Context, body []byte) {
	if s.archiver == nil {
		return
	}
	// the request deadline may already be spent
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()

	key, err := s.archiver.Archive(ctx, body)
	if err != nil {
		s.logger.Warn("failed to archive webhook payload", zap.Error(err))
		return
	}
	s.logger.Info("archived webhook payload", zap.String("key", key))
}

// Diagnostics returns a fixed sample recipe and which optional features are
// configured. It never calls the webhook.
func (s *GeneratorService) Diagnostics() types.GenerationDiagnostics {
	return types.GenerationDiagnostics{
		TestRecipe: types.GeneratedRecipe{
			Title:    "Test Pasta",
			PrepTime: "20 minutes",
			Servings: 2,
			Steps:    []string{"Boil water", "Add pasta", "Cook for 8 minutes"},
		},
		Environment: types.DiagnosticsEnvironment{
			WebhookURLConfigured: s.cfg.WebhookURL != "",
			RateLimitEnabled:     s.cfg.RateLimitEnabled,
			SessionAuthEnabled:   s.cfg.SessionAuthEnabled,
		},
	}
}

// cleanGenerateRequest trims every value and drops blank ingredients
func cleanGenerateRequest(req types.GenerateRequest) (types.GenerateRequest, error) {
	ingredients := make([]string, 0, len(req.Ingredients))
	for _, ingredient := range req.Ingredients {
		if trimmed := strings.TrimSpace(ingredient); trimmed != "" {
			ingredients = append(ingredients, trimmed)
		}
	}
	if len(ingredients) == 0 {
		return types.GenerateRequest{}, apperrors.Validation("Please provide at least one ingredient")
	}

	diet := strings.TrimSpace(req.Diet)
	if diet == "" {
		return types.GenerateRequest{}, apperrors.Validation("Please provide a valid diet preference")
	}

	return types.GenerateRequest{Ingredients: ingredients, Diet: diet}, nil
}
