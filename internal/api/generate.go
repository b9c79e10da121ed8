package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/metrics"
	"github.com/pageza/recipegen/backend/internal/middleware"
	"github.com/pageza/recipegen/backend/internal/service"
	"github.com/pageza/recipegen/backend/internal/types"
	"go.uber.org/zap"
)

// GenerateHandler serves recipe generation and the caller's rate limit budget
type GenerateHandler struct {
	generator service.IGeneratorService
	sessions  middleware.TokenValidator
	limiter   middleware.Limiter
	metrics   *metrics.Metrics
	logger    *zap.Logger
}

// NewGenerateHandler creates a new generate handler. sessions and limiter may be nil.
func NewGenerateHandler(generator service.IGeneratorService, sessions middleware.TokenValidator, limiter middleware.Limiter, m *metrics.Metrics, logger *zap.Logger) *GenerateHandler {
	return &GenerateHandler{
		generator: generator,
		sessions:  sessions,
		limiter:   limiter,
		metrics:   m,
		logger:    logger,
	}
}

// RegisterRoutes registers the generation routes
func (h *GenerateHandler) RegisterRoutes(router *gin.RouterGroup) {
	var session []gin.HandlerFunc
	if h.sessions != nil {
		session = append(session, middleware.OptionalAuthMiddleware(h.sessions))
	}

	generate := session
	if h.limiter != nil {
		generate = withHandlers(session, middleware.RateLimitMiddleware(h.limiter, h.metrics, h.logger))
	}

	router.POST("/generate", withHandlers(generate, h.Generate)...)
	router.GET("/generate", h.Diagnostics)
	router.GET("/rate-limits/generate", withHandlers(session, h.RateLimitStatus)...)
}

// Generate handles POST /api/generate
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req types.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Validation("invalid request body"))
		return
	}

	recipe, err := h.generator.Generate(c.Request.Context(), req)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// Diagnostics handles GET /api/generate
func (h *GenerateHandler) Diagnostics(c *gin.Context) {
	c.JSON(http.StatusOK, h.generator.Diagnostics())
}

// RateLimitStatus reports the caller's remaining generation budget
func (h *GenerateHandler) RateLimitStatus(c *gin.Context) {
	if h.limiter == nil {
		c.JSON(http.StatusOK, gin.H{"enabled": false})
		return
	}

	status, err := h.limiter.Status(c.Request.Context(), middleware.RateLimitIdentity(c))
	if err != nil {
		h.logger.Warn("failed to read rate limit status", zap.Error(err))
		middleware.Abort(c, apperrors.Wrap(apperrors.KindInternal, "failed to get rate limit status", err))
		return
	}

	c.JSON(http.StatusOK, status)
}
