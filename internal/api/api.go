package api

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/internal/metrics"
	"github.com/pageza/recipegen/backend/internal/middleware"
	"github.com/pageza/recipegen/backend/internal/service"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Dependencies are the collaborators the HTTP layer is built from. Sessions
// and Limiter are nil when the matching feature is not configured.
type Dependencies struct {
	DB        *gorm.DB
	Generator service.IGeneratorService
	Recipes   service.IRecipeService
	Sessions  middleware.TokenValidator
	Limiter   middleware.Limiter
	Metrics   *metrics.Metrics
	Gatherer  prometheus.Gatherer
	Logger    *zap.Logger
}

// SetupAPI installs the middleware chain and registers every route
func SetupAPI(router *gin.Engine, deps Dependencies, allowedOrigins []string) {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	router.Use(
		middleware.RequestID(),
		middleware.Logger(logger, deps.Metrics),
		middleware.Recovery(logger),
		middleware.CORS(allowedOrigins),
		middleware.ErrorHandler(logger),
	)

	NewHealthHandler(deps.DB).RegisterRoutes(router)
	if deps.Gatherer != nil {
		router.GET("/metrics", gin.WrapH(promhttp.HandlerFor(deps.Gatherer, promhttp.HandlerOpts{})))
	}

	apiGroup := router.Group("/api")
	NewGenerateHandler(deps.Generator, deps.Sessions, deps.Limiter, deps.Metrics, logger).RegisterRoutes(apiGroup)
	NewRecipeHandler(deps.Recipes, deps.Sessions).RegisterRoutes(apiGroup)
}

// withHandlers returns a new chain of mw followed by handlers
func withHandlers(mw []gin.HandlerFunc, handlers ...gin.HandlerFunc) []gin.HandlerFunc {
	out := make([]gin.HandlerFunc, 0, len(mw)+len(handlers))
	out = append(out, mw...)
	return append(out, handlers...)
}
