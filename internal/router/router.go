package router

import (
	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/config"
	"github.com/pageza/recipegen/backend/internal/api"
)

// SetupRouter configures the application routes
func SetupRouter(cfg *config.Config, deps api.Dependencies) *gin.Engine {
	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.HandleMethodNotAllowed = true
	if err := router.SetTrustedProxies(nil); err != nil {
		panic(err)
	}

	api.SetupAPI(router, deps, cfg.AllowedOrigins)
	return router
}
