package api

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/middleware"
	"github.com/pageza/recipegen/backend/internal/service"
	"github.com/pageza/recipegen/backend/internal/types"
)

type RecipeHandler struct {
	recipes  service.IRecipeService
	sessions middleware.TokenValidator
}

// NewRecipeHandler creates a new recipe handler
func NewRecipeHandler(recipes service.IRecipeService, sessions middleware.TokenValidator) *RecipeHandler {
	return &RecipeHandler{
		recipes:  recipes,
		sessions: sessions,
	}
}

// RegisterRoutes registers the save and list routes, behind session auth when enabled
func (h *RecipeHandler) RegisterRoutes(router *gin.RouterGroup) {
	var chain []gin.HandlerFunc
	if h.sessions != nil {
		chain = append(chain, middleware.AuthMiddleware(h.sessions))
	}

	router.POST("/save-recipe", withHandlers(chain, h.SaveRecipe)...)
	router.GET("/get-recipes", withHandlers(chain, h.GetRecipes)...)
}

// SaveRecipe handles POST /api/save-recipe
func (h *RecipeHandler) SaveRecipe(c *gin.Context) {
	var req types.SaveRecipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.Abort(c, apperrors.Validation("invalid request body"))
		return
	}

	owner, err := h.resolveOwner(c, req.User)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	recipe, err := h.recipes.SaveRecipe(c.Request.Context(), owner, req.Recipe)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, recipe)
}

// GetRecipes handles GET /api/get-recipes?user=
func (h *RecipeHandler) GetRecipes(c *gin.Context) {
	owner, err := h.resolveOwner(c, c.Query("user"))
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	recipes, err := h.recipes.ListRecipes(c.Request.Context(), owner)
	if err != nil {
		middleware.Abort(c, err)
		return
	}

	c.JSON(http.StatusOK, recipes)
}

// resolveOwner returns the owner to read or write. With sessions enabled the
// owner defaults to the session email and may not name anyone else.
func (h *RecipeHandler) resolveOwner(c *gin.Context, requested string) (string, error) {
	requested = strings.TrimSpace(requested)

	email, authenticated := middleware.SessionEmail(c)
	if !authenticated {
		if requested == "" {
			return "", apperrors.Validation("user is required")
		}
		return requested, nil
	}

	if requested == "" {
		return email, nil
	}
	if !strings.EqualFold(requested, email) {
		return "", apperrors.Forbidden("cannot access recipes of another user")
	}
	return email, nil
}
