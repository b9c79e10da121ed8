package service

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"net"
	"strings"

	"github.com/lib/pq"
	"github.com/pageza/recipegen/backend/internal/apperrors"
	"github.com/pageza/recipegen/backend/internal/metrics"
	"github.com/pageza/recipegen/backend/internal/model"
	"github.com/pageza/recipegen/backend/internal/types"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// RecipeService handles saved recipe operations
type RecipeService struct {
	db      *gorm.DB
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewRecipeService creates a new RecipeService instance
func NewRecipeService(db *gorm.DB, m *metrics.Metrics, logger *zap.Logger) *RecipeService {
	return &RecipeService{
		db:      db,
		metrics: m,
		logger:  logger.Named("recipes"),
	}
}

// SaveRecipe inserts a new record for owner and returns it with its
// assigned identifier. Identical submissions create separate records.
func (s *RecipeService) SaveRecipe(ctx context.Context, owner string, input types.RecipeInput) (*model.Recipe, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, apperrors.Validation("user is required")
	}

	steps := model.JSONBStringArray(input.Steps)
	if steps == nil {
		steps = model.JSONBStringArray{}
	}

	recipe := &model.Recipe{
		User:     owner,
		Title:    string(input.Title),
		PrepTime: string(input.PrepTime),
		Servings: int(input.Servings),
		Steps:    steps,
	}

	if err := s.db.WithContext(ctx).Create(recipe).Error; err != nil {
		s.logger.Error("failed to save recipe", zap.String("user", owner), zap.Error(err))
		return nil, classifyStorageError("Failed to save recipe", err)
	}

	s.metrics.RecipeSaved()
	s.logger.Info("recipe saved", zap.String("id", recipe.ID.String()), zap.String("user", owner))
	return recipe, nil
}

// ListRecipes returns every record stored for owner, in store order. An owner
// with no records yields an empty slice.
func (s *RecipeService) ListRecipes(ctx context.Context, owner string) ([]model.Recipe, error) {
	owner = strings.TrimSpace(owner)
	if owner == "" {
		return nil, apperrors.Validation("user is required")
	}

	recipes := make([]model.Recipe, 0)
	if err := s.db.WithContext(ctx).Where("user_email = ?", owner).Find(&recipes).Error; err != nil {
		s.logger.Error("failed to list recipes", zap.String("user", owner), zap.Error(err))
		return nil, classifyStorageError("Failed to fetch recipes", err)
	}

	s.metrics.RecipesListed()
	return recipes, nil
}

// classifyStorageError separates an unreachable store from a failed operation
func classifyStorageError(message string, err error) error {
	if isConnectionError(err) {
		return apperrors.StorageConnection("document store is unavailable", err)
	}
	return apperrors.StorageOperation(message, err)
}

func isConnectionError(err error) bool {
	if errors.Is(err, driver.ErrBadConn) || errors.Is(err, sql.ErrConnDone) {
		return true
	}
	// database/sql does not export its closed-pool error
	if strings.Contains(err.Error(), "sql: database is closed") {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		// class 08: connection exception
		return pqErr.Code.Class() == "08"
	}
	return false
}
