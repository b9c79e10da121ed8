package service

import (
	"context"

	"github.com/pageza/recipegen/backend/internal/model"
	"github.com/pageza/recipegen/backend/internal/types"
)

// IGeneratorService defines the interface for recipe generation
type IGeneratorService interface {
	Generate(ctx context.Context, req types.GenerateRequest) (*types.GeneratedRecipe, error)
	Diagnostics() types.GenerationDiagnostics
}

// IRecipeService defines the interface for saved recipe operations
type IRecipeService interface {
	SaveRecipe(ctx context.Context, owner string, input types.RecipeInput) (*model.Recipe, error)
	ListRecipes(ctx context.Context, owner string) ([]model.Recipe, error)
}

// ISessionService verifies tokens issued by the magic-link provider
type ISessionService interface {
	ValidateToken(token string) (*types.SessionClaims, error)
}

// PayloadArchiver keeps a copy of upstream bodies that could not be decoded
type PayloadArchiver interface {
	Archive(ctx context.Context, payload []byte) (string, error)
}

// ObjectPutter stores a blob under a key
type ObjectPutter interface {
	PutObject(ctx context.Context, key string, body []byte) error
}
