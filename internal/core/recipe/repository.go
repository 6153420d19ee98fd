package recipe

import (
	"context"
	"net/http"

	"pantry-chef/internal/pkg/common"
)

// ErrRecipeNotFound 食譜不存在
var ErrRecipeNotFound = common.NewError(common.ErrCodeNotFound, "recipe not found", http.StatusNotFound, nil)

// Repository 已儲存食譜的資料存取介面，所有操作以 userID 分區
type Repository interface {
	Create(ctx context.Context, userID string, data RecipeData) (SavedRecipe, error)
	Put(ctx context.Context, userID, id string, data RecipeData) (SavedRecipe, error)
	List(ctx context.Context, userID string) ([]SavedRecipe, error)
	Delete(ctx context.Context, userID, id string) error
}
