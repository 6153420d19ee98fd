package recipe

import (
	"context"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"pantry-chef/internal/pkg/common"
)

// BookService 已儲存食譜的管理
type BookService struct {
	repo        Repository
	concurrency int
}

// NewBookService 創建食譜收藏服務
func NewBookService(repo Repository, concurrency int) *BookService {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BookService{repo: repo, concurrency: concurrency}
}

// Save 儲存一道食譜並回傳新 id
func (s *BookService) Save(ctx context.Context, userID string, data RecipeData) (SavedRecipe, error) {
	data, err := normalize(userID, data)
	if err != nil {
		return SavedRecipe{}, err
	}
	return s.repo.Create(ctx, userID, data)
}

// Put 以指定 id 寫入，重複寫入結果相同
func (s *BookService) Put(ctx context.Context, userID, id string, data RecipeData) (SavedRecipe, error) {
	if strings.TrimSpace(id) == "" {
		return SavedRecipe{}, common.NewValidationError("recipe id is required")
	}
	data, err := normalize(userID, data)
	if err != nil {
		return SavedRecipe{}, err
	}
	return s.repo.Put(ctx, userID, id, data)
}

// List 列出使用者的所有食譜
func (s *BookService) List(ctx context.Context, userID string) ([]SavedRecipe, error) {
	if userID == "" {
		return nil, common.NewValidationError("user id is required")
	}
	return s.repo.List(ctx, userID)
}

// Delete 刪除食譜
func (s *BookService) Delete(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return common.NewValidationError("user id and recipe id are required")
	}
	return s.repo.Delete(ctx, userID, id)
}

// BatchSave 並行儲存多道食譜，各筆互不影響，結果依輸入順序回傳
func (s *BookService) BatchSave(ctx context.Context, userID string, items []RecipeData) []SaveResult {
	results := make([]SaveResult, len(items))

	var g errgroup.Group
	g.SetLimit(s.concurrency)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			results[i].Index = i
			saved, err := s.Save(ctx, userID, item)
			if err != nil {
				results[i].Error = err.Error()
				common.LogWarn("食譜儲存失敗", zap.Int("index", i), zap.Error(err))
				return nil
			}
			results[i].ID = saved.ID
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func normalize(userID string, data RecipeData) (RecipeData, error) {
	if userID == "" {
		return data, common.NewValidationError("user id is required")
	}
	// 內容照原樣寫入，只拒絕空白標題
	if strings.TrimSpace(data.Title) == "" {
		return data, common.NewValidationError("recipe title is required")
	}
	data.Ingredients = nonNil(data.Ingredients)
	data.Preparation = nonNil(data.Preparation)
	return data, nil
}
