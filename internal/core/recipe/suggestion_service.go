package recipe

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/pkg/common"
)

// Completer 文字模型
type Completer interface {
	Complete(ctx context.Context, prompt string) (*ai.Response, error)
}

// PantryLister 提供使用者庫存的品項名稱
type PantryLister interface {
	Names(ctx context.Context, userID string) ([]string, error)
}

// SuggestionService 食譜推薦服務
type SuggestionService struct {
	completer Completer
	pantry    PantryLister
	delimiter string
	count     int
}

// NewSuggestionService 創建新的食譜推薦服務
func NewSuggestionService(completer Completer, pantry PantryLister, delimiter string, count int) *SuggestionService {
	if delimiter == "" {
		delimiter = DefaultDelimiter
	}
	if count <= 0 {
		count = 4
	}
	return &SuggestionService{
		completer: completer,
		pantry:    pantry,
		delimiter: delimiter,
		count:     count,
	}
}

// Generate 依使用者目前庫存生成食譜
func (s *SuggestionService) Generate(ctx context.Context, userID string) (*GenerateResult, error) {
	if userID == "" {
		return nil, common.NewValidationError("user id is required")
	}

	names, err := s.pantry.Names(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list inventory: %w", err)
	}
	return s.GenerateFromNames(ctx, names)
}

// GenerateFromNames 依指定食材名稱生成食譜
func (s *SuggestionService) GenerateFromNames(ctx context.Context, names []string) (*GenerateResult, error) {
	if common.JoinNames(names) == "" {
		return nil, common.NewValidationError("inventory is empty")
	}

	prompt := BuildPrompt(names, s.count, s.delimiter)
	resp, err := s.completer.Complete(ctx, prompt)
	if err != nil {
		var ce *common.CustomError
		if errors.As(err, &ce) || errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		return nil, common.ErrUpstreamFailure.Wrap(err)
	}

	raw := resp.Content
	if raw != nil {
		stripped := stripTrailingMessage(*raw)
		raw = &stripped
	}

	recipes, err := ParseNullable(raw, s.delimiter)
	if err != nil {
		if raw == nil {
			// 上游回傳 null 內容
			return nil, common.ErrUpstreamFailure.Wrap(err)
		}
		return nil, err
	}

	common.LogInfo("食譜生成完成",
		zap.Int("ingredients", len(names)),
		zap.Int("recipes", len(recipes)),
		zap.Bool("cache_hit", resp.CacheHit),
	)

	return &GenerateResult{
		Recipes: recipes,
		Message: TrailingMessage,
		Empty:   len(recipes) == 0,
	}, nil
}
