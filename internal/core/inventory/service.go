package inventory

import (
	"context"
	"sort"
	"strings"

	"go.uber.org/zap"

	"pantry-chef/internal/pkg/common"
)

// Service 庫存管理服務
type Service struct {
	repo Repository
}

// NewService 創建庫存管理服務
func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// AddRequest 新增品項請求
type AddRequest struct {
	Name     string `json:"name" binding:"required"`
	Quantity int    `json:"quantity"`
	Unit     string `json:"unit"`
}

// Add 新增品項；同名品項累加數量
func (s *Service) Add(ctx context.Context, userID string, req AddRequest) (Item, error) {
	if userID == "" {
		return Item{}, common.NewValidationError("user id is required")
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return Item{}, common.NewValidationError("item name is required")
	}
	if req.Quantity < 0 {
		return Item{}, common.NewValidationError("quantity must not be negative")
	}
	if req.Quantity > MaxQuantity {
		return Item{}, ErrQuantityOverflow
	}

	item, err := s.repo.Add(ctx, userID, name, req.Quantity, strings.TrimSpace(req.Unit))
	if err != nil {
		return Item{}, err
	}

	common.LogDebug("庫存品項已更新",
		zap.String("user_id", userID),
		zap.String("item", item.Name),
		zap.Int("quantity", item.Quantity),
	)
	return item, nil
}

// UpdateQuantity 設定品項數量
func (s *Service) UpdateQuantity(ctx context.Context, userID, id string, quantity int) (Item, error) {
	if userID == "" || id == "" {
		return Item{}, common.NewValidationError("user id and item id are required")
	}
	if quantity < 0 {
		return Item{}, common.NewValidationError("quantity must not be negative")
	}
	if quantity > MaxQuantity {
		return Item{}, ErrQuantityOverflow
	}
	return s.repo.SetQuantity(ctx, userID, id, quantity)
}

// Remove 刪除品項
func (s *Service) Remove(ctx context.Context, userID, id string) error {
	if userID == "" || id == "" {
		return common.NewValidationError("user id and item id are required")
	}
	return s.repo.Delete(ctx, userID, id)
}

// List 依名稱排序（不分大小寫）列出庫存
func (s *Service) List(ctx context.Context, userID string) ([]Item, error) {
	if userID == "" {
		return nil, common.NewValidationError("user id is required")
	}

	items, err := s.repo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		a, b := strings.ToLower(items[i].Name), strings.ToLower(items[j].Name)
		if a != b {
			return a < b
		}
		return items[i].Name < items[j].Name
	})
	return items, nil
}

// Search 名稱包含關鍵字（不分大小寫）的品項
func (s *Service) Search(ctx context.Context, userID, term string) ([]Item, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return items, nil
	}

	out := make([]Item, 0, len(items))
	for _, item := range items {
		if strings.Contains(strings.ToLower(item.Name), term) {
			out = append(out, item)
		}
	}
	return out, nil
}

// Names 回傳排序後的品項名稱，供生成食譜使用
func (s *Service) Names(ctx context.Context, userID string) ([]string, error) {
	items, err := s.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(items))
	for _, item := range items {
		names = append(names, item.Name)
	}
	return names, nil
}
