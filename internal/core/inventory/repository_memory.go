package inventory

import (
	"context"
	"sync"
	"time"

	"pantry-chef/internal/pkg/common"
)

// MemoryRepository 記憶體版庫存儲存
type MemoryRepository struct {
	mu    sync.RWMutex
	users map[string]map[string]Item
	now   func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository 創建記憶體版庫存儲存
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users: make(map[string]map[string]Item),
		now:   time.Now,
	}
}

func (r *MemoryRepository) Add(_ context.Context, userID, name string, quantity int, unit string) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	items, ok := r.users[userID]
	if !ok {
		items = make(map[string]Item)
		r.users[userID] = items
	}

	now := r.now().UTC()
	for id, item := range items {
		if item.Name == name {
			if item.Quantity > MaxQuantity-quantity {
				return Item{}, ErrQuantityOverflow
			}
			item.Quantity += quantity
			item.Unit = unit
			item.UpdatedAt = now
			items[id] = item
			return item, nil
		}
	}

	item := Item{
		ID:        common.GenerateUUID(),
		Name:      name,
		Quantity:  quantity,
		Unit:      unit,
		CreatedAt: now,
		UpdatedAt: now,
	}
	items[item.ID] = item
	return item, nil
}

func (r *MemoryRepository) SetQuantity(_ context.Context, userID, id string, quantity int) (Item, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.users[userID][id]
	if !ok {
		return Item{}, ErrItemNotFound
	}
	item.Quantity = quantity
	item.UpdatedAt = r.now().UTC()
	r.users[userID][id] = item
	return item, nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID][id]; !ok {
		return ErrItemNotFound
	}
	delete(r.users[userID], id)
	return nil
}

func (r *MemoryRepository) List(_ context.Context, userID string) ([]Item, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Item, 0, len(r.users[userID]))
	for _, item := range r.users[userID] {
		out = append(out, item)
	}
	return out, nil
}
