package recipe

import (
	"context"
	"sort"
	"sync"
	"time"

	"pantry-chef/internal/pkg/common"
)

type memoryEntry struct {
	recipe SavedRecipe
	seq    uint64
}

// MemoryRepository 記憶體版食譜儲存
type MemoryRepository struct {
	mu     sync.RWMutex
	users  map[string]map[string]memoryEntry
	owners map[string]string // id → userID，id 在所有使用者間唯一
	seq    uint64
	now    func() time.Time
}

var _ Repository = (*MemoryRepository)(nil)

// NewMemoryRepository 創建記憶體版食譜儲存
func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		users:  make(map[string]map[string]memoryEntry),
		owners: make(map[string]string),
		now:    time.Now,
	}
}

func (r *MemoryRepository) Create(ctx context.Context, userID string, data RecipeData) (SavedRecipe, error) {
	return r.Put(ctx, userID, common.GenerateUUID(), data)
}

// Put 以 id 寫入，存在時覆寫內容但保留建立時間
// id 屬於其他使用者時回傳 ErrRecipeNotFound
func (r *MemoryRepository) Put(_ context.Context, userID, id string, data RecipeData) (SavedRecipe, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if owner, ok := r.owners[id]; ok && owner != userID {
		return SavedRecipe{}, ErrRecipeNotFound
	}

	recipes, ok := r.users[userID]
	if !ok {
		recipes = make(map[string]memoryEntry)
		r.users[userID] = recipes
	}

	entry, exists := recipes[id]
	if !exists {
		r.seq++
		entry.seq = r.seq
		entry.recipe.CreatedAt = r.now().UTC()
	}
	entry.recipe.ID = id
	entry.recipe.Title = data.Title
	entry.recipe.PrepTime = data.PrepTime
	entry.recipe.Ingredients = cloneStrings(data.Ingredients)
	entry.recipe.Preparation = cloneStrings(data.Preparation)
	recipes[id] = entry
	r.owners[id] = userID

	return copyRecipe(entry.recipe), nil
}

// List 依建立順序回傳
func (r *MemoryRepository) List(_ context.Context, userID string) ([]SavedRecipe, error) {
	r.mu.RLock()
	entries := make([]memoryEntry, 0, len(r.users[userID]))
	for _, e := range r.users[userID] {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool { return entries[i].seq < entries[j].seq })

	out := make([]SavedRecipe, 0, len(entries))
	for _, e := range entries {
		out = append(out, copyRecipe(e.recipe))
	}
	return out, nil
}

func (r *MemoryRepository) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[userID][id]; !ok {
		return ErrRecipeNotFound
	}
	delete(r.users[userID], id)
	delete(r.owners, id)
	return nil
}

func copyRecipe(r SavedRecipe) SavedRecipe {
	r.Ingredients = cloneStrings(r.Ingredients)
	r.Preparation = cloneStrings(r.Preparation)
	return r
}

func cloneStrings(s []string) []string {
	out := make([]string, len(s))
	copy(out, s)
	return out
}
