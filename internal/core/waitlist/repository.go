package waitlist

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pantry-chef/internal/infrastructure/db"
)

// MemoryRepository 記憶體版等候名單
type MemoryRepository struct {
	mu      sync.Mutex
	entries map[string]Entry
}

var _ Repository = (*MemoryRepository)(nil)

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{entries: make(map[string]Entry)}
}

func (r *MemoryRepository) Add(_ context.Context, email string) (Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if e, ok := r.entries[email]; ok {
		return e, nil
	}
	e := Entry{Email: email, CreatedAt: time.Now().UTC()}
	r.entries[email] = e
	return e, nil
}

// Len 名單人數
func (r *MemoryRepository) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// PostgresRepository Postgres 版等候名單
type PostgresRepository struct {
	db db.Querier
}

var _ Repository = (*PostgresRepository)(nil)

func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

func (r *PostgresRepository) Add(ctx context.Context, email string) (Entry, error) {
	e := Entry{Email: email}
	err := r.db.QueryRow(ctx, `
		INSERT INTO waitlist (email) VALUES ($1)
		ON CONFLICT (email) DO UPDATE SET email = EXCLUDED.email
		RETURNING created_at
	`, email).Scan(&e.CreatedAt)
	if err != nil {
		return Entry{}, fmt.Errorf("waitlist: add: %w", err)
	}
	return e, nil
}
