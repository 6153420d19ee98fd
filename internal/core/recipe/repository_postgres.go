package recipe

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"pantry-chef/internal/infrastructure/db"
	"pantry-chef/internal/pkg/common"
)

// PostgresRepository Postgres 版食譜儲存
type PostgresRepository struct {
	db db.Querier
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository 創建 Postgres 版食譜儲存
func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

func (r *PostgresRepository) Create(ctx context.Context, userID string, data RecipeData) (SavedRecipe, error) {
	return r.Put(ctx, userID, common.GenerateUUID(), data)
}

func (r *PostgresRepository) Put(ctx context.Context, userID, id string, data RecipeData) (SavedRecipe, error) {
	saved := SavedRecipe{
		ID:          id,
		Title:       data.Title,
		PrepTime:    data.PrepTime,
		Ingredients: nonNil(data.Ingredients),
		Preparation: nonNil(data.Preparation),
	}

	err := r.db.QueryRow(ctx, `
		INSERT INTO saved_recipes (id, user_id, title, prep_time, ingredients, preparation)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE
		SET title = EXCLUDED.title,
		    prep_time = EXCLUDED.prep_time,
		    ingredients = EXCLUDED.ingredients,
		    preparation = EXCLUDED.preparation
		WHERE saved_recipes.user_id = EXCLUDED.user_id
		RETURNING created_at
	`, id, userID, saved.Title, saved.PrepTime, saved.Ingredients, saved.Preparation).Scan(&saved.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		// id 已屬於其他使用者
		return SavedRecipe{}, ErrRecipeNotFound
	}
	if err != nil {
		return SavedRecipe{}, fmt.Errorf("recipe: put: %w", err)
	}
	return saved, nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]SavedRecipe, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, title, prep_time, ingredients, preparation, created_at
		FROM saved_recipes
		WHERE user_id = $1
		ORDER BY created_at ASC, id ASC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("recipe: list: %w", err)
	}
	defer rows.Close()

	out := make([]SavedRecipe, 0)
	for rows.Next() {
		var s SavedRecipe
		if err := rows.Scan(&s.ID, &s.Title, &s.PrepTime, &s.Ingredients, &s.Preparation, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("recipe: scan: %w", err)
		}
		s.Ingredients = nonNil(s.Ingredients)
		s.Preparation = nonNil(s.Preparation)
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recipe: list: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM saved_recipes WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("recipe: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrRecipeNotFound
	}
	return nil
}
