package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"pantry-chef/internal/infrastructure/db"
	"pantry-chef/internal/pkg/common"
)

// PostgresRepository Postgres 版庫存儲存
type PostgresRepository struct {
	db db.Querier
}

var _ Repository = (*PostgresRepository)(nil)

// NewPostgresRepository 創建 Postgres 版庫存儲存
func NewPostgresRepository(q db.Querier) *PostgresRepository {
	return &PostgresRepository{db: q}
}

const itemColumns = `id, name, quantity, unit, created_at, updated_at`

func (r *PostgresRepository) Add(ctx context.Context, userID, name string, quantity int, unit string) (Item, error) {
	row := r.db.QueryRow(ctx, `
		INSERT INTO inventory_items (id, user_id, name, quantity, unit)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, name) DO UPDATE
		SET quantity = inventory_items.quantity + EXCLUDED.quantity,
		    unit = EXCLUDED.unit,
		    updated_at = NOW()
		RETURNING `+itemColumns,
		common.GenerateUUID(), userID, name, quantity, unit,
	)

	item, err := scanItem(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == numericOutOfRange {
			return Item{}, ErrQuantityOverflow
		}
		return Item{}, fmt.Errorf("inventory: add: %w", err)
	}
	return item, nil
}

// numericOutOfRange integer 累加溢位時的 SQLSTATE
const numericOutOfRange = "22003"

func (r *PostgresRepository) SetQuantity(ctx context.Context, userID, id string, quantity int) (Item, error) {
	row := r.db.QueryRow(ctx, `
		UPDATE inventory_items
		SET quantity = $1, updated_at = NOW()
		WHERE id = $2 AND user_id = $3
		RETURNING `+itemColumns,
		quantity, id, userID,
	)

	item, err := scanItem(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Item{}, ErrItemNotFound
	}
	if err != nil {
		return Item{}, fmt.Errorf("inventory: set quantity: %w", err)
	}
	return item, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, userID, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM inventory_items WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("inventory: delete: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrItemNotFound
	}
	return nil
}

func (r *PostgresRepository) List(ctx context.Context, userID string) ([]Item, error) {
	rows, err := r.db.Query(ctx, `SELECT `+itemColumns+` FROM inventory_items WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	defer rows.Close()

	out := make([]Item, 0)
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("inventory: scan: %w", err)
		}
		out = append(out, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("inventory: list: %w", err)
	}
	return out, nil
}

func scanItem(row pgx.Row) (Item, error) {
	var item Item
	err := row.Scan(&item.ID, &item.Name, &item.Quantity, &item.Unit, &item.CreatedAt, &item.UpdatedAt)
	return item, err
}
