package inventory

import (
	"context"
	"math"
	"net/http"
	"time"

	"pantry-chef/internal/pkg/common"
)

// ErrItemNotFound 庫存品項不存在
var ErrItemNotFound = common.NewError(common.ErrCodeNotFound, "inventory item not found", http.StatusNotFound, nil)

// MaxQuantity 單一品項數量上限，與資料表的 INTEGER 欄位一致
const MaxQuantity = math.MaxInt32

// ErrQuantityOverflow 累加後超過 MaxQuantity
var ErrQuantityOverflow = common.NewValidationError("quantity exceeds the maximum allowed")

// Item 庫存品項
type Item struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Quantity  int       `json:"quantity"`
	Unit      string    `json:"unit"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Repository 庫存資料存取介面，所有操作以 userID 分區
type Repository interface {
	// Add 同名品項存在時累加數量並覆寫單位，否則新增
	Add(ctx context.Context, userID, name string, quantity int, unit string) (Item, error)
	SetQuantity(ctx context.Context, userID, id string, quantity int) (Item, error)
	Delete(ctx context.Context, userID, id string) error
	List(ctx context.Context, userID string) ([]Item, error)
}
