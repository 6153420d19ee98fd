package provider

import (
	"context"
	"time"

	"pantry-chef/internal/core/ai"
)

// Provider 定義 AI 提供者介面
type Provider interface {
	// Complete 送出對話並取得回應
	Complete(ctx context.Context, req *ai.Request) (*ai.Response, error)

	// GetModel 獲取預設文字模型名稱
	GetModel() string

	// GetTimeout 獲取請求超時時間
	GetTimeout() time.Duration

	// Close 關閉提供者連接
	Close() error
}
