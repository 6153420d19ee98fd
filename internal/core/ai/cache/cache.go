package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"pantry-chef/internal/core/ai"
)

// Store 模型回應快取
type Store interface {
	// Get 取得快取，未命中時回傳 common.ErrCacheMiss
	Get(ctx context.Context, key string) (*ai.Response, error)
	Set(ctx context.Context, key string, resp *ai.Response) error
	Close() error
}

// Key 以模型、提示詞與圖片資料產生快取鍵
func Key(model, prompt, imageData string) string {
	h := sha256.New()
	h.Write([]byte(model))
	h.Write([]byte{0})
	h.Write([]byte(prompt))
	if imageData == "" {
		return "text:" + hex.EncodeToString(h.Sum(nil))
	}
	h.Write([]byte{0})
	h.Write([]byte(imageData))
	return "multimodal:" + hex.EncodeToString(h.Sum(nil))
}

func cloneResponse(r *ai.Response) *ai.Response {
	c := *r
	if r.Content != nil {
		s := *r.Content
		c.Content = &s
	}
	return &c
}
