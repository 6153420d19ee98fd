package ai

import (
	"pantry-chef/internal/pkg/common"
)

// Request 發送給模型的請求
type Request struct {
	Model     string           `json:"model"`
	Messages  []common.Message `json:"messages"`
	MaxTokens int              `json:"max_tokens,omitempty"`
}

// Response AI 響應
// Content 可能為 nil（上游回傳 null）
type Response struct {
	Content  *string `json:"content"`
	Model    string  `json:"model"`
	Usage    Usage   `json:"usage"`
	CacheHit bool    `json:"cache_hit"`
}

// Text 取得文字內容，nil 時回傳空字串
func (r *Response) Text() string {
	if r == nil || r.Content == nil {
		return ""
	}
	return *r.Content
}

// Usage 使用量
type Usage = common.Usage
