package service

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/ai/queue"
	"pantry-chef/internal/pkg/common"
)

// Options 模型設定
type Options struct {
	Model       string
	VisionModel string
	MaxTokens   int
	// CacheCompletions 為 false 時文字生成不讀寫快取，視覺解讀照常快取
	CacheCompletions bool
}

// Service AI 服務：快取、隊列與上游提供者的組合
type Service struct {
	provider provider.Provider
	cache    cache.Store
	queue    *queue.Manager
	opts     Options
}

// NewService 創建 AI 服務，cacheStore 可為 nil 表示停用快取
func NewService(p provider.Provider, cacheStore cache.Store, q *queue.Manager, opts Options) *Service {
	if opts.Model == "" {
		opts.Model = p.GetModel()
	}
	if opts.VisionModel == "" {
		opts.VisionModel = opts.Model
	}
	return &Service{
		provider: p,
		cache:    cacheStore,
		queue:    q,
		opts:     opts,
	}
}

// Complete 以文字模型產生回應
func (s *Service) Complete(ctx context.Context, prompt string) (*ai.Response, error) {
	req := &ai.Request{
		Model:     s.opts.Model,
		Messages:  []common.Message{common.TextMessage(prompt)},
		MaxTokens: s.opts.MaxTokens,
	}
	key := ""
	if s.opts.CacheCompletions {
		key = cache.Key(req.Model, normalizePrompt(prompt), "")
	}
	return s.process(ctx, req, key)
}

// Vision 以視覺模型解讀圖片，imageURL 為 data URL
func (s *Service) Vision(ctx context.Context, prompt, imageURL string) (*ai.Response, error) {
	req := &ai.Request{
		Model: s.opts.VisionModel,
		Messages: []common.Message{{
			Role: "user",
			Content: []common.Content{
				{Type: "text", Text: prompt},
				{Type: "image_url", ImageURL: &common.ImageURL{URL: imageURL}},
			},
		}},
		MaxTokens: s.opts.MaxTokens,
	}
	return s.process(ctx, req, cache.Key(req.Model, normalizePrompt(prompt), imageURL))
}

// process key 為空字串時略過快取
func (s *Service) process(ctx context.Context, req *ai.Request, key string) (*ai.Response, error) {
	useCache := s.cache != nil && key != ""
	if useCache {
		resp, err := s.cache.Get(ctx, key)
		if err == nil {
			common.LogCacheHit("ai_response")
			return resp, nil
		}
		if !errors.Is(err, common.ErrCacheMiss) {
			common.LogWarn("快取讀取失敗", zap.Error(err))
		}
		common.LogCacheMiss("ai_response")
	}

	call := func(ctx context.Context) (*ai.Response, error) {
		return s.provider.Complete(ctx, req)
	}

	var (
		resp *ai.Response
		err  error
	)
	if s.queue != nil {
		resp, err = s.queue.Do(ctx, call)
	} else {
		resp, err = call(ctx)
	}
	if err != nil {
		return nil, err
	}

	// null 內容不寫入快取
	if useCache && resp.Content != nil {
		if err := s.cache.Set(ctx, key, resp); err != nil {
			common.LogWarn("快取寫入失敗", zap.Error(err))
		}
	}
	return resp, nil
}

// QueueStatus 取得隊列狀態，未使用隊列時回傳 nil
func (s *Service) QueueStatus() *queue.Status {
	if s.queue == nil {
		return nil
	}
	return s.queue.GetQueueStatus()
}

// normalizePrompt 統一空白，確保快取鍵一致
func normalizePrompt(prompt string) string {
	return strings.Join(strings.Fields(prompt), " ")
}
