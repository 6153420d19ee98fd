package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"
)

const redisKeyPrefix = "ai:response:"

// Service Redis 快取
type Service struct {
	client *redis.Client
	ttl    time.Duration
}

var _ Store = (*Service)(nil)

// NewService 創建 Redis 快取並測試連線
func NewService(ctx context.Context, cfg config.CacheConfig) (*Service, error) {
	client := redis.NewClient(&redis.Options{
		Addr:        cfg.RedisAddr,
		Password:    cfg.RedisPassword,
		DB:          cfg.RedisDB,
		DialTimeout: 2 * time.Second,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &Service{client: client, ttl: cfg.TTL}, nil
}

// Ping 檢查 Redis 連線
func (s *Service) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Get 獲取緩存
func (s *Service) Get(ctx context.Context, key string) (*ai.Response, error) {
	data, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, common.ErrCacheMiss
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get cache: %w", err)
	}

	var resp ai.Response
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cache: %w", err)
	}

	resp.CacheHit = true
	return &resp, nil
}

// Set 設置緩存
func (s *Service) Set(ctx context.Context, key string, resp *ai.Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := s.client.Set(ctx, redisKeyPrefix+key, data, s.ttl).Err(); err != nil {
		return fmt.Errorf("failed to set cache: %w", err)
	}
	return nil
}

// Close 關閉 Redis 連線
func (s *Service) Close() error {
	return s.client.Close()
}
