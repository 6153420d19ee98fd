package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newTestManager(t *testing.T, maxSize int) *CacheManager {
	t.Helper()
	m := NewManager(config.CacheConfig{
		MaxSize:         maxSize,
		TTL:             time.Minute,
		CleanupInterval: time.Hour,
	})
	t.Cleanup(func() { _ = m.Close() })
	return m
}

func text(s string) *ai.Response {
	return &ai.Response{Content: &s, Model: "test-model"}
}

func TestCacheManager_GetSet(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10)

	_, err := m.Get(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrCacheMiss)

	require.NoError(t, m.Set(ctx, "k", text("hello")))
	got, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", got.Text())
	assert.True(t, got.CacheHit)

	// 回傳值為複本
	*got.Content = "mutated"
	again, err := m.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "hello", again.Text())

	stats := m.GetStats()
	assert.Equal(t, int64(2), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestCacheManager_Expiry(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 10)

	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	require.NoError(t, m.Set(ctx, "k", text("v")))
	now = now.Add(2 * time.Minute)

	_, err := m.Get(ctx, "k")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
}

func TestCacheManager_EvictsLeastUsed(t *testing.T) {
	ctx := context.Background()
	m := newTestManager(t, 2)

	require.NoError(t, m.Set(ctx, "a", text("a")))
	require.NoError(t, m.Set(ctx, "b", text("b")))
	_, err := m.Get(ctx, "a")
	require.NoError(t, err)

	require.NoError(t, m.Set(ctx, "c", text("c")))

	_, err = m.Get(ctx, "b")
	assert.ErrorIs(t, err, common.ErrCacheMiss)
	_, err = m.Get(ctx, "a")
	assert.NoError(t, err)
	_, err = m.Get(ctx, "c")
	assert.NoError(t, err)
}

func TestCacheManager_CloseIsIdempotent(t *testing.T) {
	m := NewManager(config.CacheConfig{MaxSize: 1, TTL: time.Minute, CleanupInterval: time.Millisecond})
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())
}

func TestKey(t *testing.T) {
	assert.Equal(t, Key("m", "p", ""), Key("m", "p", ""))
	assert.NotEqual(t, Key("m1", "p", ""), Key("m2", "p", ""))
	assert.Contains(t, Key("m", "p", ""), "text:")
	assert.Contains(t, Key("m", "p", "img"), "multimodal:")
}

func TestNewService_Unreachable(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	_, err := NewService(ctx, config.CacheConfig{RedisAddr: "127.0.0.1:1", TTL: time.Minute})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to connect to Redis")
}
