package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"image"
	"image/png"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"pantry-chef/internal/api/handlers/health"
	"pantry-chef/internal/auth"
	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/queue"
	"pantry-chef/internal/core/inventory"
	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/waitlist"
	"pantry-chef/internal/infrastructure/config"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	goleak.VerifyTestMain(m)
}

const completion = "###Tomato Soup\nPrep Time: 20 min\nIngredients:\n- tomato\n- salt\nPreparation:\n1. Boil\n2. Blend\n" +
	"###Tomato Salad\nPrep Time: 5 min\nIngredients:\n- tomato\nPreparation:\n1. Slice\n\n" + recipe.TrailingMessage

type fakeProvider struct {
	mu      sync.Mutex
	prompts []string
}

func (f *fakeProvider) Complete(_ context.Context, req *ai.Request) (*ai.Response, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompts = append(f.prompts, req.Messages[0].Content[0].Text)
	content := completion
	if len(req.Messages[0].Content) > 1 {
		content = " Banana. "
	}
	return &ai.Response{Content: &content, Model: req.Model}, nil
}

func (f *fakeProvider) GetModel() string          { return "test-model" }
func (f *fakeProvider) GetTimeout() time.Duration { return time.Second }
func (f *fakeProvider) Close() error              { return nil }

type failingPinger struct{}

func (failingPinger) Ping(context.Context) error { return errors.New("connection refused") }

func testConfig() *config.Config {
	return &config.Config{
		App:         config.AppConfig{Debug: true, Version: "test"},
		Server:      config.ServerConfig{RequestTimeout: 5 * time.Second, MaxBodyBytes: 1 << 20, AllowOrigins: []string{"*"}},
		Image:       config.ImageConfig{MaxSizeBytes: 1 << 20},
		Store:       config.StoreConfig{Backend: "memory"},
		Auth:        config.AuthConfig{JWTSecret: "secret", Required: true},
		Recipe:      config.RecipeConfig{Delimiter: "###", Count: 4, SaveConcurrent: 2},
		RateLimit:   config.RateLimitConfig{Enabled: true, Requests: 100, Window: time.Minute},
		DedupWindow: time.Second,
	}
}

type testServer struct {
	t        *testing.T
	router   *gin.Engine
	provider *fakeProvider
	waitlist *waitlist.MemoryRepository
	token    string
}

func newTestServer(t *testing.T, cfg *config.Config, pingers map[string]health.Pinger) *testServer {
	t.Helper()

	q := queue.NewManager(1, 8)
	q.Start()
	t.Cleanup(q.Close)

	c := cache.NewManager(config.CacheConfig{MaxSize: 16, TTL: time.Hour, CleanupInterval: time.Hour})
	t.Cleanup(func() { _ = c.Close() })

	p := &fakeProvider{}
	wl := waitlist.NewMemoryRepository()
	router, cleanup, err := SetupRouter(cfg, Dependencies{
		Provider:  p,
		Cache:     c,
		Queue:     q,
		Inventory: inventory.NewMemoryRepository(),
		Recipes:   recipe.NewMemoryRepository(),
		Waitlist:  wl,
		Pingers:   pingers,
	})
	require.NoError(t, err)
	t.Cleanup(cleanup)

	// 停用驗證且沒有 secret 時不產生權杖
	var token string
	if cfg.Auth.JWTSecret != "" {
		token, err = auth.NewManager(cfg.Auth.JWTSecret, time.Hour).GenerateToken("user-1", "cook@example.com")
		require.NoError(t, err)
	}

	return &testServer{t: t, router: router, provider: p, waitlist: wl, token: token}
}

func (s *testServer) do(method, path string, body interface{}, authed bool) *httptest.ResponseRecorder {
	s.t.Helper()
	return s.doWithHeaders(method, path, body, authed, nil)
}

func (s *testServer) doWithHeaders(method, path string, body interface{}, authed bool, headers map[string]string) *httptest.ResponseRecorder {
	s.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(s.t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if authed {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func TestRouter_InventoryToSavedRecipe(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := s.do(http.MethodPost, "/api/v1/inventory", gin.H{"name": "tomato", "quantity": 2, "unit": "pcs"}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var item inventory.Item
	decode(t, w, &item)
	assert.Equal(t, "tomato", item.Name)
	assert.NotEmpty(t, item.ID)

	w = s.do(http.MethodGet, "/api/v1/inventory", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []inventory.Item `json:"items"`
	}
	decode(t, w, &list)
	require.Len(t, list.Items, 1)

	w = s.do(http.MethodPost, "/api/v1/recipes/generate", nil, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var generated recipe.GenerateResult
	decode(t, w, &generated)
	require.Len(t, generated.Recipes, 2)
	assert.Equal(t, "1. Tomato Soup", generated.Recipes[0].DisplayTitle)
	assert.Equal(t, []string{"Slice"}, generated.Recipes[1].Preparation)
	assert.Equal(t, recipe.TrailingMessage, generated.Message)
	assert.Contains(t, s.provider.prompts[0], "tomato")

	w = s.do(http.MethodPost, "/api/v1/recipes", generated.Recipes[0].Record(), true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var saved recipe.SavedRecipe
	decode(t, w, &saved)
	assert.NotEmpty(t, saved.ID)

	w = s.do(http.MethodGet, "/api/v1/recipes", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var book struct {
		Recipes []recipe.SavedRecipe `json:"recipes"`
	}
	decode(t, w, &book)
	require.Len(t, book.Recipes, 1)
	assert.Equal(t, "Tomato Soup", book.Recipes[0].Title)

	w = s.do(http.MethodDelete, "/api/v1/recipes/"+saved.ID, nil, true)
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do(http.MethodDelete, "/api/v1/recipes/"+saved.ID, nil, true)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_GenerateWithEmptyInventory(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := s.do(http.MethodPost, "/api/v1/recipes/generate", nil, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "inventory is empty")
	assert.Empty(t, s.provider.prompts)
}

func TestRouter_GenerateFromExplicitIngredients(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := s.do(http.MethodPost, "/api/v1/recipes/generate", gin.H{"ingredients": []string{"egg", "rice"}}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Len(t, s.provider.prompts, 1)
	assert.Contains(t, s.provider.prompts[0], "egg")
	assert.Contains(t, s.provider.prompts[0], "rice")
}

func TestRouter_GenerateFetchesFreshRecipes(t *testing.T) {
	cfg := testConfig()
	cfg.DedupWindow = time.Millisecond
	s := newTestServer(t, cfg, nil)

	body := gin.H{"ingredients": []string{"egg"}}
	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/v1/recipes/generate", body, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		time.Sleep(5 * time.Millisecond)
	}
	assert.Len(t, s.provider.prompts, 2)

	// 開啟後相同提示只呼叫一次上游
	cfg = testConfig()
	cfg.DedupWindow = time.Millisecond
	cfg.Cache.Completions = true
	s = newTestServer(t, cfg, nil)
	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/v1/recipes/generate", body, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		time.Sleep(5 * time.Millisecond)
	}
	assert.Len(t, s.provider.prompts, 1)
}

func TestRouter_RepeatedInventoryAddMerges(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	body := gin.H{"name": "egg", "quantity": 3, "unit": "pcs"}
	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPost, "/api/v1/inventory", body, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/v1/inventory", nil, true)
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Items []inventory.Item `json:"items"`
	}
	decode(t, w, &list)
	require.Len(t, list.Items, 1)
	assert.Equal(t, 6, list.Items[0].Quantity)

	// 食譜儲存仍在時間窗內去重
	recipeBody := gin.H{"title": "Omelette", "prepTime": "5 min", "ingredients": []string{"egg"}, "preparation": []string{"Fry"}}
	w = s.do(http.MethodPost, "/api/v1/recipes", recipeBody, true)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/v1/recipes", recipeBody, true)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_BatchSave(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	body := gin.H{"recipes": []gin.H{
		{"title": "Soup", "prepTime": "10 min", "ingredients": []string{"water"}, "preparation": []string{"Boil"}},
		{"title": "", "prepTime": "", "ingredients": []string{}, "preparation": []string{}},
	}}
	w := s.do(http.MethodPost, "/api/v1/recipes/batch", body, true)
	require.Equal(t, http.StatusMultiStatus, w.Code, w.Body.String())

	var resp struct {
		Results []recipe.SaveResult `json:"results"`
	}
	decode(t, w, &resp)
	require.Len(t, resp.Results, 2)
	assert.NotEmpty(t, resp.Results[0].ID)
	assert.Empty(t, resp.Results[0].Error)
	assert.NotEmpty(t, resp.Results[1].Error)
}

func TestRouter_PutRecipeIsIdempotent(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	data := recipe.RecipeData{Title: "Toast", PrepTime: "2 min", Ingredients: []string{"bread"}, Preparation: []string{"Toast"}}
	for i := 0; i < 2; i++ {
		w := s.do(http.MethodPut, "/api/v1/recipes/fixed-id", data, true)
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	}

	w := s.do(http.MethodGet, "/api/v1/recipes", nil, true)
	var book struct {
		Recipes []recipe.SavedRecipe `json:"recipes"`
	}
	decode(t, w, &book)
	require.Len(t, book.Recipes, 1)
	assert.Equal(t, "fixed-id", book.Recipes[0].ID)
}

func TestRouter_VisionInterpret(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 2, 2))))
	photo := base64.StdEncoding.EncodeToString(buf.Bytes())
	w := s.do(http.MethodPost, "/api/v1/vision/interpret", gin.H{"photo": photo}, true)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.JSONEq(t, `{"itemName":"Banana"}`, w.Body.String())

	w = s.do(http.MethodPost, "/api/v1/vision/interpret", gin.H{"photo": "not-an-image"}, true)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Auth(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := s.do(http.MethodGet, "/api/v1/recipes", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodGet, "/api/v1/inventory", nil, false)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_AuthDisabledUsesLocalUser(t *testing.T) {
	cfg := testConfig()
	cfg.Auth = config.AuthConfig{Required: false}
	s := newTestServer(t, cfg, nil)
	require.Empty(t, s.token)

	w := s.do(http.MethodPost, "/api/v1/inventory", gin.H{"name": "egg", "quantity": 6}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodGet, "/api/v1/inventory", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "egg")

	// X-User-ID 切換使用者，看不到 local 的庫存
	bob := map[string]string{"X-User-ID": "bob"}
	w = s.doWithHeaders(http.MethodGet, "/api/v1/inventory", nil, false, bob)
	require.Equal(t, http.StatusOK, w.Code)
	assert.NotContains(t, w.Body.String(), "egg")

	w = s.doWithHeaders(http.MethodPost, "/api/v1/inventory", gin.H{"name": "milk", "quantity": 1}, false, bob)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.doWithHeaders(http.MethodGet, "/api/v1/inventory", nil, false, bob)
	assert.Contains(t, w.Body.String(), "milk")

	w = s.do(http.MethodGet, "/api/v1/inventory", nil, false)
	assert.NotContains(t, w.Body.String(), "milk")

	// 帶了權杖但伺服器沒有 secret 時拒絕
	w = s.doWithHeaders(http.MethodGet, "/api/v1/inventory", nil, false, map[string]string{"Authorization": "Bearer abc"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_Waitlist(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := s.do(http.MethodPost, "/api/v1/waitlist", gin.H{"email": "cook@example.com"}, false)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "Thank you for joining the waitlist!")
	assert.Equal(t, 1, s.waitlist.Len())

	w = s.do(http.MethodPost, "/api/v1/waitlist", gin.H{"email": "not-an-email"}, false)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Health(t *testing.T) {
	s := newTestServer(t, testConfig(), nil)

	w := s.do(http.MethodGet, "/health", nil, false)
	require.Equal(t, http.StatusOK, w.Code)
	var resp health.HealthResponse
	decode(t, w, &resp)
	assert.Equal(t, "ok", resp.Status)
	require.NotNil(t, resp.Queue)
	assert.Equal(t, 1, resp.Queue.Workers)

	w = s.do(http.MethodGet, "/live", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodGet, "/ready", nil, false)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_ReadinessFailsWhenDependencyDown(t *testing.T) {
	s := newTestServer(t, testConfig(), map[string]health.Pinger{"postgres": failingPinger{}})

	w := s.do(http.MethodGet, "/ready", nil, false)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "connection refused"))
}

func TestSetupRouter_RequiresDependencies(t *testing.T) {
	_, _, err := SetupRouter(testConfig(), Dependencies{})
	require.Error(t, err)
}
