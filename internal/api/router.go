package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pantry-chef/internal/api/handlers"
	"pantry-chef/internal/api/handlers/health"
	inventoryHandler "pantry-chef/internal/api/handlers/inventory"
	recipeHandler "pantry-chef/internal/api/handlers/recipe"
	waitlistHandler "pantry-chef/internal/api/handlers/waitlist"
	"pantry-chef/internal/api/middleware"
	"pantry-chef/internal/auth"
	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/core/ai/queue"
	"pantry-chef/internal/core/ai/service"
	"pantry-chef/internal/core/image"
	inventoryService "pantry-chef/internal/core/inventory"
	recipeService "pantry-chef/internal/core/recipe"
	waitlistService "pantry-chef/internal/core/waitlist"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"
)

// Dependencies 由 main 建立並注入路由的外部依賴
type Dependencies struct {
	Provider  provider.Provider
	Cache     cache.Store // 可為 nil
	Queue     *queue.Manager
	Inventory inventoryService.Repository
	Recipes   recipeService.Repository
	Waitlist  waitlistService.Repository
	Pingers   map[string]health.Pinger
}

// SetupRouter 設置路由，回傳的 cleanup 需在關閉服務時呼叫
func SetupRouter(cfg *config.Config, deps Dependencies) (*gin.Engine, func(), error) {
	common.LogInfo("Starting router setup",
		zap.Bool("debug_mode", cfg.App.Debug),
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Env),
	)

	if deps.Provider == nil {
		return nil, nil, errors.New("completion provider is required")
	}
	if deps.Inventory == nil || deps.Recipes == nil || deps.Waitlist == nil {
		return nil, nil, errors.New("repositories are required")
	}
	if cfg.Auth.Required && cfg.Auth.JWTSecret == "" {
		return nil, nil, errors.New("jwt secret is required when auth is enabled")
	}

	// 設置 gin 模式
	if !cfg.App.Debug {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// 註冊基礎中間件
	router.Use(middleware.Recovery())
	router.Use(requestid.New()) // 自動生成請求 ID
	router.Use(middleware.Logger())

	// CORS 設置
	router.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.Server.AllowOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Request-ID", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "X-Request-ID"},
		AllowCredentials: !containsWildcard(cfg.Server.AllowOrigins),
		MaxAge:           12 * time.Hour,
	}))

	// 請求體大小限制
	router.Use(middleware.BodySizeLimit(cfg.Server.MaxBodyBytes))
	router.Use(requestTimeout(cfg, cfg.Server.RequestTimeout))

	common.LogInfo("Initializing services",
		zap.Bool("cache_enabled", deps.Cache != nil),
		zap.Bool("queue_enabled", deps.Queue != nil),
		zap.String("model", cfg.OpenRouter.Model),
		zap.String("store", cfg.Store.Backend),
	)

	// 初始化服務
	aiService := service.NewService(deps.Provider, deps.Cache, deps.Queue, service.Options{
		Model:       cfg.OpenRouter.Model,
		VisionModel: cfg.OpenRouter.VisionModel,
		MaxTokens:   cfg.OpenRouter.MaxTokens,

		CacheCompletions: cfg.Cache.Completions,
	})
	imageService := image.NewService(cfg.Image.MaxSizeBytes, cfg.Image.MaxDimension)

	inventorySvc := inventoryService.NewService(deps.Inventory)
	recognitionSvc := inventoryService.NewRecognitionService(aiService, imageService)
	suggestionSvc := recipeService.NewSuggestionService(aiService, inventorySvc, cfg.Recipe.Delimiter, cfg.Recipe.Count)
	bookSvc := recipeService.NewBookService(deps.Recipes, cfg.Recipe.SaveConcurrent)
	waitlistSvc := waitlistService.NewService(deps.Waitlist)

	var tokens *auth.Manager
	if cfg.Auth.JWTSecret != "" {
		tokens = auth.NewManager(cfg.Auth.JWTSecret, 0)
	}

	// 健康檢查路由
	healthHandler := health.NewHandler(cfg, aiService.QueueStatus, deps.Pingers)
	router.GET("/health", healthHandler.HealthCheck)
	router.GET("/ready", healthHandler.ReadinessCheck)
	router.GET("/live", health.LivenessCheck)

	dedup := middleware.NewDeduplicator(cfg.DedupWindow)

	api := router.Group("/api/v1")
	{
		api.POST("/waitlist", waitlistHandler.Join(waitlistSvc))

		protected := api.Group("")
		protected.Use(middleware.Auth(tokens, cfg.Auth.Required))
		if cfg.RateLimit.Enabled {
			limiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
			protected.Use(middleware.RateLimit(limiter, cfg.RateLimit.Window))
		}
		// 庫存新增是累加語意，重複送出要合併兩次，不做去重
		dedupe := dedup.Middleware()

		inventoryHandlerInstance := inventoryHandler.NewHandler(inventorySvc)
		inventoryGroup := protected.Group("/inventory")
		{
			inventoryGroup.GET("", inventoryHandlerInstance.List)
			inventoryGroup.POST("", inventoryHandlerInstance.Add)
			inventoryGroup.GET("/search", inventoryHandlerInstance.Search)
			inventoryGroup.PATCH("/:id", inventoryHandlerInstance.UpdateQuantity)
			inventoryGroup.DELETE("/:id", inventoryHandlerInstance.Remove)
		}

		recipeHandlerInstance := recipeHandler.NewHandler(suggestionSvc, bookSvc)
		recipeGroup := protected.Group("/recipes", dedupe)
		{
			recipeGroup.POST("/generate", recipeHandlerInstance.Generate)
			recipeGroup.GET("", recipeHandlerInstance.List)
			recipeGroup.POST("", recipeHandlerInstance.Save)
			recipeGroup.POST("/batch", recipeHandlerInstance.BatchSave)
			recipeGroup.PUT("/:id", recipeHandlerInstance.Put)
			recipeGroup.DELETE("/:id", recipeHandlerInstance.Delete)
		}

		aiHandler := handlers.NewAIHandler(recognitionSvc)
		protected.POST("/vision/interpret", dedupe, aiHandler.Interpret)
	}

	common.LogInfo("Router setup completed successfully",
		zap.Bool("auth_required", cfg.Auth.Required),
		zap.Bool("rate_limit_enabled", cfg.RateLimit.Enabled),
		zap.Duration("timeout", cfg.Server.RequestTimeout),
		zap.Int64("max_body_size", cfg.Server.MaxBodyBytes),
	)

	return router, dedup.Close, nil
}

// requestTimeout 設置請求超時並注入設定
func requestTimeout(cfg *config.Config, timeout time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set("config", cfg)
		if timeout <= 0 {
			c.Next()
			return
		}

		ctx, cancel := context.WithTimeout(c.Request.Context(), timeout)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		// 處理程序未回應時補上超時錯誤
		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			common.LogError("Request timeout",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", handlers.RequestID(c)),
				zap.Duration("timeout", timeout),
			)
			c.AbortWithStatusJSON(http.StatusGatewayTimeout, common.ErrorResponse{
				Code:    common.ErrCodeGatewayTimeout,
				Message: fmt.Sprintf("request timed out after %s", timeout),
			})
		}
	}
}

func containsWildcard(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}
