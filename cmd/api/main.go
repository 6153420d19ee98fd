package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"pantry-chef/internal/api"
	"pantry-chef/internal/api/handlers/health"
	"pantry-chef/internal/core/ai/cache"
	"pantry-chef/internal/core/ai/queue"
	"pantry-chef/internal/core/inventory"
	"pantry-chef/internal/core/recipe"
	"pantry-chef/internal/core/service"
	"pantry-chef/internal/core/waitlist"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/infrastructure/db"
	"pantry-chef/internal/pkg/common"
)

func main() {
	// 載入設定（含 .env）
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 初始化 logger（需在載入 config 後）
	if err := common.InitLogger(cfg.LogLevel, cfg.LogDir); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer common.Sync()

	common.LogInfo("載入設定",
		zap.String("openrouter_api_key", common.MaskSecret(cfg.OpenRouter.APIKey)),
		zap.String("openrouter_model", cfg.OpenRouter.Model),
		zap.String("store", cfg.Store.Backend),
		zap.Bool("auth_required", cfg.Auth.Required),
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	deps := api.Dependencies{Pingers: map[string]health.Pinger{}}

	// 初始化儲存
	switch cfg.Store.Backend {
	case "postgres":
		pool, err := db.Connect(ctx, cfg.Database)
		if err != nil {
			common.LogFatal("Failed to connect to postgres", zap.Error(err))
		}
		defer pool.Close()

		if err := db.EnsureSchema(ctx, pool); err != nil {
			common.LogFatal("Failed to initialize schema", zap.Error(err))
		}

		deps.Inventory = inventory.NewPostgresRepository(pool)
		deps.Recipes = recipe.NewPostgresRepository(pool)
		deps.Waitlist = waitlist.NewPostgresRepository(pool)
		deps.Pingers["postgres"] = pool
	default:
		deps.Inventory = inventory.NewMemoryRepository()
		deps.Recipes = recipe.NewMemoryRepository()
		deps.Waitlist = waitlist.NewMemoryRepository()
	}

	// 初始化快取
	if cfg.Cache.Enabled {
		switch cfg.Cache.Backend {
		case "redis":
			redisCache, err := cache.NewService(ctx, cfg.Cache)
			if err != nil {
				common.LogFatal("Failed to initialize redis cache", zap.Error(err))
			}
			defer redisCache.Close()
			deps.Cache = redisCache
			deps.Pingers["redis"] = redisCache
		default:
			cacheManager := cache.NewManager(cfg.Cache)
			defer cacheManager.Close()
			deps.Cache = cacheManager
		}
	}

	// 上游請求隊列
	queueManager := queue.NewManager(cfg.Queue.Workers, cfg.Queue.MaxSize)
	queueManager.Start()
	defer queueManager.Close()
	deps.Queue = queueManager

	openRouter := service.NewOpenRouterService(cfg.OpenRouter)
	defer openRouter.Close()
	deps.Provider = openRouter

	// 設置路由
	router, cleanup, err := api.SetupRouter(cfg, deps)
	if err != nil {
		common.LogError("Failed to setup router", zap.Error(err))
		os.Exit(1)
	}
	defer cleanup()

	// 設置 HTTP 服務器
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// 啟動服務器
	go func() {
		common.LogInfo("啟動應用",
			zap.String("version", cfg.App.Version),
			zap.String("env", cfg.App.Env),
			zap.Int("port", cfg.Server.Port),
		)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			common.LogFatal("Failed to start server", zap.Error(err))
		}
	}()

	// 等待中斷信號
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	common.LogInfo("Shutting down server...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		common.LogError("Server forced to shutdown", zap.Error(err))
	}

	common.LogInfo("Server exited")
}
