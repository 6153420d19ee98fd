package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config 應用配置
type Config struct {
	App         AppConfig        `mapstructure:"app"`
	Server      ServerConfig     `mapstructure:"server"`
	OpenRouter  OpenRouterConfig `mapstructure:"openrouter"`
	Cache       CacheConfig      `mapstructure:"cache"`
	Queue       QueueConfig      `mapstructure:"queue"`
	RateLimit   RateLimitConfig  `mapstructure:"rate_limit"`
	Image       ImageConfig      `mapstructure:"image"`
	Store       StoreConfig      `mapstructure:"store"`
	Database    DatabaseConfig   `mapstructure:"database"`
	Auth        AuthConfig       `mapstructure:"auth"`
	Recipe      RecipeConfig     `mapstructure:"recipe"`
	DedupWindow time.Duration    `mapstructure:"dedup_window"`
	LogLevel    string           `mapstructure:"log_level"`
	LogDir      string           `mapstructure:"log_dir"`
}

// AppConfig 應用程式設定
type AppConfig struct {
	Env     string `mapstructure:"env"`
	Debug   bool   `mapstructure:"debug"`
	Version string `mapstructure:"version"`
	Name    string `mapstructure:"name"`
}

// ServerConfig 服務器配置
type ServerConfig struct {
	Port           int           `mapstructure:"port"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout"`
	IdleTimeout    time.Duration `mapstructure:"idle_timeout"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxBodyBytes   int64         `mapstructure:"max_body_bytes"`
	AllowOrigins   []string      `mapstructure:"allow_origins"`
}

// OpenRouterConfig OpenRouter（OpenAI 相容）配置
type OpenRouterConfig struct {
	APIKey      string        `mapstructure:"api_key"`
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	VisionModel string        `mapstructure:"vision_model"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// CacheConfig 緩存配置
type CacheConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Backend         string        `mapstructure:"backend"` // memory | redis
	Completions     bool          `mapstructure:"completions"` // 文字生成也走快取，預設每次重新生成
	MaxSize         int           `mapstructure:"max_size"`
	TTL             time.Duration `mapstructure:"ttl"`
	CleanupInterval time.Duration `mapstructure:"cleanup_interval"`
	RedisAddr       string        `mapstructure:"redis_addr"`
	RedisPassword   string        `mapstructure:"redis_password"`
	RedisDB         int           `mapstructure:"redis_db"`
}

// QueueConfig 上游請求隊列設定
type QueueConfig struct {
	Workers int `mapstructure:"workers"`
	MaxSize int `mapstructure:"max_size"`
}

// RateLimitConfig 速率限制配置
type RateLimitConfig struct {
	Enabled  bool          `mapstructure:"enabled"`
	Requests int           `mapstructure:"requests"`
	Window   time.Duration `mapstructure:"window"`
}

// ImageConfig 圖片配置
type ImageConfig struct {
	MaxSizeBytes int64 `mapstructure:"max_size_bytes"`
	MaxDimension int   `mapstructure:"max_dimension"`
}

// StoreConfig 資料儲存後端設定
type StoreConfig struct {
	Backend string `mapstructure:"backend"` // memory | postgres
}

// DatabaseConfig Postgres 連線設定
type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	MaxConnLifetime time.Duration `mapstructure:"max_conn_lifetime"`
}

// AuthConfig 驗證設定
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Required  bool   `mapstructure:"required"`
}

// RecipeConfig 食譜生成設定
type RecipeConfig struct {
	Delimiter      string `mapstructure:"delimiter"`
	Count          int    `mapstructure:"count"`
	SaveConcurrent int    `mapstructure:"save_concurrency"`
}

// LoadConfig 載入設定（.env 檔不存在時只使用環境變數與預設值）
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	return load(viper.New())
}

func load(v *viper.Viper) (*Config, error) {
	setDefaults(v)

	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// 綁定常用的無前綴環境變數
	bindings := map[string]string{
		"openrouter.api_key":      "OPENROUTER_API_KEY",
		"openrouter.base_url":     "OPENROUTER_BASE_URL",
		"openrouter.model":        "OPENROUTER_MODEL",
		"openrouter.vision_model": "OPENROUTER_VISION_MODEL",
		"openrouter.max_tokens":   "MODEL_MAX_TOKENS",
		"cache.enabled":           "CACHE_ENABLED",
		"cache.backend":           "CACHE_BACKEND",
		"cache.completions":       "CACHE_COMPLETIONS",
		"cache.redis_addr":        "REDIS_ADDR",
		"cache.redis_password":    "REDIS_PASSWORD",
		"rate_limit.enabled":      "RATE_LIMIT_ENABLED",
		"rate_limit.requests":     "RATE_LIMIT_REQUESTS",
		"rate_limit.window":       "RATE_LIMIT_WINDOW",
		"store.backend":           "STORE_BACKEND",
		"database.url":            "DATABASE_URL",
		"auth.jwt_secret":         "JWT_SECRET",
		"auth.required":           "AUTH_REQUIRED",
		"dedup_window":            "DEDUP_WINDOW",
		"log_level":               "LOG_LEVEL",
		"server.port":             "PORT",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, "APP_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_")), env); err != nil {
			return nil, fmt.Errorf("failed to bind env %s: %w", env, err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}

// setDefaults 設定預設值
func setDefaults(v *viper.Viper) {
	// 應用程式設定
	v.SetDefault("app.env", "development")
	v.SetDefault("app.debug", true)
	v.SetDefault("app.version", "1.0.0")
	v.SetDefault("app.name", "pantry-chef")

	// 伺服器設定
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "90s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.request_timeout", "75s")
	v.SetDefault("server.max_body_bytes", 10<<20)
	v.SetDefault("server.allow_origins", []string{"*"})

	// OpenRouter 設定
	v.SetDefault("openrouter.base_url", "https://openrouter.ai/api/v1")
	v.SetDefault("openrouter.model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.vision_model", "openai/gpt-4o-mini")
	v.SetDefault("openrouter.max_tokens", 1500)
	v.SetDefault("openrouter.timeout", "60s")

	// 快取設定
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.backend", "memory")
	v.SetDefault("cache.completions", false)
	v.SetDefault("cache.max_size", 1000)
	v.SetDefault("cache.ttl", "1h")
	v.SetDefault("cache.cleanup_interval", "10m")
	v.SetDefault("cache.redis_addr", "localhost:6379")
	v.SetDefault("cache.redis_db", 0)

	// 隊列設定
	v.SetDefault("queue.workers", 4)
	v.SetDefault("queue.max_size", 100)

	// 限流設定
	v.SetDefault("rate_limit.enabled", true)
	v.SetDefault("rate_limit.requests", 60)
	v.SetDefault("rate_limit.window", "1m")

	// 圖片設定
	v.SetDefault("image.max_size_bytes", 8*1024*1024)
	v.SetDefault("image.max_dimension", 1200)

	// 儲存設定
	v.SetDefault("store.backend", "memory")
	v.SetDefault("database.max_conns", 10)
	v.SetDefault("database.min_conns", 2)
	v.SetDefault("database.max_conn_lifetime", "1h")

	// 驗證設定
	v.SetDefault("auth.required", true)

	// 食譜設定
	v.SetDefault("recipe.delimiter", "###")
	v.SetDefault("recipe.count", 4)
	v.SetDefault("recipe.save_concurrency", 4)

	v.SetDefault("dedup_window", "1s")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_dir", "logs")
}

// validateConfig 驗證設定
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Cache.Enabled {
		switch config.Cache.Backend {
		case "memory":
			if config.Cache.MaxSize <= 0 {
				return fmt.Errorf("invalid cache max size")
			}
			if config.Cache.CleanupInterval <= 0 {
				return fmt.Errorf("invalid cache cleanup interval")
			}
		case "redis":
			if config.Cache.RedisAddr == "" {
				return fmt.Errorf("redis address is required for redis cache")
			}
		default:
			return fmt.Errorf("unknown cache backend %q", config.Cache.Backend)
		}
		if config.Cache.TTL <= 0 {
			return fmt.Errorf("invalid cache ttl")
		}
	}

	if config.Queue.Workers <= 0 {
		return fmt.Errorf("invalid queue workers")
	}
	if config.Queue.MaxSize <= 0 {
		return fmt.Errorf("invalid queue max size")
	}

	switch config.Store.Backend {
	case "memory":
	case "postgres":
		if config.Database.URL == "" {
			return fmt.Errorf("database url is required for postgres store")
		}
	default:
		return fmt.Errorf("unknown store backend %q", config.Store.Backend)
	}

	if config.Auth.Required && config.Auth.JWTSecret == "" {
		return fmt.Errorf("jwt secret is required when auth is enabled")
	}

	if config.Recipe.Delimiter == "" {
		return fmt.Errorf("recipe delimiter must not be empty")
	}
	if config.Recipe.Count <= 0 {
		return fmt.Errorf("invalid recipe count")
	}

	return nil
}
