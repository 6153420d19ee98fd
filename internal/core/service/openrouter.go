package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"pantry-chef/internal/core/ai"
	"pantry-chef/internal/core/ai/provider"
	"pantry-chef/internal/infrastructure/config"
	"pantry-chef/internal/pkg/common"
)

// OpenRouterService OpenAI 相容的 chat completions 客戶端
type OpenRouterService struct {
	config config.OpenRouterConfig
	client *resty.Client
}

var _ provider.Provider = (*OpenRouterService)(nil)

// NewOpenRouterService 創建 OpenRouter 服務
func NewOpenRouterService(cfg config.OpenRouterConfig) *OpenRouterService {
	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.BaseURL, "/")).
		SetTimeout(cfg.Timeout).
		SetAuthToken(cfg.APIKey).
		SetHeader("Content-Type", "application/json").
		SetHeader("HTTP-Referer", "https://pantry-chef.app").
		SetHeader("X-Title", "Pantry Chef")

	return &OpenRouterService{
		config: cfg,
		client: client,
	}
}

// Complete 送出 chat completions 請求
func (s *OpenRouterService) Complete(ctx context.Context, req *ai.Request) (*ai.Response, error) {
	body := common.ChatRequest{
		Model:     req.Model,
		Messages:  req.Messages,
		MaxTokens: req.MaxTokens,
	}
	if body.Model == "" {
		body.Model = s.config.Model
	}
	if body.MaxTokens == 0 {
		body.MaxTokens = s.config.MaxTokens
	}

	start := time.Now()
	resp, err := s.client.R().
		SetContext(ctx).
		SetBody(body).
		Post("/chat/completions")
	if err != nil {
		common.LogAICall(body.Model, time.Since(start), err, "")
		return nil, common.ErrUpstreamFailure.Wrap(fmt.Errorf("failed to send request: %w", err))
	}

	if resp.StatusCode() != http.StatusOK {
		sanitized := sanitizeResponse(resp.Body())
		err := fmt.Errorf("upstream status %d: %s", resp.StatusCode(), upstreamMessage(resp.Body(), sanitized))
		common.LogError("AI service returned error status",
			zap.Int("status_code", resp.StatusCode()),
			zap.String("model", body.Model),
			zap.String("response", sanitized),
		)
		return nil, common.ErrUpstreamFailure.Wrap(err)
	}

	var result common.ChatResponse
	if err := common.ParseJSONBytes(resp.Body(), &result); err != nil {
		return nil, common.ErrUpstreamFailure.Wrap(fmt.Errorf("failed to parse response: %w", err))
	}
	if len(result.Choices) == 0 {
		return nil, common.ErrUpstreamFailure.Wrap(fmt.Errorf("no choices in response"))
	}

	common.LogAICall(body.Model, time.Since(start), nil, "")

	model := result.Model
	if model == "" {
		model = body.Model
	}
	return &ai.Response{
		Content: result.Choices[0].Message.Content,
		Model:   model,
		Usage:   result.Usage,
	}, nil
}

// GetModel 獲取預設文字模型
func (s *OpenRouterService) GetModel() string {
	return s.config.Model
}

// GetTimeout 獲取請求超時時間
func (s *OpenRouterService) GetTimeout() time.Duration {
	return s.config.Timeout
}

// Close 關閉閒置連線
func (s *OpenRouterService) Close() error {
	s.client.GetClient().CloseIdleConnections()
	return nil
}

// upstreamMessage 取出上游錯誤訊息，無法解析時使用清理後的響應
func upstreamMessage(body []byte, fallback string) string {
	var e common.ChatErrorResponse
	if err := common.ParseJSONBytes(body, &e); err == nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return fallback
}

// sanitizeResponse 移除響應中的圖片資料，避免寫入日誌
func sanitizeResponse(body []byte) string {
	s := string(body)
	if strings.Contains(s, "data:image/") {
		return "[IMAGE_DATA_REMOVED]"
	}
	if len(body) > 100 && strings.Contains(s, "base64") {
		return "[BASE64_DATA_REMOVED]"
	}
	if len(s) > 512 {
		return s[:512] + "...(truncated)"
	}
	return s
}
