package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"pantry-chef/internal/api/middleware"
	"pantry-chef/internal/pkg/common"
)

// RequestID 取得請求 ID，沒有時產生新的並寫入響應標頭
func RequestID(c *gin.Context) string {
	if id := requestid.Get(c); id != "" {
		return id
	}
	if id := c.GetHeader("X-Request-ID"); id != "" {
		return id
	}
	id := uuid.New().String()
	c.Header("X-Request-ID", id)
	return id
}

// UserID 取得驗證中間件設定的使用者 id
func UserID(c *gin.Context) string {
	return c.GetString(middleware.ContextUserID)
}

// BadRequest 回應請求格式錯誤
func BadRequest(c *gin.Context, err error) {
	common.LogWarn("請求格式無效",
		zap.Error(err),
		zap.String("request_id", RequestID(c)),
		zap.String("path", c.Request.URL.Path),
	)
	c.AbortWithStatusJSON(http.StatusBadRequest, common.ErrorResponse{
		Code:    common.ErrCodeInvalidRequest,
		Message: "Invalid request format",
		Details: err.Error(),
	})
}

// RespondError 依錯誤類型回應對應的狀態碼與錯誤碼
func RespondError(c *gin.Context, err error) {
	var ce *common.CustomError
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		ce = common.ErrGatewayTimeout.Wrap(err)
	case errors.Is(err, context.Canceled):
		ce = common.ErrRequestTimeout.Wrap(err)
	default:
		ce = common.ResolveError(err)
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("code", ce.Code),
		zap.String("request_id", RequestID(c)),
		zap.String("path", c.Request.URL.Path),
	}
	if ce.Status >= http.StatusInternalServerError {
		common.LogError("請求處理失敗", fields...)
	} else {
		common.LogWarn("請求處理失敗", fields...)
	}

	resp := common.ErrorResponse{Code: ce.Code, Message: ce.Message}
	var ve *common.ValidationError
	if errors.As(err, &ve) {
		resp.Message = ve.Error()
	} else if gin.Mode() == gin.DebugMode && ce.Err != nil {
		resp.Details = ce.Err.Error()
	}

	_ = c.Error(err)
	c.AbortWithStatusJSON(ce.Status, resp)
}
