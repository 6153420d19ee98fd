package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pantry-chef/internal/pkg/common"
)

// Interpreter 照片辨識
type Interpreter interface {
	Interpret(ctx context.Context, photo string) (string, error)
}

// AIHandler 視覺辨識處理器
type AIHandler struct {
	interpreter Interpreter
}

// NewAIHandler 創建視覺辨識處理器
func NewAIHandler(interpreter Interpreter) *AIHandler {
	return &AIHandler{interpreter: interpreter}
}

// InterpretRequest 照片辨識請求，photo 為 base64（可帶 data URL 前綴）
type InterpretRequest struct {
	Photo string `json:"photo" binding:"required"`
}

// Interpret 辨識照片中的物品名稱
func (h *AIHandler) Interpret(c *gin.Context) {
	var req InterpretRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, err)
		return
	}

	common.LogInfo("開始處理圖片辨識請求",
		zap.String("request_id", RequestID(c)),
		zap.String("image", common.ImagePrefix(req.Photo)),
	)

	name, err := h.interpreter.Interpret(c.Request.Context(), req.Photo)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"itemName": name})
}
