package recipe

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pantry-chef/internal/api/handlers"
	recipeService "pantry-chef/internal/core/recipe"
	"pantry-chef/internal/pkg/common"
)

// GenerateRequest 生成食譜請求；未提供 ingredients 時使用庫存
type GenerateRequest struct {
	Ingredients []string `json:"ingredients"`
}

// BatchSaveRequest 批次儲存請求
type BatchSaveRequest struct {
	Recipes []recipeService.RecipeData `json:"recipes" binding:"required"`
}

// Handler 食譜處理程序
type Handler struct {
	suggestionService *recipeService.SuggestionService
	bookService       *recipeService.BookService
}

// NewHandler 創建新的食譜處理程序
func NewHandler(suggestionService *recipeService.SuggestionService, bookService *recipeService.BookService) *Handler {
	return &Handler{
		suggestionService: suggestionService,
		bookService:       bookService,
	}
}

// Generate POST /recipes/generate
func (h *Handler) Generate(c *gin.Context) {
	requestID := handlers.RequestID(c)
	userID := handlers.UserID(c)

	var req GenerateRequest
	// 空 body 表示使用庫存
	if c.Request.Body != nil && c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
			handlers.BadRequest(c, err)
			return
		}
	}

	common.LogInfo("開始處理食譜生成請求",
		zap.String("request_id", requestID),
		zap.String("user_id", userID),
		zap.Int("ingredients", len(req.Ingredients)),
	)

	var (
		result *recipeService.GenerateResult
		err    error
	)
	if len(req.Ingredients) > 0 {
		result, err = h.suggestionService.GenerateFromNames(c.Request.Context(), req.Ingredients)
	} else {
		result, err = h.suggestionService.Generate(c.Request.Context(), userID)
	}
	if err != nil {
		handlers.RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// List GET /recipes
func (h *Handler) List(c *gin.Context) {
	recipes, err := h.bookService.List(c.Request.Context(), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recipes": recipes})
}

// Save POST /recipes
func (h *Handler) Save(c *gin.Context) {
	var req recipeService.RecipeData
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	saved, err := h.bookService.Save(c.Request.Context(), handlers.UserID(c), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, saved)
}

// Put PUT /recipes/:id
func (h *Handler) Put(c *gin.Context) {
	var req recipeService.RecipeData
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	saved, err := h.bookService.Put(c.Request.Context(), handlers.UserID(c), c.Param("id"), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, saved)
}

// BatchSave POST /recipes/batch，各筆結果獨立回報
func (h *Handler) BatchSave(c *gin.Context) {
	var req BatchSaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	results := h.bookService.BatchSave(c.Request.Context(), handlers.UserID(c), req.Recipes)

	status := http.StatusOK
	for _, r := range results {
		if r.Error != "" {
			status = http.StatusMultiStatus
			break
		}
	}
	c.JSON(status, gin.H{"results": results})
}

// Delete DELETE /recipes/:id
func (h *Handler) Delete(c *gin.Context) {
	if err := h.bookService.Delete(c.Request.Context(), handlers.UserID(c), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
