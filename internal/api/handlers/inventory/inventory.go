package inventory

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pantry-chef/internal/api/handlers"
	inventoryService "pantry-chef/internal/core/inventory"
)

// Handler 庫存處理程序
type Handler struct {
	service *inventoryService.Service
}

// NewHandler 創建庫存處理程序
func NewHandler(service *inventoryService.Service) *Handler {
	return &Handler{service: service}
}

// UpdateQuantityRequest 更新數量請求
type UpdateQuantityRequest struct {
	Quantity *int `json:"quantity" binding:"required"`
}

// List GET /inventory
func (h *Handler) List(c *gin.Context) {
	items, err := h.service.List(c.Request.Context(), handlers.UserID(c))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Search GET /inventory/search?q=
func (h *Handler) Search(c *gin.Context) {
	items, err := h.service.Search(c.Request.Context(), handlers.UserID(c), c.Query("q"))
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// Add POST /inventory
func (h *Handler) Add(c *gin.Context) {
	var req inventoryService.AddRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	item, err := h.service.Add(c.Request.Context(), handlers.UserID(c), req)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// UpdateQuantity PATCH /inventory/:id
func (h *Handler) UpdateQuantity(c *gin.Context) {
	var req UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handlers.BadRequest(c, err)
		return
	}

	item, err := h.service.UpdateQuantity(c.Request.Context(), handlers.UserID(c), c.Param("id"), *req.Quantity)
	if err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

// Remove DELETE /inventory/:id
func (h *Handler) Remove(c *gin.Context) {
	if err := h.service.Remove(c.Request.Context(), handlers.UserID(c), c.Param("id")); err != nil {
		handlers.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
