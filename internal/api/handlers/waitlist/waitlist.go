package waitlist

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"pantry-chef/internal/api/handlers"
	waitlistService "pantry-chef/internal/core/waitlist"
)

// JoinRequest 加入等候名單請求
type JoinRequest struct {
	Email string `json:"email" binding:"required"`
}

// Join POST /waitlist
func Join(service *waitlistService.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req JoinRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			handlers.BadRequest(c, err)
			return
		}

		if _, err := service.Join(c.Request.Context(), req.Email); err != nil {
			handlers.RespondError(c, err)
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "Thank you for joining the waitlist!"})
	}
}
