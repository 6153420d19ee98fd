package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"pantry-chef/internal/auth"
	"pantry-chef/internal/pkg/common"
)

const (
	// ContextUserID 驗證後的使用者 id
	ContextUserID = "userID"
	// ContextUserEmail 驗證後的使用者 email
	ContextUserEmail = "userEmail"

	// DefaultLocalUser 停用驗證時的預設使用者
	DefaultLocalUser = "local"
)

// Auth 驗證 Bearer 權杖並將使用者 id 放入 context
// required 為 false 時，未帶權杖的請求以 X-User-ID 或預設使用者處理
func Auth(tokens *auth.Manager, required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")

		if authHeader == "" {
			if required {
				abortUnauthorized(c, "missing authorization header")
				return
			}
			userID := strings.TrimSpace(c.GetHeader("X-User-ID"))
			if userID == "" {
				userID = DefaultLocalUser
			}
			c.Set(ContextUserID, userID)
			c.Next()
			return
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || tokens == nil {
			abortUnauthorized(c, "invalid authorization format, use 'Bearer <token>'")
			return
		}

		userID, email, err := tokens.ValidateToken(strings.TrimSpace(parts[1]))
		if err != nil {
			common.LogWarn("Token validation failed",
				zap.Error(err),
				zap.String("path", c.Request.URL.Path),
			)
			abortUnauthorized(c, "invalid token")
			return
		}

		c.Set(ContextUserID, userID)
		c.Set(ContextUserEmail, email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, msg string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"error": msg,
		"code":  common.ErrCodeUnauthorized,
	})
}
