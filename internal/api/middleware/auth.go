package middleware

import (
	"strings"

	"meal-planner/internal/core/auth"
	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ContextKeySubject 權杖 ID 在 gin context 中的鍵
const ContextKeySubject = "auth_subject"

// Auth 驗證 Authorization: Bearer 權杖
func Auth(svc *auth.Service) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			common.WriteError(c, common.ErrUnauthorized)
			return
		}

		claims, err := svc.Verify(strings.TrimSpace(token))
		if err != nil {
			common.LogDebug("權杖驗證失敗",
				zap.String("path", c.Request.URL.Path),
				zap.String("request_id", common.RequestID(c)),
				zap.Error(err),
			)
			common.WriteError(c, err)
			return
		}

		c.Set(ContextKeySubject, claims.ID)
		c.Next()
	}
}
