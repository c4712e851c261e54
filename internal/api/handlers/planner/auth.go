package planner

import (
	"net/http"
	"time"

	"meal-planner/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// LoginRequest 共用密碼登入
type LoginRequest struct {
	Password string `json:"password" binding:"required"`
}

// LoginResponse 登入成功
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// HandleLogin 驗證密碼並簽發權杖
func (h *Handler) HandleLogin(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	token, expires, err := h.auth.Login(req.Password)
	if err != nil {
		common.LogWarn("登入失敗",
			zap.String("client_ip", c.ClientIP()),
			zap.String("request_id", common.RequestID(c)),
		)
		common.WriteError(c, err)
		return
	}

	common.LogInfo("登入成功", zap.String("client_ip", c.ClientIP()))
	c.JSON(http.StatusOK, LoginResponse{Token: token, ExpiresAt: expires})
}
