package handler

import (
	"net/http"

	"github.com/fabworks/moldline/internal/auth"
	"github.com/fabworks/moldline/internal/config"
	"github.com/gin-gonic/gin"
)

// AuthHandler 认证处理器：登录/回调委托给Google提供方，
// 其余端点只做会话自省与终止。
type AuthHandler struct {
	google *auth.Google
	cfg    *config.Config
}

// NewAuthHandler 创建认证处理器
func NewAuthHandler(google *auth.Google, cfg *config.Config) *AuthHandler {
	return &AuthHandler{google: google, cfg: cfg}
}

// GoogleLogin 重定向到Google授权页
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	h.google.Login(c)
}

// GoogleCallback 授权回调
func (h *AuthHandler) GoogleCallback(c *gin.Context) {
	h.google.Callback(c)
}

// Status 会话自省：不要求登录，报告当前会话状态
func (h *AuthHandler) Status(c *gin.Context) {
	cookie, err := c.Cookie(h.cfg.Session.CookieName)
	if err != nil || cookie == "" {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	claims, err := auth.ParseSession(h.cfg.Session.Secret, cookie)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"authenticated": false})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"authenticated": true,
		"user":          claims.Identity(),
	})
}

// Success 登录成功页
func (h *AuthHandler) Success(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "sign-in complete"})
}

// Failure 登录失败页
func (h *AuthHandler) Failure(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{
		"error":   "Unauthorized",
		"message": "sign-in failed; retry at /auth/google",
	})
}

// Logout 终止会话
func (h *AuthHandler) Logout(c *gin.Context) {
	h.google.Logout(c)
}
