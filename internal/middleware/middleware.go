package middleware

import (
	"errors"
	"net/http"
	"time"

	"github.com/fabworks/moldline/internal/apperr"
	"github.com/fabworks/moldline/internal/auth"
	"github.com/fabworks/moldline/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Logger 日志中间件
func Logger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path
		query := c.Request.URL.RawQuery

		c.Next()

		latency := time.Since(start)
		status := c.Writer.Status()

		fields := []zap.Field{
			zap.Int("status", status),
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.String("query", query),
			zap.String("ip", c.ClientIP()),
			zap.Duration("latency", latency),
			zap.String("request_id", c.GetString("request_id")),
		}

		if email, exists := c.Get("user_email"); exists {
			fields = append(fields, zap.String("user_email", email.(string)))
		}

		if status >= 500 {
			logger.Error("Server error", fields...)
		} else if status >= 400 {
			logger.Warn("Client error", fields...)
		} else {
			logger.Info("Request", fields...)
		}
	}
}

// CORS 跨域中间件
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, Authorization, accept, origin, Cache-Control, X-Requested-With, X-Request-ID")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}

		c.Next()
	}
}

// RequestID 请求ID中间件
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := c.Request.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		c.Set("request_id", requestID)
		c.Writer.Header().Set("X-Request-ID", requestID)
		c.Next()
	}
}

// SessionAuth 会话认证门：校验会话Cookie，成功则把身份写入请求上下文，
// 失败立即401，不进入后续handler。本身不发起登录流程。
func SessionAuth(secret, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		cookie, err := c.Cookie(cookieName)
		if err != nil || cookie == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   string(apperr.CodeUnauthorized),
				"message": "no session; sign in at /auth/google",
			})
			return
		}

		claims, err := auth.ParseSession(secret, cookie)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error":   string(apperr.CodeUnauthorized),
				"message": "session is invalid or expired; sign in at /auth/google",
			})
			return
		}

		c.Set("user_id", claims.Subject)
		c.Set("user_email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Next()
	}
}

// RequireCapability 能力检查中间件。域名检查在 auth.Authorize 中计算，
// 默认配置下对所有已认证身份放行。
func RequireCapability(capability string, cfg config.AuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString("user_email")
		if err := auth.Authorize(email, capability, cfg.EnforceDomain, cfg.AllowedDomains); err != nil {
			code := apperr.CodeForbidden
			var ae *apperr.Error
			if errors.As(err, &ae) {
				code = ae.Code
			}
			c.AbortWithStatusJSON(apperr.Status(err), gin.H{
				"error":   string(code),
				"message": err.Error(),
			})
			return
		}
		c.Next()
	}
}
