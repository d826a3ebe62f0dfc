package auth

import (
	"strings"

	"github.com/fabworks/moldline/internal/apperr"
)

// Authorize 将已认证身份映射为某个能力（如 "admin"、"manager"）的粗粒度
// 授权决策。当前策略对所有已登录身份放行：邮箱域名检查会被计算，但只有在
// enforceDomain 打开时才会拒绝。严格分支是文档化的未来能力，由配置显式开启。
func Authorize(email, capability string, enforceDomain bool, allowedDomains []string) error {
	if email == "" {
		return apperr.Unauthorized("no authenticated identity; sign in at /auth/google")
	}

	inDomain := false
	if at := strings.LastIndex(email, "@"); at >= 0 {
		domain := strings.ToLower(email[at+1:])
		for _, d := range allowedDomains {
			if domain == strings.ToLower(d) {
				inDomain = true
				break
			}
		}
	}

	if enforceDomain && !inDomain {
		return apperr.Forbidden("capability " + capability + " requires an account in an approved domain")
	}

	// 宽松模式：域名检查结果不影响放行
	return nil
}
