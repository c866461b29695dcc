package middleware

import (
	"net/http"
	"strings"

	"github.com/EvertonDSS/corrida-app11/internal/domain"
	"github.com/EvertonDSS/corrida-app11/internal/service"
	"github.com/gin-gonic/gin"
)

// ContextKey constants for gin.Context values set by middleware.
const (
	CtxOperator = "operator"
	CtxRole     = "role"
)

// ──────────────────────────────────────────────────────────────────────────────
// OperatorAuth
// ──────────────────────────────────────────────────────────────────────────────

// OperatorAuth validates the Bearer access token and requires the operator
// role. On success it stores the operator name and role in the gin context.
func OperatorAuth(authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			abortAuth(c, http.StatusUnauthorized, domain.ErrUnauthorized.Error())
			return
		}

		claims, err := authSvc.ParseAccessToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, domain.ErrTokenInvalid.Error())
			return
		}
		if claims.Role != service.RoleOperator {
			abortAuth(c, http.StatusForbidden, "insufficient permissions")
			return
		}

		c.Set(CtxOperator, claims.Subject)
		c.Set(CtxRole, claims.Role)
		c.Next()
	}
}

func abortAuth(c *gin.Context, status int, msg string) {
	code := "ERR_UNAUTHORIZED"
	if status == http.StatusForbidden {
		code = "ERR_FORBIDDEN"
	}
	c.AbortWithStatusJSON(status, gin.H{"success": false, "error": msg, "code": code})
}

// GetOperator returns the authenticated operator name, or "" when
// OperatorAuth did not run.
func GetOperator(c *gin.Context) string {
	v, _ := c.Get(CtxOperator)
	s, _ := v.(string)
	return s
}

// ──────────────────────────────────────────────────────────────────────────────
// IPWhitelist
// ──────────────────────────────────────────────────────────────────────────────

// IPWhitelist blocks requests from client IPs outside allowed. An empty list
// allows everyone.
func IPWhitelist(allowed []string) gin.HandlerFunc {
	if len(allowed) == 0 {
		return func(c *gin.Context) { c.Next() }
	}
	set := make(map[string]bool, len(allowed))
	for _, ip := range allowed {
		set[ip] = true
	}
	return func(c *gin.Context) {
		if !set[c.ClientIP()] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"success": false,
				"error":   "access denied: your IP is not whitelisted",
				"code":    "ERR_FORBIDDEN",
			})
			return
		}
		c.Next()
	}
}
