package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// RequirePermission rejects callers whose role lacks the permission. Scope
// checks against the target project happen in the services, which also know
// when a permission is further narrowed (e.g. a client approving designs).
func RequirePermission(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := c.Get("principal")
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing token"})
			return
		}
		p, _ := v.(util.Principal)

		if !rbac.HasPermission(p.Role, permission) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden"})
			return
		}
		c.Next()
	}
}
