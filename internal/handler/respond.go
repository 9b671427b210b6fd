package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"velanspaces/internal/repository"
	"velanspaces/internal/service/project"
	"velanspaces/internal/service/storage"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

// timeNow is swapped out in tests that assert date-derived fields.
var timeNow = time.Now

// principal pulls the authenticated caller stored by the auth middleware.
func principal(c *gin.Context) util.Principal {
	v, _ := c.Get("principal")
	p, _ := v.(util.Principal)
	return p
}

// respondError maps domain errors onto HTTP statuses. Absent documents are
// invalid ids presented as 404, never a crash.
func respondError(c *gin.Context, err error) {
	var denied *rbac.PermissionDeniedError
	switch {
	case errors.Is(err, repository.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.As(err, &denied), errors.Is(err, project.ErrScopeDenied), errors.Is(err, storage.ErrScopeDenied):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, project.ErrApprovalNotRequired):
		c.JSON(http.StatusConflict, gin.H{"error": "design does not require approval"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
