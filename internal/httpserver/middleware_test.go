package httpserver

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"velanspaces/pkg/rbac"
	"velanspaces/pkg/trace"
	"velanspaces/pkg/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestTraceMiddlewareGeneratesID(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/", func(c *gin.Context) {
		assert.NotEmpty(t, trace.FromContext(c.Request.Context()))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.NotEmpty(t, w.Header().Get(trace.HeaderName()))
}

func TestTraceMiddlewarePropagatesID(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware())
	r.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(trace.HeaderName(), "abc123")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "abc123", w.Header().Get(trace.HeaderName()))
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"

	r := gin.New()
	r.Use(AuthMiddleware(secret, zap.NewNop()))
	r.GET("/", func(c *gin.Context) {
		v, _ := c.Get("principal")
		p := v.(util.Principal)
		c.JSON(http.StatusOK, gin.H{"sub": p.Subject})
	})

	t.Run("missing token", func(t *testing.T) {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("bad token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer nope")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, err := util.GenerateJWT(util.Principal{
			Subject: "admin",
			Role:    rbac.RoleHead,
			Scope:   []string{"*"},
		}, secret, time.Hour)
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "admin")
	})
}

func TestRequirePermission(t *testing.T) {
	r := gin.New()
	r.GET("/",
		func(c *gin.Context) {
			c.Set("principal", util.Principal{Subject: "w1", Role: rbac.RoleWorker, Scope: []string{"PRJ12345"}})
		},
		RequirePermission(rbac.PermissionPostUpdate),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusForbidden, w.Code)

	r2 := gin.New()
	r2.GET("/",
		func(c *gin.Context) {
			c.Set("principal", util.Principal{Subject: "MGR1", Role: rbac.RoleManager, Scope: []string{"PRJ12345"}})
		},
		RequirePermission(rbac.PermissionPostUpdate),
		func(c *gin.Context) { c.Status(http.StatusOK) },
	)

	w2 := httptest.NewRecorder()
	r2.ServeHTTP(w2, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, w2.Code)
}

func TestRequirePermissionWithoutPrincipal(t *testing.T) {
	r := gin.New()
	r.GET("/", RequirePermission(rbac.PermissionPostUpdate), func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
