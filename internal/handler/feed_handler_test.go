package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/pkg/rbac"
	"velanspaces/pkg/util"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type fakeFeedService struct {
	updates      []model.ProjectUpdate
	lastPosted   *model.ProjectUpdate
	commentCalls int
	commentErr   error
}

func (f *fakeFeedService) ListUpdates(context.Context, util.Principal, string) ([]model.ProjectUpdate, error) {
	return f.updates, nil
}

func (f *fakeFeedService) PostUpdate(_ context.Context, _ util.Principal, projectID string, u model.ProjectUpdate) (*model.ProjectUpdate, error) {
	u.ProjectID = projectID
	f.lastPosted = &u
	return &u, nil
}

func (f *fakeFeedService) AddComment(_ context.Context, _ util.Principal, _, _ string, c model.Comment) (*model.Comment, error) {
	f.commentCalls++
	if f.commentErr != nil {
		return nil, f.commentErr
	}
	return &c, nil
}

// fakeDeduper mirrors the redis SetNX/Del contract in a map.
type fakeDeduper struct {
	held map[string]bool
}

func newFakeDeduper() *fakeDeduper { return &fakeDeduper{held: map[string]bool{}} }

func (d *fakeDeduper) AcquireOnce(_ context.Context, scope string, id string) bool {
	key := scope + ":" + id
	if d.held[key] {
		return false
	}
	d.held[key] = true
	return true
}

func (d *fakeDeduper) Release(_ context.Context, scope string, id string) {
	delete(d.held, scope+":"+id)
}

func feedRouter(svc feedService, deduper commentDeduper) *gin.Engine {
	h := NewFeedHandler(svc, deduper, zap.NewNop())
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("principal", util.Principal{Subject: "MGR1", Name: "Priya", Role: rbac.RoleManager, Scope: []string{"PRJ12345"}})
	})
	r.POST("/projects/:id/updates", h.Post)
	r.POST("/projects/:id/updates/:updateId/comments", h.Comment)
	return r
}

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPostUpdateDefaultsClientViewable(t *testing.T) {
	svc := &fakeFeedService{}
	r := feedRouter(svc, newFakeDeduper())

	w := postJSON(t, r, "/projects/PRJ12345/updates", `{"content":"tiles done"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	require.NotNil(t, svc.lastPosted)
	assert.True(t, svc.lastPosted.IsClientViewable)

	w = postJSON(t, r, "/projects/PRJ12345/updates", `{"content":"internal note","isClientViewable":false}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.False(t, svc.lastPosted.IsClientViewable)
}

func TestPostUpdateRejectsBadProgress(t *testing.T) {
	r := feedRouter(&fakeFeedService{}, newFakeDeduper())

	w := postJSON(t, r, "/projects/PRJ12345/updates", `{"content":"x","progressPercentage":140}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCommentDuplicateSuppressed(t *testing.T) {
	svc := &fakeFeedService{}
	r := feedRouter(svc, newFakeDeduper())

	w := postJSON(t, r, "/projects/PRJ12345/updates/u1/comments", `{"id":"c1","text":"nice"}`)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 1, svc.commentCalls)

	// same id again: short-circuits before the service
	w = postJSON(t, r, "/projects/PRJ12345/updates/u1/comments", `{"id":"c1","text":"nice"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate")
	assert.Equal(t, 1, svc.commentCalls)
}

func TestCommentRetryAfterFailureIsNotSwallowed(t *testing.T) {
	svc := &fakeFeedService{commentErr: errors.New("db down")}
	deduper := newFakeDeduper()
	r := feedRouter(svc, deduper)

	w := postJSON(t, r, "/projects/PRJ12345/updates/u1/comments", `{"id":"c1","text":"nice"}`)
	require.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Empty(t, deduper.held, "failed write must release the dedup key")

	// the retry reaches the service instead of reporting a phantom duplicate
	svc.commentErr = nil
	w = postJSON(t, r, "/projects/PRJ12345/updates/u1/comments", `{"id":"c1","text":"nice"}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, 2, svc.commentCalls)
}

func TestCommentWithoutIDSkipsDedup(t *testing.T) {
	svc := &fakeFeedService{}
	deduper := newFakeDeduper()
	r := feedRouter(svc, deduper)

	for i := 0; i < 2; i++ {
		w := postJSON(t, r, "/projects/PRJ12345/updates/u1/comments", `{"text":"hello"}`)
		assert.Equal(t, http.StatusCreated, w.Code)
	}
	assert.Equal(t, 2, svc.commentCalls)
	assert.Empty(t, deduper.held)
}
