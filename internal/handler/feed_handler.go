package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/pkg/util"
)

// feedService is the slice of the project service the feed routes use.
type feedService interface {
	ListUpdates(ctx context.Context, caller util.Principal, projectID string) ([]model.ProjectUpdate, error)
	PostUpdate(ctx context.Context, caller util.Principal, projectID string, update model.ProjectUpdate) (*model.ProjectUpdate, error)
	AddComment(ctx context.Context, caller util.Principal, projectID, updateID string, c model.Comment) (*model.Comment, error)
}

type commentDeduper interface {
	AcquireOnce(ctx context.Context, scope string, id string) bool
	Release(ctx context.Context, scope string, id string)
}

type FeedHandler struct {
	svc     feedService
	deduper commentDeduper
	logger  *zap.Logger
}

func NewFeedHandler(svc feedService, deduper commentDeduper, logger *zap.Logger) *FeedHandler {
	return &FeedHandler{svc: svc, deduper: deduper, logger: logger}
}

func (h *FeedHandler) List(c *gin.Context) {
	updates, err := h.svc.ListUpdates(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": updates})
}

type postUpdateRequest struct {
	Type                string   `json:"type"`
	Category            string   `json:"category"`
	Content             string   `json:"content" binding:"required"`
	IsClientViewable    *bool    `json:"isClientViewable"`
	ProgressPercentage  *int     `json:"progressPercentage"`
	AssociatedWorkerIDs []string `json:"associatedWorkerIds"`
	RoomID              string   `json:"roomId"`
}

func (h *FeedHandler) Post(c *gin.Context) {
	var req postUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "content required"})
		return
	}
	if req.ProgressPercentage != nil && (*req.ProgressPercentage < 0 || *req.ProgressPercentage > 100) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "progressPercentage must be 0-100"})
		return
	}

	// updates are client-viewable unless the poster hides them
	clientViewable := true
	if req.IsClientViewable != nil {
		clientViewable = *req.IsClientViewable
	}

	update, err := h.svc.PostUpdate(c.Request.Context(), principal(c), c.Param("id"), model.ProjectUpdate{
		Type:                req.Type,
		Category:            req.Category,
		Content:             req.Content,
		IsClientViewable:    clientViewable,
		ProgressPercentage:  req.ProgressPercentage,
		AssociatedWorkerIDs: req.AssociatedWorkerIDs,
		RoomID:              req.RoomID,
	})
	if err != nil {
		h.logger.Error("Post update failed",
			zap.String("project_id", c.Param("id")),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, update)
}

type commentRequest struct {
	ID   string `json:"id"` // optional client-supplied id for retry dedup
	Text string `json:"text" binding:"required"`
}

func (h *FeedHandler) Comment(c *gin.Context) {
	var req commentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "text required"})
		return
	}

	// Fast-path duplicate suppression for retried submissions. The jsonb
	// append guard in the repository is the durable backstop.
	if req.ID != "" && !h.deduper.AcquireOnce(c.Request.Context(), "comment", req.ID) {
		h.logger.Info("Duplicate comment suppressed", zap.String("comment_id", req.ID))
		c.JSON(http.StatusOK, gin.H{"status": "duplicate"})
		return
	}

	comment, err := h.svc.AddComment(c.Request.Context(), principal(c), c.Param("id"), c.Param("updateId"), model.Comment{
		ID:   req.ID,
		Text: req.Text,
	})
	if err != nil {
		// the write never landed; free the key so the client's retry is
		// processed instead of swallowed as a duplicate
		if req.ID != "" {
			h.deduper.Release(c.Request.Context(), "comment", req.ID)
		}
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, comment)
}
