package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/service/project"
)

type DesignHandler struct {
	svc    *project.Service
	logger *zap.Logger
}

func NewDesignHandler(svc *project.Service, logger *zap.Logger) *DesignHandler {
	return &DesignHandler{svc: svc, logger: logger}
}

func (h *DesignHandler) List(c *gin.Context) {
	designs, err := h.svc.ListDesigns(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"designs": designs})
}

type addDesignRequest struct {
	Title            string `json:"title" binding:"required"`
	Type             string `json:"type"`
	URL              string `json:"url" binding:"required"`
	ApprovalRequired bool   `json:"approvalRequired"`
}

func (h *DesignHandler) Add(c *gin.Context) {
	var req addDesignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title and url required"})
		return
	}

	design, err := h.svc.AddDesign(c.Request.Context(), principal(c), c.Param("id"), model.DesignDocument{
		Title: req.Title,
		Type:  req.Type,
		URL:   req.URL,
		ApprovalStatus: model.ApprovalStatus{
			Required: req.ApprovalRequired,
		},
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, design)
}

func (h *DesignHandler) Approve(c *gin.Context) {
	if err := h.svc.ApproveDesign(c.Request.Context(), principal(c), c.Param("id"), c.Param("designId")); err != nil {
		respondError(c, err)
		return
	}
	h.logger.Info("Design approved",
		zap.String("project_id", c.Param("id")),
		zap.String("design_id", c.Param("designId")),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type rejectRequest struct {
	Feedback string `json:"feedback"`
}

func (h *DesignHandler) Reject(c *gin.Context) {
	var req rejectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	if err := h.svc.RejectDesign(c.Request.Context(), principal(c), c.Param("id"), c.Param("designId"), req.Feedback); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
