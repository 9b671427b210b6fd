package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/derive"
	"velanspaces/internal/model"
	"velanspaces/internal/repository"
	"velanspaces/internal/service/project"
)

type ProjectHandler struct {
	svc    *project.Service
	logger *zap.Logger
}

func NewProjectHandler(svc *project.Service, logger *zap.Logger) *ProjectHandler {
	return &ProjectHandler{svc: svc, logger: logger}
}

type createProjectRequest struct {
	ProjectName   string   `json:"projectName" binding:"required"`
	ClientName    string   `json:"clientName" binding:"required"`
	ClientPhone   string   `json:"clientPhone"`
	ClientEmail   string   `json:"clientEmail"`
	ClientAddress string   `json:"clientAddress"`
	ClientNotes   string   `json:"clientNotes"`
	Location      string   `json:"location"`
	EstimatedCost float64  `json:"estimatedCost"`
	Budget        float64  `json:"budget"`
	ManagerIDs    []string `json:"managerIds"`
}

func (h *ProjectHandler) Create(c *gin.Context) {
	var req createProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "projectName and clientName required"})
		return
	}

	draft := model.Project{
		ProjectName:   req.ProjectName,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		ClientAddress: req.ClientAddress,
		ClientNotes:   req.ClientNotes,
		Location:      req.Location,
		EstimatedCost: req.EstimatedCost,
		Budget:        req.Budget,
		ManagerIDs:    req.ManagerIDs,
	}

	p, err := h.svc.CreateProject(c.Request.Context(), principal(c), draft)
	if err != nil {
		h.logger.Error("Create project failed", zap.Error(err))
		respondError(c, err)
		return
	}

	h.logger.Info("Project created",
		zap.String("id", p.ID),
		zap.String("project_name", p.ProjectName),
	)
	c.JSON(http.StatusCreated, p)
}

func (h *ProjectHandler) List(c *gin.Context) {
	projects, err := h.svc.ListProjects(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}

	// The list view's binary health classification rides along so the
	// dashboard renders without a second round trip.
	type listEntry struct {
		*model.Project
		Health string `json:"health"`
	}
	entries := make([]listEntry, 0, len(projects))
	for _, p := range projects {
		entries = append(entries, listEntry{
			Project: p,
			Health:  derive.ListHealth(p.Budget, p.CurrentSpend),
		})
	}
	c.JSON(http.StatusOK, gin.H{"projects": entries})
}

func (h *ProjectHandler) Get(c *gin.Context) {
	p, err := h.svc.GetProject(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"project":        p,
		"budgetHealth":   derive.BudgetHealth(p.Budget, p.CurrentSpend),
		"spendRemaining": derive.SpendRemaining(p.Budget, p.CurrentSpend),
	})
}

type financialsRequest struct {
	EstimatedCost float64 `json:"estimatedCost"`
	Budget        float64 `json:"budget"`
}

func (h *ProjectHandler) UpdateFinancials(c *gin.Context) {
	var req financialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	id := c.Param("id")
	if err := h.svc.UpdateFinancials(c.Request.Context(), principal(c), id, req.EstimatedCost, req.Budget); err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("Project financials updated",
		zap.String("id", id),
		zap.Float64("estimated_cost", req.EstimatedCost),
		zap.Float64("budget", req.Budget),
	)
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type detailsRequest struct {
	ProjectName   *string `json:"projectName"`
	ClientName    *string `json:"clientName"`
	ClientPhone   *string `json:"clientPhone"`
	ClientEmail   *string `json:"clientEmail"`
	ClientAddress *string `json:"clientAddress"`
	ClientNotes   *string `json:"clientNotes"`
	Location      *string `json:"location"`
	IsComplete    *bool   `json:"isComplete"`
}

func (h *ProjectHandler) UpdateDetails(c *gin.Context) {
	var req detailsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.svc.UpdateDetails(c.Request.Context(), principal(c), c.Param("id"), repository.ProjectDetails{
		ProjectName:   req.ProjectName,
		ClientName:    req.ClientName,
		ClientPhone:   req.ClientPhone,
		ClientEmail:   req.ClientEmail,
		ClientAddress: req.ClientAddress,
		ClientNotes:   req.ClientNotes,
		Location:      req.Location,
		IsComplete:    req.IsComplete,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type assignWorkerRequest struct {
	WorkerID string `json:"workerId" binding:"required"`
}

func (h *ProjectHandler) AssignWorker(c *gin.Context) {
	var req assignWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "workerId required"})
		return
	}

	if err := h.svc.AssignWorker(c.Request.Context(), principal(c), c.Param("id"), req.WorkerID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type assignManagerRequest struct {
	ManagerID string `json:"managerId" binding:"required"`
}

func (h *ProjectHandler) AssignManager(c *gin.Context) {
	var req assignManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "managerId required"})
		return
	}

	if err := h.svc.AssignManager(c.Request.Context(), principal(c), c.Param("id"), req.ManagerID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
