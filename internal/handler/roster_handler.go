package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/service/roster"
)

type RosterHandler struct {
	svc    *roster.Service
	logger *zap.Logger
}

func NewRosterHandler(svc *roster.Service, logger *zap.Logger) *RosterHandler {
	return &RosterHandler{svc: svc, logger: logger}
}

func (h *RosterHandler) ListWorkers(c *gin.Context) {
	workers, err := h.svc.ListWorkers(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"workers": workers})
}

func (h *RosterHandler) GetWorker(c *gin.Context) {
	worker, err := h.svc.GetWorker(c.Request.Context(), principal(c), c.Param("workerId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, worker)
}

type addWorkerRequest struct {
	ID    string `json:"id"`
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role" binding:"required"`
	Phone string `json:"phone"`
	Type  string `json:"type"`
	Notes string `json:"notes"`
}

func (h *RosterHandler) AddWorker(c *gin.Context) {
	var req addWorkerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and role required"})
		return
	}

	worker, err := h.svc.AddWorker(c.Request.Context(), principal(c), model.Worker{
		ID:    req.ID,
		Name:  req.Name,
		Role:  req.Role,
		Phone: req.Phone,
		Type:  req.Type,
		Notes: req.Notes,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("Worker added", zap.String("worker_id", worker.ID))
	c.JSON(http.StatusCreated, worker)
}

func (h *RosterHandler) ListManagers(c *gin.Context) {
	managers, err := h.svc.ListManagers(c.Request.Context(), principal(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"managers": managers})
}

type addManagerRequest struct {
	ID       string `json:"id"`
	Name     string `json:"name" binding:"required"`
	Password string `json:"password" binding:"required,min=6"`
}

func (h *RosterHandler) AddManager(c *gin.Context) {
	var req addManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name and password (min 6 chars) required"})
		return
	}

	manager, err := h.svc.AddManager(c.Request.Context(), principal(c), model.Manager{
		ID:   req.ID,
		Name: req.Name,
	}, req.Password)
	if err != nil {
		respondError(c, err)
		return
	}

	h.logger.Info("Manager added", zap.String("manager_id", manager.ID))
	c.JSON(http.StatusCreated, manager)
}
