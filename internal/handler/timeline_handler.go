package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/derive"
	"velanspaces/internal/model"
	"velanspaces/internal/service/project"
)

type TimelineHandler struct {
	svc    *project.Service
	logger *zap.Logger
}

func NewTimelineHandler(svc *project.Service, logger *zap.Logger) *TimelineHandler {
	return &TimelineHandler{svc: svc, logger: logger}
}

func (h *TimelineHandler) List(c *gin.Context) {
	phases, err := h.svc.ListTimeline(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	type phaseEntry struct {
		model.TimelinePhase
		TaskProgress  int    `json:"taskProgress"`
		DaysRemaining string `json:"daysRemaining"`
	}
	entries := make([]phaseEntry, 0, len(phases))
	for _, p := range phases {
		entries = append(entries, phaseEntry{
			TimelinePhase: p,
			TaskProgress:  derive.PhaseTaskProgress(p),
			DaysRemaining: derive.DaysRemaining(p.TargetDate, timeNow()),
		})
	}
	c.JSON(http.StatusOK, gin.H{
		"phases":   entries,
		"progress": derive.TimelineProgress(phases),
	})
}

type phaseRequest struct {
	Name        string `json:"name" binding:"required"`
	Description string `json:"description"`
	StartDate   string `json:"startDate"`
	TargetDate  string `json:"targetDate"`
	Status      string `json:"status"`
}

func (h *TimelineHandler) AddPhase(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	phase, err := h.svc.AddPhase(c.Request.Context(), principal(c), c.Param("id"), model.TimelinePhase{
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		TargetDate:  req.TargetDate,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, phase)
}

func (h *TimelineHandler) UpdatePhase(c *gin.Context) {
	var req phaseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.svc.UpdatePhase(c.Request.Context(), principal(c), c.Param("id"), model.TimelinePhase{
		ID:          c.Param("phaseId"),
		Name:        req.Name,
		Description: req.Description,
		StartDate:   req.StartDate,
		TargetDate:  req.TargetDate,
		Status:      req.Status,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TimelineHandler) DeletePhase(c *gin.Context) {
	if err := h.svc.DeletePhase(c.Request.Context(), principal(c), c.Param("id"), c.Param("phaseId")); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type taskRequest struct {
	Title             string   `json:"title" binding:"required"`
	Description       string   `json:"description"`
	StartDate         string   `json:"startDate"`
	TargetDate        string   `json:"targetDate"`
	Status            string   `json:"status"`
	AssignedWorkerIDs []string `json:"assignedWorkerIds"`
}

func (h *TimelineHandler) AddTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}

	task, err := h.svc.AddTask(c.Request.Context(), principal(c), c.Param("id"), model.TimelineTask{
		PhaseID:           c.Param("phaseId"),
		Title:             req.Title,
		Description:       req.Description,
		StartDate:         req.StartDate,
		TargetDate:        req.TargetDate,
		Status:            req.Status,
		AssignedWorkerIDs: req.AssignedWorkerIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

func (h *TimelineHandler) UpdateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.svc.UpdateTask(c.Request.Context(), principal(c), c.Param("id"), model.TimelineTask{
		ID:                c.Param("taskId"),
		PhaseID:           c.Param("phaseId"),
		Title:             req.Title,
		Description:       req.Description,
		StartDate:         req.StartDate,
		TargetDate:        req.TargetDate,
		Status:            req.Status,
		AssignedWorkerIDs: req.AssignedWorkerIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *TimelineHandler) DeleteTask(c *gin.Context) {
	err := h.svc.DeleteTask(c.Request.Context(), principal(c), c.Param("id"), c.Param("phaseId"), c.Param("taskId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
