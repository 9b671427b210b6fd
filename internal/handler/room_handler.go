package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/service/project"
)

type RoomHandler struct {
	svc    *project.Service
	logger *zap.Logger
}

func NewRoomHandler(svc *project.Service, logger *zap.Logger) *RoomHandler {
	return &RoomHandler{svc: svc, logger: logger}
}

func (h *RoomHandler) List(c *gin.Context) {
	rooms, err := h.svc.ListRooms(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"rooms": rooms})
}

type roomRequest struct {
	Name              string   `json:"name" binding:"required"`
	Type              string   `json:"type"`
	AssignedWorkerIDs []string `json:"assignedWorkerIds"`
}

func (h *RoomHandler) Add(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}

	room, err := h.svc.AddRoom(c.Request.Context(), principal(c), c.Param("id"), model.Room{
		Name:              req.Name,
		Type:              req.Type,
		AssignedWorkerIDs: req.AssignedWorkerIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, room)
}

func (h *RoomHandler) Update(c *gin.Context) {
	var req roomRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}

	err := h.svc.UpdateRoom(c.Request.Context(), principal(c), c.Param("id"), model.Room{
		ID:                c.Param("roomId"),
		Name:              req.Name,
		Type:              req.Type,
		AssignedWorkerIDs: req.AssignedWorkerIDs,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
