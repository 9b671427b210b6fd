package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/events"
	"velanspaces/pkg/rbac"
)

type EventsHandler struct {
	hub    *events.Hub
	logger *zap.Logger
}

func NewEventsHandler(hub *events.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

// Stream is the SSE endpoint clients hold open instead of polling. Each
// event names the collection that changed; the client re-fetches that
// collection's snapshot. Event delivery is at-most-once per subscriber,
// which the re-fetch contract tolerates.
func (h *EventsHandler) Stream(c *gin.Context) {
	caller := principal(c)
	projectID := c.Param("id")
	if !caller.CanAccessProject(projectID) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	h.stream(c, projectID)
}

// StreamGlobal watches every project plus the global roster collections.
// HEAD only.
func (h *EventsHandler) StreamGlobal(c *gin.Context) {
	caller := principal(c)
	if caller.Role != rbac.RoleHead {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}

	h.stream(c, "*")
}

func (h *EventsHandler) stream(c *gin.Context, projectID string) {
	sub := h.hub.Subscribe(projectID)
	defer h.hub.Unsubscribe(sub)

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")

	h.logger.Info("SSE stream opened", zap.String("project_id", projectID))

	// Heartbeats keep intermediaries from reaping idle streams.
	heartbeat := time.NewTicker(25 * time.Second)
	defer heartbeat.Stop()

	c.Stream(func(w io.Writer) bool {
		select {
		case change, ok := <-sub.C():
			if !ok {
				return false
			}
			payload, err := json.Marshal(change)
			if err != nil {
				return true
			}
			c.SSEvent("change", string(payload))
			return true
		case <-heartbeat.C:
			c.SSEvent("ping", time.Now().Unix())
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})

	h.logger.Info("SSE stream closed", zap.String("project_id", projectID))
}
