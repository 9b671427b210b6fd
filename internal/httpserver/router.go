package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"velanspaces/internal/handler"
	"velanspaces/pkg/rbac"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Project    *handler.ProjectHandler
	Timeline   *handler.TimelineHandler
	Feed       *handler.FeedHandler
	Design     *handler.DesignHandler
	Settlement *handler.SettlementHandler
	Room       *handler.RoomHandler
	Roster     *handler.RosterHandler
	File       *handler.FileHandler
	Events     *handler.EventsHandler
}

func NewRouter(h Handlers, pool *pgxpool.Pool, jwtSecret string, logger *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), TraceMiddleware(), MetricsMiddleware())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/readyz", func(c *gin.Context) {
		if err := pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "db unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.POST("/auth/login", h.Auth.Login)

	// Download routes stay public; keys act as capability URLs the way the
	// upstream storage bucket's download tokens did.
	r.GET("/files/*key", h.File.Download)

	api := r.Group("/api", AuthMiddleware(jwtSecret, logger))

	projects := api.Group("/projects")
	{
		projects.POST("", RequirePermission(rbac.PermissionCreateProject), h.Project.Create)
		projects.GET("", h.Project.List)
		projects.GET("/:id", h.Project.Get)
		projects.PUT("/:id/financials", RequirePermission(rbac.PermissionEditFinancials), h.Project.UpdateFinancials)
		projects.PUT("/:id/details", RequirePermission(rbac.PermissionEditDetails), h.Project.UpdateDetails)
		projects.POST("/:id/workers", RequirePermission(rbac.PermissionAssignWorker), h.Project.AssignWorker)
		projects.POST("/:id/managers", RequirePermission(rbac.PermissionAssignWorker), h.Project.AssignManager)

		projects.GET("/:id/timeline", h.Timeline.List)
		projects.POST("/:id/timeline/phases", RequirePermission(rbac.PermissionMutateTimeline), h.Timeline.AddPhase)
		projects.PUT("/:id/timeline/phases/:phaseId", RequirePermission(rbac.PermissionMutateTimeline), h.Timeline.UpdatePhase)
		projects.DELETE("/:id/timeline/phases/:phaseId", RequirePermission(rbac.PermissionMutateTimeline), h.Timeline.DeletePhase)
		projects.POST("/:id/timeline/phases/:phaseId/tasks", RequirePermission(rbac.PermissionMutateTimeline), h.Timeline.AddTask)
		projects.PUT("/:id/timeline/phases/:phaseId/tasks/:taskId", RequirePermission(rbac.PermissionMutateTimeline), h.Timeline.UpdateTask)
		projects.DELETE("/:id/timeline/phases/:phaseId/tasks/:taskId", RequirePermission(rbac.PermissionMutateTimeline), h.Timeline.DeleteTask)

		projects.GET("/:id/updates", h.Feed.List)
		projects.POST("/:id/updates", RequirePermission(rbac.PermissionPostUpdate), h.Feed.Post)
		projects.POST("/:id/updates/:updateId/comments", RequirePermission(rbac.PermissionCommentUpdate), h.Feed.Comment)

		projects.GET("/:id/designs", h.Design.List)
		projects.POST("/:id/designs", RequirePermission(rbac.PermissionAddDesign), h.Design.Add)
		projects.POST("/:id/designs/:designId/approve", RequirePermission(rbac.PermissionApproveDesign), h.Design.Approve)
		projects.POST("/:id/designs/:designId/reject", RequirePermission(rbac.PermissionApproveDesign), h.Design.Reject)

		projects.GET("/:id/settlements", h.Settlement.List)
		projects.POST("/:id/settlements", RequirePermission(rbac.PermissionRecordSettlement), h.Settlement.Record)

		projects.GET("/:id/rooms", h.Room.List)
		projects.POST("/:id/rooms", RequirePermission(rbac.PermissionManageRooms), h.Room.Add)
		projects.PUT("/:id/rooms/:roomId", RequirePermission(rbac.PermissionManageRooms), h.Room.Update)

		projects.POST("/:id/files", RequirePermission(rbac.PermissionPostUpdate), h.File.Upload)

		projects.GET("/:id/events", h.Events.Stream)
	}

	api.GET("/events", h.Events.StreamGlobal)

	api.GET("/workers", h.Roster.ListWorkers)
	api.GET("/workers/:workerId", h.Roster.GetWorker)
	api.POST("/workers", RequirePermission(rbac.PermissionManageRoster), h.Roster.AddWorker)
	api.GET("/managers", h.Roster.ListManagers)
	api.POST("/managers", RequirePermission(rbac.PermissionManageRoster), h.Roster.AddManager)

	return r
}
