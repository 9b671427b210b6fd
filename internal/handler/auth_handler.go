package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/service/auth"
)

type AuthHandler struct {
	svc    *auth.Service
	logger *zap.Logger
}

func NewAuthHandler(svc *auth.Service, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{svc: svc, logger: logger}
}

type loginRequest struct {
	Role     string `json:"role" binding:"required"`
	ID       string `json:"id" binding:"required"`
	Password string `json:"password"`
}

// Login authenticates per role. Client logins present a project id; worker
// logins present a worker id; HEAD and manager logins present a password.
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role and id required"})
		return
	}

	h.logger.Info("Login attempt",
		zap.String("role", req.Role),
		zap.String("id", req.ID),
		zap.String("client_ip", c.ClientIP()),
	)

	token, p, err := h.svc.Login(c.Request.Context(), req.Role, req.ID, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		h.logger.Error("Login failed", zap.String("role", req.Role), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token": token,
		"role":  p.Role,
		"name":  p.Name,
		"scope": p.Scope,
	})
}
