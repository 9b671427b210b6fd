package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"velanspaces/internal/model"
	"velanspaces/internal/service/project"
)

type SettlementHandler struct {
	svc    *project.Service
	logger *zap.Logger
}

func NewSettlementHandler(svc *project.Service, logger *zap.Logger) *SettlementHandler {
	return &SettlementHandler{svc: svc, logger: logger}
}

func (h *SettlementHandler) List(c *gin.Context) {
	settlements, err := h.svc.ListSettlements(c.Request.Context(), principal(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settlements": settlements})
}

type recordSettlementRequest struct {
	PaidToType    string  `json:"paidToType" binding:"required"`
	PaidToName    string  `json:"paidToName" binding:"required"`
	Amount        float64 `json:"amount" binding:"required,gt=0"`
	Mode          string  `json:"mode" binding:"required"`
	Date          string  `json:"date" binding:"required"`
	Description   string  `json:"description"`
	ScreenshotURL string  `json:"screenshotUrl"`
}

func (h *SettlementHandler) Record(c *gin.Context) {
	var req recordSettlementRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "paidToType, paidToName, positive amount, mode and date required"})
		return
	}

	settlement, err := h.svc.RecordSettlement(c.Request.Context(), principal(c), c.Param("id"), model.Settlement{
		PaidToType:    req.PaidToType,
		PaidToName:    req.PaidToName,
		Amount:        req.Amount,
		Mode:          req.Mode,
		Date:          req.Date,
		Description:   req.Description,
		ScreenshotURL: req.ScreenshotURL,
	})
	if err != nil {
		h.logger.Error("Record settlement failed",
			zap.String("project_id", c.Param("id")),
			zap.Error(err),
		)
		respondError(c, err)
		return
	}

	h.logger.Info("Settlement recorded",
		zap.String("project_id", c.Param("id")),
		zap.String("settlement_id", settlement.ID),
		zap.Float64("amount", settlement.Amount),
	)
	c.JSON(http.StatusCreated, settlement)
}
