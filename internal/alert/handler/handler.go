package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/alert"
	"github.com/fekuna/omnipos-stockroom/internal/alert/dto"
	"github.com/fekuna/omnipos-stockroom/internal/auth"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/middleware"
	"github.com/gin-gonic/gin"
)

type AlertHandler struct {
	uc     alert.UseCase
	logger logger.ZapLogger
}

func NewAlertHandler(uc alert.UseCase, log logger.ZapLogger) *AlertHandler {
	return &AlertHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *AlertHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/alerts")
	g.GET("", h.List)
	g.GET("/expiring", h.ListExpiring)
	g.POST("/:id/acknowledge", h.Acknowledge)
}

// List accepts acknowledged=true|false, type, inventoryId, page and pageSize.
func (h *AlertHandler) List(c *gin.Context) {
	filters := &dto.AlertFilters{
		AlertType:   c.Query("type"),
		InventoryID: c.Query("inventoryId"),
	}
	if v, err := strconv.ParseBool(c.Query("acknowledged")); err == nil {
		filters.Acknowledged = &v
	}
	filters.Page, _ = strconv.Atoi(c.DefaultQuery("page", "1"))
	filters.PageSize, _ = strconv.Atoi(c.DefaultQuery("pageSize", "50"))
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 || filters.PageSize > 500 {
		filters.PageSize = 50
	}

	items, total, err := h.uc.List(c.Request.Context(), filters)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": total})
}

func (h *AlertHandler) Acknowledge(c *gin.Context) {
	a, err := h.uc.Acknowledge(c.Request.Context(), c.Param("id"), auth.GetUserID(c))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, a)
}

func (h *AlertHandler) ListExpiring(c *gin.Context) {
	items, err := h.uc.ListExpiring(c.Request.Context(), time.Now().UTC())
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}
