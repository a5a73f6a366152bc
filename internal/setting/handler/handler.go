package handler

import (
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/auth"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/internal/setting"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/middleware"
	"github.com/gin-gonic/gin"
)

const maxValueBytes = 64 << 10

type SettingHandler struct {
	uc     setting.UseCase
	logger logger.ZapLogger
}

func NewSettingHandler(uc setting.UseCase, log logger.ZapLogger) *SettingHandler {
	return &SettingHandler{
		uc:     uc,
		logger: log,
	}
}

func (h *SettingHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/settings")
	g.GET("", h.List)
	g.PUT("/:key", auth.RequireRole(model.RoleAdmin), h.Set)
}

type settingView struct {
	Key       string          `json:"key"`
	Value     json.RawMessage `json:"value"`
	UpdatedAt string          `json:"updatedAt"`
}

func toView(s model.AppSetting) settingView {
	return settingView{
		Key:       s.Key,
		Value:     json.RawMessage(s.Value),
		UpdatedAt: s.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func (h *SettingHandler) List(c *gin.Context) {
	items, err := h.uc.List(c.Request.Context())
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	views := make([]settingView, len(items))
	for i, s := range items {
		views[i] = toView(s)
	}
	c.JSON(http.StatusOK, gin.H{"items": views})
}

// Set takes the raw JSON body as the new value.
func (h *SettingHandler) Set(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxValueBytes))
	if err != nil {
		middleware.RespondError(c, h.logger, apperror.Validation("invalid request body"))
		return
	}

	s, err := h.uc.Set(c.Request.Context(), c.Param("key"), json.RawMessage(body))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, toView(*s))
}
