package handler

import (
	"net/http"

	"github.com/fekuna/omnipos-stockroom/internal/auth"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/fekuna/omnipos-stockroom/pkg/middleware"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	uc       auth.UseCase
	sessions *auth.SessionManager
	logger   logger.ZapLogger
}

func NewAuthHandler(uc auth.UseCase, sessions *auth.SessionManager, log logger.ZapLogger) *AuthHandler {
	return &AuthHandler{
		uc:       uc,
		sessions: sessions,
		logger:   log,
	}
}

// RegisterRoutes mounts login/logout publicly and /me behind the session.
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup) {
	g := rg.Group("/auth")
	g.POST("/login", h.Login)
	g.POST("/logout", h.Logout)
	g.GET("/me", auth.RequireSession(h.sessions), h.Me)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		middleware.RespondError(c, h.logger, apperror.Validation("username and password are required"))
		return
	}

	u, err := h.uc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}

	token, err := h.sessions.Issue(&auth.Actor{UserID: u.ID, Username: u.Username, Role: u.Role})
	if err != nil {
		middleware.RespondError(c, h.logger, apperror.Internal(err))
		return
	}

	h.setCookie(c, token, int(h.sessions.TTL().Seconds()))
	h.logger.Info("user logged in", zap.String("user_id", u.ID))
	c.JSON(http.StatusOK, gin.H{"ok": true, "user": u})
}

func (h *AuthHandler) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (h *AuthHandler) Me(c *gin.Context) {
	u, err := h.uc.GetUser(c.Request.Context(), auth.GetUserID(c))
	if err != nil {
		middleware.RespondError(c, h.logger, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *AuthHandler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName, value, maxAge, "/", "", h.sessions.Secure, true)
}
