package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/fekuna/omnipos-stockroom/internal/auth"
	"github.com/fekuna/omnipos-stockroom/internal/model"
	"github.com/fekuna/omnipos-stockroom/pkg/apperror"
	"github.com/fekuna/omnipos-stockroom/pkg/logger"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuth struct {
	user *model.User
}

func (s *stubAuth) Login(ctx context.Context, username, password string) (*model.User, error) {
	if username == s.user.Username && password == "pw" {
		return s.user, nil
	}
	return nil, apperror.Unauthorized("invalid username or password")
}

func (s *stubAuth) GetUser(ctx context.Context, id string) (*model.User, error) {
	if id == s.user.ID {
		return s.user, nil
	}
	return nil, apperror.NotFound("user")
}

func (s *stubAuth) CreateUser(ctx context.Context, username, password, role string) (*model.User, error) {
	return nil, nil
}

func TestLoginMeLogout(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sm := auth.NewSessionManager("secret", "session", time.Hour, false)
	h := NewAuthHandler(&stubAuth{user: &model.User{ID: "u-1", Username: "alice", Role: model.RoleStaff}}, sm, logger.NewNop())

	r := gin.New()
	h.RegisterRoutes(r.Group("/api/v1"))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"bad"}`)))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"invalid username or password"}`, w.Body.String())

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice"}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", strings.NewReader(`{"username":"alice","password":"pw"}`)))
	require.Equal(t, http.StatusOK, w.Code)
	cookies := w.Result().Cookies()
	require.Len(t, cookies, 1)
	assert.Equal(t, "session", cookies[0].Name)
	assert.True(t, cookies[0].HttpOnly)
	assert.NotContains(t, w.Body.String(), "passwordHash")

	req := httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil)
	req.AddCookie(cookies[0])
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"username":"alice"`)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/auth/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, w.Result().Cookies(), 1)
	assert.True(t, w.Result().Cookies()[0].MaxAge < 0)
}
