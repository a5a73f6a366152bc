package handler

import (
	"context"
	"encoding/json"
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

type stubSettings struct {
	values map[string]string
}

func (s *stubSettings) Get(ctx context.Context, key string) (json.RawMessage, bool, error) {
	v, ok := s.values[key]
	return json.RawMessage(v), ok, nil
}

func (s *stubSettings) Set(ctx context.Context, key string, value json.RawMessage) (*model.AppSetting, error) {
	if !json.Valid(value) {
		return nil, apperror.Validation("setting value must be valid JSON")
	}
	s.values[key] = string(value)
	return &model.AppSetting{Key: key, Value: string(value), UpdatedAt: time.Now()}, nil
}

func (s *stubSettings) List(ctx context.Context) ([]model.AppSetting, error) {
	out := []model.AppSetting{}
	for k, v := range s.values {
		out = append(out, model.AppSetting{Key: k, Value: v})
	}
	return out, nil
}

func (s *stubSettings) PreventNegativeIssue(ctx context.Context) bool { return true }

func (s *stubSettings) AlertRecipients(ctx context.Context) []string { return nil }

func TestSettingsRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	sm := auth.NewSessionManager("secret", "session", time.Hour, false)
	uc := &stubSettings{values: map[string]string{}}
	r := gin.New()
	NewSettingHandler(uc, logger.NewNop()).RegisterRoutes(r.Group("/api/v1", auth.RequireSession(sm)))

	cookieFor := func(role string) *http.Cookie {
		token, err := sm.Issue(&auth.Actor{UserID: "u-" + role, Role: role})
		require.NoError(t, err)
		return &http.Cookie{Name: "session", Value: token}
	}
	put := func(role, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPut, "/api/v1/settings/prevent_negative_issue", strings.NewReader(body))
		req.AddCookie(cookieFor(role))
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	assert.Equal(t, http.StatusForbidden, put(model.RoleManager, "false").Code)
	assert.Equal(t, http.StatusBadRequest, put(model.RoleAdmin, "{oops").Code)

	w := put(model.RoleAdmin, "false")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"value":false`)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/settings", nil)
	req.AddCookie(cookieFor(model.RoleStaff))
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"key":"prevent_negative_issue"`)
}
