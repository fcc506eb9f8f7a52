package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/upkeeply/maintenance-tracker/internal/auth"
	"github.com/upkeeply/maintenance-tracker/internal/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func newTestMiddleware(t *testing.T) (*AuthMiddleware, *auth.Service) {
	t.Helper()
	service, err := auth.NewService()
	require.NoError(t, err)
	return NewAuthMiddleware(service), service
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func tokenFor(t *testing.T, service *auth.Service, role models.Role) string {
	t.Helper()
	token, err := service.GenerateToken(&models.User{
		ID:       primitive.NewObjectID(),
		Username: "testuser",
		Role:     role,
	})
	require.NoError(t, err)
	return token
}

func TestAuthenticate_MissingHeader(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	handler := mw.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/maintenance", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_InvalidToken(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	handler := mw.Authenticate(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/maintenance", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthenticate_ValidToken(t *testing.T) {
	mw, service := newTestMiddleware(t)

	var captured *models.Claims
	handler := mw.Authenticate(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		claims, ok := GetUserFromContext(r.Context())
		require.True(t, ok)
		captured = claims
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/maintenance", nil)
	req.Header.Set("Authorization", "Bearer "+tokenFor(t, service, models.RoleTechnician))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, captured)
	assert.Equal(t, "testuser", captured.Username)
	assert.Equal(t, models.RoleTechnician, captured.Role)
}

func TestAuthenticate_SkipsPublicPaths(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	handler := mw.Authenticate(okHandler())

	for _, path := range []string{"/api/auth/login", "/api/auth/register", "/health"} {
		req := httptest.NewRequest(http.MethodPost, path, nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}
}

func TestRequireRole(t *testing.T) {
	mw, service := newTestMiddleware(t)
	handler := mw.Authenticate(mw.RequireRole(models.RoleManager)(okHandler()))

	cases := []struct {
		role models.Role
		want int
	}{
		{models.RoleManager, http.StatusOK},
		{models.RoleAdmin, http.StatusOK},
		{models.RoleTechnician, http.StatusForbidden},
		{models.RoleViewer, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/maintenance", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, service, tc.role))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, string(tc.role))
	}
}

func TestRequirePermission(t *testing.T) {
	mw, service := newTestMiddleware(t)
	handler := mw.Authenticate(mw.RequirePermission("adjust_stock")(okHandler()))

	cases := []struct {
		role models.Role
		want int
	}{
		{models.RoleAdmin, http.StatusOK},
		{models.RoleManager, http.StatusOK},
		{models.RoleTechnician, http.StatusOK},
		{models.RoleViewer, http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/inventory", nil)
		req.Header.Set("Authorization", "Bearer "+tokenFor(t, service, tc.role))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, tc.want, rec.Code, string(tc.role))
	}
}

func TestRequirePermission_NoContext(t *testing.T) {
	mw, _ := newTestMiddleware(t)
	handler := mw.RequirePermission("view_maintenance")(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/maintenance", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
