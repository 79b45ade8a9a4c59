package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"rencontre_backend/internal/auth"
	"rencontre_backend/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newTokens() *auth.TokenManager {
	return auth.NewTokenManager("mw-secret", time.Minute, time.Hour)
}

func perform(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/me", AuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, GetUserID(c))
	})

	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", "").Code)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", "garbage").Code)

	refresh, _, err := tokens.GenerateRefreshToken("u1", auth.RoleUser)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, perform(r, http.MethodGet, "/me", refresh).Code)

	access, err := tokens.GenerateAccessToken("u1", auth.RoleUser)
	require.NoError(t, err)
	w := perform(r, http.MethodGet, "/me", access)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "u1", w.Body.String())

	// токен в query для websocket
	w = perform(r, http.MethodGet, "/me?token="+access, "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestOptionalAuthMiddleware(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	r.GET("/p", OptionalAuthMiddleware(tokens), func(c *gin.Context) {
		c.String(http.StatusOK, "viewer="+GetUserID(c))
	})

	assert.Equal(t, "viewer=", perform(r, http.MethodGet, "/p", "").Body.String())
	assert.Equal(t, "viewer=", perform(r, http.MethodGet, "/p", "bad").Body.String())

	access, _ := tokens.GenerateAccessToken("u2", auth.RoleUser)
	assert.Equal(t, "viewer=u2", perform(r, http.MethodGet, "/p", access).Body.String())
}

func TestRoleAndPermissionMiddleware(t *testing.T) {
	tokens := newTokens()
	r := gin.New()
	admin := r.Group("/admin", AuthMiddleware(tokens), RoleMiddleware(models.UserRoleAdmin))
	admin.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/contact", AuthMiddleware(tokens), PermissionMiddleware(auth.PermContactRead), func(c *gin.Context) { c.Status(http.StatusOK) })

	user, _ := tokens.GenerateAccessToken("u1", auth.RoleUser)
	adm, _ := tokens.GenerateAccessToken("a1", auth.RoleAdmin)

	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/admin/x", user).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/admin/x", adm).Code)
	assert.Equal(t, http.StatusForbidden, perform(r, http.MethodGet, "/contact", user).Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodGet, "/contact", adm).Code)
}

func TestRateLimiter(t *testing.T) {
	rl := NewRateLimiter(1, 2)
	r := gin.New()
	r.POST("/login", rl.Middleware(), func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)
	assert.Equal(t, http.StatusOK, perform(r, http.MethodPost, "/login", "").Code)

	w := perform(r, http.MethodPost, "/login", "")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "1", w.Header().Get("Retry-After"))
}

func TestRequestIDAndCORS(t *testing.T) {
	r := gin.New()
	r.Use(RequestIDMiddleware(), CORSMiddleware("http://localhost:3000"))
	r.GET("/x", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("X-Request-ID", "req-42")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, "req-42", w.Header().Get("X-Request-ID"))
	assert.Equal(t, "http://localhost:3000", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodOptions, "/x", nil)
	req.Header.Set("Origin", "http://evil.example")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}
