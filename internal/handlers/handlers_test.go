package handlers

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"rencontre_backend/internal/storage"
	"rencontre_backend/internal/validator"
	"rencontre_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestParsePagination(t *testing.T) {
	tests := []struct {
		name         string
		query        string
		wantPage     int
		wantPageSize int
	}{
		{"defaults", "", 1, 20},
		{"explicit", "page=3&page_size=50", 3, 50},
		{"negative page", "page=-2", 1, 20},
		{"garbage", "page=abc&page_size=xyz", 1, 20},
		{"capped", "page_size=1000", 1, 100},
		{"huge page", "page=9223372036854775807&page_size=100", 10000, 100},
		{"page out of int range", "page=99999999999999999999", 1, 20},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			page, pageSize := ParsePagination(c)
			assert.Equal(t, tt.wantPage, page)
			assert.Equal(t, tt.wantPageSize, pageSize)
		})
	}
}

func TestGetAndAuthorizeUserID(t *testing.T) {
	h := NewBaseHandler(validator.New())

	t.Run("missing", func(t *testing.T) {
		w := httptest.NewRecorder()
		c, _ := gin.CreateTestContext(w)
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)

		_, ok := h.GetAndAuthorizeUserID(c)
		assert.False(t, ok)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("present", func(t *testing.T) {
		c, _ := gin.CreateTestContext(httptest.NewRecorder())
		c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
		c.Set(contextkeys.UserIDKey, "u-1")

		id, ok := h.GetAndAuthorizeUserID(c)
		assert.True(t, ok)
		assert.Equal(t, "u-1", id)
	})
}

func TestFileHandler_ServeFile(t *testing.T) {
	st, err := storage.NewLocalStorage(storage.Config{BasePath: t.TempDir(), BaseURL: "/media"})
	require.NoError(t, err)
	require.NoError(t, st.Save(context.Background(), "profiles/a.png", bytes.NewReader([]byte("png-bytes")), "image/png"))

	router := gin.New()
	NewFileHandler(NewBaseHandler(validator.New()), st).RegisterRoutes(&router.RouterGroup, RouteMiddlewares{})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/profiles/a.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Equal(t, "inline", w.Header().Get("Content-Disposition"))
	assert.Equal(t, "png-bytes", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/profiles/a.png?download=true", nil))
	assert.Equal(t, `attachment; filename="a.png"`, w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodHead, "/media/profiles/a.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/profiles/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/media/../etc/passwd", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPathUUID(t *testing.T) {
	router := gin.New()
	router.GET("/things/:id", func(c *gin.Context) {
		id, ok := PathUUID(c, "id", "thing")
		if !ok {
			return
		}
		c.String(http.StatusOK, id)
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/7b1c51a4-7f39-4a55-9d57-2b3f0c1d9e11", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "7b1c51a4-7f39-4a55-9d57-2b3f0c1d9e11", w.Body.String())

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/things/42", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
