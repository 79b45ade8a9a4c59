package handlers

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strings"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/storage"
	"rencontre_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

// FileHandler отдаёт загруженные файлы (аватары, фото профилей, вложения)
// по тому же пути, который строит LocalStorage.GetURL.
type FileHandler struct {
	*BaseHandler
	storage storage.Storage
}

func NewFileHandler(base *BaseHandler, storage storage.Storage) *FileHandler {
	return &FileHandler{
		BaseHandler: base,
		storage:     storage,
	}
}

// RegisterRoutes вешается на корень роутера, а не на /api/v1
func (h *FileHandler) RegisterRoutes(rg *gin.RouterGroup, _ RouteMiddlewares) {
	media := rg.Group("/media")
	{
		media.GET("/*filepath", h.ServeFile)
		media.HEAD("/*filepath", h.CheckFileExists)
	}
}

func (h *FileHandler) ServeFile(c *gin.Context) {
	path := mediaPath(c)
	if path == "" {
		apperrors.HandleError(c, apperrors.NewNotFoundError("media", "File not found"))
		return
	}

	reader, err := h.storage.Get(c.Request.Context(), path)
	if err != nil {
		apperrors.HandleError(c, apperrors.NewNotFoundError("media", "File not found"))
		return
	}
	defer reader.Close()

	c.Header("Content-Type", contentTypeOf(path))
	c.Header("Cache-Control", "public, max-age=31536000")
	if c.Query("download") == "true" {
		c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filepath.Base(path)))
	} else {
		c.Header("Content-Disposition", "inline")
	}
	c.Status(http.StatusOK)

	if _, err := io.Copy(c.Writer, reader); err != nil {
		// заголовки уже ушли
		logger.CtxWithError(c.Request.Context(), "Failed to stream media", err, "path", path)
	}
}

func (h *FileHandler) CheckFileExists(c *gin.Context) {
	path := mediaPath(c)
	if path == "" {
		c.Status(http.StatusNotFound)
		return
	}

	exists, err := h.storage.Exists(c.Request.Context(), path)
	if err != nil || !exists {
		c.Status(http.StatusNotFound)
		return
	}

	c.Header("Content-Type", contentTypeOf(path))
	c.Status(http.StatusOK)
}

func mediaPath(c *gin.Context) string {
	return strings.TrimPrefix(c.Param("filepath"), "/")
}

func contentTypeOf(path string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(path))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
