package handlers

import (
	"net/http"

	"rencontre_backend/internal/services"
	"rencontre_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type DocumentHandler struct {
	*BaseHandler
	documentService services.DocumentService
}

func NewDocumentHandler(base *BaseHandler, documentService services.DocumentService) *DocumentHandler {
	return &DocumentHandler{
		BaseHandler:     base,
		documentService: documentService,
	}
}

func (h *DocumentHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	documents := rg.Group("/documents")
	documents.Use(mw.Auth)
	{
		documents.POST("", h.Upload)
		documents.GET("", h.List)
		documents.GET("/:id/download", h.Download)
	}
}

func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrFileRequired)
		return
	}

	resp, err := h.documentService.Upload(c.Request.Context(), h.GetDB(c), userID, c.PostForm("title"), file)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *DocumentHandler) List(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	page, pageSize := ParsePagination(c)
	resp, err := h.documentService.List(h.GetDB(c), userID, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *DocumentHandler) Download(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	documentID, ok := PathUUID(c, "id", "document")
	if !ok {
		return
	}
	resp, err := h.documentService.Download(c.Request.Context(), h.GetDB(c), userID, documentID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
