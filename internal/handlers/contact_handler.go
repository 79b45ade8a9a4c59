package handlers

import (
	"net/http"
	"strconv"

	"rencontre_backend/internal/auth"
	"rencontre_backend/internal/middleware"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/services"
	"rencontre_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ContactHandler struct {
	*BaseHandler
	contactService services.ContactService
}

func NewContactHandler(base *BaseHandler, contactService services.ContactService) *ContactHandler {
	return &ContactHandler{
		BaseHandler:    base,
		contactService: contactService,
	}
}

func (h *ContactHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	rg.POST("/contact", mw.AuthLimit, h.Submit)

	admin := rg.Group("/admin/contact")
	admin.Use(mw.Auth, middleware.RoleMiddleware(models.UserRoleAdmin), middleware.PermissionMiddleware(auth.PermContactRead))
	{
		admin.GET("", h.List)
		admin.POST("/:id/read", h.setRead(true))
		admin.POST("/:id/unread", h.setRead(false))
	}
}

func (h *ContactHandler) Submit(c *gin.Context) {
	var req dto.ContactRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	if _, err := h.contactService.Submit(c.Request.Context(), h.GetDB(c), &req); err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, dto.StatusResponse{Status: "success", Message: "Message sent"})
}

func (h *ContactHandler) List(c *gin.Context) {
	unreadOnly, _ := strconv.ParseBool(c.Query("unread"))
	page, pageSize := ParsePagination(c)

	resp, err := h.contactService.List(h.GetDB(c), unreadOnly, page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ContactHandler) setRead(read bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		messageID, ok := PathUUID(c, "id", "contact")
		if !ok {
			return
		}
		if err := h.contactService.SetRead(h.GetDB(c), messageID, read); err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, dto.StatusResponse{Status: "success"})
	}
}
