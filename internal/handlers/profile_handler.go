package handlers

import (
	"net/http"
	"strconv"

	"rencontre_backend/internal/middleware"
	"rencontre_backend/internal/services"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
)

type ProfileHandler struct {
	*BaseHandler
	profileService services.ProfileService
}

func NewProfileHandler(base *BaseHandler, profileService services.ProfileService) *ProfileHandler {
	return &ProfileHandler{
		BaseHandler:    base,
		profileService: profileService,
	}
}

func (h *ProfileHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	profiles := rg.Group("/profiles")
	{
		profiles.GET("", h.ListProfiles)
		profiles.GET("/:id", mw.OptionalAuth, h.GetProfile)
	}

	protected := profiles.Group("")
	protected.Use(mw.Auth)
	{
		protected.GET("/me", h.GetMyProfile)
		protected.PUT("/me", h.UpdateMyProfile)
		protected.POST("/me/images", h.AddImage)
		protected.POST("/me/cover", h.SetCover)
		protected.DELETE("/me/images/:imageId", h.DeleteImage)
		protected.GET("/dashboard", h.GetDashboard)
		protected.POST("/:id/like", h.Like)
		protected.DELETE("/:id/like", h.Unlike)
	}
}

func (h *ProfileHandler) ListProfiles(c *gin.Context) {
	page := ParsePage(c)

	profiles, err := h.profileService.ListProfiles(h.GetDB(c), page)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profiles)
}

// GetProfile - анонимам без просмотра и без thread_id
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	profileID, ok := PathUUID(c, "id", "profile")
	if !ok {
		return
	}
	profile, err := h.profileService.GetProfile(h.GetDB(c), profileID, middleware.GetUserID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) GetMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profile, err := h.profileService.GetMyProfile(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) UpdateMyProfile(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.UpdateProfileRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	profile, err := h.profileService.UpdateMyProfile(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, profile)
}

func (h *ProfileHandler) AddImage(c *gin.Context) {
	isCover, _ := strconv.ParseBool(c.PostForm("is_cover"))
	h.uploadImage(c, isCover)
}

func (h *ProfileHandler) SetCover(c *gin.Context) {
	h.uploadImage(c, true)
}

func (h *ProfileHandler) uploadImage(c *gin.Context, isCover bool) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	file, err := c.FormFile("image")
	if err != nil {
		h.HandleServiceError(c, apperrors.ErrFileRequired)
		return
	}

	image, err := h.profileService.AddImage(c.Request.Context(), h.GetDB(c), userID, file, isCover)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, image)
}

func (h *ProfileHandler) DeleteImage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	imageID, ok := PathUUID(c, "imageId", "profile")
	if !ok {
		return
	}
	if err := h.profileService.DeleteImage(c.Request.Context(), h.GetDB(c), userID, imageID); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *ProfileHandler) Like(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profileID, ok := PathUUID(c, "id", "profile")
	if !ok {
		return
	}
	resp, err := h.profileService.Like(h.GetDB(c), userID, profileID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) Unlike(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	profileID, ok := PathUUID(c, "id", "profile")
	if !ok {
		return
	}
	resp, err := h.profileService.Unlike(h.GetDB(c), userID, profileID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *ProfileHandler) GetDashboard(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	dashboard, err := h.profileService.GetDashboard(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, dashboard)
}
