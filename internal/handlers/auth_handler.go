package handlers

import (
	"net/http"

	"rencontre_backend/internal/services"
	"rencontre_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	*BaseHandler
	authService services.AuthService
}

func NewAuthHandler(base *BaseHandler, authService services.AuthService) *AuthHandler {
	return &AuthHandler{
		BaseHandler: base,
		authService: authService,
	}
}

// RegisterRoutes регистрирует маршруты аутентификации под /users
func (h *AuthHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	users := rg.Group("/users")
	users.Use(mw.AuthLimit)
	{
		users.POST("/register", h.Register)
		users.POST("/login", h.Login)
		users.POST("/token/refresh", h.RefreshToken)
		users.POST("/google-auth", h.GoogleAuth)
		users.POST("/logout", mw.Auth, h.Logout)
	}
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Register(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusCreated, response)
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.Login(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

func (h *AuthHandler) RefreshToken(c *gin.Context) {
	var req dto.RefreshTokenRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.RefreshToken(h.GetDB(c), req.Refresh)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}

// Logout удаляет refresh-токен. 205 - клиент должен сбросить состояние.
func (h *AuthHandler) Logout(c *gin.Context) {
	var req dto.LogoutRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}
	if err := h.authService.Logout(h.GetDB(c), req.Refresh); err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.Status(http.StatusResetContent)
}

func (h *AuthHandler) GoogleAuth(c *gin.Context) {
	var req dto.GoogleAuthRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	response, err := h.authService.GoogleAuth(c.Request.Context(), h.GetDB(c), req.IDToken)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}

	c.JSON(http.StatusOK, response)
}
