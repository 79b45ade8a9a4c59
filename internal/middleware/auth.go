package middleware

import (
	"strings"

	"rencontre_backend/internal/auth"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/models"
	"rencontre_backend/pkg/apperrors"
	"rencontre_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
)

// bearerToken достаёт токен из "Authorization: Bearer ..." или ?token=
// (браузерный WebSocket не умеет ставить заголовки)
func bearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if strings.HasPrefix(authHeader, "Bearer ") {
		return strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	}
	return c.Query("token")
}

func setIdentity(c *gin.Context, claims *auth.Claims) {
	c.Set(contextkeys.UserIDKey, claims.UserID)
	c.Set(contextkeys.RoleKey, claims.Role)
	c.Request = c.Request.WithContext(logger.WithUserID(c.Request.Context(), claims.UserID))
}

// AuthMiddleware - middleware проверки JWT
func AuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := bearerToken(c)
		if tokenStr == "" {
			apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication credentials were not provided"))
			return
		}

		claims, err := tokens.ParseToken(tokenStr, auth.TokenTypeAccess)
		if err != nil {
			apperrors.HandleError(c, apperrors.ErrInvalidToken)
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthMiddleware выставляет пользователя, если токен валиден,
// и пропускает анонимов
func OptionalAuthMiddleware(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenStr := bearerToken(c); tokenStr != "" {
			if claims, err := tokens.ParseToken(tokenStr, auth.TokenTypeAccess); err == nil {
				setIdentity(c, claims)
			}
		}
		c.Next()
	}
}

// RoleMiddleware - middleware ограничения по ролям
func RoleMiddleware(requiredRole models.UserRole) gin.HandlerFunc {
	return func(c *gin.Context) {
		if GetRole(c) != requiredRole {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// PermissionMiddleware пропускает роли, у которых есть permission
func PermissionMiddleware(permission string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !auth.HasPermission(string(GetRole(c)), permission) {
			apperrors.HandleError(c, apperrors.ErrInsufficientPermissions)
			return
		}
		c.Next()
	}
}

// GetUserID извлекает ID пользователя из контекста
func GetUserID(c *gin.Context) string {
	return c.GetString(contextkeys.UserIDKey)
}

func GetRole(c *gin.Context) models.UserRole {
	return models.UserRole(c.GetString(contextkeys.RoleKey))
}
