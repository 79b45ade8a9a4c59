package handlers

import "github.com/gin-gonic/gin"

// AppHandlers содержит все хэндлеры приложения.
type AppHandlers struct {
	AuthHandler     *AuthHandler
	UserHandler     *UserHandler
	ProfileHandler  *ProfileHandler
	SearchHandler   *SearchHandler
	BlogHandler     *BlogHandler
	ChatHandler     *ChatHandler
	PaymentHandler  *PaymentHandler
	DocumentHandler *DocumentHandler
	ContactHandler  *ContactHandler
	FileHandler     *FileHandler
}

// RouteMiddlewares - middleware, которым нужны зависимости приложения
// (менеджер токенов, лимитеры). Собираются в app и раздаются хэндлерам.
type RouteMiddlewares struct {
	Auth         gin.HandlerFunc
	OptionalAuth gin.HandlerFunc
	AuthLimit    gin.HandlerFunc
	WebhookLimit gin.HandlerFunc
}
