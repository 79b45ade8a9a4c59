package routes

import (
	"net/http"

	"rencontre_backend/docs"
	"rencontre_backend/internal/handlers"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/metrics"
	"rencontre_backend/ws"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// RegisterRoutes регистрирует все HTTP и WebSocket маршруты
func RegisterRoutes(
	router *gin.Engine,
	appHandlers *handlers.AppHandlers,
	mw handlers.RouteMiddlewares,
	wsHandler *ws.WebSocketHandler,
) {
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler,
		ginSwagger.InstanceName(docs.SwaggerInfo.InstanceName())))

	appHandlers.FileHandler.RegisterRoutes(&router.RouterGroup, mw)

	api := router.Group("/api/v1")
	{
		appHandlers.AuthHandler.RegisterRoutes(api, mw)
		appHandlers.UserHandler.RegisterRoutes(api, mw)
		appHandlers.ProfileHandler.RegisterRoutes(api, mw)
		appHandlers.SearchHandler.RegisterRoutes(api, mw)
		appHandlers.BlogHandler.RegisterRoutes(api, mw)
		appHandlers.ChatHandler.RegisterRoutes(api, mw)
		appHandlers.PaymentHandler.RegisterRoutes(api, mw)
		appHandlers.DocumentHandler.RegisterRoutes(api, mw)
		appHandlers.ContactHandler.RegisterRoutes(api, mw)

		api.GET("/messages/ws", mw.Auth, wsHandler.ServeWS)
	}

	logger.Info("Routes registered", "routes", len(router.Routes()))
}
