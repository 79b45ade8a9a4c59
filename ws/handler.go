package ws

import (
	"net/http"
	"strings"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/middleware"
	"rencontre_backend/pkg/apperrors"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type WebSocketHandler struct {
	manager  *WebSocketManager
	upgrader websocket.Upgrader
}

// NewWebSocketHandler - allowedOrigin пустой или "*" пропускает любой Origin
func NewWebSocketHandler(manager *WebSocketManager, allowedOrigin string) *WebSocketHandler {
	return &WebSocketHandler{
		manager: manager,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if allowedOrigin == "" || allowedOrigin == "*" || origin == "" {
					return true
				}
				return strings.EqualFold(strings.TrimSuffix(origin, "/"), strings.TrimSuffix(allowedOrigin, "/"))
			},
		},
	}
}

// ServeWS ожидает AuthMiddleware перед собой: токен из заголовка или ?token
func (h *WebSocketHandler) ServeWS(c *gin.Context) {
	userID := middleware.GetUserID(c)
	if userID == "" {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.CtxWarn(c.Request.Context(), "WebSocket upgrade failed", "error", err)
		return
	}

	client := newClient(h.manager, conn, userID)
	if !h.manager.Register(client) {
		_ = conn.Close()
		return
	}

	go client.writePump()
	go client.readPump()
}
