package handlers

import (
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"

	"rencontre_backend/internal/services"
	"rencontre_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type ChatHandler struct {
	*BaseHandler
	chatService services.ChatService
}

func NewChatHandler(base *BaseHandler, chatService services.ChatService) *ChatHandler {
	return &ChatHandler{
		BaseHandler: base,
		chatService: chatService,
	}
}

func (h *ChatHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	messages := rg.Group("/messages")
	messages.Use(mw.Auth)
	{
		messages.GET("/threads", h.ListThreads)
		messages.GET("/threads/:id", h.GetThread)
		messages.POST("/threads/:id/messages", h.SendMessage)
		messages.GET("/threads/:id/poll", h.Poll)
		messages.GET("/threads/:id/check", h.Check)
		messages.POST("/start/:userId", h.StartThread)
		messages.GET("/unread-count", h.UnreadCount)
	}
}

func (h *ChatHandler) ListThreads(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.chatService.ListThreads(h.GetDB(c), userID, ParsePage(c), services.ThreadsPageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) GetThread(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	threadID, ok := PathUUID(c, "id", "chat")
	if !ok {
		return
	}
	resp, err := h.chatService.GetThread(h.GetDB(c), threadID, userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SendMessage принимает JSON или multipart (content + image)
func (h *ChatHandler) SendMessage(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var (
		content string
		image   *multipart.FileHeader
	)
	if strings.HasPrefix(c.ContentType(), "multipart/") {
		content = c.PostForm("content")
		if file, err := c.FormFile("image"); err == nil {
			image = file
		}
	} else {
		var req dto.SendMessageRequest
		if !h.BindAndValidate_JSON(c, &req) {
			return
		}
		content = req.Content
	}

	threadID, ok := PathUUID(c, "id", "chat")
	if !ok {
		return
	}
	resp, err := h.chatService.SendMessage(c.Request.Context(), h.GetDB(c), threadID, userID, content, image)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *ChatHandler) Poll(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	threadID, ok := PathUUID(c, "id", "chat")
	if !ok {
		return
	}
	resp, err := h.chatService.Poll(h.GetDB(c), threadID, userID, parseLastID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) Check(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	threadID, ok := PathUUID(c, "id", "chat")
	if !ok {
		return
	}
	resp, err := h.chatService.Check(h.GetDB(c), threadID, userID, parseLastID(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) StartThread(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	otherID, ok := PathUUID(c, "userId", "user")
	if !ok {
		return
	}
	resp, err := h.chatService.StartThread(h.GetDB(c), userID, otherID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *ChatHandler) UnreadCount(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	resp, err := h.chatService.UnreadCount(h.GetDB(c), userID)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// parseLastID - некорректный last_id считается нулём
func parseLastID(c *gin.Context) uint64 {
	id, err := strconv.ParseUint(c.Query("last_id"), 10, 64)
	if err != nil {
		return 0
	}
	return id
}
