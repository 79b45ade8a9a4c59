package handlers

import (
	"errors"
	"fmt"
	"strconv"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/internal/validator"
	"rencontre_backend/pkg/apperrors"
	"rencontre_backend/pkg/contextkeys"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
	maxPageSize     = 100
)

// BaseHandler - общие помощники для всех обработчиков API
type BaseHandler struct {
	validator *validator.Validator
}

func NewBaseHandler(v *validator.Validator) *BaseHandler {
	return &BaseHandler{validator: v}
}

// GetDB возвращает *gorm.DB запроса (пул или транзакцию), положенный DBMiddleware.
// Отсутствие ключа - ошибка сборки роутера, поэтому panic.
func (h *BaseHandler) GetDB(c *gin.Context) *gorm.DB {
	key := string(contextkeys.DBContextKey)

	val, ok := c.Get(key)
	if !ok {
		logger.CtxError(c.Request.Context(), "db not found in gin context", "key", key)
		panic("DBMiddleware is not installed")
	}
	db, ok := val.(*gorm.DB)
	if !ok {
		logger.CtxError(c.Request.Context(), "db in gin context has wrong type", "key", key, "type", fmt.Sprintf("%T", val))
		panic("DBMiddleware stored a value of the wrong type")
	}
	return db
}

// BindAndValidate_JSON принимает JSON и form-data (нужно для сообщений с картинкой)
func (h *BaseHandler) BindAndValidate_JSON(c *gin.Context, obj interface{}) bool {
	return h.bindAndValidate(c, obj, c.ShouldBind, "body")
}

func (h *BaseHandler) BindAndValidate_Query(c *gin.Context, obj interface{}) bool {
	return h.bindAndValidate(c, obj, c.ShouldBindQuery, "query")
}

func (h *BaseHandler) bindAndValidate(c *gin.Context, obj interface{}, bind func(interface{}) error, source string) bool {
	ctx := c.Request.Context()

	if err := bind(obj); err != nil {
		logger.CtxWithError(ctx, "request binding failed", err, "source", source, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.NewBadRequestError(fmt.Sprintf("Invalid request %s: %s", source, err.Error())))
		return false
	}

	err := h.validator.Validate(obj)
	if err == nil {
		return true
	}

	var vErr *validator.ValidationError
	if errors.As(err, &vErr) {
		logger.CtxWarn(ctx, "validation failed", "source", source, "errors", vErr.Errors, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.ValidationError(vErr.Errors))
	} else {
		logger.CtxWithError(ctx, "validator failure", err, "source", source, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
	}
	return false
}

// HandleServiceError пишет ответ по ошибке сервиса; всё, что не AppError, становится 500
func (h *BaseHandler) HandleServiceError(c *gin.Context, err error) {
	ctx := c.Request.Context()

	var appErr *apperrors.AppError
	if !apperrors.As(err, &appErr) {
		logger.CtxWithError(ctx, "unexpected service error", err, "path", c.Request.URL.Path)
		apperrors.HandleError(c, apperrors.InternalError(err))
		return
	}

	if appErr.HTTPCode >= 500 {
		logger.CtxWithError(ctx, "service failure", appErr, "path", c.Request.URL.Path)
	} else {
		logger.CtxDebug(ctx, "service rejected request",
			"code", appErr.Code,
			"message", appErr.Message,
			"path", c.Request.URL.Path,
		)
	}
	apperrors.HandleError(c, appErr)
}

// GetAndAuthorizeUserID - id пользователя, положенный AuthMiddleware; иначе 401
func (h *BaseHandler) GetAndAuthorizeUserID(c *gin.Context) (string, bool) {
	userID, _ := c.Get(contextkeys.UserIDKey)
	if id, ok := userID.(string); ok && id != "" {
		return id, true
	}

	logger.CtxWarn(c.Request.Context(), "request without authenticated user",
		"path", c.Request.URL.Path,
		"ip", c.ClientIP(),
	)
	apperrors.HandleError(c, apperrors.NewUnauthorizedError("User not authenticated"))
	return "", false
}

// PathUUID читает uuid из пути. Невалидный id отвечает 404 так же, как несуществующий:
// иначе postgres вернёт ошибку приведения типа и клиент увидит 500.
func PathUUID(c *gin.Context, name, domain string) (string, bool) {
	raw := c.Param(name)
	if _, err := uuid.Parse(raw); err != nil {
		apperrors.HandleError(c, apperrors.NewNotFoundError(domain, "Not found"))
		return "", false
	}
	return raw, true
}

func ParseQueryInt(c *gin.Context, key string, defaultValue int) int {
	value, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return defaultValue
	}
	return value
}

// ParsePage: 1 <= page <= dto.MaxPage; мусор и неположительные значения дают первую страницу
func ParsePage(c *gin.Context) int {
	page := ParseQueryInt(c, "page", defaultPage)
	if page <= 0 {
		return defaultPage
	}
	return min(page, dto.MaxPage)
}

// ParsePagination: 1 <= page <= dto.MaxPage, 1 <= page_size <= 100
func ParsePagination(c *gin.Context) (page int, pageSize int) {
	page = ParsePage(c)

	pageSize = ParseQueryInt(c, "page_size", defaultPageSize)
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return page, min(pageSize, maxPageSize)
}
