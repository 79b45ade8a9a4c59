package handlers

import (
	"net/http"

	"rencontre_backend/internal/auth"
	"rencontre_backend/internal/middleware"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/services"
	"rencontre_backend/internal/services/dto"

	"github.com/gin-gonic/gin"
)

type BlogHandler struct {
	*BaseHandler
	blogService services.BlogService
}

func NewBlogHandler(base *BaseHandler, blogService services.BlogService) *BlogHandler {
	return &BlogHandler{
		BaseHandler: base,
		blogService: blogService,
	}
}

func (h *BlogHandler) RegisterRoutes(rg *gin.RouterGroup, mw RouteMiddlewares) {
	blog := rg.Group("/blog")
	{
		blog.GET("/posts", h.ListPosts)
		blog.GET("/posts/:slug", h.GetPost)
		blog.GET("/categories/:slug/posts", h.ListCategoryPosts)
		blog.POST("/posts/:slug/comments", mw.Auth, middleware.PermissionMiddleware(auth.PermBlogCommentOwn), h.AddComment)
		blog.POST("/posts/:slug/ratings", mw.Auth, middleware.PermissionMiddleware(auth.PermBlogCommentOwn), h.RatePost)
	}

	admin := rg.Group("/admin/blog")
	admin.Use(mw.Auth, middleware.RoleMiddleware(models.UserRoleAdmin))
	{
		posts := admin.Group("/posts", middleware.PermissionMiddleware(auth.PermBlogWrite))
		posts.POST("", h.CreatePost)
		posts.PUT("/:id", h.UpdatePost)
		posts.POST("/:id/publish", h.setPostStatus(models.PostStatusPublished))
		posts.POST("/:id/draft", h.setPostStatus(models.PostStatusDraft))
		posts.POST("/:id/archive", h.setPostStatus(models.PostStatusArchived))

		admin.POST("/categories", middleware.PermissionMiddleware(auth.PermBlogWrite), h.CreateCategory)

		comments := admin.Group("/comments", middleware.PermissionMiddleware(auth.PermBlogModerate))
		comments.GET("/pending", h.ListPendingComments)
		comments.POST("/:id/approve", h.setCommentApproval(true))
		comments.POST("/:id/disapprove", h.setCommentApproval(false))
	}
}

func (h *BlogHandler) ListPosts(c *gin.Context) {
	resp, err := h.blogService.ListPosts(h.GetDB(c), ParsePage(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BlogHandler) GetPost(c *gin.Context) {
	resp, err := h.blogService.GetPost(h.GetDB(c), c.Param("slug"))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BlogHandler) ListCategoryPosts(c *gin.Context) {
	resp, err := h.blogService.ListCategoryPosts(h.GetDB(c), c.Param("slug"), ParsePage(c))
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BlogHandler) AddComment(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreateCommentRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.blogService.AddComment(h.GetDB(c), c.Param("slug"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BlogHandler) RatePost(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.RatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.blogService.RatePost(h.GetDB(c), c.Param("slug"), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// --- Admin ---

func (h *BlogHandler) CreatePost(c *gin.Context) {
	userID, ok := h.GetAndAuthorizeUserID(c)
	if !ok {
		return
	}

	var req dto.CreatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.blogService.CreatePost(h.GetDB(c), userID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BlogHandler) UpdatePost(c *gin.Context) {
	var req dto.UpdatePostRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	postID, ok := PathUUID(c, "id", "blog")
	if !ok {
		return
	}
	resp, err := h.blogService.UpdatePost(h.GetDB(c), postID, &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BlogHandler) setPostStatus(status models.PostStatus) gin.HandlerFunc {
	return func(c *gin.Context) {
		postID, ok := PathUUID(c, "id", "blog")
		if !ok {
			return
		}
		resp, err := h.blogService.SetPostStatus(h.GetDB(c), postID, status)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (h *BlogHandler) CreateCategory(c *gin.Context) {
	var req dto.CreateCategoryRequest
	if !h.BindAndValidate_JSON(c, &req) {
		return
	}

	resp, err := h.blogService.CreateCategory(h.GetDB(c), &req)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *BlogHandler) ListPendingComments(c *gin.Context) {
	page, pageSize := ParsePagination(c)

	resp, err := h.blogService.ListPendingComments(h.GetDB(c), page, pageSize)
	if err != nil {
		h.HandleServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (h *BlogHandler) setCommentApproval(approved bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		commentID, ok := PathUUID(c, "id", "blog")
		if !ok {
			return
		}
		resp, err := h.blogService.SetCommentApproval(h.GetDB(c), commentID, approved)
		if err != nil {
			h.HandleServiceError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}
