package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/internal/utils"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

const (
	BlogPageSize     = 6
	relatedPostLimit = 3
	maxSlugAttempts  = 50
)

type BlogService interface {
	ListPosts(db *gorm.DB, page int) (*dto.PostListResponse, error)
	// GetPost - только опубликованные; каждый вызов увеличивает views_count
	GetPost(db *gorm.DB, slug string) (*dto.PostDetailResponse, error)
	ListCategoryPosts(db *gorm.DB, categorySlug string, page int) (*dto.PaginatedResponse, error)
	AddComment(db *gorm.DB, slug, userID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error)
	RatePost(db *gorm.DB, slug, userID string, req *dto.RatePostRequest) (*dto.RatingResponse, error)

	// Admin
	CreatePost(db *gorm.DB, authorID string, req *dto.CreatePostRequest) (*dto.PostResponse, error)
	UpdatePost(db *gorm.DB, postID string, req *dto.UpdatePostRequest) (*dto.PostResponse, error)
	SetPostStatus(db *gorm.DB, postID string, status models.PostStatus) (*dto.PostResponse, error)
	CreateCategory(db *gorm.DB, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error)
	SetCommentApproval(db *gorm.DB, commentID string, approved bool) (*dto.CommentResponse, error)
	ListPendingComments(db *gorm.DB, page, pageSize int) (*dto.PaginatedResponse, error)
}

type blogService struct {
	blogRepo repositories.BlogRepository
	media    MediaService
}

func NewBlogService(blogRepo repositories.BlogRepository, media MediaService) BlogService {
	return &blogService{
		blogRepo: blogRepo,
		media:    media,
	}
}

func (s *blogService) ListPosts(db *gorm.DB, page int) (*dto.PostListResponse, error) {
	posts, total, err := s.blogRepo.ListPublished(db, "", BlogPageSize, dto.Offset(page, BlogPageSize))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	counts, err := s.blogRepo.CategoriesWithPublishedCounts(db)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	categories := make([]*dto.CategoryResponse, 0, len(counts))
	for i := range counts {
		c := categoryResponse(&counts[i].Category)
		c.PostCount = counts[i].PostCount
		categories = append(categories, c)
	}

	return &dto.PostListResponse{
		Posts:      dto.NewPaginatedResponse(s.postList(ctxOf(db), posts, false), total, page, BlogPageSize),
		Categories: categories,
	}, nil
}

func (s *blogService) GetPost(db *gorm.DB, slug string) (*dto.PostDetailResponse, error) {
	post, err := s.blogRepo.FindPublishedBySlug(db, slug)
	if err != nil {
		return nil, handleBlogError(err)
	}

	if err := s.blogRepo.IncrementViews(db, post.ID); err != nil {
		return nil, apperrors.InternalError(err)
	}
	post.ViewsCount++

	comments, err := s.blogRepo.FindApprovedComments(db, post.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	rating, err := s.blogRepo.GetRatingSummary(db, post.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	related, err := s.blogRepo.FindRelated(db, post, relatedPostLimit)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ctx := ctxOf(db)
	resp := &dto.PostDetailResponse{
		Post:          s.postResponse(ctx, post, true),
		Comments:      make([]*dto.CommentResponse, 0, len(comments)),
		AverageRating: rating.Average,
		RatingsCount:  rating.Count,
		Related:       s.postList(ctx, related, false),
	}
	for i := range comments {
		resp.Comments = append(resp.Comments, s.commentResponse(ctx, &comments[i]))
	}
	return resp, nil
}

func (s *blogService) ListCategoryPosts(db *gorm.DB, categorySlug string, page int) (*dto.PaginatedResponse, error) {
	category, err := s.blogRepo.FindCategoryBySlug(db, categorySlug)
	if err != nil {
		return nil, handleBlogError(err)
	}

	posts, total, err := s.blogRepo.ListPublished(db, category.ID, BlogPageSize, dto.Offset(page, BlogPageSize))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(s.postList(ctxOf(db), posts, false), total, page, BlogPageSize), nil
}

// AddComment - комментарий ждёт модерации
func (s *blogService) AddComment(db *gorm.DB, slug, userID string, req *dto.CreateCommentRequest) (*dto.CommentResponse, error) {
	post, err := s.blogRepo.FindPublishedBySlug(db, slug)
	if err != nil {
		return nil, handleBlogError(err)
	}

	content := strings.TrimSpace(req.Content)
	if content == "" {
		return nil, apperrors.FieldError("content", "This field is required")
	}

	comment := &models.Comment{
		PostID:     post.ID,
		AuthorID:   &userID,
		Content:    content,
		IsApproved: false,
	}
	if err := s.blogRepo.CreateComment(db, comment); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.commentResponse(ctxOf(db), comment), nil
}

func (s *blogService) RatePost(db *gorm.DB, slug, userID string, req *dto.RatePostRequest) (*dto.RatingResponse, error) {
	if req.Score < 1 || req.Score > 5 {
		return nil, apperrors.FieldError("score", "Score must be between 1 and 5")
	}

	post, err := s.blogRepo.FindPublishedBySlug(db, slug)
	if err != nil {
		return nil, handleBlogError(err)
	}

	rating := &models.PostRating{PostID: post.ID, UserID: userID, Score: req.Score}
	if err := s.blogRepo.UpsertRating(db, rating); err != nil {
		return nil, apperrors.InternalError(err)
	}

	summary, err := s.blogRepo.GetRatingSummary(db, post.ID)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return &dto.RatingResponse{
		Score:         req.Score,
		AverageRating: summary.Average,
		RatingsCount:  summary.Count,
	}, nil
}

// --- Admin ---

func (s *blogService) CreatePost(db *gorm.DB, authorID string, req *dto.CreatePostRequest) (*dto.PostResponse, error) {
	title := strings.TrimSpace(req.Title)

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if taken, err := s.blogRepo.PostTitleExists(tx, title, ""); err != nil {
		return nil, apperrors.InternalError(err)
	} else if taken {
		return nil, apperrors.ErrConflict(nil, "blog", "A post with this title already exists")
	}

	slug, err := s.uniquePostSlug(tx, title, "")
	if err != nil {
		return nil, err
	}

	status := models.PostStatus(req.Status)
	if status == "" {
		status = models.PostStatusDraft
	}

	post := &models.Post{
		AuthorID:       &authorID,
		Title:          title,
		Slug:           slug,
		CoverImage:     req.CoverImage,
		Content:        req.Content,
		SEODescription: req.SEODescription,
		Status:         status,
		PublishedAt:    req.PublishedAt,
	}
	preparePost(post)

	if err := s.blogRepo.CreatePost(tx, post); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if len(req.CategoryIDs) > 0 {
		if err := s.assignCategories(tx, post, req.CategoryIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "post created", "post_id", post.ID, "slug", post.Slug, "status", post.Status)
	return s.reload(db, post.ID)
}

// UpdatePost - slug остаётся прежним, чтобы не ломать ссылки
func (s *blogService) UpdatePost(db *gorm.DB, postID string, req *dto.UpdatePostRequest) (*dto.PostResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	post, err := s.blogRepo.FindPostByID(tx, postID)
	if err != nil {
		return nil, handleBlogError(err)
	}

	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if taken, err := s.blogRepo.PostTitleExists(tx, title, post.ID); err != nil {
			return nil, apperrors.InternalError(err)
		} else if taken {
			return nil, apperrors.ErrConflict(nil, "blog", "A post with this title already exists")
		}
		post.Title = title
	}
	if req.CoverImage != nil {
		post.CoverImage = *req.CoverImage
	}
	if req.Content != nil {
		post.Content = *req.Content
	}
	if req.SEODescription != nil {
		post.SEODescription = *req.SEODescription
	}
	if req.Status != nil {
		post.Status = models.PostStatus(*req.Status)
	}
	if req.PublishedAt != nil {
		post.PublishedAt = req.PublishedAt
	}
	preparePost(post)

	if err := s.blogRepo.UpdatePost(tx, post); err != nil {
		return nil, apperrors.InternalError(err)
	}
	if req.CategoryIDs != nil {
		if err := s.assignCategories(tx, post, req.CategoryIDs); err != nil {
			return nil, err
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return s.reload(db, post.ID)
}

func (s *blogService) SetPostStatus(db *gorm.DB, postID string, status models.PostStatus) (*dto.PostResponse, error) {
	post, err := s.blogRepo.FindPostByID(db, postID)
	if err != nil {
		return nil, handleBlogError(err)
	}

	post.Status = status
	preparePost(post)

	if err := s.blogRepo.UpdatePost(db, post); err != nil {
		return nil, apperrors.InternalError(err)
	}
	logger.CtxInfo(ctxOf(db), "post status changed", "post_id", post.ID, "status", status)
	return s.postResponse(ctxOf(db), post, true), nil
}

func (s *blogService) CreateCategory(db *gorm.DB, req *dto.CreateCategoryRequest) (*dto.CategoryResponse, error) {
	name := strings.TrimSpace(req.Name)
	slug := utils.Slugify(name)
	if slug == "" {
		return nil, apperrors.FieldError("name", "Name must contain letters or digits")
	}

	taken, err := s.blogRepo.CategorySlugExists(db, slug)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	if taken {
		return nil, apperrors.ErrConflict(nil, "blog", "A category with this name already exists")
	}

	category := &models.Category{Name: name, Slug: slug}
	if err := s.blogRepo.CreateCategory(db, category); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrConflict(err, "blog", "A category with this name already exists")
		}
		return nil, apperrors.InternalError(err)
	}
	return categoryResponse(category), nil
}

func (s *blogService) SetCommentApproval(db *gorm.DB, commentID string, approved bool) (*dto.CommentResponse, error) {
	comment, err := s.blogRepo.SetCommentApproval(db, commentID, approved)
	if err != nil {
		return nil, handleBlogError(err)
	}
	return s.commentResponse(ctxOf(db), comment), nil
}

func (s *blogService) ListPendingComments(db *gorm.DB, page, pageSize int) (*dto.PaginatedResponse, error) {
	comments, total, err := s.blogRepo.FindPendingComments(db, pageSize, dto.Offset(page, pageSize))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	ctx := ctxOf(db)
	items := make([]*dto.CommentResponse, 0, len(comments))
	for i := range comments {
		items = append(items, s.commentResponse(ctx, &comments[i]))
	}
	return dto.NewPaginatedResponse(items, total, page, pageSize), nil
}

// preparePost пересчитывает производные поля перед сохранением
func preparePost(post *models.Post) {
	post.ReadingTime = utils.ReadingTime(post.Content)
	if post.Status == models.PostStatusPublished && post.PublishedAt == nil {
		now := timeNow()
		post.PublishedAt = &now
	}
	if post.SEODescription == "" {
		post.SEODescription = utils.Truncate(strings.Join(strings.Fields(post.Content), " "), 160)
	}
}

// uniquePostSlug - slug из заголовка, при коллизии добавляется -2, -3 ...
func (s *blogService) uniquePostSlug(db *gorm.DB, title, excludeID string) (string, error) {
	base := utils.Slugify(title)
	if base == "" {
		return "", apperrors.FieldError("title", "Title must contain letters or digits")
	}

	slug := base
	for i := 2; i <= maxSlugAttempts; i++ {
		taken, err := s.blogRepo.PostSlugExists(db, slug, excludeID)
		if err != nil {
			return "", apperrors.InternalError(err)
		}
		if !taken {
			return slug, nil
		}
		slug = fmt.Sprintf("%s-%d", base, i)
	}
	return "", apperrors.ErrConflict(nil, "blog", "Could not generate a unique slug")
}

func (s *blogService) assignCategories(tx *gorm.DB, post *models.Post, ids []string) error {
	categories, err := s.blogRepo.FindCategoriesByIDs(tx, ids)
	if err != nil {
		return apperrors.InternalError(err)
	}
	if len(categories) != len(uniqueStrings(ids)) {
		return apperrors.FieldError("category_ids", "Unknown category")
	}
	if err := s.blogRepo.ReplaceCategories(tx, post, categories); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *blogService) reload(db *gorm.DB, postID string) (*dto.PostResponse, error) {
	post, err := s.blogRepo.FindPostByID(db, postID)
	if err != nil {
		return nil, handleBlogError(err)
	}
	return s.postResponse(ctxOf(db), post, true), nil
}

func (s *blogService) postList(ctx context.Context, posts []models.Post, withContent bool) []*dto.PostResponse {
	items := make([]*dto.PostResponse, 0, len(posts))
	for i := range posts {
		items = append(items, s.postResponse(ctx, &posts[i], withContent))
	}
	return items
}

func (s *blogService) postResponse(ctx context.Context, post *models.Post, withContent bool) *dto.PostResponse {
	resp := &dto.PostResponse{
		ID:             post.ID,
		Title:          post.Title,
		Slug:           post.Slug,
		Author:         participantResponse(ctx, s.media, post.Author),
		CoverImage:     post.CoverImage,
		SEODescription: post.SEODescription,
		Status:         string(post.Status),
		PublishedAt:    post.PublishedAt,
		ReadingTime:    post.ReadingTime,
		ViewsCount:     post.ViewsCount,
		Categories:     make([]*dto.CategoryResponse, 0, len(post.Categories)),
		CreatedAt:      post.CreatedAt,
		UpdatedAt:      post.UpdatedAt,
	}
	if withContent {
		resp.Content = post.Content
	}
	for i := range post.Categories {
		resp.Categories = append(resp.Categories, categoryResponse(&post.Categories[i]))
	}
	return resp
}

func (s *blogService) commentResponse(ctx context.Context, c *models.Comment) *dto.CommentResponse {
	return &dto.CommentResponse{
		ID:         c.ID,
		PostID:     c.PostID,
		Author:     participantResponse(ctx, s.media, c.Author),
		Content:    c.Content,
		IsApproved: c.IsApproved,
		CreatedAt:  c.CreatedAt,
	}
}

func categoryResponse(c *models.Category) *dto.CategoryResponse {
	return &dto.CategoryResponse{ID: c.ID, Name: c.Name, Slug: c.Slug}
}

func uniqueStrings(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if !seen[item] {
			seen[item] = true
			result = append(result, item)
		}
	}
	return result
}

func handleBlogError(err error) error {
	switch {
	case errors.Is(err, repositories.ErrPostNotFound):
		return apperrors.NewNotFoundError("blog", "Post not found")
	case errors.Is(err, repositories.ErrCategoryNotFound):
		return apperrors.NewNotFoundError("blog", "Category not found")
	case errors.Is(err, repositories.ErrCommentNotFound):
		return apperrors.NewNotFoundError("blog", "Comment not found")
	}
	return apperrors.InternalError(err)
}
