package repositories

import (
	"errors"

	"rencontre_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrCategoryNotFound = errors.New("category not found")
	ErrCommentNotFound  = errors.New("comment not found")
)

// CategoryCount - категория с числом опубликованных статей
type CategoryCount struct {
	models.Category
	PostCount int64 `json:"post_count"`
}

type RatingSummary struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

type BlogRepository interface {
	// Posts
	CreatePost(db *gorm.DB, post *models.Post) error
	UpdatePost(db *gorm.DB, post *models.Post) error
	FindPostByID(db *gorm.DB, id string) (*models.Post, error)
	FindPublishedBySlug(db *gorm.DB, slug string) (*models.Post, error)
	ListPublished(db *gorm.DB, categoryID string, limit, offset int) ([]models.Post, int64, error)
	FindRelated(db *gorm.DB, post *models.Post, limit int) ([]models.Post, error)
	IncrementViews(db *gorm.DB, postID string) error
	PostSlugExists(db *gorm.DB, slug, excludeID string) (bool, error)
	PostTitleExists(db *gorm.DB, title, excludeID string) (bool, error)
	ReplaceCategories(db *gorm.DB, post *models.Post, categories []models.Category) error

	// Categories
	CreateCategory(db *gorm.DB, category *models.Category) error
	FindCategoryBySlug(db *gorm.DB, slug string) (*models.Category, error)
	FindCategoriesByIDs(db *gorm.DB, ids []string) ([]models.Category, error)
	CategorySlugExists(db *gorm.DB, slug string) (bool, error)
	CategoriesWithPublishedCounts(db *gorm.DB) ([]CategoryCount, error)

	// Comments
	CreateComment(db *gorm.DB, comment *models.Comment) error
	SetCommentApproval(db *gorm.DB, commentID string, approved bool) (*models.Comment, error)
	FindApprovedComments(db *gorm.DB, postID string) ([]models.Comment, error)
	FindPendingComments(db *gorm.DB, limit, offset int) ([]models.Comment, int64, error)

	// Ratings
	UpsertRating(db *gorm.DB, rating *models.PostRating) error
	GetRatingSummary(db *gorm.DB, postID string) (*RatingSummary, error)
}

type blogRepository struct{}

func NewBlogRepository() BlogRepository {
	return &blogRepository{}
}

func published(db *gorm.DB) *gorm.DB {
	return db.Where("posts.status = ?", models.PostStatusPublished)
}

// --- Posts ---

func (r *blogRepository) CreatePost(db *gorm.DB, post *models.Post) error {
	return db.Create(post).Error
}

func (r *blogRepository) UpdatePost(db *gorm.DB, post *models.Post) error {
	return db.Omit("Categories", "Author").Save(post).Error
}

func (r *blogRepository) FindPostByID(db *gorm.DB, id string) (*models.Post, error) {
	var post models.Post
	if err := db.Preload("Author").Preload("Categories").First(&post, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *blogRepository) FindPublishedBySlug(db *gorm.DB, slug string) (*models.Post, error) {
	var post models.Post
	err := published(db).
		Preload("Author").
		Preload("Categories").
		Where("posts.slug = ?", slug).
		First(&post).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

func (r *blogRepository) ListPublished(db *gorm.DB, categoryID string, limit, offset int) ([]models.Post, int64, error) {
	query := published(db.Model(&models.Post{}))
	if categoryID != "" {
		query = query.Where("posts.id IN (?)",
			db.Table("post_categories").Select("post_id").Where("category_id = ?", categoryID))
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var posts []models.Post
	err := query.Preload("Author").
		Preload("Categories").
		Order("posts.published_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	return posts, total, err
}

func (r *blogRepository) FindRelated(db *gorm.DB, post *models.Post, limit int) ([]models.Post, error) {
	if len(post.Categories) == 0 {
		return []models.Post{}, nil
	}
	categoryIDs := make([]string, 0, len(post.Categories))
	for _, c := range post.Categories {
		categoryIDs = append(categoryIDs, c.ID)
	}

	var posts []models.Post
	err := published(db).
		Where("posts.id <> ?", post.ID).
		Where("posts.id IN (?)",
			db.Table("post_categories").Select("post_id").Where("category_id IN ?", categoryIDs)).
		Order("posts.published_at DESC").
		Limit(limit).
		Find(&posts).Error
	return posts, err
}

func (r *blogRepository) IncrementViews(db *gorm.DB, postID string) error {
	return db.Model(&models.Post{}).
		Where("id = ?", postID).
		UpdateColumn("views_count", gorm.Expr("views_count + 1")).Error
}

func (r *blogRepository) PostSlugExists(db *gorm.DB, slug, excludeID string) (bool, error) {
	return exists(db.Model(&models.Post{}).Where("slug = ?", slug), excludeID)
}

func (r *blogRepository) PostTitleExists(db *gorm.DB, title, excludeID string) (bool, error) {
	return exists(db.Model(&models.Post{}).Where("title = ?", title), excludeID)
}

func exists(query *gorm.DB, excludeID string) (bool, error) {
	if excludeID != "" {
		query = query.Where("id <> ?", excludeID)
	}
	var count int64
	err := query.Count(&count).Error
	return count > 0, err
}

func (r *blogRepository) ReplaceCategories(db *gorm.DB, post *models.Post, categories []models.Category) error {
	return db.Model(post).Association("Categories").Replace(categories)
}

// --- Categories ---

func (r *blogRepository) CreateCategory(db *gorm.DB, category *models.Category) error {
	return db.Create(category).Error
}

func (r *blogRepository) FindCategoryBySlug(db *gorm.DB, slug string) (*models.Category, error) {
	var category models.Category
	if err := db.First(&category, "slug = ?", slug).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCategoryNotFound
		}
		return nil, err
	}
	return &category, nil
}

func (r *blogRepository) FindCategoriesByIDs(db *gorm.DB, ids []string) ([]models.Category, error) {
	var categories []models.Category
	if len(ids) == 0 {
		return categories, nil
	}
	err := db.Where("id IN ?", ids).Find(&categories).Error
	return categories, err
}

func (r *blogRepository) CategorySlugExists(db *gorm.DB, slug string) (bool, error) {
	return exists(db.Model(&models.Category{}).Where("slug = ?", slug), "")
}

func (r *blogRepository) CategoriesWithPublishedCounts(db *gorm.DB) ([]CategoryCount, error) {
	var result []CategoryCount
	err := db.Model(&models.Category{}).
		Select("categories.*, COUNT(posts.id) AS post_count").
		Joins("JOIN post_categories pc ON pc.category_id = categories.id").
		Joins("JOIN posts ON posts.id = pc.post_id AND posts.status = ?", models.PostStatusPublished).
		Group("categories.id").
		Having("COUNT(posts.id) > 0").
		Order("categories.name ASC").
		Scan(&result).Error
	return result, err
}

// --- Comments ---

func (r *blogRepository) CreateComment(db *gorm.DB, comment *models.Comment) error {
	return db.Create(comment).Error
}

func (r *blogRepository) SetCommentApproval(db *gorm.DB, commentID string, approved bool) (*models.Comment, error) {
	var comment models.Comment
	if err := db.First(&comment, "id = ?", commentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}
	comment.IsApproved = approved
	if err := db.Model(&comment).Update("is_approved", approved).Error; err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *blogRepository) FindApprovedComments(db *gorm.DB, postID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := db.Preload("Author").
		Where("post_id = ? AND is_approved = ?", postID, true).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *blogRepository) FindPendingComments(db *gorm.DB, limit, offset int) ([]models.Comment, int64, error) {
	query := db.Model(&models.Comment{}).Where("is_approved = ?", false)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var comments []models.Comment
	err := query.Preload("Author").
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&comments).Error
	return comments, total, err
}

// --- Ratings ---

// UpsertRating - повторная оценка того же пользователя меняет score
func (r *blogRepository) UpsertRating(db *gorm.DB, rating *models.PostRating) error {
	return db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"score", "updated_at"}),
	}).Create(rating).Error
}

func (r *blogRepository) GetRatingSummary(db *gorm.DB, postID string) (*RatingSummary, error) {
	var summary RatingSummary
	err := db.Model(&models.PostRating{}).
		Select("COALESCE(AVG(score), 0) AS average, COUNT(*) AS count").
		Where("post_id = ?", postID).
		Scan(&summary).Error
	return &summary, err
}
