package dto

import (
	"time"
)

type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	PostCount int64  `json:"post_count,omitempty"`
}

type PostResponse struct {
	ID             string               `json:"id"`
	Title          string               `json:"title"`
	Slug           string               `json:"slug"`
	Author         *ParticipantResponse `json:"author,omitempty"`
	CoverImage     string               `json:"cover_image,omitempty"`
	Content        string               `json:"content,omitempty"`
	SEODescription string               `json:"seo_description"`
	Status         string               `json:"status"`
	PublishedAt    *time.Time           `json:"published_at,omitempty"`
	ReadingTime    int                  `json:"reading_time"`
	ViewsCount     int                  `json:"views_count"`
	Categories     []*CategoryResponse  `json:"categories"`
	CreatedAt      time.Time            `json:"created_at"`
	UpdatedAt      time.Time            `json:"updated_at"`
}

type CommentResponse struct {
	ID         string               `json:"id"`
	PostID     string               `json:"post_id"`
	Author     *ParticipantResponse `json:"author,omitempty"`
	Content    string               `json:"content"`
	IsApproved bool                 `json:"is_approved"`
	CreatedAt  time.Time            `json:"created_at"`
}

type PostListResponse struct {
	Posts      *PaginatedResponse  `json:"posts"`
	Categories []*CategoryResponse `json:"categories"`
}

type PostDetailResponse struct {
	Post          *PostResponse      `json:"post"`
	Comments      []*CommentResponse `json:"comments"`
	AverageRating float64            `json:"average_rating"`
	RatingsCount  int64              `json:"ratings_count"`
	Related       []*PostResponse    `json:"related"`
}

// CreatePostRequest - slug и reading_time вычисляются
type CreatePostRequest struct {
	Title          string     `json:"title" validate:"required,max=200"`
	CoverImage     string     `json:"cover_image" validate:"omitempty,max=500"`
	Content        string     `json:"content" validate:"required"`
	SEODescription string     `json:"seo_description" validate:"omitempty,max=160"`
	Status         string     `json:"status" validate:"omitempty,is-post-status"`
	PublishedAt    *time.Time `json:"published_at"`
	CategoryIDs    []string   `json:"category_ids" validate:"omitempty,dive,uuid"`
}

type UpdatePostRequest struct {
	Title          *string    `json:"title" validate:"omitempty,min=1,max=200"`
	CoverImage     *string    `json:"cover_image" validate:"omitempty,max=500"`
	Content        *string    `json:"content" validate:"omitempty,min=1"`
	SEODescription *string    `json:"seo_description" validate:"omitempty,max=160"`
	Status         *string    `json:"status" validate:"omitempty,is-post-status"`
	PublishedAt    *time.Time `json:"published_at"`
	CategoryIDs    []string   `json:"category_ids" validate:"omitempty,dive,uuid"`
}

type CreateCategoryRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

type CreateCommentRequest struct {
	Content string `json:"content" validate:"required,max=2000"`
}

type RatePostRequest struct {
	Score int `json:"score" validate:"required,gte=1,lte=5"`
}

type RatingResponse struct {
	Score         int     `json:"score"`
	AverageRating float64 `json:"average_rating"`
	RatingsCount  int64   `json:"ratings_count"`
}
