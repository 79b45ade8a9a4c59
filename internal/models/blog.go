package models

import (
	"time"
)

type Category struct {
	BaseModel
	Name string `gorm:"size:100;not null;uniqueIndex" json:"name"`
	Slug string `gorm:"size:100;not null;uniqueIndex" json:"slug"`
}

type Post struct {
	BaseModel
	AuthorID       *string    `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Title          string     `gorm:"size:200;not null;uniqueIndex" json:"title"`
	Slug           string     `gorm:"size:200;not null;uniqueIndex" json:"slug"`
	CoverImage     string     `json:"cover_image,omitempty"`
	Content        string     `gorm:"type:text;not null" json:"content"`
	SEODescription string     `gorm:"column:seo_description;size:160" json:"seo_description"`
	Status         PostStatus `gorm:"type:varchar(10);not null;default:'draft';index" json:"status"`
	PublishedAt    *time.Time `gorm:"index" json:"published_at,omitempty"`
	ReadingTime    int        `gorm:"default:1" json:"reading_time"`
	ViewsCount     int        `gorm:"default:0" json:"views_count"`

	Author     *User      `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
	Categories []Category `gorm:"many2many:post_categories" json:"categories"`
}

func (p *Post) IsPublished() bool {
	return p.Status == PostStatusPublished
}

type Comment struct {
	BaseModel
	PostID     string  `gorm:"type:uuid;not null;index" json:"post_id"`
	AuthorID   *string `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Content    string  `gorm:"type:text;not null" json:"content"`
	IsApproved bool    `gorm:"default:false;index" json:"is_approved"`

	Author *User `gorm:"foreignKey:AuthorID;constraint:OnDelete:SET NULL" json:"author,omitempty"`
}

type PostRating struct {
	BaseModel
	PostID string `gorm:"type:uuid;not null;uniqueIndex:idx_rating_post_user" json:"post_id"`
	UserID string `gorm:"type:uuid;not null;uniqueIndex:idx_rating_post_user" json:"user_id"`
	Score  int    `gorm:"not null" json:"score"`
}
