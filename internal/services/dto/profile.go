package dto

import (
	"time"
)

const DateLayout = "2006-01-02"

type ProfileImageResponse struct {
	ID           string    `json:"id"`
	ImageURL     string    `json:"image_url"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	IsCover      bool      `json:"is_cover"`
	CreatedAt    time.Time `json:"created_at"`
}

type ProfileResponse struct {
	ID               string                  `json:"id"`
	User             *ParticipantResponse    `json:"user"`
	Gender           string                  `json:"gender"`
	DateOfBirth      string                  `json:"date_of_birth"`
	Age              int                     `json:"age"`
	Bio              string                  `json:"bio"`
	City             string                  `json:"city"`
	Country          string                  `json:"country"`
	IsDiaspora       bool                    `json:"is_diaspora"`
	RelationshipGoal string                  `json:"relationship_goal"`
	IsActive         bool                    `json:"is_active"`
	LastSeen         *time.Time              `json:"last_seen,omitempty"`
	CoverURL         string                  `json:"cover_url,omitempty"`
	Images           []*ProfileImageResponse `json:"images"`
}

// ProfileDetailResponse - анкета глазами другого пользователя
type ProfileDetailResponse struct {
	*ProfileResponse
	IsOwner  bool   `json:"is_owner"`
	IsLiked  bool   `json:"is_liked"`
	ThreadID string `json:"thread_id,omitempty"`
}

// UpdateProfileRequest - частичное обновление, nil поля не трогаем
type UpdateProfileRequest struct {
	Gender           *string `json:"gender" validate:"omitempty,is-gender"`
	DateOfBirth      *string `json:"date_of_birth" validate:"omitempty,datetime=2006-01-02"`
	Bio              *string `json:"bio" validate:"omitempty,max=500"`
	City             *string `json:"city" validate:"omitempty,max=100"`
	Country          *string `json:"country" validate:"omitempty,max=100"`
	IsDiaspora       *bool   `json:"is_diaspora"`
	RelationshipGoal *string `json:"relationship_goal" validate:"omitempty,is-relationship-goal"`
	IsActive         *bool   `json:"is_active"`
}

type LikeResponse struct {
	Liked bool `json:"liked"`
}

// --- Dashboard ---

type ProfileCompletion struct {
	Percent int      `json:"percent"`
	Missing []string `json:"missing"`
}

type DashboardStats struct {
	VisitsLastWeek int64 `json:"visits_last_week"`
	UniqueVisitors int64 `json:"unique_visitors"`
	UnreadMessages int64 `json:"unread_messages"`
	ActiveThreads  int64 `json:"active_threads"`
	LikesReceived  int64 `json:"likes_received"`
}

type ActivityItem struct {
	Type      string               `json:"type"` // like | message
	User      *ParticipantResponse `json:"user,omitempty"`
	ThreadID  string               `json:"thread_id,omitempty"`
	Preview   string               `json:"preview,omitempty"`
	CreatedAt time.Time            `json:"created_at"`
}

type Popularity struct {
	Score int    `json:"score"`
	Level string `json:"level"`
}

type DashboardResponse struct {
	Profile        *ProfileResponse   `json:"profile"`
	Completion     *ProfileCompletion `json:"completion"`
	Stats          *DashboardStats    `json:"stats"`
	RecentActivity []*ActivityItem    `json:"recent_activity"`
	Suggestions    []*ProfileResponse `json:"suggestions"`
	Popularity     *Popularity        `json:"popularity"`
}

// --- Search ---

// SearchRequest - одни и те же поля для query (GET) и json (POST)
type SearchRequest struct {
	Gender           string `form:"gender" json:"gender" validate:"omitempty,is-gender"`
	RelationshipGoal string `form:"relationship_goal" json:"relationship_goal" validate:"omitempty,is-relationship-goal"`
	City             string `form:"city" json:"city" validate:"omitempty,max=100"`
	IsDiaspora       *bool  `form:"is_diaspora" json:"is_diaspora"`
	MinAge           *int   `form:"min_age" json:"min_age" validate:"omitempty,gte=18,lte=99"`
	MaxAge           *int   `form:"max_age" json:"max_age" validate:"omitempty,gte=18,lte=99"`
}

type SearchResponse struct {
	Results []*ProfileResponse `json:"results"`
	Count   int64              `json:"count"`
}
