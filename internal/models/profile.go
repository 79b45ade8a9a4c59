package models

import "time"

type Profile struct {
	BaseModel
	UserID           string           `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	Gender           Gender           `gorm:"type:varchar(1);not null;default:'M'" json:"gender"`
	DateOfBirth      time.Time        `gorm:"type:date;not null" json:"date_of_birth"`
	Bio              string           `gorm:"size:500" json:"bio"`
	City             string           `gorm:"size:100;index" json:"city"`
	Country          string           `gorm:"size:100;default:'Bénin'" json:"country"`
	IsDiaspora       bool             `gorm:"default:false" json:"is_diaspora"`
	RelationshipGoal RelationshipGoal `gorm:"type:varchar(20);not null;default:'serious'" json:"relationship_goal"`
	IsActive         bool             `gorm:"default:true;index" json:"is_active"`
	LastSeen         *time.Time       `json:"last_seen,omitempty"`

	User   *User          `gorm:"foreignKey:UserID" json:"-"`
	Images []ProfileImage `gorm:"foreignKey:ProfileID;constraint:OnDelete:CASCADE" json:"images,omitempty"`
}

// Age - полных лет на дату now
func (p *Profile) Age(now time.Time) int {
	if p.DateOfBirth.IsZero() {
		return 0
	}
	age := now.Year() - p.DateOfBirth.Year()
	if now.Month() < p.DateOfBirth.Month() ||
		(now.Month() == p.DateOfBirth.Month() && now.Day() < p.DateOfBirth.Day()) {
		age--
	}
	return age
}

type ProfileImage struct {
	BaseModel
	ProfileID string `gorm:"type:uuid;not null;index" json:"profile_id"`
	Image     string `gorm:"not null" json:"image"`
	Thumbnail string `json:"thumbnail,omitempty"`
	IsCover   bool   `gorm:"default:false" json:"is_cover"`
}

type ProfileView struct {
	ID              string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	ViewerID        string    `gorm:"type:uuid;not null;index" json:"viewer_id"`
	ViewedProfileID string    `gorm:"type:uuid;not null;index" json:"viewed_profile_id"`
	ViewedAt        time.Time `gorm:"not null;default:now();index" json:"viewed_at"`
}

type Like struct {
	ID          string    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	UserID      string    `gorm:"type:uuid;not null;uniqueIndex:idx_like_pair" json:"user_id"`
	LikedUserID string    `gorm:"type:uuid;not null;uniqueIndex:idx_like_pair;index" json:"liked_user_id"`
	CreatedAt   time.Time `gorm:"default:now()" json:"created_at"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}
