package models

import "time"

type User struct {
	BaseModel
	Email               string             `gorm:"uniqueIndex;not null" json:"email"`
	Username            string             `gorm:"size:150" json:"username"`
	FirstName           string             `gorm:"size:150" json:"first_name"`
	LastName            string             `gorm:"size:150" json:"last_name"`
	PasswordHash        string             `json:"-"`
	RegistrationMethod  RegistrationMethod `gorm:"type:varchar(20);not null;default:'email'" json:"registration_method"`
	Avatar              string             `json:"avatar,omitempty"`
	Role                UserRole           `gorm:"type:varchar(20);not null;default:'user'" json:"role"`
	Status              UserStatus         `gorm:"type:varchar(20);not null;default:'active'" json:"status"`
	IsPremiumSubscriber bool               `gorm:"default:false" json:"is_premium_subscriber"`
	DownloadCredits     int                `gorm:"default:0" json:"download_credits"`

	Profile *Profile `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"-"`
}

// IsStaff - доступ к админским эндпоинтам
func (u *User) IsStaff() bool {
	return u.Role == UserRoleAdmin
}

// DateJoined - дата регистрации
func (u *User) DateJoined() time.Time {
	return u.CreatedAt
}

// FullName - имя для писем и карточек
func (u *User) FullName() string {
	switch {
	case u.FirstName != "" && u.LastName != "":
		return u.FirstName + " " + u.LastName
	case u.FirstName != "":
		return u.FirstName
	case u.Username != "":
		return u.Username
	}
	return u.Email
}

// RefreshToken - выданный refresh-токен. Удаление записи = отзыв токена.
type RefreshToken struct {
	BaseModel
	UserID    string    `gorm:"type:uuid;not null;index"`
	Token     string    `gorm:"not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
}
