package dto

import (
	"time"

	"rencontre_backend/internal/models"
)

// UserResponse - публичное представление пользователя
type UserResponse struct {
	ID                  string                    `json:"id"`
	Email               string                    `json:"email"`
	Username            string                    `json:"username"`
	FirstName           string                    `json:"first_name"`
	LastName            string                    `json:"last_name"`
	RegistrationMethod  models.RegistrationMethod `json:"registration_method"`
	AvatarURL           string                    `json:"avatar_url,omitempty"`
	IsStaff             bool                      `json:"is_staff"`
	IsPremiumSubscriber bool                      `json:"is_premium_subscriber"`
	DownloadCredits     int                       `json:"download_credits"`
	DateJoined          time.Time                 `json:"date_joined"`
}

func NewUserResponse(user *models.User, avatarURL string) *UserResponse {
	return &UserResponse{
		ID:                  user.ID,
		Email:               user.Email,
		Username:            user.Username,
		FirstName:           user.FirstName,
		LastName:            user.LastName,
		RegistrationMethod:  user.RegistrationMethod,
		AvatarURL:           avatarURL,
		IsStaff:             user.IsStaff(),
		IsPremiumSubscriber: user.IsPremiumSubscriber,
		DownloadCredits:     user.DownloadCredits,
		DateJoined:          user.DateJoined(),
	}
}

// UpdateMeRequest - id, email, registration_method, is_staff и date_joined
// только для чтения, поэтому их здесь нет
type UpdateMeRequest struct {
	Username  *string `json:"username" validate:"omitempty,min=1,max=150"`
	FirstName *string `json:"first_name" validate:"omitempty,max=150"`
	LastName  *string `json:"last_name" validate:"omitempty,max=150"`
}

// ParticipantResponse - краткая карточка собеседника / автора
type ParticipantResponse struct {
	ID        string `json:"id"`
	Username  string `json:"username"`
	FullName  string `json:"full_name"`
	AvatarURL string `json:"avatar_url,omitempty"`
}
