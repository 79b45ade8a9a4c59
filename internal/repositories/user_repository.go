package repositories

import (
	"errors"
	"strings"

	"rencontre_backend/internal/models"

	"gorm.io/gorm"
)

var (
	ErrUserNotFound      = errors.New("user not found")
	ErrUserAlreadyExists = errors.New("user already exists")
)

type UserRepository interface {
	Create(db *gorm.DB, user *models.User) error
	FindByID(db *gorm.DB, id string) (*models.User, error)
	FindByEmail(db *gorm.DB, email string) (*models.User, error)
	Update(db *gorm.DB, user *models.User) error
	UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error
	// AdjustDownloadCredits прибавляет delta к счётчику, не опуская его ниже 0
	AdjustDownloadCredits(db *gorm.DB, userID string, delta int) error
	SetPremium(db *gorm.DB, userID string, premium bool) error
	Exists(db *gorm.DB, userID string) (bool, error)
}

type userRepository struct{}

func NewUserRepository() UserRepository {
	return &userRepository{}
}

func (r *userRepository) Create(db *gorm.DB, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))

	var count int64
	if err := db.Model(&models.User{}).Where("email = ?", user.Email).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return ErrUserAlreadyExists
	}
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrUserAlreadyExists
		}
		return err
	}
	return nil
}

func (r *userRepository) FindByID(db *gorm.DB, id string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	err := db.First(&user, "email = ?", strings.ToLower(strings.TrimSpace(email))).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return &user, nil
}

func (r *userRepository) Update(db *gorm.DB, user *models.User) error {
	return db.Save(user).Error
}

func (r *userRepository) UpdateFields(db *gorm.DB, userID string, fields map[string]interface{}) error {
	result := db.Model(&models.User{}).Where("id = ?", userID).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *userRepository) AdjustDownloadCredits(db *gorm.DB, userID string, delta int) error {
	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("download_credits", gorm.Expr("GREATEST(download_credits + ?, 0)", delta)).Error
}

func (r *userRepository) SetPremium(db *gorm.DB, userID string, premium bool) error {
	return db.Model(&models.User{}).
		Where("id = ?", userID).
		Update("is_premium_subscriber", premium).Error
}

func (r *userRepository) Exists(db *gorm.DB, userID string) (bool, error) {
	var count int64
	err := db.Model(&models.User{}).Where("id = ?", userID).Count(&count).Error
	return count > 0, err
}
