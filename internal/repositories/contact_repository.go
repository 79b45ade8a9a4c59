package repositories

import (
	"errors"

	"rencontre_backend/internal/models"

	"gorm.io/gorm"
)

var ErrContactMessageNotFound = errors.New("contact message not found")

type ContactRepository interface {
	Create(db *gorm.DB, msg *models.ContactMessage) error
	List(db *gorm.DB, unreadOnly bool, limit, offset int) ([]models.ContactMessage, int64, error)
	SetRead(db *gorm.DB, id string, read bool) error
}

type contactRepository struct{}

func NewContactRepository() ContactRepository {
	return &contactRepository{}
}

func (r *contactRepository) Create(db *gorm.DB, msg *models.ContactMessage) error {
	return db.Create(msg).Error
}

func (r *contactRepository) List(db *gorm.DB, unreadOnly bool, limit, offset int) ([]models.ContactMessage, int64, error) {
	query := db.Model(&models.ContactMessage{})
	if unreadOnly {
		query = query.Where("is_read = ?", false)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var msgs []models.ContactMessage
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&msgs).Error
	return msgs, total, err
}

func (r *contactRepository) SetRead(db *gorm.DB, id string, read bool) error {
	result := db.Model(&models.ContactMessage{}).Where("id = ?", id).Update("is_read", read)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrContactMessageNotFound
	}
	return nil
}
