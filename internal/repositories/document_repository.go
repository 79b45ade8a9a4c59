package repositories

import (
	"errors"

	"rencontre_backend/internal/models"

	"gorm.io/gorm"
)

var ErrDocumentNotFound = errors.New("document not found")

type DocumentRepository interface {
	Create(db *gorm.DB, doc *models.Document) error
	// FindOwned - документ владельца ownerID, иначе ErrDocumentNotFound
	FindOwned(db *gorm.DB, id, ownerID string) (*models.Document, error)
	ListByOwner(db *gorm.DB, ownerID string, limit, offset int) ([]models.Document, int64, error)
	IncrementDownloads(db *gorm.DB, id string) error
}

type documentRepository struct{}

func NewDocumentRepository() DocumentRepository {
	return &documentRepository{}
}

func (r *documentRepository) Create(db *gorm.DB, doc *models.Document) error {
	return db.Create(doc).Error
}

func (r *documentRepository) FindOwned(db *gorm.DB, id, ownerID string) (*models.Document, error) {
	var doc models.Document
	if err := db.Where("id = ? AND owner_id = ?", id, ownerID).First(&doc).Error; err != nil {
		return nil, notFound(err, ErrDocumentNotFound)
	}
	return &doc, nil
}

func (r *documentRepository) ListByOwner(db *gorm.DB, ownerID string, limit, offset int) ([]models.Document, int64, error) {
	query := db.Model(&models.Document{}).Where("owner_id = ?", ownerID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var docs []models.Document
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&docs).Error
	return docs, total, err
}

func (r *documentRepository) IncrementDownloads(db *gorm.DB, id string) error {
	return db.Model(&models.Document{}).
		Where("id = ?", id).
		UpdateColumn("downloads", gorm.Expr("downloads + 1")).Error
}
