package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type DocumentService interface {
	Upload(ctx context.Context, db *gorm.DB, ownerID, title string, file *multipart.FileHeader) (*dto.DocumentResponse, error)
	List(db *gorm.DB, ownerID string, page, pageSize int) (*dto.PaginatedResponse, error)
	// Download отдаёт подписанную ссылку, если есть премиум или кредит.
	// Кредит при этом списывается.
	Download(ctx context.Context, db *gorm.DB, ownerID, documentID string) (*dto.DownloadResponse, error)
}

type documentService struct {
	documentRepo repositories.DocumentRepository
	payments     PaymentService
	media        MediaService
}

func NewDocumentService(documentRepo repositories.DocumentRepository, payments PaymentService, media MediaService) DocumentService {
	return &documentService{
		documentRepo: documentRepo,
		payments:     payments,
		media:        media,
	}
}

func (s *documentService) Upload(ctx context.Context, db *gorm.DB, ownerID, title string, file *multipart.FileHeader) (*dto.DocumentResponse, error) {
	title = strings.TrimSpace(title)
	if title == "" && file != nil {
		title = file.Filename
	}
	if title == "" {
		return nil, apperrors.FieldError("title", "Title is required")
	}

	stored, err := s.media.SaveFile(ctx, file, "documents")
	if err != nil {
		return nil, err
	}

	doc := &models.Document{
		OwnerID:  ownerID,
		Title:    title,
		Path:     stored.Path,
		MimeType: stored.MimeType,
		Size:     stored.Size,
	}
	if err := s.documentRepo.Create(db, doc); err != nil {
		s.media.Delete(ctx, stored.Path)
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctx, "document uploaded", "document_id", doc.ID, "size", doc.Size)
	return documentResponse(doc), nil
}

func (s *documentService) List(db *gorm.DB, ownerID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	docs, total, err := s.documentRepo.ListByOwner(db, ownerID, pageSize, dto.Offset(page, pageSize))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.DocumentResponse, 0, len(docs))
	for i := range docs {
		items = append(items, documentResponse(&docs[i]))
	}
	return dto.NewPaginatedResponse(items, total, page, pageSize), nil
}

func (s *documentService) Download(ctx context.Context, db *gorm.DB, ownerID, documentID string) (*dto.DownloadResponse, error) {
	doc, err := s.documentRepo.FindOwned(db, documentID, ownerID)
	if err != nil {
		return nil, handleDocumentError(err)
	}

	permission, err := s.payments.CanDownload(db, ownerID, documentID)
	if err != nil {
		return nil, err
	}
	if !permission.CanDownload {
		return nil, apperrors.ErrDownloadNotAllowed
	}

	// кредит списывается только после успешной подписи ссылки
	link, err := s.media.SignedURL(ctx, doc.Path)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	if permission.Reason == ReasonCredit {
		if _, err := s.payments.ConsumeCredit(db, ownerID, permission.CreditID); err != nil {
			// кредит успел списать параллельный запрос
			if errors.Is(err, apperrors.ErrCreditAlreadyUsed) {
				return nil, apperrors.ErrDownloadNotAllowed
			}
			return nil, err
		}
	}

	if err := s.documentRepo.IncrementDownloads(db, doc.ID); err != nil {
		logger.CtxWithError(ctx, "failed to increment downloads", err, "document_id", doc.ID)
	}

	logger.CtxInfo(ctx, "document downloaded", "document_id", doc.ID, "reason", permission.Reason)
	return &dto.DownloadResponse{URL: link, Reason: permission.Reason}, nil
}

func documentResponse(doc *models.Document) *dto.DocumentResponse {
	return &dto.DocumentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		MimeType:  doc.MimeType,
		Size:      doc.Size,
		Downloads: doc.Downloads,
		CreatedAt: doc.CreatedAt,
	}
}
