package services

import (
	"context"
	"errors"
	"strings"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type ContactService interface {
	// Submit сохраняет сообщение и уведомляет администратора. Ошибка
	// отправки письма только логируется.
	Submit(ctx context.Context, db *gorm.DB, req *dto.ContactRequest) (*models.ContactMessage, error)
	List(db *gorm.DB, unreadOnly bool, page, pageSize int) (*dto.PaginatedResponse, error)
	SetRead(db *gorm.DB, id string, read bool) error
}

type contactService struct {
	contactRepo repositories.ContactRepository
	mailer      *EmailService
}

func NewContactService(contactRepo repositories.ContactRepository, mailer *EmailService) ContactService {
	return &contactService{
		contactRepo: contactRepo,
		mailer:      mailer,
	}
}

func (s *contactService) Submit(ctx context.Context, db *gorm.DB, req *dto.ContactRequest) (*models.ContactMessage, error) {
	msg := &models.ContactMessage{
		FullName: strings.TrimSpace(req.FullName),
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		Subject:  strings.TrimSpace(req.Subject),
		Message:  strings.TrimSpace(req.Message),
	}
	if err := s.contactRepo.Create(db, msg); err != nil {
		return nil, apperrors.InternalError(err)
	}

	if s.mailer != nil {
		if err := s.mailer.SendContactNotification(ctx, msg); err != nil {
			logger.CtxWithError(ctx, "failed to send contact notification", err, "contact_id", msg.ID)
		}
	}

	logger.CtxInfo(ctx, "contact message received", "contact_id", msg.ID)
	return msg, nil
}

func (s *contactService) List(db *gorm.DB, unreadOnly bool, page, pageSize int) (*dto.PaginatedResponse, error) {
	msgs, total, err := s.contactRepo.List(db, unreadOnly, pageSize, dto.Offset(page, pageSize))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewPaginatedResponse(msgs, total, page, pageSize), nil
}

func (s *contactService) SetRead(db *gorm.DB, id string, read bool) error {
	if err := s.contactRepo.SetRead(db, id, read); err != nil {
		if errors.Is(err, repositories.ErrContactMessageNotFound) {
			return apperrors.NewNotFoundError("contact", "Contact message not found")
		}
		return apperrors.InternalError(err)
	}
	return nil
}
