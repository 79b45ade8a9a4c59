package services

import (
	"context"
	"errors"
	"fmt"

	"rencontre_backend/internal/email"
	"rencontre_backend/internal/models"
)

var ErrAdminEmailMissing = errors.New("admin email is not configured")

// EmailService - письма приложения поверх email.Provider
type EmailService struct {
	provider   email.Provider
	templates  *email.Templates
	adminEmail string
}

func NewEmailService(provider email.Provider, adminEmail string) *EmailService {
	return &EmailService{
		provider:   provider,
		templates:  email.NewTemplates(),
		adminEmail: adminEmail,
	}
}

// SendContactNotification пересылает сообщение формы контакта администратору,
// ответ уходит на адрес автора
func (s *EmailService) SendContactNotification(ctx context.Context, msg *models.ContactMessage) error {
	if s.adminEmail == "" {
		return ErrAdminEmailMissing
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	html, text, err := s.templates.Render(email.TemplateContactNotification, email.TemplateData{
		"FullName": msg.FullName,
		"Email":    msg.Email,
		"Subject":  msg.Subject,
		"Message":  msg.Message,
	})
	if err != nil {
		return err
	}

	return s.provider.Send(&email.Message{
		To:      []string{s.adminEmail},
		ReplyTo: msg.Email,
		Subject: fmt.Sprintf("Nouveau message de contact: %s", msg.Subject),
		Text:    text,
		HTML:    html,
	})
}

func (s *EmailService) Validate() error {
	return s.provider.Validate()
}
