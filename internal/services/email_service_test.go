package services

import (
	"context"
	"testing"

	"rencontre_backend/internal/email"
	"rencontre_backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmailService_SendContactNotification(t *testing.T) {
	provider := email.NewMockProvider()
	svc := NewEmailService(provider, "admin@rencontre.bj")

	err := svc.SendContactNotification(context.Background(), &models.ContactMessage{
		FullName: "Koffi Mensah",
		Email:    "koffi@mail.bj",
		Subject:  "Premium",
		Message:  "Comment payer ?",
	})
	require.NoError(t, err)

	sent := provider.Last()
	require.NotNil(t, sent)
	assert.Equal(t, []string{"admin@rencontre.bj"}, sent.To)
	assert.Equal(t, "koffi@mail.bj", sent.ReplyTo)
	assert.Equal(t, "Nouveau message de contact: Premium", sent.Subject)
	assert.Contains(t, sent.Text, "Comment payer ?")
	assert.Contains(t, sent.HTML, "Koffi Mensah")
}

func TestEmailService_Rejects(t *testing.T) {
	provider := email.NewMockProvider()

	err := NewEmailService(provider, "").SendContactNotification(context.Background(), &models.ContactMessage{})
	assert.ErrorIs(t, err, ErrAdminEmailMissing)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err = NewEmailService(provider, "admin@rencontre.bj").SendContactNotification(ctx, &models.ContactMessage{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, provider.Count())
}
