package email

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplates_ContactNotification(t *testing.T) {
	tpl := NewTemplates()

	html, text, err := tpl.Render(TemplateContactNotification, TemplateData{
		"FullName": "Koffi <b>",
		"Email":    "koffi@mail.bj",
		"Subject":  "Question",
		"Message":  "Bonjour",
	})
	require.NoError(t, err)
	assert.Contains(t, html, "koffi@mail.bj")
	// html/template экранирует пользовательский ввод, текстовая версия - нет
	assert.Contains(t, html, "Koffi &lt;b&gt;")
	assert.Contains(t, text, "Nom: Koffi <b>")

	_, _, err = tpl.Render("missing", nil)
	assert.Error(t, err)
}

func TestSMTPProvider_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SMTPConfig
		wantErr bool
	}{
		{"no host", SMTPConfig{Port: 587, FromEmail: "no-reply@rencontre.bj"}, true},
		{"bad port", SMTPConfig{Host: "smtp.mail.bj", Port: 70000, FromEmail: "no-reply@rencontre.bj"}, true},
		{"no sender", SMTPConfig{Host: "smtp.mail.bj", Port: 587}, true},
		{"ok", SMTPConfig{Host: "smtp.mail.bj", Port: 587, FromEmail: "no-reply@rencontre.bj"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			err := NewSMTPProvider(&cfg).Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}

	p := NewSMTPProvider(&SMTPConfig{Host: "smtp.mail.bj", Port: 587, FromEmail: "no-reply@rencontre.bj"})
	assert.ErrorIs(t, p.Send(&Message{Subject: "no recipients"}), ErrNoRecipients)
}

func TestSMTPProvider_BuildMessage(t *testing.T) {
	p := NewSMTPProvider(&SMTPConfig{Host: "smtp.mail.bj", Port: 587, FromEmail: "no-reply@rencontre.bj", FromName: "Rencontre"})

	m := p.buildMessage(&Message{
		To:      []string{"admin@rencontre.bj"},
		ReplyTo: "koffi@mail.bj",
		Subject: "Contact",
		Text:    "plain",
		HTML:    "<p>html</p>",
	})
	assert.Equal(t, []string{"koffi@mail.bj"}, m.GetHeader("Reply-To"))
	assert.Equal(t, []string{"admin@rencontre.bj"}, m.GetHeader("To"))
	assert.Equal(t, []string{`"Rencontre" <no-reply@rencontre.bj>`}, m.GetHeader("From"))
}

func TestMockProvider(t *testing.T) {
	m := NewMockProvider()
	assert.Nil(t, m.Last())

	require.NoError(t, m.Send(&Message{To: []string{"admin@rencontre.bj"}, Subject: "Contact"}))
	assert.Equal(t, 1, m.Count())
	assert.Equal(t, "Contact", m.Last().Subject)

	m.Err = errors.New("smtp down")
	assert.Error(t, m.Send(&Message{}))
	assert.Equal(t, 1, m.Count())
}
