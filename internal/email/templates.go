package email

import (
	"fmt"
	"html/template"
	"strings"
	textTemplate "text/template"
)

const TemplateContactNotification = "contact_notification"

// у каждого письма две версии: html и text/plain
var builtin = map[string][2]string{
	TemplateContactNotification: {
		`<h2>Nouveau message de contact</h2>
<p><strong>Nom:</strong> {{.FullName}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
<p><strong>Sujet:</strong> {{.Subject}}</p>
<p>{{.Message}}</p>`,
		`Nouveau message de contact

Nom: {{.FullName}}
Email: {{.Email}}
Sujet: {{.Subject}}

{{.Message}}`,
	},
}

// Templates - разобранные встроенные шаблоны, безопасны для конкурентного чтения
type Templates struct {
	html *template.Template
	text *textTemplate.Template
}

func NewTemplates() *Templates {
	t := &Templates{
		html: template.New("html"),
		text: textTemplate.New("text"),
	}
	for name, src := range builtin {
		template.Must(t.html.New(name).Parse(src[0]))
		textTemplate.Must(t.text.New(name).Parse(src[1]))
	}
	return t
}

// Render возвращает html и текстовую версию письма
func (t *Templates) Render(name string, data TemplateData) (html, text string, err error) {
	if t.html.Lookup(name) == nil {
		return "", "", fmt.Errorf("email template %q not found", name)
	}

	var hb, tb strings.Builder
	if err := t.html.ExecuteTemplate(&hb, name, data); err != nil {
		return "", "", fmt.Errorf("render %s html: %w", name, err)
	}
	if err := t.text.ExecuteTemplate(&tb, name, data); err != nil {
		return "", "", fmt.Errorf("render %s text: %w", name, err)
	}
	return hb.String(), tb.String(), nil
}
