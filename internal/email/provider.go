package email

// Message - исходящее письмо. ReplyTo ставится в адрес посетителя,
// чтобы администратор отвечал ему прямо из почтового клиента.
type Message struct {
	To      []string
	ReplyTo string
	Subject string
	Text    string
	HTML    string
}

type Provider interface {
	Send(msg *Message) error
	Validate() error
}

type TemplateData map[string]interface{}
