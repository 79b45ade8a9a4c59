package email

import (
	"sync"

	"rencontre_backend/internal/logger"
)

// MockProvider запоминает письма вместо отправки. Используется в тестах
// и когда SMTP выключен в конфиге.
type MockProvider struct {
	mu   sync.Mutex
	Sent []*Message
	Err  error
}

func NewMockProvider() *MockProvider {
	return &MockProvider{}
}

func (m *MockProvider) Send(msg *Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, msg)
	logger.Debug("email captured", "to", msg.To, "subject", msg.Subject)
	return nil
}

func (m *MockProvider) Validate() error { return nil }

func (m *MockProvider) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Sent)
}

// Last - последнее письмо или nil
func (m *MockProvider) Last() *Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Sent) == 0 {
		return nil
	}
	return m.Sent[len(m.Sent)-1]
}
