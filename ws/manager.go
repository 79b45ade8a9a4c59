package ws

import (
	"context"
	"encoding/json"
	"sync"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/metrics"
)

// WebSocketManager держит подключения по userID. У одного пользователя
// может быть несколько вкладок, поэтому на ключ приходится набор клиентов.
type WebSocketManager struct {
	clients    map[string]map[*Client]struct{}
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

func NewWebSocketManager() *WebSocketManager {
	return &WebSocketManager{
		clients:    make(map[string]map[*Client]struct{}),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run обслуживает регистрацию до отмены контекста
func (m *WebSocketManager) Run(ctx context.Context) {
	defer close(m.done)
	for {
		select {
		case <-ctx.Done():
			m.closeAll()
			return

		case client := <-m.register:
			m.mu.Lock()
			set, ok := m.clients[client.UserID]
			if !ok {
				set = make(map[*Client]struct{})
				m.clients[client.UserID] = set
			}
			set[client] = struct{}{}
			m.mu.Unlock()
			metrics.WSConnections.Inc()
			logger.Debug("WebSocket client registered", "user_id", client.UserID)

		case client := <-m.unregister:
			m.remove(client)
		}
	}
}

// Register возвращает false, если менеджер уже остановлен
func (m *WebSocketManager) Register(client *Client) bool {
	select {
	case m.register <- client:
		return true
	case <-m.done:
		return false
	}
}

func (m *WebSocketManager) Unregister(client *Client) {
	select {
	case m.unregister <- client:
	case <-m.done:
	}
}

func (m *WebSocketManager) remove(client *Client) {
	m.mu.Lock()
	defer m.mu.Unlock()

	set, ok := m.clients[client.UserID]
	if !ok {
		return
	}
	if _, ok := set[client]; !ok {
		return
	}
	delete(set, client)
	if len(set) == 0 {
		delete(m.clients, client.UserID)
	}
	close(client.send)
	metrics.WSConnections.Dec()
	logger.Debug("WebSocket client unregistered", "user_id", client.UserID)
}

func (m *WebSocketManager) closeAll() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for userID, set := range m.clients {
		for client := range set {
			close(client.send)
			metrics.WSConnections.Dec()
		}
		delete(m.clients, userID)
	}
}

// SendToUsers рассылает событие всем подключениям перечисленных пользователей.
// Медленный клиент с заполненным буфером отключается.
func (m *WebSocketManager) SendToUsers(userIDs []string, event interface{}) {
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Error("Failed to marshal websocket event", "error", err)
		return
	}

	var stale []*Client
	m.mu.RLock()
	for _, userID := range userIDs {
		for client := range m.clients[userID] {
			select {
			case client.send <- payload:
			default:
				stale = append(stale, client)
			}
		}
	}
	m.mu.RUnlock()

	for _, client := range stale {
		logger.Warn("WebSocket client buffer full, dropping", "user_id", client.UserID)
		m.remove(client)
	}
}

// Connected - число открытых подключений пользователя
func (m *WebSocketManager) Connected(userID string) int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.clients[userID])
}
