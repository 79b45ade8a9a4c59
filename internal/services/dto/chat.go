package dto

import (
	"time"
)

type SendMessageRequest struct {
	Content string `json:"content" form:"content" validate:"omitempty,max=5000"`
}

type MessageResponse struct {
	ID        uint64    `json:"id"`
	ThreadID  string    `json:"thread_id"`
	SenderID  string    `json:"sender_id"`
	Content   string    `json:"content"`
	ImageURL  string    `json:"image_url,omitempty"`
	IsRead    bool      `json:"is_read"`
	IsMine    bool      `json:"is_mine"`
	CreatedAt time.Time `json:"created_at"`
}

type ThreadResponse struct {
	ID               string               `json:"id"`
	OtherParticipant *ParticipantResponse `json:"other_participant,omitempty"`
	LastMessage      *MessageResponse     `json:"last_message,omitempty"`
	UnreadCount      int64                `json:"unread_count"`
	IsActive         bool                 `json:"is_active"`
	UpdatedAt        time.Time            `json:"updated_at"`
}

type ThreadListResponse struct {
	Threads     *PaginatedResponse `json:"threads"`
	TotalUnread int64              `json:"total_unread"`
}

type ThreadDetailResponse struct {
	Thread        *ThreadResponse    `json:"thread"`
	Messages      []*MessageResponse `json:"messages"`
	LastMessageID uint64             `json:"last_message_id"`
}

type PollResponse struct {
	Messages      []*MessageResponse `json:"messages"`
	LastMessageID uint64             `json:"last_message_id"`
}

type CheckResponse struct {
	HasNew   bool  `json:"has_new"`
	NewCount int64 `json:"new_count"`
}

type UnreadCountResponse struct {
	UnreadCount int64 `json:"unread_count"`
}

// WSEvent - сообщение, которое хаб рассылает участникам диалога
type WSEvent struct {
	Type     string           `json:"type"`
	ThreadID string           `json:"thread_id"`
	Message  *MessageResponse `json:"message"`
}
