package chat

import "time"

type ThreadParticipant struct {
	ThreadID string    `gorm:"primaryKey;type:uuid" json:"thread_id"`
	UserID   string    `gorm:"primaryKey;type:uuid;index" json:"user_id"`
	JoinedAt time.Time `gorm:"default:now()" json:"joined_at"`
}
