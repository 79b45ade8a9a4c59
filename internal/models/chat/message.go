package chat

import "time"

// Message - id монотонно растёт, на этом построен polling по last_id
type Message struct {
	ID        uint64    `gorm:"primaryKey;autoIncrement" json:"id"`
	ThreadID  string    `gorm:"type:uuid;not null;index" json:"thread_id"`
	SenderID  string    `gorm:"type:uuid;not null;index" json:"sender_id"`
	Content   string    `gorm:"type:text" json:"content"`
	Image     string    `json:"image,omitempty"`
	IsRead    bool      `gorm:"default:false;index" json:"is_read"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}
