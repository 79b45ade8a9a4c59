package chat

import "time"

type Thread struct {
	ID        string    `gorm:"primaryKey;type:uuid;default:uuid_generate_v4()" json:"id"`
	IsActive  bool      `gorm:"default:true;index" json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `gorm:"index" json:"updated_at"`

	Participants []ThreadParticipant `gorm:"foreignKey:ThreadID;constraint:OnDelete:CASCADE" json:"-"`
}

// HasParticipant - проверка членства по уже загруженным участникам
func (t *Thread) HasParticipant(userID string) bool {
	for _, p := range t.Participants {
		if p.UserID == userID {
			return true
		}
	}
	return false
}

// OtherParticipant - собеседник userID в диалоге на двоих
func (t *Thread) OtherParticipant(userID string) string {
	for _, p := range t.Participants {
		if p.UserID != userID {
			return p.UserID
		}
	}
	return ""
}
