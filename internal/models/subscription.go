package models

import (
	"time"
)

const PremiumDurationDays = 30

// PremiumSubscription - премиум-доступ пользователя (одна запись на пользователя)
type PremiumSubscription struct {
	BaseModel
	UserID        string    `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	TransactionID *string   `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	StartDate     time.Time `gorm:"not null" json:"start_date"`
	EndDate       time.Time `gorm:"not null;index" json:"end_date"`
	IsActive      bool      `gorm:"default:true" json:"is_active"`
	AutoRenew     bool      `gorm:"default:false" json:"auto_renew"`

	User *User `gorm:"foreignKey:UserID" json:"-"`
}

func (s *PremiumSubscription) IsValid(now time.Time) bool {
	return s.IsActive && s.EndDate.After(now)
}

// Activate продлевает подписку на days дней начиная с now
func (s *PremiumSubscription) Activate(now time.Time, days int) {
	s.StartDate = now
	s.EndDate = now.AddDate(0, 0, days)
	s.IsActive = true
}

// DaysLeft - сколько полных дней осталось, 0 для истёкшей
func (s *PremiumSubscription) DaysLeft(now time.Time) int {
	if !s.IsValid(now) {
		return 0
	}
	return int(s.EndDate.Sub(now).Hours() / 24)
}

// DownloadCredit - разовое право скачать документ
type DownloadCredit struct {
	BaseModel
	UserID        string     `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentID    *string    `gorm:"type:uuid;index" json:"document_id,omitempty"`
	TransactionID *string    `gorm:"type:uuid;index" json:"transaction_id,omitempty"`
	IsUsed        bool       `gorm:"default:false;index" json:"is_used"`
	UsedAt        *time.Time `json:"used_at,omitempty"`
}

// Use отмечает кредит использованным. false, если он уже был использован.
func (c *DownloadCredit) Use(now time.Time) bool {
	if c.IsUsed {
		return false
	}
	c.IsUsed = true
	c.UsedAt = &now
	return true
}
