package models

type ContactMessage struct {
	BaseModel
	FullName string `gorm:"size:100;not null" json:"full_name"`
	Email    string `gorm:"not null" json:"email"`
	Subject  string `gorm:"size:200;not null" json:"subject"`
	Message  string `gorm:"type:text;not null" json:"message"`
	IsRead   bool   `gorm:"default:false;index" json:"is_read"`
}
