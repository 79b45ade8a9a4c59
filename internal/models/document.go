package models

// Document - файл, доступный для скачивания за кредит или по подписке
type Document struct {
	BaseModel
	OwnerID     string `gorm:"type:uuid;not null;index" json:"owner_id"`
	Title       string `gorm:"size:200;not null" json:"title"`
	Path        string `gorm:"not null" json:"-"`
	URL         string `json:"url,omitempty"`
	MimeType    string `json:"mime_type"`
	Size        int64  `json:"size"`
	Downloads   int    `gorm:"default:0" json:"downloads"`
	StorageType string `gorm:"default:'local'" json:"-"`
}
