package models

import (
	"time"

	"gorm.io/datatypes"
)

const (
	PremiumPriceXOF  = 5000
	DownloadPriceXOF = 200
	CurrencyXOF      = "XOF"
)

type Transaction struct {
	BaseModel
	UserID               string            `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentID           *string           `gorm:"type:uuid;index" json:"document_id,omitempty"`
	FedaPayTransactionID *string           `gorm:"column:fedapay_transaction_id;uniqueIndex" json:"fedapay_transaction_id,omitempty"`
	FedaPayToken         string            `gorm:"column:fedapay_token" json:"fedapay_token,omitempty"`
	TransactionType      TransactionType   `gorm:"type:varchar(30);not null" json:"transaction_type"`
	Amount               float64           `gorm:"type:decimal(10,2);not null" json:"amount"`
	Currency             string            `gorm:"size:3;default:'XOF'" json:"currency"`
	Status               TransactionStatus `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Description          string            `json:"description"`
	Metadata             datatypes.JSON    `gorm:"type:jsonb" json:"metadata,omitempty"`
	ApprovedAt           *time.Time        `json:"approved_at,omitempty"`

	User     *User     `gorm:"foreignKey:UserID" json:"-"`
	Document *Document `gorm:"foreignKey:DocumentID;constraint:OnDelete:SET NULL" json:"-"`
}

// PriceFor - цена в XOF для типа транзакции
func PriceFor(t TransactionType) float64 {
	if t == TransactionPremium {
		return PremiumPriceXOF
	}
	return DownloadPriceXOF
}
