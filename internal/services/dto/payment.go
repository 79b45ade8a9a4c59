package dto

import (
	"time"
)

type CreateTransactionRequest struct {
	TransactionType string `json:"transaction_type" validate:"required,is-transaction-type"`
	DocumentID      string `json:"document_id" validate:"omitempty,uuid"`
	PhoneNumber     string `json:"phone_number" validate:"omitempty,max=20"`
	PhoneCountry    string `json:"phone_country" validate:"omitempty,len=2"`
}

type CreateTransactionResponse struct {
	TransactionID        string `json:"transaction_id"`
	FedaPayTransactionID string `json:"fedapay_transaction_id"`
	FedaPayToken         string `json:"fedapay_token"`
	PaymentURL           string `json:"payment_url"`
}

type CheckStatusResponse struct {
	Status          string  `json:"status"`
	TransactionType string  `json:"transaction_type,omitempty"`
	DocumentID      *string `json:"document_id,omitempty"`
	Message         string  `json:"message,omitempty"`
}

type CanDownloadResponse struct {
	CanDownload bool   `json:"can_download"`
	Reason      string `json:"reason"`
	CreditID    string `json:"credit_id,omitempty"`
}

type ConsumeCreditRequest struct {
	CreditID string `json:"credit_id" validate:"required,uuid"`
}

type ConsumeCreditResponse struct {
	Status           string `json:"status"`
	RemainingCredits int    `json:"remaining_credits"`
}

type SubscriptionResponse struct {
	IsPremium bool       `json:"is_premium"`
	IsActive  bool       `json:"is_active"`
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
	DaysLeft  int        `json:"days_left"`
	AutoRenew bool       `json:"auto_renew"`
}

type TransactionResponse struct {
	ID                   string     `json:"id"`
	FedaPayTransactionID string     `json:"fedapay_transaction_id,omitempty"`
	TransactionType      string     `json:"transaction_type"`
	Amount               float64    `json:"amount"`
	Currency             string     `json:"currency"`
	Status               string     `json:"status"`
	Description          string     `json:"description"`
	DocumentID           *string    `json:"document_id,omitempty"`
	ApprovedAt           *time.Time `json:"approved_at,omitempty"`
	CreatedAt            time.Time  `json:"created_at"`
}

// --- Documents ---

type DocumentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Downloads int       `json:"downloads"`
	CreatedAt time.Time `json:"created_at"`
}

type DownloadResponse struct {
	URL    string `json:"url"`
	Reason string `json:"reason"`
}

// --- Contact ---

type ContactRequest struct {
	FullName string `json:"full_name" validate:"required,max=150"`
	Email    string `json:"email" validate:"required,email"`
	Subject  string `json:"subject" validate:"required,max=200"`
	Message  string `json:"message" validate:"required,max=5000"`
}
