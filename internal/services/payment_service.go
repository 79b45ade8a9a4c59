package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/metrics"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/payments/fedapay"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultPhoneNumber  = "+22967796730"
	defaultPhoneCountry = "bj"

	ReasonPremium      = "premium"
	ReasonCredit       = "credit"
	ReasonNoPermission = "no_permission"
)

type PaymentConfig struct {
	FrontendURL   string
	BackendDomain string
	WebhookSecret string
	// Debug - вебхук без подписи принимается с предупреждением
	Debug bool
}

type PaymentService interface {
	CreateTransaction(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateTransactionRequest) (*dto.CreateTransactionResponse, error)
	// CallbackRedirect - куда отправить браузер после страницы оплаты
	CallbackRedirect(db *gorm.DB, fedapayID, status string) string
	CheckStatus(ctx context.Context, db *gorm.DB, userID, transactionID string) (*dto.CheckStatusResponse, error)
	HandleWebhook(ctx context.Context, db *gorm.DB, body []byte, signature string) (*dto.StatusResponse, error)
	// ApproveTransaction идемпотентна: повторный вызов для approved ничего не меняет
	ApproveTransaction(db *gorm.DB, transactionID string) error

	CanDownload(db *gorm.DB, userID, documentID string) (*dto.CanDownloadResponse, error)
	ConsumeCredit(db *gorm.DB, userID, creditID string) (*dto.ConsumeCreditResponse, error)
	GetSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error)
	ListTransactions(db *gorm.DB, userID string, page, pageSize int) (*dto.PaginatedResponse, error)
}

type paymentService struct {
	gateway      fedapay.Gateway
	paymentRepo  repositories.PaymentRepository
	userRepo     repositories.UserRepository
	documentRepo repositories.DocumentRepository
	config       PaymentConfig
}

func NewPaymentService(
	gateway fedapay.Gateway,
	paymentRepo repositories.PaymentRepository,
	userRepo repositories.UserRepository,
	documentRepo repositories.DocumentRepository,
	config PaymentConfig,
) PaymentService {
	config.FrontendURL = strings.TrimRight(config.FrontendURL, "/")
	config.BackendDomain = strings.TrimRight(config.BackendDomain, "/")
	return &paymentService{
		gateway:      gateway,
		paymentRepo:  paymentRepo,
		userRepo:     userRepo,
		documentRepo: documentRepo,
		config:       config,
	}
}

// CreateTransaction регистрирует платёж в шлюзе, затем сохраняет локальную
// транзакцию в статусе pending
func (s *paymentService) CreateTransaction(ctx context.Context, db *gorm.DB, userID string, req *dto.CreateTransactionRequest) (*dto.CreateTransactionResponse, error) {
	txType := models.TransactionType(req.TransactionType)
	if !txType.Valid() {
		return nil, apperrors.FieldError("transaction_type", "Invalid transaction type")
	}

	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	var document *models.Document
	if txType == models.TransactionDownload {
		if req.DocumentID == "" {
			return nil, apperrors.FieldError("document_id", "document_id is required for a download")
		}
		document, err = s.documentRepo.FindOwned(db, req.DocumentID, userID)
		if err != nil {
			return nil, handleDocumentError(err)
		}
	}

	amount := models.PriceFor(txType)
	description := "Abonnement Premium 30 jours"
	if document != nil {
		description = fmt.Sprintf("Téléchargement: %s", document.Title)
	}

	phone := req.PhoneNumber
	if phone == "" {
		phone = defaultPhoneNumber
	}
	country := strings.ToLower(req.PhoneCountry)
	if country == "" {
		country = defaultPhoneCountry
	}

	result, err := s.gateway.CreateTransaction(ctx, fedapay.CreateTransactionRequest{
		Description: description,
		Amount:      amount,
		Currency:    models.CurrencyXOF,
		CallbackURL: s.config.FrontendURL + "/payment/success",
		WebhookURL:  s.config.BackendDomain + "/api/v1/payments/webhook/",
		Reference:   fmt.Sprintf("CV%s_%d", userID, timeNow().Unix()),
		Customer: fedapay.Customer{
			Firstname:    user.FirstName,
			Lastname:     user.LastName,
			Email:        user.Email,
			PhoneNumber:  phone,
			PhoneCountry: country,
		},
	})
	if err != nil {
		return nil, handleGatewayError(ctx, err)
	}

	token := result.PaymentToken
	if token == "" {
		token = "N/A"
	}
	fedapayID := result.ID

	meta := map[string]interface{}{"fedapay_response": result.Raw}
	if document != nil {
		meta["document_id"] = document.ID
		meta["document_title"] = document.Title
	}
	rawMeta, err := json.Marshal(meta)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	transaction := &models.Transaction{
		UserID:               userID,
		FedaPayTransactionID: &fedapayID,
		FedaPayToken:         token,
		TransactionType:      txType,
		Amount:               amount,
		Currency:             models.CurrencyXOF,
		Status:               models.TransactionPending,
		Description:          description,
		Metadata:             datatypes.JSON(rawMeta),
	}
	if document != nil {
		transaction.DocumentID = &document.ID
	}

	if err := s.paymentRepo.CreateTransaction(db, transaction); err != nil {
		return nil, apperrors.InternalError(err)
	}

	metrics.PaymentTransactions.WithLabelValues(string(txType), string(models.TransactionPending)).Inc()
	logger.CtxInfo(ctx, "payment transaction created",
		"transaction_id", transaction.ID,
		"fedapay_id", fedapayID,
		"type", txType,
	)

	return &dto.CreateTransactionResponse{
		TransactionID:        transaction.ID,
		FedaPayTransactionID: fedapayID,
		FedaPayToken:         token,
		PaymentURL:           result.PaymentURL,
	}, nil
}

func (s *paymentService) CallbackRedirect(db *gorm.DB, fedapayID, status string) string {
	ctx := ctxOf(db)
	redirectID := fedapayID
	if fedapayID != "" {
		tx, err := s.paymentRepo.FindByFedaPayID(db, fedapayID)
		if err == nil {
			redirectID = tx.ID
		} else {
			logger.CtxWarn(ctx, "local transaction not found for callback", "fedapay_id", fedapayID)
		}
	}

	if redirectID == "" {
		logger.CtxError(ctx, "payment callback without transaction id")
		return s.config.FrontendURL + "/payment/failed?status=missing_id"
	}

	return fmt.Sprintf("%s/payment/success?transaction_id=%s&fedapay_status=%s",
		s.config.FrontendURL, url.QueryEscape(redirectID), url.QueryEscape(status))
}

// CheckStatus - запасной путь на случай пропущенного вебхука
func (s *paymentService) CheckStatus(ctx context.Context, db *gorm.DB, userID, transactionID string) (*dto.CheckStatusResponse, error) {
	tx, err := s.paymentRepo.FindUserTransaction(db, transactionID, userID)
	if err != nil {
		return nil, handlePaymentError(err)
	}

	if tx.Status == models.TransactionApproved {
		return approvedStatus(tx), nil
	}
	if tx.FedaPayTransactionID == nil {
		return &dto.CheckStatusResponse{Status: string(tx.Status), TransactionType: string(tx.TransactionType)}, nil
	}

	status, err := s.gateway.GetTransactionStatus(ctx, *tx.FedaPayTransactionID)
	if err != nil {
		logger.CtxWithError(ctx, "gateway status check failed", err, "transaction_id", tx.ID)
		return nil, apperrors.Wrap(err, apperrors.CodeExternalServiceError, "payment",
			"Server error during external verification", http.StatusInternalServerError).
			WithDetails(map[string]string{"status": string(models.TransactionPending)})
	}

	switch models.TransactionStatus(status) {
	case models.TransactionApproved:
		if err := s.ApproveTransaction(db, tx.ID); err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "transaction approved via status check", "transaction_id", tx.ID)
		return approvedStatus(tx), nil
	case models.TransactionDeclined, models.TransactionCanceled:
		if err := s.setFinalStatus(db, tx, models.TransactionStatus(status)); err != nil {
			return nil, err
		}
	}

	return &dto.CheckStatusResponse{
		Status:          status,
		TransactionType: string(tx.TransactionType),
	}, nil
}

func (s *paymentService) HandleWebhook(ctx context.Context, db *gorm.DB, body []byte, signature string) (*dto.StatusResponse, error) {
	switch {
	case signature == "" && s.config.Debug:
		logger.CtxWarn(ctx, "debug mode: webhook signature check skipped")
	case !fedapay.VerifySignature(body, signature, s.config.WebhookSecret):
		if s.config.WebhookSecret == "" {
			logger.CtxError(ctx, "webhook secret is not configured")
		}
		logger.CtxWarn(ctx, "invalid webhook signature")
		metrics.Webhooks.WithLabelValues("invalid_signature").Inc()
		return nil, apperrors.ErrInvalidSignature
	}

	event := fedapay.ParseWebhook(body)
	if event.TransactionID == "" {
		metrics.Webhooks.WithLabelValues("bad_request").Inc()
		return nil, apperrors.NewBadRequestError("Missing transaction id")
	}

	tx, err := s.paymentRepo.FindByFedaPayID(db, event.TransactionID)
	if err != nil {
		metrics.Webhooks.WithLabelValues("unknown_transaction").Inc()
		logger.CtxError(ctx, "webhook for unknown transaction", "fedapay_id", event.TransactionID)
		return nil, handlePaymentError(err)
	}

	switch models.TransactionStatus(event.Status) {
	case models.TransactionApproved:
		if err := s.ApproveTransaction(db, tx.ID); err != nil {
			metrics.Webhooks.WithLabelValues("error").Inc()
			return nil, err
		}
	case models.TransactionDeclined, models.TransactionCanceled:
		if err := s.setFinalStatus(db, tx, models.TransactionStatus(event.Status)); err != nil {
			metrics.Webhooks.WithLabelValues("error").Inc()
			return nil, err
		}
		logger.CtxInfo(ctx, "transaction closed by webhook", "transaction_id", tx.ID, "status", event.Status)
	}

	metrics.Webhooks.WithLabelValues("processed").Inc()
	return &dto.StatusResponse{Status: "success"}, nil
}

func (s *paymentService) ApproveTransaction(db *gorm.DB, transactionID string) error {
	ctx := ctxOf(db)
	now := timeNow()

	tx := db.Begin()
	if tx.Error != nil {
		return apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	locked, err := s.paymentRepo.LockTransaction(tx, transactionID)
	if err != nil {
		return handlePaymentError(err)
	}
	if locked.Status == models.TransactionApproved {
		return nil
	}

	if err := s.paymentRepo.UpdateTransactionStatus(tx, locked.ID, models.TransactionApproved, &now); err != nil {
		return handlePaymentError(err)
	}

	switch locked.TransactionType {
	case models.TransactionPremium:
		sub, err := s.paymentRepo.FindSubscription(tx, locked.UserID)
		if errors.Is(err, repositories.ErrSubscriptionNotFound) {
			sub = &models.PremiumSubscription{UserID: locked.UserID}
		} else if err != nil {
			return apperrors.InternalError(err)
		}
		sub.TransactionID = &locked.ID
		sub.Activate(now, models.PremiumDurationDays)
		if err := s.paymentRepo.SaveSubscription(tx, sub); err != nil {
			return apperrors.InternalError(err)
		}
		if err := s.userRepo.SetPremium(tx, locked.UserID, true); err != nil {
			return apperrors.InternalError(err)
		}

	case models.TransactionDownload:
		credit := &models.DownloadCredit{
			UserID:        locked.UserID,
			DocumentID:    locked.DocumentID,
			TransactionID: &locked.ID,
		}
		created, err := s.paymentRepo.FirstOrCreateCredit(tx, credit)
		if err != nil {
			return apperrors.InternalError(err)
		}
		if created {
			if err := s.userRepo.AdjustDownloadCredits(tx, locked.UserID, 1); err != nil {
				return apperrors.InternalError(err)
			}
		}
	}

	if err := tx.Commit().Error; err != nil {
		return apperrors.InternalError(err)
	}

	metrics.PaymentTransactions.WithLabelValues(string(locked.TransactionType), string(models.TransactionApproved)).Inc()
	logger.CtxInfo(ctx, "transaction approved",
		"transaction_id", locked.ID,
		"user_id", locked.UserID,
		"type", locked.TransactionType,
	)
	return nil
}

func (s *paymentService) setFinalStatus(db *gorm.DB, tx *models.Transaction, status models.TransactionStatus) error {
	if tx.Status == status {
		return nil
	}
	if err := s.paymentRepo.UpdateTransactionStatus(db, tx.ID, status, nil); err != nil {
		return handlePaymentError(err)
	}
	tx.Status = status
	metrics.PaymentTransactions.WithLabelValues(string(tx.TransactionType), string(status)).Inc()
	return nil
}

func (s *paymentService) CanDownload(db *gorm.DB, userID, documentID string) (*dto.CanDownloadResponse, error) {
	if _, err := s.documentRepo.FindOwned(db, documentID, userID); err != nil {
		return nil, handleDocumentError(err)
	}
	return s.downloadPermission(db, userID, documentID)
}

// downloadPermission: действующий премиум, затем неиспользованный кредит
func (s *paymentService) downloadPermission(db *gorm.DB, userID, documentID string) (*dto.CanDownloadResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	if user.IsPremiumSubscriber {
		sub, err := s.paymentRepo.FindSubscription(db, userID)
		switch {
		case err == nil && sub.IsValid(timeNow()):
			return &dto.CanDownloadResponse{CanDownload: true, Reason: ReasonPremium}, nil
		case err != nil && !errors.Is(err, repositories.ErrSubscriptionNotFound):
			return nil, apperrors.InternalError(err)
		}
	}

	credit, err := s.paymentRepo.FindUnusedCredit(db, userID, documentID)
	switch {
	case err == nil:
		return &dto.CanDownloadResponse{CanDownload: true, Reason: ReasonCredit, CreditID: credit.ID}, nil
	case !errors.Is(err, repositories.ErrCreditNotFound):
		return nil, apperrors.InternalError(err)
	}

	return &dto.CanDownloadResponse{CanDownload: false, Reason: ReasonNoPermission}, nil
}

func (s *paymentService) ConsumeCredit(db *gorm.DB, userID, creditID string) (*dto.ConsumeCreditResponse, error) {
	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.consumeCredit(tx, userID, creditID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindByID(tx, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.ConsumeCreditResponse{
		Status:           "success",
		RemainingCredits: user.DownloadCredits,
	}, nil
}

// consumeCredit списывает кредит и уменьшает счётчик; db - уже открытая транзакция
func (s *paymentService) consumeCredit(db *gorm.DB, userID, creditID string) error {
	credit, err := s.paymentRepo.FindUserCredit(db, creditID, userID)
	if err != nil {
		return handlePaymentError(err)
	}
	if err := s.paymentRepo.MarkCreditUsed(db, credit, timeNow()); err != nil {
		return handlePaymentError(err)
	}
	if err := s.userRepo.AdjustDownloadCredits(db, userID, -1); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *paymentService) GetSubscription(db *gorm.DB, userID string) (*dto.SubscriptionResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	resp := &dto.SubscriptionResponse{IsPremium: user.IsPremiumSubscriber}
	sub, err := s.paymentRepo.FindSubscription(db, userID)
	if errors.Is(err, repositories.ErrSubscriptionNotFound) {
		return resp, nil
	}
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	now := timeNow()
	resp.IsActive = sub.IsValid(now)
	resp.StartDate = &sub.StartDate
	resp.EndDate = &sub.EndDate
	resp.DaysLeft = sub.DaysLeft(now)
	resp.AutoRenew = sub.AutoRenew
	return resp, nil
}

func (s *paymentService) ListTransactions(db *gorm.DB, userID string, page, pageSize int) (*dto.PaginatedResponse, error) {
	txs, total, err := s.paymentRepo.ListUserTransactions(db, userID, pageSize, dto.Offset(page, pageSize))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	items := make([]*dto.TransactionResponse, 0, len(txs))
	for i := range txs {
		items = append(items, transactionResponse(&txs[i]))
	}
	return dto.NewPaginatedResponse(items, total, page, pageSize), nil
}

func approvedStatus(tx *models.Transaction) *dto.CheckStatusResponse {
	return &dto.CheckStatusResponse{
		Status:          string(models.TransactionApproved),
		TransactionType: string(tx.TransactionType),
		DocumentID:      tx.DocumentID,
	}
}

func transactionResponse(tx *models.Transaction) *dto.TransactionResponse {
	resp := &dto.TransactionResponse{
		ID:              tx.ID,
		TransactionType: string(tx.TransactionType),
		Amount:          tx.Amount,
		Currency:        tx.Currency,
		Status:          string(tx.Status),
		Description:     tx.Description,
		DocumentID:      tx.DocumentID,
		ApprovedAt:      tx.ApprovedAt,
		CreatedAt:       tx.CreatedAt,
	}
	if tx.FedaPayTransactionID != nil {
		resp.FedaPayTransactionID = *tx.FedaPayTransactionID
	}
	return resp
}

func handleGatewayError(ctx context.Context, err error) error {
	logger.CtxWithError(ctx, "fedapay create transaction failed", err)

	var apiErr *fedapay.APIError
	switch {
	case errors.Is(err, fedapay.ErrInvalidAPIKey):
		return apperrors.ErrGatewayAuth.WithError(err)
	case errors.Is(err, fedapay.ErrIncompleteResponse):
		return apperrors.ErrGatewayInvalidResponse.WithError(err)
	case errors.Is(err, fedapay.ErrTransport):
		return apperrors.ExternalServiceError(err, "payment", "Payment gateway is unavailable")
	case errors.As(err, &apiErr):
		return apperrors.Wrap(err, apperrors.CodeExternalServiceError, "payment",
			"Payment gateway rejected the request", http.StatusInternalServerError).
			WithDetails(map[string]interface{}{"gateway_status": apiErr.StatusCode})
	}
	return apperrors.InternalError(err)
}

func handlePaymentError(err error) error {
	if _, ok := apperrors.AsAppError(err); ok {
		return err
	}
	switch {
	case errors.Is(err, repositories.ErrTransactionNotFound):
		return apperrors.NewNotFoundError("payment", "Transaction not found")
	case errors.Is(err, repositories.ErrCreditNotFound):
		return apperrors.NewNotFoundError("payment", "Download credit not found")
	case errors.Is(err, repositories.ErrCreditAlreadyUsed):
		return apperrors.ErrCreditAlreadyUsed
	}
	return apperrors.InternalError(err)
}

func handleDocumentError(err error) error {
	if errors.Is(err, repositories.ErrDocumentNotFound) {
		return apperrors.NewNotFoundError("document", "Document not found")
	}
	return apperrors.InternalError(err)
}
