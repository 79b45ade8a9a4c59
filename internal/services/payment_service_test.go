package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"rencontre_backend/internal/models"
	"rencontre_backend/internal/payments/fedapay"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const webhookSecret = "whsec_test"

type paymentFixture struct {
	svc      PaymentService
	gateway  *fakeGateway
	payments *fakePaymentRepo
	users    *fakeUserRepo
	docs     *fakeDocumentRepo
	user     *models.User
	doc      *models.Document
}

func newPaymentFixture(debug bool) *paymentFixture {
	user := &models.User{BaseModel: models.BaseModel{ID: "user-1"}, Email: "ama@example.com", FirstName: "Ama"}
	doc := &models.Document{BaseModel: models.BaseModel{ID: "doc-1"}, OwnerID: user.ID, Title: "CV Ama", Path: "documents/cv.pdf"}

	f := &paymentFixture{
		gateway:  &fakeGateway{},
		payments: newFakePaymentRepo(),
		users:    newFakeUserRepo(user),
		docs:     newFakeDocumentRepo(doc),
		user:     user,
		doc:      doc,
	}
	f.svc = NewPaymentService(f.gateway, f.payments, f.users, f.docs, PaymentConfig{
		FrontendURL:   "http://front.test/",
		BackendDomain: "http://api.test",
		WebhookSecret: webhookSecret,
		Debug:         debug,
	})
	return f
}

func (f *paymentFixture) addPending(txType models.TransactionType, fedapayID string) *models.Transaction {
	tx := &models.Transaction{
		BaseModel:            models.BaseModel{ID: "tx-" + fedapayID},
		UserID:               f.user.ID,
		FedaPayTransactionID: &fedapayID,
		TransactionType:      txType,
		Amount:               models.PriceFor(txType),
		Status:               models.TransactionPending,
	}
	if txType == models.TransactionDownload {
		tx.DocumentID = &f.doc.ID
	}
	f.payments.transactions[tx.ID] = tx
	return tx
}

func TestCreateTransaction_Premium(t *testing.T) {
	freezeTime(t, time.Unix(1700000000, 0))
	f := newPaymentFixture(false)
	db, _ := newMockDB(t)
	f.gateway.createResult = &fedapay.TransactionResult{
		ID:         "987",
		PaymentURL: "https://pay.test/987",
		Raw:        []byte(`{"id":987}`),
	}

	resp, err := f.svc.CreateTransaction(context.Background(), db, f.user.ID, &dto.CreateTransactionRequest{
		TransactionType: string(models.TransactionPremium),
	})
	require.NoError(t, err)

	assert.Equal(t, "987", resp.FedaPayTransactionID)
	assert.Equal(t, "N/A", resp.FedaPayToken)
	assert.Equal(t, "https://pay.test/987", resp.PaymentURL)

	req := f.gateway.createReq
	assert.Equal(t, float64(models.PremiumPriceXOF), req.Amount)
	assert.Equal(t, "http://front.test/payment/success", req.CallbackURL)
	assert.Equal(t, "http://api.test/api/v1/payments/webhook/", req.WebhookURL)
	assert.Equal(t, "CVuser-1_1700000000", req.Reference)
	assert.Equal(t, defaultPhoneNumber, req.Customer.PhoneNumber)
	assert.Equal(t, defaultPhoneCountry, req.Customer.PhoneCountry)

	stored := f.payments.transactions[resp.TransactionID]
	require.NotNil(t, stored)
	assert.Equal(t, models.TransactionPending, stored.Status)
	assert.Nil(t, stored.DocumentID)
	assert.Contains(t, string(stored.Metadata), "fedapay_response")
}

func TestCreateTransaction_DownloadRequiresOwnedDocument(t *testing.T) {
	f := newPaymentFixture(false)
	db, _ := newMockDB(t)

	_, err := f.svc.CreateTransaction(context.Background(), db, f.user.ID, &dto.CreateTransactionRequest{
		TransactionType: string(models.TransactionDownload),
	})
	requireAppError(t, err, http.StatusBadRequest)

	_, err = f.svc.CreateTransaction(context.Background(), db, f.user.ID, &dto.CreateTransactionRequest{
		TransactionType: string(models.TransactionDownload),
		DocumentID:      "someone-else",
	})
	requireAppError(t, err, http.StatusNotFound)
}

func TestCreateTransaction_GatewayErrors(t *testing.T) {
	cases := []struct {
		name string
		err  error
		code int
	}{
		{"invalid key", fedapay.ErrInvalidAPIKey, http.StatusInternalServerError},
		{"incomplete", fedapay.ErrIncompleteResponse, http.StatusInternalServerError},
		{"transport", errors.Join(fedapay.ErrTransport, errors.New("dial tcp")), http.StatusServiceUnavailable},
		{"api error", &fedapay.APIError{StatusCode: 422, Message: "bad amount"}, http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newPaymentFixture(false)
			db, _ := newMockDB(t)
			f.gateway.createErr = tc.err

			_, err := f.svc.CreateTransaction(context.Background(), db, f.user.ID, &dto.CreateTransactionRequest{
				TransactionType: string(models.TransactionPremium),
			})
			requireAppError(t, err, tc.code)
			assert.Empty(t, f.payments.transactions)
		})
	}
}

func TestCallbackRedirect(t *testing.T) {
	f := newPaymentFixture(false)
	db, _ := newMockDB(t)
	tx := f.addPending(models.TransactionPremium, "555")

	assert.Equal(t, "http://front.test/payment/success?transaction_id="+tx.ID+"&fedapay_status=approved",
		f.svc.CallbackRedirect(db, "555", "approved"))
	assert.Equal(t, "http://front.test/payment/success?transaction_id=777&fedapay_status=pending",
		f.svc.CallbackRedirect(db, "777", "pending"))
	assert.Equal(t, "http://front.test/payment/failed?status=missing_id",
		f.svc.CallbackRedirect(db, "", ""))
}

func TestApproveTransaction_PremiumIsIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)
	f := newPaymentFixture(false)
	db, mock := newMockDB(t)
	tx := f.addPending(models.TransactionPremium, "100")

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))

	mock.ExpectBegin()
	mock.ExpectRollback()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))
	assert.NoError(t, mock.ExpectationsWereMet())

	assert.Equal(t, models.TransactionApproved, f.payments.transactions[tx.ID].Status)
	assert.True(t, f.users.users[f.user.ID].IsPremiumSubscriber)

	sub := f.payments.subscriptions[f.user.ID]
	require.NotNil(t, sub)
	assert.True(t, sub.IsValid(now))
	assert.Equal(t, now.AddDate(0, 0, 30), sub.EndDate)
	assert.Equal(t, tx.ID, *sub.TransactionID)
}

func TestApproveTransaction_DownloadCreatesOneCredit(t *testing.T) {
	f := newPaymentFixture(false)
	db, mock := newMockDB(t)
	tx := f.addPending(models.TransactionDownload, "200")

	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))

	// статус вручную сброшен: кредит всё равно не должен задвоиться
	f.payments.transactions[tx.ID].Status = models.TransactionPending
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))
	assert.NoError(t, mock.ExpectationsWereMet())

	require.Len(t, f.payments.credits, 1)
	assert.Equal(t, f.doc.ID, *f.payments.credits[0].DocumentID)
	assert.Equal(t, 1, f.users.users[f.user.ID].DownloadCredits)
}

func TestHandleWebhook_Signature(t *testing.T) {
	body := []byte(`{"name":"transaction.approved","entity":{"id":300,"status":"approved"}}`)

	t.Run("invalid", func(t *testing.T) {
		f := newPaymentFixture(false)
		db, _ := newMockDB(t)
		_, err := f.svc.HandleWebhook(context.Background(), db, body, "deadbeef")
		appErr := requireAppError(t, err, http.StatusForbidden)
		assert.Equal(t, apperrors.CodeInvalidSignature, appErr.Code)
	})

	t.Run("missing outside debug", func(t *testing.T) {
		f := newPaymentFixture(false)
		db, _ := newMockDB(t)
		_, err := f.svc.HandleWebhook(context.Background(), db, body, "")
		requireAppError(t, err, http.StatusForbidden)
	})

	t.Run("valid approves", func(t *testing.T) {
		f := newPaymentFixture(false)
		db, mock := newMockDB(t)
		tx := f.addPending(models.TransactionPremium, "300")
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := f.svc.HandleWebhook(context.Background(), db, body, fedapay.Sign(body, webhookSecret))
		require.NoError(t, err)
		assert.Equal(t, "success", resp.Status)
		assert.Equal(t, models.TransactionApproved, f.payments.transactions[tx.ID].Status)
	})

	t.Run("missing in debug is accepted", func(t *testing.T) {
		f := newPaymentFixture(true)
		db, mock := newMockDB(t)
		f.addPending(models.TransactionPremium, "300")
		mock.ExpectBegin()
		mock.ExpectCommit()

		_, err := f.svc.HandleWebhook(context.Background(), db, body, "")
		require.NoError(t, err)
	})
}

func TestHandleWebhook_Payload(t *testing.T) {
	f := newPaymentFixture(true)
	db, _ := newMockDB(t)

	_, err := f.svc.HandleWebhook(context.Background(), db, []byte(`{"entity":{}}`), "")
	requireAppError(t, err, http.StatusBadRequest)

	_, err = f.svc.HandleWebhook(context.Background(), db, []byte(`{"entity":{"id":"404"}}`), "")
	requireAppError(t, err, http.StatusNotFound)

	tx := f.addPending(models.TransactionDownload, "400")
	_, err = f.svc.HandleWebhook(context.Background(), db, []byte(`{"entity":{"id":"400","status":"declined"}}`), "")
	require.NoError(t, err)
	assert.Equal(t, models.TransactionDeclined, f.payments.transactions[tx.ID].Status)
	assert.Empty(t, f.payments.credits)
}

func TestCheckStatus(t *testing.T) {
	t.Run("gateway approved", func(t *testing.T) {
		f := newPaymentFixture(false)
		db, mock := newMockDB(t)
		tx := f.addPending(models.TransactionDownload, "500")
		f.gateway.status = "approved"
		mock.ExpectBegin()
		mock.ExpectCommit()

		resp, err := f.svc.CheckStatus(context.Background(), db, f.user.ID, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "approved", resp.Status)
		require.NotNil(t, resp.DocumentID)
		assert.Equal(t, f.doc.ID, *resp.DocumentID)
		assert.Len(t, f.payments.credits, 1)
	})

	t.Run("still pending", func(t *testing.T) {
		f := newPaymentFixture(false)
		db, _ := newMockDB(t)
		tx := f.addPending(models.TransactionPremium, "501")
		f.gateway.status = "pending"

		resp, err := f.svc.CheckStatus(context.Background(), db, f.user.ID, tx.ID)
		require.NoError(t, err)
		assert.Equal(t, "pending", resp.Status)
		assert.Nil(t, resp.DocumentID)
	})

	t.Run("gateway failure", func(t *testing.T) {
		f := newPaymentFixture(false)
		db, _ := newMockDB(t)
		tx := f.addPending(models.TransactionPremium, "502")
		f.gateway.statusErr = fedapay.ErrTransport

		_, err := f.svc.CheckStatus(context.Background(), db, f.user.ID, tx.ID)
		appErr := requireAppError(t, err, http.StatusInternalServerError)
		assert.Equal(t, map[string]string{"status": "pending"}, appErr.Details)
	})

	t.Run("foreign transaction", func(t *testing.T) {
		f := newPaymentFixture(false)
		db, _ := newMockDB(t)
		tx := f.addPending(models.TransactionPremium, "503")

		_, err := f.svc.CheckStatus(context.Background(), db, "someone-else", tx.ID)
		requireAppError(t, err, http.StatusNotFound)
	})
}

func TestCanDownloadAndConsumeCredit(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)
	f := newPaymentFixture(false)
	db, mock := newMockDB(t)

	resp, err := f.svc.CanDownload(db, f.user.ID, f.doc.ID)
	require.NoError(t, err)
	assert.False(t, resp.CanDownload)
	assert.Equal(t, ReasonNoPermission, resp.Reason)

	_, err = f.svc.CanDownload(db, f.user.ID, "missing")
	requireAppError(t, err, http.StatusNotFound)

	tx := f.addPending(models.TransactionDownload, "600")
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))

	resp, err = f.svc.CanDownload(db, f.user.ID, f.doc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonCredit, resp.Reason)
	require.NotEmpty(t, resp.CreditID)

	mock.ExpectBegin()
	mock.ExpectCommit()
	consumed, err := f.svc.ConsumeCredit(db, f.user.ID, resp.CreditID)
	require.NoError(t, err)
	assert.Equal(t, 0, consumed.RemainingCredits)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = f.svc.ConsumeCredit(db, f.user.ID, resp.CreditID)
	appErr := requireAppError(t, err, http.StatusBadRequest)
	assert.Equal(t, apperrors.CodeInvalidOperation, appErr.Code)

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err = f.svc.ConsumeCredit(db, f.user.ID, "unknown")
	requireAppError(t, err, http.StatusNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCanDownload_PremiumNeedsValidSubscription(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	freezeTime(t, now)
	f := newPaymentFixture(false)
	db, _ := newMockDB(t)

	f.user.IsPremiumSubscriber = true
	f.payments.subscriptions[f.user.ID] = &models.PremiumSubscription{
		UserID:   f.user.ID,
		IsActive: true,
		EndDate:  now.Add(-time.Hour),
	}
	resp, err := f.svc.CanDownload(db, f.user.ID, f.doc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonNoPermission, resp.Reason)

	f.payments.subscriptions[f.user.ID].EndDate = now.AddDate(0, 0, 3)
	resp, err = f.svc.CanDownload(db, f.user.ID, f.doc.ID)
	require.NoError(t, err)
	assert.True(t, resp.CanDownload)
	assert.Equal(t, ReasonPremium, resp.Reason)

	sub, err := f.svc.GetSubscription(db, f.user.ID)
	require.NoError(t, err)
	assert.True(t, sub.IsActive)
	assert.Equal(t, 3, sub.DaysLeft)
}

func TestDocumentDownload(t *testing.T) {
	f := newPaymentFixture(false)
	db, mock := newMockDB(t)
	media := &fakeMedia{}
	docs := NewDocumentService(f.docs, f.svc, media)

	_, err := docs.Download(context.Background(), db, f.user.ID, f.doc.ID)
	requireAppError(t, err, http.StatusPaymentRequired)

	tx := f.addPending(models.TransactionDownload, "700")
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))

	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := docs.Download(context.Background(), db, f.user.ID, f.doc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonCredit, resp.Reason)
	assert.True(t, strings.HasPrefix(resp.URL, "/media/documents/cv.pdf"))
	assert.Equal(t, 1, f.docs.downloads[f.doc.ID])

	_, err = docs.Download(context.Background(), db, f.user.ID, f.doc.ID)
	requireAppError(t, err, http.StatusPaymentRequired)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDocumentDownload_SigningFailureKeepsCredit(t *testing.T) {
	f := newPaymentFixture(false)
	db, mock := newMockDB(t)
	docs := NewDocumentService(f.docs, f.svc, &fakeMedia{})

	tx := f.addPending(models.TransactionDownload, "701")
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))
	require.Len(t, f.payments.credits, 1)

	// хранилище не смогло подписать ссылку
	f.doc.Path = ""
	_, err := docs.Download(context.Background(), db, f.user.ID, f.doc.ID)
	requireAppError(t, err, http.StatusInternalServerError)
	assert.False(t, f.payments.credits[0].IsUsed)
	assert.Zero(t, f.docs.downloads[f.doc.ID])

	f.doc.Path = "documents/cv.pdf"
	mock.ExpectBegin()
	mock.ExpectCommit()
	resp, err := docs.Download(context.Background(), db, f.user.ID, f.doc.ID)
	require.NoError(t, err)
	assert.Equal(t, ReasonCredit, resp.Reason)
	assert.True(t, f.payments.credits[0].IsUsed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// stalePermissions отдаёт разрешение, прочитанное до того, как кредит списал другой запрос
type stalePermissions struct {
	PaymentService
	creditID string
}

func (p *stalePermissions) CanDownload(_ *gorm.DB, _, _ string) (*dto.CanDownloadResponse, error) {
	return &dto.CanDownloadResponse{CanDownload: true, Reason: ReasonCredit, CreditID: p.creditID}, nil
}

func TestDocumentDownload_CreditSpentConcurrently(t *testing.T) {
	f := newPaymentFixture(false)
	db, mock := newMockDB(t)

	tx := f.addPending(models.TransactionDownload, "702")
	mock.ExpectBegin()
	mock.ExpectCommit()
	require.NoError(t, f.svc.ApproveTransaction(db, tx.ID))
	require.Len(t, f.payments.credits, 1)
	credit := f.payments.credits[0]
	credit.Use(time.Now())

	docs := NewDocumentService(f.docs, &stalePermissions{PaymentService: f.svc, creditID: credit.ID}, &fakeMedia{})

	mock.ExpectBegin()
	mock.ExpectRollback()
	_, err := docs.Download(context.Background(), db, f.user.ID, f.doc.ID)
	appErr := requireAppError(t, err, http.StatusPaymentRequired)
	assert.Equal(t, apperrors.ErrDownloadNotAllowed.Code, appErr.Code)
	assert.Zero(t, f.docs.downloads[f.doc.ID])
	assert.NoError(t, mock.ExpectationsWereMet())
}
