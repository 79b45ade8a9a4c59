package services

import (
	"context"
	"errors"
	"mime/multipart"
	"testing"
	"time"

	"rencontre_backend/internal/imageprocessor"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/payments/fedapay"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/pkg/apperrors"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// newMockDB - gorm поверх sqlmock. Фейковые репозитории SQL не шлют,
// поэтому ожидаются только BEGIN/COMMIT/ROLLBACK.
func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
		Logger:                 logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	return db, mock
}

func freezeTime(t *testing.T, at time.Time) {
	t.Helper()
	prev := timeNow
	timeNow = func() time.Time { return at }
	t.Cleanup(func() { timeNow = prev })
}

func requireAppError(t *testing.T, err error, httpCode int) *apperrors.AppError {
	t.Helper()
	require.Error(t, err)
	appErr, ok := apperrors.AsAppError(err)
	require.True(t, ok, "expected AppError, got %T: %v", err, err)
	assert.Equal(t, httpCode, appErr.HTTPCode)
	return appErr
}

// --- users ---

type fakeUserRepo struct {
	repositories.UserRepository
	users map[string]*models.User
}

func newFakeUserRepo(users ...*models.User) *fakeUserRepo {
	r := &fakeUserRepo{users: make(map[string]*models.User)}
	for _, u := range users {
		r.users[u.ID] = u
	}
	return r
}

func (r *fakeUserRepo) FindByID(_ *gorm.DB, id string) (*models.User, error) {
	u, ok := r.users[id]
	if !ok {
		return nil, repositories.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r *fakeUserRepo) AdjustDownloadCredits(_ *gorm.DB, userID string, delta int) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.DownloadCredits = max(u.DownloadCredits+delta, 0)
	return nil
}

func (r *fakeUserRepo) SetPremium(_ *gorm.DB, userID string, premium bool) error {
	u, ok := r.users[userID]
	if !ok {
		return repositories.ErrUserNotFound
	}
	u.IsPremiumSubscriber = premium
	return nil
}

// --- payments ---

type fakePaymentRepo struct {
	repositories.PaymentRepository
	transactions  map[string]*models.Transaction
	subscriptions map[string]*models.PremiumSubscription
	credits       []*models.DownloadCredit
}

func newFakePaymentRepo() *fakePaymentRepo {
	return &fakePaymentRepo{
		transactions:  make(map[string]*models.Transaction),
		subscriptions: make(map[string]*models.PremiumSubscription),
	}
}

func (r *fakePaymentRepo) CreateTransaction(_ *gorm.DB, tx *models.Transaction) error {
	if tx.ID == "" {
		tx.ID = uuid.NewString()
	}
	cp := *tx
	r.transactions[tx.ID] = &cp
	return nil
}

func (r *fakePaymentRepo) FindUserTransaction(_ *gorm.DB, id, userID string) (*models.Transaction, error) {
	tx, ok := r.transactions[id]
	if !ok || tx.UserID != userID {
		return nil, repositories.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *fakePaymentRepo) FindByFedaPayID(_ *gorm.DB, fedapayID string) (*models.Transaction, error) {
	for _, tx := range r.transactions {
		if tx.FedaPayTransactionID != nil && *tx.FedaPayTransactionID == fedapayID {
			cp := *tx
			return &cp, nil
		}
	}
	return nil, repositories.ErrTransactionNotFound
}

func (r *fakePaymentRepo) LockTransaction(_ *gorm.DB, id string) (*models.Transaction, error) {
	tx, ok := r.transactions[id]
	if !ok {
		return nil, repositories.ErrTransactionNotFound
	}
	cp := *tx
	return &cp, nil
}

func (r *fakePaymentRepo) UpdateTransactionStatus(_ *gorm.DB, id string, status models.TransactionStatus, approvedAt *time.Time) error {
	tx, ok := r.transactions[id]
	if !ok {
		return repositories.ErrTransactionNotFound
	}
	tx.Status = status
	if approvedAt != nil {
		tx.ApprovedAt = approvedAt
	}
	return nil
}

func (r *fakePaymentRepo) FindSubscription(_ *gorm.DB, userID string) (*models.PremiumSubscription, error) {
	sub, ok := r.subscriptions[userID]
	if !ok {
		return nil, repositories.ErrSubscriptionNotFound
	}
	cp := *sub
	return &cp, nil
}

func (r *fakePaymentRepo) SaveSubscription(_ *gorm.DB, sub *models.PremiumSubscription) error {
	if sub.ID == "" {
		sub.ID = uuid.NewString()
	}
	cp := *sub
	r.subscriptions[sub.UserID] = &cp
	return nil
}

func (r *fakePaymentRepo) FirstOrCreateCredit(_ *gorm.DB, credit *models.DownloadCredit) (bool, error) {
	for _, c := range r.credits {
		if c.UserID == credit.UserID && equalPtr(c.DocumentID, credit.DocumentID) && equalPtr(c.TransactionID, credit.TransactionID) {
			*credit = *c
			return false, nil
		}
	}
	credit.ID = uuid.NewString()
	cp := *credit
	r.credits = append(r.credits, &cp)
	return true, nil
}

func (r *fakePaymentRepo) FindUnusedCredit(_ *gorm.DB, userID, documentID string) (*models.DownloadCredit, error) {
	for _, c := range r.credits {
		if c.UserID == userID && c.DocumentID != nil && *c.DocumentID == documentID && !c.IsUsed {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCreditNotFound
}

func (r *fakePaymentRepo) FindUserCredit(_ *gorm.DB, creditID, userID string) (*models.DownloadCredit, error) {
	for _, c := range r.credits {
		if c.ID == creditID && c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, repositories.ErrCreditNotFound
}

func (r *fakePaymentRepo) MarkCreditUsed(_ *gorm.DB, credit *models.DownloadCredit, at time.Time) error {
	for _, c := range r.credits {
		if c.ID == credit.ID {
			if !c.Use(at) {
				return repositories.ErrCreditAlreadyUsed
			}
			credit.Use(at)
			return nil
		}
	}
	return repositories.ErrCreditNotFound
}

func equalPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// --- documents ---

type fakeDocumentRepo struct {
	repositories.DocumentRepository
	docs      map[string]*models.Document
	downloads map[string]int
}

func newFakeDocumentRepo(docs ...*models.Document) *fakeDocumentRepo {
	r := &fakeDocumentRepo{docs: make(map[string]*models.Document), downloads: make(map[string]int)}
	for _, d := range docs {
		r.docs[d.ID] = d
	}
	return r
}

func (r *fakeDocumentRepo) FindOwned(_ *gorm.DB, id, ownerID string) (*models.Document, error) {
	d, ok := r.docs[id]
	if !ok || d.OwnerID != ownerID {
		return nil, repositories.ErrDocumentNotFound
	}
	cp := *d
	return &cp, nil
}

func (r *fakeDocumentRepo) IncrementDownloads(_ *gorm.DB, id string) error {
	r.downloads[id]++
	return nil
}

// --- gateway ---

type fakeGateway struct {
	createReq    fedapay.CreateTransactionRequest
	createResult *fedapay.TransactionResult
	createErr    error
	status       string
	statusErr    error
}

func (g *fakeGateway) CreateTransaction(_ context.Context, req fedapay.CreateTransactionRequest) (*fedapay.TransactionResult, error) {
	g.createReq = req
	return g.createResult, g.createErr
}

func (g *fakeGateway) GetTransactionStatus(_ context.Context, _ string) (string, error) {
	return g.status, g.statusErr
}

// --- media ---

type fakeMedia struct {
	deleted []string
}

func (m *fakeMedia) SaveImage(_ context.Context, file *multipart.FileHeader, prefix string, _ imageprocessor.ImageSize) (*StoredFile, error) {
	if file == nil {
		return nil, apperrors.ErrFileRequired
	}
	return &StoredFile{Path: prefix + "/" + file.Filename, MimeType: "image/jpeg", Size: file.Size}, nil
}

func (m *fakeMedia) SaveFile(_ context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error) {
	if file == nil {
		return nil, apperrors.ErrFileRequired
	}
	return &StoredFile{Path: prefix + "/" + file.Filename, MimeType: "application/pdf", Size: file.Size}, nil
}

func (m *fakeMedia) Delete(_ context.Context, path string) {
	m.deleted = append(m.deleted, path)
}

func (m *fakeMedia) URL(_ context.Context, path string) string {
	if path == "" {
		return ""
	}
	return "/media/" + path
}

func (m *fakeMedia) SignedURL(_ context.Context, path string) (string, error) {
	if path == "" {
		return "", errors.New("empty path")
	}
	return "/media/" + path + "?signed=1", nil
}
