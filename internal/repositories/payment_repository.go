package repositories

import (
	"errors"
	"time"

	"rencontre_backend/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	ErrTransactionNotFound  = errors.New("transaction not found")
	ErrSubscriptionNotFound = errors.New("subscription not found")
	ErrCreditNotFound       = errors.New("download credit not found")
	ErrCreditAlreadyUsed    = errors.New("download credit already used")
)

type PaymentRepository interface {
	// Transactions
	CreateTransaction(db *gorm.DB, tx *models.Transaction) error
	FindUserTransaction(db *gorm.DB, id, userID string) (*models.Transaction, error)
	FindByFedaPayID(db *gorm.DB, fedapayID string) (*models.Transaction, error)
	// LockTransaction - SELECT ... FOR UPDATE, только внутри транзакции БД
	LockTransaction(db *gorm.DB, id string) (*models.Transaction, error)
	UpdateTransactionStatus(db *gorm.DB, id string, status models.TransactionStatus, approvedAt *time.Time) error
	ListUserTransactions(db *gorm.DB, userID string, limit, offset int) ([]models.Transaction, int64, error)

	// Subscriptions
	FindSubscription(db *gorm.DB, userID string) (*models.PremiumSubscription, error)
	SaveSubscription(db *gorm.DB, sub *models.PremiumSubscription) error

	// Download credits
	FirstOrCreateCredit(db *gorm.DB, credit *models.DownloadCredit) (bool, error)
	FindUnusedCredit(db *gorm.DB, userID, documentID string) (*models.DownloadCredit, error)
	FindUserCredit(db *gorm.DB, creditID, userID string) (*models.DownloadCredit, error)
	// MarkCreditUsed - условный UPDATE, второй вызов получает ErrCreditAlreadyUsed
	MarkCreditUsed(db *gorm.DB, credit *models.DownloadCredit, at time.Time) error
}

type paymentRepository struct{}

func NewPaymentRepository() PaymentRepository {
	return &paymentRepository{}
}

func notFound(err error, sentinel error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sentinel
	}
	return err
}

// --- Transactions ---

func (r *paymentRepository) CreateTransaction(db *gorm.DB, tx *models.Transaction) error {
	return db.Create(tx).Error
}

func (r *paymentRepository) FindUserTransaction(db *gorm.DB, id, userID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := db.Where("id = ? AND user_id = ?", id, userID).First(&tx).Error; err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *paymentRepository) FindByFedaPayID(db *gorm.DB, fedapayID string) (*models.Transaction, error) {
	var tx models.Transaction
	if err := db.Where("fedapay_transaction_id = ?", fedapayID).First(&tx).Error; err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *paymentRepository) LockTransaction(db *gorm.DB, id string) (*models.Transaction, error) {
	var tx models.Transaction
	err := db.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&tx).Error
	if err != nil {
		return nil, notFound(err, ErrTransactionNotFound)
	}
	return &tx, nil
}

func (r *paymentRepository) UpdateTransactionStatus(db *gorm.DB, id string, status models.TransactionStatus, approvedAt *time.Time) error {
	fields := map[string]interface{}{"status": status}
	if approvedAt != nil {
		fields["approved_at"] = *approvedAt
	}
	result := db.Model(&models.Transaction{}).Where("id = ?", id).Updates(fields)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTransactionNotFound
	}
	return nil
}

func (r *paymentRepository) ListUserTransactions(db *gorm.DB, userID string, limit, offset int) ([]models.Transaction, int64, error) {
	query := db.Model(&models.Transaction{}).Where("user_id = ?", userID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var txs []models.Transaction
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&txs).Error
	return txs, total, err
}

// --- Subscriptions ---

func (r *paymentRepository) FindSubscription(db *gorm.DB, userID string) (*models.PremiumSubscription, error) {
	var sub models.PremiumSubscription
	if err := db.Where("user_id = ?", userID).First(&sub).Error; err != nil {
		return nil, notFound(err, ErrSubscriptionNotFound)
	}
	return &sub, nil
}

func (r *paymentRepository) SaveSubscription(db *gorm.DB, sub *models.PremiumSubscription) error {
	return db.Omit(clause.Associations).Save(sub).Error
}

// --- Download credits ---

// FirstOrCreateCredit ищет кредит по (user, document, transaction), создаёт
// при отсутствии. true - создан новый.
func (r *paymentRepository) FirstOrCreateCredit(db *gorm.DB, credit *models.DownloadCredit) (bool, error) {
	query := db.Where("user_id = ?", credit.UserID)
	if credit.DocumentID != nil {
		query = query.Where("document_id = ?", *credit.DocumentID)
	} else {
		query = query.Where("document_id IS NULL")
	}
	if credit.TransactionID != nil {
		query = query.Where("transaction_id = ?", *credit.TransactionID)
	}

	var existing models.DownloadCredit
	err := query.First(&existing).Error
	if err == nil {
		*credit = existing
		return false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return false, err
	}
	if err := db.Create(credit).Error; err != nil {
		return false, err
	}
	return true, nil
}

func (r *paymentRepository) FindUnusedCredit(db *gorm.DB, userID, documentID string) (*models.DownloadCredit, error) {
	var credit models.DownloadCredit
	err := db.Where("user_id = ? AND document_id = ? AND is_used = ?", userID, documentID, false).
		Order("created_at ASC").
		First(&credit).Error
	if err != nil {
		return nil, notFound(err, ErrCreditNotFound)
	}
	return &credit, nil
}

func (r *paymentRepository) FindUserCredit(db *gorm.DB, creditID, userID string) (*models.DownloadCredit, error) {
	var credit models.DownloadCredit
	if err := db.Where("id = ? AND user_id = ?", creditID, userID).First(&credit).Error; err != nil {
		return nil, notFound(err, ErrCreditNotFound)
	}
	return &credit, nil
}

func (r *paymentRepository) MarkCreditUsed(db *gorm.DB, credit *models.DownloadCredit, at time.Time) error {
	if !credit.Use(at) {
		return ErrCreditAlreadyUsed
	}
	result := db.Model(&models.DownloadCredit{}).
		Where("id = ? AND is_used = ?", credit.ID, false).
		Updates(map[string]interface{}{"is_used": true, "used_at": at})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrCreditAlreadyUsed
	}
	return nil
}
