package helpers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"
	"time"

	"rencontre_backend/internal/auth"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/services"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

// DefaultPassword проходит проверку сложности пароля
const DefaultPassword = "Tr0mbone-Sahel!"

// CreateUser создаёт пользователя с анкетой напрямую в БД
func CreateUser(t *testing.T, db *gorm.DB, email string, role models.UserRole) *models.User {
	t.Helper()

	hash, err := auth.HashPassword(DefaultPassword)
	require.NoError(t, err)

	user := &models.User{
		Email:              email,
		Username:           email,
		FirstName:          "Test",
		PasswordHash:       hash,
		RegistrationMethod: models.RegistrationEmail,
		Role:               role,
		Status:             models.UserStatusActive,
	}
	require.NoError(t, db.Create(user).Error, "не удалось создать пользователя %s", email)
	require.NoError(t, db.Create(services.DefaultProfile(user.ID, time.Now())).Error)
	return user
}

// Login логинит пользователя через API и возвращает access-токен
func Login(t *testing.T, ts *TestServer, email string) string {
	t.Helper()

	res, body := ts.SendRequest(t, http.MethodPost, "/api/v1/users/login", "", map[string]string{
		"email":    email,
		"password": DefaultPassword,
	})
	require.Equal(t, http.StatusOK, res.StatusCode, "логин должен быть успешным: %s", body)

	var resp struct {
		Access string `json:"access"`
	}
	require.NoError(t, json.Unmarshal([]byte(body), &resp))
	require.NotEmpty(t, resp.Access)
	return resp.Access
}

// CreateAndLoginUser создаёт пользователя с уникальным email и логинит его
func CreateAndLoginUser(t *testing.T, ts *TestServer, role models.UserRole) (string, *models.User) {
	t.Helper()
	email := fmt.Sprintf("%s_%d@test.com", role, time.Now().UnixNano())
	user := CreateUser(t, ts.DB, email, role)
	return Login(t, ts, email), user
}

// ProfileOf - анкета пользователя
func ProfileOf(t *testing.T, db *gorm.DB, userID string) *models.Profile {
	t.Helper()
	var profile models.Profile
	require.NoError(t, db.Where("user_id = ?", userID).First(&profile).Error)
	return &profile
}

// CreateDocument - документ без файла в хранилище
func CreateDocument(t *testing.T, db *gorm.DB, ownerID, title string) *models.Document {
	t.Helper()
	doc := &models.Document{
		OwnerID:  ownerID,
		Title:    title,
		Path:     "documents/" + ownerID + "/cv.pdf",
		MimeType: "application/pdf",
		Size:     1024,
	}
	require.NoError(t, db.Create(doc).Error)
	return doc
}

// CreatePendingTransaction - транзакция, как её создаёт create-transaction
func CreatePendingTransaction(t *testing.T, db *gorm.DB, userID string, txType models.TransactionType, documentID *string, fedapayID string) *models.Transaction {
	t.Helper()
	tx := &models.Transaction{
		UserID:               userID,
		DocumentID:           documentID,
		FedaPayTransactionID: &fedapayID,
		TransactionType:      txType,
		Amount:               models.PriceFor(txType),
		Currency:             "XOF",
		Status:               models.TransactionPending,
	}
	require.NoError(t, db.Create(tx).Error)
	return tx
}
