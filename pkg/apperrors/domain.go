package apperrors

import (
	"net/http"
)

// =========================================================================
// Фабрики для ошибок репозиториев
// =========================================================================

// ErrNotFound - 404 поверх ошибки репозитория
func ErrNotFound(err error) *AppError {
	return Wrap(err, CodeNotFound, "resource", "Resource not found", http.StatusNotFound)
}

// ErrAlreadyExists - 409 поверх ошибки репозитория
func ErrAlreadyExists(err error) *AppError {
	return Wrap(err, CodeAlreadyExists, "resource", "Resource already exists", http.StatusConflict)
}

func ErrConflict(err error, domain, message string) *AppError {
	return Wrap(err, CodeConflict, domain, message, http.StatusConflict)
}

func ErrInvalidOperation(domain, message string) *AppError {
	return New(CodeInvalidOperation, domain, message, http.StatusBadRequest)
}

// =========================================================================
// Предопределённые ошибки
// =========================================================================

// --- Auth ---

var ErrEmailAlreadyExists = New(
	CodeAlreadyExists,
	"auth",
	"Email already in use",
	http.StatusConflict,
)

var ErrInvalidCredentials = New(
	CodeInvalidCredentials,
	"auth",
	"Invalid email or password",
	http.StatusUnauthorized,
)

var ErrInvalidToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid or expired token",
	http.StatusUnauthorized,
)

// ErrInvalidRefreshToken - logout с отсутствующим или неизвестным токеном (400)
var ErrInvalidRefreshToken = New(
	CodeInvalidToken,
	"auth",
	"Refresh token is missing or invalid",
	http.StatusBadRequest,
)

var ErrInvalidGoogleToken = New(
	CodeInvalidToken,
	"auth",
	"Invalid Google ID token",
	http.StatusBadRequest,
)

var ErrGoogleEmailMissing = New(
	CodeValidationFailed,
	"auth",
	"Google token does not contain an email",
	http.StatusBadRequest,
)

// ErrPasswordAccountExists - email уже зарегистрирован с паролем
var ErrPasswordAccountExists = New(
	CodeForbidden,
	"auth",
	"This email is registered with a password. Please sign in with email and password",
	http.StatusForbidden,
)

var ErrInsufficientPermissions = New(
	CodeForbidden,
	"auth",
	"Insufficient permissions",
	http.StatusForbidden,
)

var ErrRateLimited = New(
	CodeRateLimited,
	"request",
	"Too many requests",
	http.StatusTooManyRequests,
)

// --- Uploads ---

var ErrFileRequired = New(
	CodeValidationFailed,
	"validation",
	"No file was provided",
	http.StatusBadRequest,
)

var ErrFileTooLarge = New(
	CodeValidationFailed,
	"validation",
	"File size exceeds the allowed limit",
	http.StatusRequestEntityTooLarge,
)

var ErrInvalidFileType = New(
	CodeValidationFailed,
	"validation",
	"The provided file type is not allowed",
	http.StatusUnsupportedMediaType,
)

// --- Profiles ---

var ErrCannotLikeSelf = New(
	CodeInvalidOperation,
	"profile",
	"You cannot like your own profile",
	http.StatusBadRequest,
)

// --- Messaging ---

var ErrThreadAccessDenied = New(
	CodeForbidden,
	"messaging",
	"You are not a participant of this conversation",
	http.StatusForbidden,
)

var ErrEmptyMessage = New(
	CodeValidationFailed,
	"messaging",
	"Message must contain text or an image",
	http.StatusBadRequest,
)

var ErrSelfConversation = New(
	CodeInvalidOperation,
	"messaging",
	"You cannot start a conversation with yourself",
	http.StatusBadRequest,
)

// --- Payments ---

var ErrInvalidSignature = New(
	CodeInvalidSignature,
	"payment",
	"Invalid webhook signature",
	http.StatusForbidden,
)

var ErrCreditAlreadyUsed = New(
	CodeInvalidOperation,
	"payment",
	"Download credit already used",
	http.StatusBadRequest,
)

var ErrDownloadNotAllowed = New(
	CodePaymentRequired,
	"payment",
	"Premium subscription or download credit required",
	http.StatusPaymentRequired,
)

var ErrGatewayAuth = New(
	CodeExternalServiceError,
	"payment",
	"Payment gateway rejected the secret key. Check FEDAPAY_SECRET_KEY",
	http.StatusInternalServerError,
)

var ErrGatewayInvalidResponse = New(
	CodeExternalServiceError,
	"payment",
	"Payment gateway returned an incomplete response",
	http.StatusInternalServerError,
)
