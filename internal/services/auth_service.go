package services

import (
	"context"
	"errors"
	"strings"

	"rencontre_backend/internal/auth"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/models"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type AuthService interface {
	Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error)
	Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error)
	// RefreshToken ротирует пару: старый refresh удаляется
	RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error)
	Logout(db *gorm.DB, refreshToken string) error
	GoogleAuth(ctx context.Context, db *gorm.DB, idToken string) (*dto.AuthResponse, error)
}

type authService struct {
	userRepo         repositories.UserRepository
	profileRepo      repositories.ProfileRepository
	refreshTokenRepo repositories.RefreshTokenRepository
	tokens           *auth.TokenManager
	google           auth.GoogleVerifier
	media            MediaService
}

func NewAuthService(
	userRepo repositories.UserRepository,
	profileRepo repositories.ProfileRepository,
	refreshTokenRepo repositories.RefreshTokenRepository,
	tokens *auth.TokenManager,
	google auth.GoogleVerifier,
	media MediaService,
) AuthService {
	return &authService{
		userRepo:         userRepo,
		profileRepo:      profileRepo,
		refreshTokenRepo: refreshTokenRepo,
		tokens:           tokens,
		google:           google,
		media:            media,
	}
}

// Register - пользователь и его анкета создаются в одной транзакции
func (s *authService) Register(db *gorm.DB, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	if req.Password != req.Password2 {
		return nil, apperrors.FieldError("password", "Passwords do not match")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	username := strings.TrimSpace(req.Username)
	if username == "" {
		username = emailLocalPart(email)
	}

	if err := auth.ValidatePassword(req.Password, email, username, req.FirstName, req.LastName); err != nil {
		return nil, apperrors.FieldError("password", err.Error())
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	user := &models.User{
		Email:              email,
		Username:           username,
		FirstName:          strings.TrimSpace(req.FirstName),
		LastName:           strings.TrimSpace(req.LastName),
		PasswordHash:       hash,
		RegistrationMethod: models.RegistrationEmail,
		Role:               models.UserRoleUser,
		Status:             models.UserStatusActive,
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	if err := s.createUserWithProfile(tx, user); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	logger.CtxInfo(ctxOf(db), "user registered", "user_id", user.ID, "method", user.RegistrationMethod)
	return resp, nil
}

func (s *authService) Login(db *gorm.DB, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	user, err := s.userRepo.FindByEmail(db, req.Email)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, apperrors.InternalError(err)
	}

	// у Google-аккаунтов хеша нет, CheckPasswordHash вернёт false
	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	return s.issueTokens(db, user)
}

func (s *authService) RefreshToken(db *gorm.DB, refreshToken string) (*dto.AuthResponse, error) {
	claims, err := s.tokens.ParseToken(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	stored, err := s.refreshTokenRepo.FindValid(tx, refreshToken, timeNow())
	if err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if stored.UserID != claims.UserID {
		return nil, apperrors.ErrInvalidToken
	}

	if err := s.refreshTokenRepo.DeleteByToken(tx, refreshToken); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}

	user, err := s.userRepo.FindByID(tx, stored.UserID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, apperrors.ErrInvalidToken
		}
		return nil, apperrors.InternalError(err)
	}
	if err := checkUserStatus(user); err != nil {
		return nil, err
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}
	return resp, nil
}

// Logout - удаление refresh-токена и есть его отзыв
func (s *authService) Logout(db *gorm.DB, refreshToken string) error {
	if strings.TrimSpace(refreshToken) == "" {
		return apperrors.ErrInvalidRefreshToken
	}

	if err := s.refreshTokenRepo.DeleteByToken(db, refreshToken); err != nil {
		if errors.Is(err, repositories.ErrRefreshTokenNotFound) {
			return apperrors.ErrInvalidRefreshToken
		}
		return apperrors.InternalError(err)
	}
	return nil
}

// GoogleAuth - обмен Google ID token на наши токены (get-or-create по email)
func (s *authService) GoogleAuth(ctx context.Context, db *gorm.DB, idToken string) (*dto.AuthResponse, error) {
	if strings.TrimSpace(idToken) == "" {
		return nil, apperrors.NewBadRequestError("id_token is required")
	}

	identity, err := s.google.Verify(ctx, idToken)
	if err != nil {
		if errors.Is(err, auth.ErrGoogleNoEmail) {
			return nil, apperrors.ErrGoogleEmailMissing
		}
		logger.CtxWarn(ctx, "google token rejected", "error", err)
		return nil, apperrors.ErrInvalidGoogleToken
	}

	tx := db.Begin()
	if tx.Error != nil {
		return nil, apperrors.InternalError(tx.Error)
	}
	defer tx.Rollback()

	user, err := s.userRepo.FindByEmail(tx, identity.Email)
	switch {
	case err == nil:
		if user.RegistrationMethod != models.RegistrationGoogle && user.PasswordHash != "" {
			return nil, apperrors.ErrPasswordAccountExists
		}
		if err := checkUserStatus(user); err != nil {
			return nil, err
		}
	case errors.Is(err, repositories.ErrUserNotFound):
		user = &models.User{
			Email:              identity.Email,
			Username:           emailLocalPart(identity.Email),
			FirstName:          identity.GivenName,
			LastName:           identity.FamilyName,
			RegistrationMethod: models.RegistrationGoogle,
			Role:               models.UserRoleUser,
			Status:             models.UserStatusActive,
		}
		if err := s.createUserWithProfile(tx, user); err != nil {
			return nil, err
		}
		logger.CtxInfo(ctx, "user registered", "user_id", user.ID, "method", user.RegistrationMethod)
	default:
		return nil, apperrors.InternalError(err)
	}

	resp, err := s.issueTokens(tx, user)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, apperrors.InternalError(err)
	}

	resp.RedirectURL = "/"
	return resp, nil
}

func (s *authService) createUserWithProfile(tx *gorm.DB, user *models.User) error {
	if err := s.userRepo.Create(tx, user); err != nil {
		if errors.Is(err, repositories.ErrUserAlreadyExists) {
			return apperrors.ErrEmailAlreadyExists
		}
		return apperrors.InternalError(err)
	}

	if err := s.profileRepo.Create(tx, DefaultProfile(user.ID, timeNow())); err != nil {
		return apperrors.InternalError(err)
	}
	return nil
}

func (s *authService) issueTokens(db *gorm.DB, user *models.User) (*dto.AuthResponse, error) {
	access, err := s.tokens.GenerateAccessToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	refresh, expiresAt, err := s.tokens.GenerateRefreshToken(user.ID, string(user.Role))
	if err != nil {
		return nil, apperrors.InternalError(err)
	}

	record := &models.RefreshToken{
		UserID:    user.ID,
		Token:     refresh,
		ExpiresAt: expiresAt,
	}
	if err := s.refreshTokenRepo.Create(db, record); err != nil {
		return nil, apperrors.InternalError(err)
	}

	return &dto.AuthResponse{
		Access:  access,
		Refresh: refresh,
		User:    dto.NewUserResponse(user, s.media.URL(ctxOf(db), user.Avatar)),
	}, nil
}

func checkUserStatus(user *models.User) error {
	if user.Status == models.UserStatusSuspended {
		return apperrors.NewForbiddenError("Account is suspended")
	}
	return nil
}

func emailLocalPart(email string) string {
	if i := strings.Index(email, "@"); i > 0 {
		return email[:i]
	}
	return email
}
