package services

import (
	"context"
	"errors"
	"mime/multipart"
	"strings"

	"rencontre_backend/internal/imageprocessor"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/repositories"
	"rencontre_backend/internal/services/dto"
	"rencontre_backend/pkg/apperrors"

	"gorm.io/gorm"
)

type UserService interface {
	GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error)
	UpdateMe(db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error)
	UpdateAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserResponse, error)
}

type userService struct {
	userRepo repositories.UserRepository
	media    MediaService
}

func NewUserService(userRepo repositories.UserRepository, media MediaService) UserService {
	return &userService{
		userRepo: userRepo,
		media:    media,
	}
}

func (s *userService) GetMe(db *gorm.DB, userID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}
	return dto.NewUserResponse(user, s.media.URL(ctxOf(db), user.Avatar)), nil
}

func (s *userService) UpdateMe(db *gorm.DB, userID string, req *dto.UpdateMeRequest) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	if req.Username != nil {
		user.Username = strings.TrimSpace(*req.Username)
	}
	if req.FirstName != nil {
		user.FirstName = strings.TrimSpace(*req.FirstName)
	}
	if req.LastName != nil {
		user.LastName = strings.TrimSpace(*req.LastName)
	}

	if err := s.userRepo.Update(db, user); err != nil {
		return nil, apperrors.InternalError(err)
	}
	return dto.NewUserResponse(user, s.media.URL(ctxOf(db), user.Avatar)), nil
}

// UpdateAvatar - новый файл сохраняется до записи в БД, старый удаляется после
func (s *userService) UpdateAvatar(ctx context.Context, db *gorm.DB, userID string, file *multipart.FileHeader) (*dto.UserResponse, error) {
	user, err := s.userRepo.FindByID(db, userID)
	if err != nil {
		return nil, handleUserError(err)
	}

	stored, err := s.media.SaveImage(ctx, file, "avatars", imageprocessor.SizeAvatar)
	if err != nil {
		return nil, err
	}

	oldAvatar := user.Avatar
	if err := s.userRepo.UpdateFields(db, userID, map[string]interface{}{"avatar": stored.Path}); err != nil {
		s.media.Delete(ctx, stored.Path)
		return nil, handleUserError(err)
	}
	user.Avatar = stored.Path

	s.media.Delete(ctx, oldAvatar)
	logger.CtxInfo(ctx, "avatar updated", "user_id", userID)

	return dto.NewUserResponse(user, s.media.URL(ctx, user.Avatar)), nil
}

func handleUserError(err error) error {
	if errors.Is(err, repositories.ErrUserNotFound) {
		return apperrors.NewNotFoundError("user", "User not found")
	}
	return apperrors.InternalError(err)
}
