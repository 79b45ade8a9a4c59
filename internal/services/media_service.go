package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"path/filepath"
	"strings"

	"rencontre_backend/internal/imageprocessor"
	"rencontre_backend/internal/logger"
	"rencontre_backend/internal/storage"
	"rencontre_backend/pkg/apperrors"
)

// StoredFile - результат сохранения файла
type StoredFile struct {
	Path     string
	MimeType string
	Size     int64
}

// MediaService - сохранение загруженных файлов и картинок в Storage
type MediaService interface {
	// SaveImage проверяет тип, ужимает картинку до size и сохраняет под prefix
	SaveImage(ctx context.Context, file *multipart.FileHeader, prefix string, size imageprocessor.ImageSize) (*StoredFile, error)
	// SaveFile сохраняет файл как есть, проверяется только размер
	SaveFile(ctx context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error)
	Delete(ctx context.Context, path string)
	URL(ctx context.Context, path string) string
	SignedURL(ctx context.Context, path string) (string, error)
}

type MediaConfig struct {
	MaxFileSize  int64
	AllowedTypes []string
}

type mediaService struct {
	storage storage.Storage
	images  *imageprocessor.Processor
	config  MediaConfig
}

func NewMediaService(st storage.Storage, images *imageprocessor.Processor, config MediaConfig) MediaService {
	if config.MaxFileSize <= 0 {
		config.MaxFileSize = 10 * 1024 * 1024
	}
	return &mediaService{
		storage: st,
		images:  images,
		config:  config,
	}
}

func (s *mediaService) SaveImage(ctx context.Context, file *multipart.FileHeader, prefix string, size imageprocessor.ImageSize) (*StoredFile, error) {
	if file == nil {
		return nil, apperrors.ErrFileRequired
	}
	if err := s.validateFile(file); err != nil {
		return nil, err
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	result, err := s.images.Fit(src, size)
	if err != nil {
		return nil, apperrors.ErrInvalidFileType.WithError(err)
	}

	name := strings.TrimSuffix(file.Filename, filepath.Ext(file.Filename)) + result.Ext
	path := storage.ObjectKey(prefix, name)
	if err := s.storage.Save(ctx, path, bytes.NewReader(result.Data), result.ContentType); err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to save file to storage: %w", err))
	}

	return &StoredFile{Path: path, MimeType: result.ContentType, Size: int64(len(result.Data))}, nil
}

func (s *mediaService) SaveFile(ctx context.Context, file *multipart.FileHeader, prefix string) (*StoredFile, error) {
	if file == nil {
		return nil, apperrors.ErrFileRequired
	}
	if file.Size > s.config.MaxFileSize {
		return nil, apperrors.ErrFileTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to open uploaded file: %w", err))
	}
	defer src.Close()

	mimeType := detectMimeType(file)
	path := storage.ObjectKey(prefix, file.Filename)
	if err := s.storage.Save(ctx, path, io.LimitReader(src, s.config.MaxFileSize), mimeType); err != nil {
		return nil, apperrors.InternalError(fmt.Errorf("failed to save file to storage: %w", err))
	}

	return &StoredFile{Path: path, MimeType: mimeType, Size: file.Size}, nil
}

// Delete - ошибка удаления только логируется, запись в БД важнее файла
func (s *mediaService) Delete(ctx context.Context, path string) {
	if path == "" {
		return
	}
	if err := s.storage.Delete(ctx, path); err != nil {
		logger.CtxWithError(ctx, "failed to delete stored file", err, "path", path)
	}
}

func (s *mediaService) URL(ctx context.Context, path string) string {
	if path == "" {
		return ""
	}
	url, err := s.storage.GetURL(ctx, path)
	if err != nil {
		logger.CtxWithError(ctx, "failed to build file url", err, "path", path)
		return ""
	}
	return url
}

func (s *mediaService) SignedURL(ctx context.Context, path string) (string, error) {
	return s.storage.GetSignedURL(ctx, path, signedURLExpiry)
}

func (s *mediaService) validateFile(file *multipart.FileHeader) error {
	if file.Size > s.config.MaxFileSize {
		return apperrors.ErrFileTooLarge
	}
	if len(s.config.AllowedTypes) > 0 && !contains(s.config.AllowedTypes, detectMimeType(file)) {
		return apperrors.ErrInvalidFileType
	}
	return nil
}

func detectMimeType(file *multipart.FileHeader) string {
	mimeType := file.Header.Get("Content-Type")
	if mimeType == "" || mimeType == "application/octet-stream" {
		mimeType = getMimeTypeFromFilename(file.Filename)
	}
	return mimeType
}

func getMimeTypeFromFilename(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	mimeTypes := map[string]string{
		".jpg":  "image/jpeg",
		".jpeg": "image/jpeg",
		".png":  "image/png",
		".gif":  "image/gif",
		".webp": "image/webp",
		".pdf":  "application/pdf",
		".doc":  "application/msword",
		".docx": "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
	}

	if mime, ok := mimeTypes[ext]; ok {
		return mime
	}
	return "application/octet-stream"
}

func contains(slice []string, item string) bool {
	for _, s := range slice {
		if s == item {
			return true
		}
	}
	return false
}
