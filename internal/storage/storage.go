package storage

import (
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"
	"time"

	"rencontre_backend/internal/config"

	"github.com/google/uuid"
)

// Storage defines the interface for file storage operations
type Storage interface {
	// Save stores a file at the given path
	Save(ctx context.Context, path string, reader io.Reader, contentType string) error

	// Get retrieves a file from the given path
	Get(ctx context.Context, path string) (io.ReadCloser, error)

	// Delete removes a file at the given path
	Delete(ctx context.Context, path string) error

	// Exists checks if a file exists at the given path
	Exists(ctx context.Context, path string) (bool, error)

	// GetURL returns a public URL for the file
	GetURL(ctx context.Context, path string) (string, error)

	// GetSignedURL returns a temporary signed URL for private files
	GetSignedURL(ctx context.Context, path string, expiry time.Duration) (string, error)
}

// Config holds storage configuration
type Config struct {
	Type       string // local, s3, cloudflare_r2
	BasePath   string // For local storage
	BaseURL    string // Public URL base
	Bucket     string // For S3/R2
	Region     string // For S3
	AccessKey  string // For S3/R2
	SecretKey  string // For S3/R2
	Endpoint   string // For R2 or custom S3
	PublicRead bool   // Make files public by default
}

// ConfigFromApp maps the application config section
func ConfigFromApp(cfg *config.Config) Config {
	s := cfg.Storage
	return Config{
		Type:       s.Type,
		BasePath:   s.BasePath,
		BaseURL:    s.BaseURL,
		Bucket:     s.Bucket,
		Region:     s.Region,
		AccessKey:  s.AccessKey,
		SecretKey:  s.SecretKey,
		Endpoint:   s.Endpoint,
		PublicRead: s.PublicRead,
	}
}

// NewStorage creates a new storage instance based on configuration
func NewStorage(cfg Config) (Storage, error) {
	switch cfg.Type {
	case "local":
		return NewLocalStorage(cfg)
	case "s3":
		return NewS3Storage(cfg)
	case "cloudflare_r2":
		if cfg.Endpoint == "" {
			return nil, fmt.Errorf("endpoint is required for Cloudflare R2")
		}
		if cfg.Region == "" {
			cfg.Region = "auto"
		}
		if cfg.BaseURL == "" {
			cfg.BaseURL = fmt.Sprintf("https://%s.r2.dev", cfg.Bucket)
		}
		return NewS3Storage(cfg)
	default:
		return nil, fmt.Errorf("unsupported storage type: %s", cfg.Type)
	}
}

// ObjectKey builds "<prefix>/<yyyy/mm>/<uuid><ext>" for an uploaded file name
func ObjectKey(prefix, filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	return path.Join(prefix, time.Now().Format("2006/01"), uuid.NewString()+ext)
}
