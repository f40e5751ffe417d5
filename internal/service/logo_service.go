package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	"path/filepath"
	"strings"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/repository/storage"
	"github.com/dafibh/canteiro/canteiro-backend/internal/websocket"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	_ "golang.org/x/image/webp"
)

const (
	MaxImageSize   = 5 * 1024 * 1024 // 5MB
	MinImageWidth  = 50
	MinImageHeight = 50
	LogoWidth      = 256
	JPEGQuality    = 85

	LogoURLExpiry = 15 * time.Minute
)

var (
	ErrImageTooLarge            = errors.New("file too large. Maximum size is 5MB")
	ErrInvalidFormat            = errors.New("invalid format. Supported: JPEG, PNG, WebP")
	ErrImageTooSmall            = errors.New("image too small. Minimum 50x50 pixels")
	ErrInvalidImageData         = errors.New("invalid image data")
	ErrLogoStorageNotConfigured = errors.New("logo storage not configured")
	ErrLogoNotSet               = errors.New("company has no logo")
)

// AllowedExtensions maps extensions to content types
var AllowedExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
}

// Logo is a temporary URL to a company's logo
type Logo struct {
	URL       string    `json:"url"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// LogoService stores company logos in object storage
type LogoService struct {
	storage        storage.ObjectStorage
	companyRepo    domain.CompanyRepository
	eventPublisher websocket.EventPublisher
}

// NewLogoService creates a new LogoService. A nil storage disables uploads.
func NewLogoService(store storage.ObjectStorage, companyRepo domain.CompanyRepository) *LogoService {
	return &LogoService{storage: store, companyRepo: companyRepo}
}

// SetEventPublisher sets the event publisher for real-time updates
func (s *LogoService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

// IsEnabled indicates whether object storage is configured
func (s *LogoService) IsEnabled() bool {
	return s != nil && s.storage != nil
}

// ValidateImage checks size, extension, decodability and minimum dimensions
func ValidateImage(data []byte, filename string) (image.Image, error) {
	if len(data) > MaxImageSize {
		return nil, ErrImageTooLarge
	}

	ext := strings.ToLower(filepath.Ext(filename))
	if _, ok := AllowedExtensions[ext]; !ok {
		return nil, ErrInvalidFormat
	}

	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, ErrInvalidImageData
	}

	bounds := img.Bounds()
	if bounds.Dx() < MinImageWidth || bounds.Dy() < MinImageHeight {
		return nil, ErrImageTooSmall
	}
	return img, nil
}

// UploadLogo resizes the image to the logo width, stores it as JPEG and points the
// company at it. The previous logo object is removed on success.
func (s *LogoService) UploadLogo(ctx context.Context, companyID uuid.UUID, data []byte, filename string) (*domain.Company, error) {
	if !s.IsEnabled() {
		return nil, ErrLogoStorageNotConfigured
	}

	img, err := ValidateImage(data, filename)
	if err != nil {
		return nil, err
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	previous := company.LogoPath

	if img.Bounds().Dx() > LogoWidth {
		img = imaging.Resize(img, LogoWidth, 0, imaging.Lanczos)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: JPEGQuality}); err != nil {
		return nil, fmt.Errorf("failed to encode image: %w", err)
	}

	objectPath := fmt.Sprintf("%s/logo/%s.jpg", companyID, uuid.New())
	if _, err := s.storage.Upload(ctx, objectPath, bytes.NewReader(buf.Bytes()), "image/jpeg", int64(buf.Len())); err != nil {
		return nil, err
	}

	updated, err := s.companyRepo.UpdateLogoPath(ctx, companyID, objectPath)
	if err != nil {
		_ = s.storage.Delete(ctx, objectPath)
		return nil, err
	}

	if previous != nil && *previous != objectPath {
		if err := s.storage.Delete(ctx, *previous); err != nil {
			log.Warn().Err(err).Str("company_id", companyID.String()).Str("path", *previous).Msg("Failed to delete previous logo")
		}
	}

	if s.eventPublisher != nil {
		s.eventPublisher.Publish(companyID, websocket.CompanyUpdated(updated))
	}
	return updated, nil
}

// GetLogo returns a presigned URL to the company's logo
func (s *LogoService) GetLogo(ctx context.Context, companyID uuid.UUID) (*Logo, error) {
	if !s.IsEnabled() {
		return nil, ErrLogoStorageNotConfigured
	}

	company, err := s.companyRepo.GetByID(ctx, companyID)
	if err != nil {
		return nil, err
	}
	if company.LogoPath == nil {
		return nil, ErrLogoNotSet
	}

	url, err := s.storage.GeneratePresignedURL(ctx, *company.LogoPath, LogoURLExpiry)
	if err != nil {
		return nil, err
	}
	return &Logo{URL: url, ExpiresAt: time.Now().Add(LogoURLExpiry)}, nil
}
