package handler

import (
	"errors"
	"io"
	"net/http"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/dafibh/canteiro/canteiro-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CompanyHandler serves the caller's company and its logo
type CompanyHandler struct {
	authService *service.AuthService
	logoService *service.LogoService
}

// NewCompanyHandler creates a new CompanyHandler. logoService may be disabled.
func NewCompanyHandler(authService *service.AuthService, logoService *service.LogoService) *CompanyHandler {
	return &CompanyHandler{authService: authService, logoService: logoService}
}

// CompanyResponse represents a company in API responses
type CompanyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	HasLogo   bool   `json:"hasLogo"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// LogoResponse is a temporary link to the company logo
type LogoResponse struct {
	URL       string `json:"url"`
	ExpiresAt string `json:"expiresAt"`
}

func toCompanyResponse(c *domain.Company) CompanyResponse {
	return CompanyResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		HasLogo:   c.LogoPath != nil,
		CreatedAt: formatTimestamp(c.CreatedAt),
		UpdatedAt: formatTimestamp(c.UpdatedAt),
	}
}

// GetCompany godoc
// @Summary Get the caller's company
// @Tags company
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CompanyResponse
// @Failure 401 {object} ProblemDetails
// @Router /company [get]
func (h *CompanyHandler) GetCompany(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	company, err := h.authService.GetCompany(c.Request().Context(), companyID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toCompanyResponse(company))
}

// UploadLogo godoc
// @Summary Replace the company logo
// @Description Accepts a JPEG, PNG or WebP image in the multipart field "file". The image is resized to 256px wide.
// @Tags company
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Success 200 {object} CompanyResponse
// @Failure 400 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /company/logo [put]
func (h *CompanyHandler) UploadLogo(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	// Storage is optional; without it there is nothing to upload to
	if !h.logoService.IsEnabled() {
		return NewServiceUnavailableError(c, "Logo uploads are disabled (storage not configured)")
	}

	file, err := c.FormFile("file")
	if err != nil {
		return NewFieldError(c, "file", "File is required")
	}

	src, err := file.Open()
	if err != nil {
		log.Error().Err(err).Msg("Failed to open uploaded file")
		return NewInternalError(c, "Failed to process file")
	}
	defer src.Close()

	// One byte past the limit is enough to reject the upload
	data, err := io.ReadAll(io.LimitReader(src, service.MaxImageSize+1))
	if err != nil {
		log.Error().Err(err).Msg("Failed to read uploaded file")
		return NewInternalError(c, "Failed to read file")
	}

	company, err := h.logoService.UploadLogo(c.Request().Context(), companyID, data, file.Filename)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrImageTooLarge):
			return NewFieldError(c, "file", "File too large. Maximum size is 5MB")
		case errors.Is(err, service.ErrInvalidFormat):
			return NewFieldError(c, "file", "Invalid format. Supported: JPEG, PNG, WebP")
		case errors.Is(err, service.ErrImageTooSmall):
			return NewFieldError(c, "file", "Image too small. Minimum 50x50 pixels")
		case errors.Is(err, service.ErrInvalidImageData):
			return NewFieldError(c, "file", "Invalid image data")
		}
		log.Error().Err(err).Str("company_id", companyID.String()).Msg("Failed to upload logo")
		return respondError(c, err)
	}

	log.Info().Str("company_id", companyID.String()).Msg("Company logo uploaded")
	return c.JSON(http.StatusOK, toCompanyResponse(company))
}

// GetLogo godoc
// @Summary Get a temporary URL to the company logo
// @Tags company
// @Produce json
// @Security BearerAuth
// @Success 200 {object} LogoResponse
// @Failure 404 {object} ProblemDetails
// @Failure 503 {object} ProblemDetails
// @Router /company/logo [get]
func (h *CompanyHandler) GetLogo(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	logo, err := h.logoService.GetLogo(c.Request().Context(), companyID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrLogoStorageNotConfigured):
			return NewServiceUnavailableError(c, "Logo storage not configured")
		case errors.Is(err, service.ErrLogoNotSet):
			return NewNotFoundError(c, "Company has no logo")
		}
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, LogoResponse{
		URL:       logo.URL,
		ExpiresAt: formatTimestamp(logo.ExpiresAt),
	})
}
