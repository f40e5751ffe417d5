package handler

import (
	"net/http"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/dafibh/canteiro/canteiro-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// AuthHandler handles authentication-related HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new AuthHandler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// AuthCallbackResponse represents the response from the auth callback
type AuthCallbackResponse struct {
	User      UserResponse    `json:"user"`
	Company   CompanyResponse `json:"company"`
	IsNewUser bool            `json:"isNewUser"`
}

// UserResponse represents a user in API responses
type UserResponse struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

func toUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID.String(), Email: u.Email, Name: u.Name}
}

// Callback godoc
// @Summary Resolve the caller's company
// @Description Called by the frontend after login. Provisions a company and user on first access.
// @Tags auth
// @Produce json
// @Security BearerAuth
// @Success 200 {object} AuthCallbackResponse
// @Failure 401 {object} ProblemDetails
// @Router /auth/callback [post]
func (h *AuthHandler) Callback(c echo.Context) error {
	identity := middleware.GetIdentity(c)
	if identity.Subject == "" {
		log.Error().Msg("No Auth0 ID in context - middleware may not be configured")
		return NewUnauthorizedError(c, "Authentication required")
	}

	result, err := h.authService.ResolveCompany(c.Request().Context(), identity)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", identity.Subject).Msg("Failed to resolve company")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:      toUserResponse(result.User),
		Company:   toCompanyResponse(result.Company),
		IsNewUser: result.IsNewUser,
	})
}

// Me returns the current authenticated user and their company
// GET /auth/me
func (h *AuthHandler) Me(c echo.Context) error {
	auth0ID := middleware.GetAuth0ID(c)
	if auth0ID == "" {
		return NewUnauthorizedError(c, "Authentication required")
	}

	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		log.Error().Str("auth0_id", auth0ID).Msg("No company ID in context")
		return NewInternalError(c, "Company not available")
	}

	ctx := c.Request().Context()
	user, err := h.authService.GetCurrentUser(ctx, auth0ID)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", auth0ID).Msg("Failed to get user")
		return NewNotFoundError(c, "User not found")
	}

	company, err := h.authService.GetCompany(ctx, companyID)
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID.String()).Msg("Failed to get company")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, AuthCallbackResponse{
		User:    toUserResponse(user),
		Company: toCompanyResponse(company),
	})
}
