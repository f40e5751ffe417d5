package middleware

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email       string `json:"email"`
	Name        string `json:"name"`
	CompanyName string `json:"company_name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// contextKey is a custom type for context keys to avoid collisions
type contextKey string

const (
	// ClaimsKey is the context key for JWT claims
	ClaimsKey contextKey = "claims"
	// Auth0IDKey is the context key for the Auth0 user ID (subject)
	Auth0IDKey contextKey = "auth0_id"
	// CompanyIDKey is the context key for the caller's company
	CompanyIDKey contextKey = "company_id"
)

// TokenValidator validates a raw bearer token and returns its claims
type TokenValidator interface {
	ValidateToken(ctx context.Context, token string) (interface{}, error)
}

// CompanyResolver maps an authenticated identity to its company, provisioning one on first access
type CompanyResolver interface {
	ResolveCompanyID(ctx context.Context, identity domain.Identity) (uuid.UUID, error)
}

// AuthMiddleware provides JWT validation middleware
type AuthMiddleware struct {
	validator TokenValidator
	resolver  CompanyResolver
}

// NewAuthMiddleware creates a new AuthMiddleware with Auth0 configuration
func NewAuthMiddleware(auth0Domain, audience string, resolver CompanyResolver) (*AuthMiddleware, error) {
	issuerURL, err := url.Parse("https://" + auth0Domain + "/")
	if err != nil {
		return nil, err
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{audience},
		validator.WithCustomClaims(func() validator.CustomClaims {
			return &CustomClaims{}
		}),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		return nil, err
	}

	return NewAuthMiddlewareWithValidator(jwtValidator, resolver), nil
}

// NewAuthMiddlewareWithValidator creates an AuthMiddleware around an existing validator
func NewAuthMiddlewareWithValidator(v TokenValidator, resolver CompanyResolver) *AuthMiddleware {
	return &AuthMiddleware{validator: v, resolver: resolver}
}

// Authenticate returns an Echo middleware that validates the bearer token and
// attaches the caller's company to the request context
func (m *AuthMiddleware) Authenticate() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return unauthorizedError(c, "Missing authorization header")
			}

			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" || parts[1] == "" {
				return unauthorizedError(c, "Invalid authorization header format")
			}

			claims, err := m.validator.ValidateToken(c.Request().Context(), parts[1])
			if err != nil {
				log.Debug().Err(err).Msg("Token validation failed")
				return unauthorizedError(c, "Invalid token")
			}

			validatedClaims, ok := claims.(*validator.ValidatedClaims)
			if !ok {
				return unauthorizedError(c, "Invalid claims")
			}

			identity := domain.Identity{Subject: validatedClaims.RegisteredClaims.Subject}
			if custom, ok := validatedClaims.CustomClaims.(*CustomClaims); ok {
				identity.Email = custom.Email
				identity.Name = custom.Name
				identity.CompanyName = custom.CompanyName
			}

			ctx := context.WithValue(c.Request().Context(), ClaimsKey, validatedClaims)
			ctx = context.WithValue(ctx, Auth0IDKey, identity.Subject)

			companyID, err := m.resolver.ResolveCompanyID(ctx, identity)
			if err != nil {
				if errors.Is(err, domain.ErrUnauthorized) {
					return unauthorizedError(c, "Token has no subject")
				}
				log.Error().Err(err).Str("auth0_id", identity.Subject).Msg("Company lookup failed")
				return internalError(c, "Failed to resolve company")
			}
			ctx = context.WithValue(ctx, CompanyIDKey, companyID)

			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

// GetAuth0ID extracts the Auth0 user ID from the context
func GetAuth0ID(c echo.Context) string {
	if id, ok := c.Request().Context().Value(Auth0IDKey).(string); ok {
		return id
	}
	return ""
}

// GetClaims extracts the validated claims from the context
func GetClaims(c echo.Context) *validator.ValidatedClaims {
	if claims, ok := c.Request().Context().Value(ClaimsKey).(*validator.ValidatedClaims); ok {
		return claims
	}
	return nil
}

// GetCustomClaims extracts the custom claims from the context
func GetCustomClaims(c echo.Context) *CustomClaims {
	claims := GetClaims(c)
	if claims == nil {
		return nil
	}
	if custom, ok := claims.CustomClaims.(*CustomClaims); ok {
		return custom
	}
	return nil
}

// GetIdentity rebuilds the caller's identity from the validated claims
func GetIdentity(c echo.Context) domain.Identity {
	identity := domain.Identity{Subject: GetAuth0ID(c)}
	if custom := GetCustomClaims(c); custom != nil {
		identity.Email = custom.Email
		identity.Name = custom.Name
		identity.CompanyName = custom.CompanyName
	}
	return identity
}

// GetCompanyID extracts the company ID from the context
func GetCompanyID(c echo.Context) uuid.UUID {
	if id, ok := c.Request().Context().Value(CompanyIDKey).(uuid.UUID); ok {
		return id
	}
	return uuid.Nil
}
