package websocket

import (
	"context"
	"errors"
	"net/url"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned when JWT validation fails
var ErrInvalidToken = errors.New("invalid token")

// ErrCompanyNotFound is returned when the token subject has no company
var ErrCompanyNotFound = errors.New("company not found")

// CompanyLookup resolves (and provisions on first access) the company behind an identity
type CompanyLookup interface {
	ResolveCompanyID(ctx context.Context, identity domain.Identity) (uuid.UUID, error)
}

// CustomClaims contains the custom claims from Auth0 JWT
type CustomClaims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// Validate implements validator.CustomClaims
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// Auth0JWTValidator validates the token passed on the websocket query string
type Auth0JWTValidator struct {
	validator     *validator.Validator
	companyLookup CompanyLookup
}

// NewAuth0JWTValidator creates a new Auth0JWTValidator
func NewAuth0JWTValidator(auth0Domain, audience string, companyLookup CompanyLookup) (*Auth0JWTValidator, error) {
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

	return &Auth0JWTValidator{
		validator:     jwtValidator,
		companyLookup: companyLookup,
	}, nil
}

// ValidateToken validates a JWT and returns the caller's company ID
func (v *Auth0JWTValidator) ValidateToken(ctx context.Context, token string) (uuid.UUID, error) {
	claims, err := v.validator.ValidateToken(ctx, token)
	if err != nil {
		return uuid.Nil, ErrInvalidToken
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return uuid.Nil, ErrInvalidToken
	}

	identity := domain.Identity{Subject: validatedClaims.RegisteredClaims.Subject}
	if custom, ok := validatedClaims.CustomClaims.(*CustomClaims); ok {
		identity.Email = custom.Email
		identity.Name = custom.Name
	}

	companyID, err := v.companyLookup.ResolveCompanyID(ctx, identity)
	if err != nil {
		return uuid.Nil, ErrCompanyNotFound
	}
	return companyID, nil
}
