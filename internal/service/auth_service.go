package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

const defaultUserName = "User"

// AuthService maps identity-provider subjects to users and their company
type AuthService struct {
	userRepo    domain.UserRepository
	companyRepo domain.CompanyRepository
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, companyRepo domain.CompanyRepository) *AuthService {
	return &AuthService{
		userRepo:    userRepo,
		companyRepo: companyRepo,
	}
}

// AuthResult represents the result of an authentication operation
type AuthResult struct {
	User      *domain.User
	Company   *domain.Company
	IsNewUser bool
}

// ResolveCompany returns the user and company behind an identity.
// Unknown subjects get a fresh company and user on first access.
func (s *AuthService) ResolveCompany(ctx context.Context, identity domain.Identity) (*AuthResult, error) {
	if identity.Subject == "" {
		return nil, domain.ErrUnauthorized
	}

	user, err := s.userRepo.GetByAuth0ID(ctx, identity.Subject)
	if err == nil {
		company, err := s.companyRepo.GetByID(ctx, user.CompanyID)
		if err != nil {
			log.Error().Err(err).Str("user_id", user.ID.String()).Msg("Failed to get company of user")
			return nil, err
		}
		return &AuthResult{User: user, Company: company}, nil
	}
	if !errors.Is(err, domain.ErrUserNotFound) {
		log.Error().Err(err).Str("auth0_id", identity.Subject).Msg("Failed to get user")
		return nil, err
	}

	log.Info().Str("auth0_id", identity.Subject).Msg("User record missing, provisioning company")

	userName := provisionedUserName(identity)
	companyName := strings.TrimSpace(identity.CompanyName)
	if companyName == "" {
		companyName = fmt.Sprintf("%s's Company", userName)
	}
	if runes := []rune(companyName); len(runes) > domain.MaxCompanyNameLength {
		companyName = string(runes[:domain.MaxCompanyNameLength])
	}

	user, company, err := s.userRepo.CreateWithCompany(ctx,
		&domain.Company{Name: companyName},
		&domain.User{Auth0ID: identity.Subject, Email: identity.Email, Name: userName},
	)
	if err != nil {
		log.Error().Err(err).Str("auth0_id", identity.Subject).Msg("Failed to provision user and company")
		return nil, err
	}

	log.Info().
		Str("user_id", user.ID.String()).
		Str("company_id", company.ID.String()).
		Msg("Created new user with company")
	return &AuthResult{User: user, Company: company, IsNewUser: true}, nil
}

// ResolveCompanyID is ResolveCompany reduced to the tenant id, for auth middleware
func (s *AuthService) ResolveCompanyID(ctx context.Context, identity domain.Identity) (uuid.UUID, error) {
	result, err := s.ResolveCompany(ctx, identity)
	if err != nil {
		return uuid.Nil, err
	}
	return result.Company.ID, nil
}

// GetCurrentUser retrieves a user by their Auth0 ID
func (s *AuthService) GetCurrentUser(ctx context.Context, auth0ID string) (*domain.User, error) {
	return s.userRepo.GetByAuth0ID(ctx, auth0ID)
}

// GetCompany retrieves a company by ID
func (s *AuthService) GetCompany(ctx context.Context, companyID uuid.UUID) (*domain.Company, error) {
	return s.companyRepo.GetByID(ctx, companyID)
}

func provisionedUserName(identity domain.Identity) string {
	if name := strings.TrimSpace(identity.Name); name != "" {
		return name
	}
	if local, _, ok := strings.Cut(identity.Email, "@"); ok && local != "" {
		return local
	}
	return defaultUserName
}
