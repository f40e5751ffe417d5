package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAuthService() (*AuthService, *testutil.MockUserRepository, *testutil.MockCompanyRepository) {
	companyRepo := testutil.NewMockCompanyRepository()
	userRepo := testutil.NewMockUserRepository(companyRepo)
	return NewAuthService(userRepo, companyRepo), userRepo, companyRepo
}

func TestResolveCompany_ExistingUser(t *testing.T) {
	svc, userRepo, companyRepo := newAuthService()
	company := &domain.Company{ID: uuid.New(), Name: "Acme Builders"}
	companyRepo.AddCompany(company)
	userRepo.AddUser(&domain.User{ID: uuid.New(), Auth0ID: "auth0|1", CompanyID: company.ID})

	result, err := svc.ResolveCompany(context.Background(), domain.Identity{Subject: "auth0|1"})

	require.NoError(t, err)
	assert.False(t, result.IsNewUser)
	assert.Equal(t, company.ID, result.Company.ID)
	assert.Equal(t, 0, userRepo.CreateCalls)
}

func TestResolveCompany_ProvisionsOnFirstAccess(t *testing.T) {
	svc, userRepo, _ := newAuthService()

	result, err := svc.ResolveCompany(context.Background(), domain.Identity{
		Subject: "auth0|new",
		Email:   "maria@obra.com",
		Name:    "Maria",
	})

	require.NoError(t, err)
	assert.True(t, result.IsNewUser)
	assert.Equal(t, "Maria's Company", result.Company.Name)
	assert.Equal(t, "Maria", result.User.Name)
	assert.Equal(t, result.Company.ID, result.User.CompanyID)
	assert.Equal(t, 1, userRepo.CreateCalls)

	// second access reuses the provisioned company
	again, err := svc.ResolveCompany(context.Background(), domain.Identity{Subject: "auth0|new"})
	require.NoError(t, err)
	assert.False(t, again.IsNewUser)
	assert.Equal(t, result.Company.ID, again.Company.ID)
	assert.Equal(t, 1, userRepo.CreateCalls)
}

func TestResolveCompany_ProvisionNames(t *testing.T) {
	tests := []struct {
		name        string
		identity    domain.Identity
		wantUser    string
		wantCompany string
	}{
		{"explicit company name", domain.Identity{Subject: "s", Name: "Ana", CompanyName: "Ana Engenharia"}, "Ana", "Ana Engenharia"},
		{"name from email", domain.Identity{Subject: "s", Email: "joao@site.com"}, "joao", "joao's Company"},
		{"fallback name", domain.Identity{Subject: "s"}, "User", "User's Company"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, _ := newAuthService()
			result, err := svc.ResolveCompany(context.Background(), tt.identity)
			require.NoError(t, err)
			assert.Equal(t, tt.wantUser, result.User.Name)
			assert.Equal(t, tt.wantCompany, result.Company.Name)
		})
	}
}

func TestResolveCompany_LongCompanyNameTruncated(t *testing.T) {
	svc, _, _ := newAuthService()

	result, err := svc.ResolveCompany(context.Background(), domain.Identity{
		Subject:     "s",
		CompanyName: strings.Repeat("x", domain.MaxCompanyNameLength+10),
	})

	require.NoError(t, err)
	assert.Len(t, result.Company.Name, domain.MaxCompanyNameLength)
}

func TestResolveCompany_TruncationKeepsWholeCharacters(t *testing.T) {
	svc, _, _ := newAuthService()

	result, err := svc.ResolveCompany(context.Background(), domain.Identity{
		Subject:     "s",
		CompanyName: strings.Repeat("ê", domain.MaxCompanyNameLength+10),
	})

	require.NoError(t, err)
	assert.True(t, utf8.ValidString(result.Company.Name))
	assert.Equal(t, domain.MaxCompanyNameLength, utf8.RuneCountInString(result.Company.Name))
}

func TestResolveCompany_EmptySubject(t *testing.T) {
	svc, _, _ := newAuthService()

	_, err := svc.ResolveCompany(context.Background(), domain.Identity{})

	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestResolveCompany_LookupErrorNotProvisioned(t *testing.T) {
	svc, userRepo, _ := newAuthService()
	userRepo.GetErr = errors.New("connection refused")

	_, err := svc.ResolveCompany(context.Background(), domain.Identity{Subject: "s"})

	assert.Error(t, err)
	assert.Equal(t, 0, userRepo.CreateCalls)
}

func TestResolveCompanyID(t *testing.T) {
	svc, _, _ := newAuthService()

	id, err := svc.ResolveCompanyID(context.Background(), domain.Identity{Subject: "s"})

	require.NoError(t, err)
	assert.NotEqual(t, uuid.Nil, id)

	company, err := svc.GetCompany(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, company.ID)
}
