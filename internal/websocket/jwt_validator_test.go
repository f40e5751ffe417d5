package websocket

import (
	"context"
	"errors"
	"testing"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

type mockCompanyLookup struct {
	companyID uuid.UUID
	err       error
}

func (m *mockCompanyLookup) ResolveCompanyID(ctx context.Context, identity domain.Identity) (uuid.UUID, error) {
	return m.companyID, m.err
}

func TestErrorMessages(t *testing.T) {
	assert.Equal(t, "company not found", ErrCompanyNotFound.Error())
	assert.Equal(t, "invalid token", ErrInvalidToken.Error())
}

func TestCustomClaims_Validate(t *testing.T) {
	claims := &CustomClaims{}
	assert.NoError(t, claims.Validate(context.Background()))
}

func TestNewAuth0JWTValidator_Success(t *testing.T) {
	lookup := &mockCompanyLookup{companyID: uuid.New()}

	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.canteiro.app", lookup)
	assert.NoError(t, err)
	assert.NotNil(t, v)
	assert.NotNil(t, v.validator)
	assert.Equal(t, lookup, v.companyLookup)
}

func TestAuth0JWTValidator_ValidateToken_InvalidJWT(t *testing.T) {
	lookup := &mockCompanyLookup{companyID: uuid.New()}

	v, err := NewAuth0JWTValidator("test.auth0.com", "https://api.canteiro.app", lookup)
	assert.NoError(t, err)

	companyID, err := v.ValidateToken(context.Background(), "invalid-token")
	assert.Error(t, err)
	assert.Equal(t, uuid.Nil, companyID)
	assert.True(t, errors.Is(err, ErrInvalidToken))
}
