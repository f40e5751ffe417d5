package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tokenValidator accepts a fixed set of tokens, each mapped to a subject
type tokenValidator map[string]string

func (v tokenValidator) ValidateToken(ctx context.Context, token string) (interface{}, error) {
	subject, ok := v[token]
	if !ok {
		return nil, errors.New("unknown token")
	}
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: subject},
		CustomClaims:     &middleware.CustomClaims{Email: subject + "@example.com", CompanyName: "Construtora " + subject},
	}, nil
}

func newRouter(t *testing.T, f *fixture) *echo.Echo {
	t.Helper()
	auth := middleware.NewAuthMiddlewareWithValidator(tokenValidator{"t-ana": "ana", "t-bia": "bia"}, f.auth)

	e := echo.New()
	RegisterRoutes(e, auth, nil, Handlers{
		Auth:        NewAuthHandler(f.auth),
		Company:     NewCompanyHandler(f.auth, f.logo),
		Project:     NewProjectHandler(f.project),
		Category:    NewCategoryHandler(f.category),
		Transaction: NewTransactionHandler(f.transaction),
		Period:      NewPeriodHandler(),
		Dashboard:   NewDashboardHandler(f.dashboard),
	})
	return e
}

func serve(e *echo.Echo, req *http.Request, token string) *httptest.ResponseRecorder {
	if token != "" {
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_RequireToken(t *testing.T) {
	e := newRouter(t, newFixture())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil), "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil), "forged")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRoutes_TenantsAreIsolated(t *testing.T) {
	f := newFixture()
	e := newRouter(t, f)

	rec := serve(e, jsonRequest(t, http.MethodPost, "/api/v1/projects", map[string]string{"name": "Aurora"}), "t-ana")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var created ProjectResponse
	decode(t, rec, &created)

	// the first request of a subject provisions its company
	assert.Len(t, f.users.Users, 1)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/projects", nil), "t-bia")
	require.Equal(t, http.StatusOK, rec.Code)
	var listed []ProjectResponse
	decode(t, rec, &listed)
	assert.Empty(t, listed)
	assert.Len(t, f.users.Users, 2)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/projects/"+created.ID, nil), "t-bia")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/projects/"+created.ID, nil), "t-ana")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRoutes_InstallmentGroupBeforeID(t *testing.T) {
	f := newFixture()
	e := newRouter(t, f)

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/transactions/installments/"+uuid.NewString(), nil), "t-ana")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, ErrorTypeNotFound, decodeProblem(t, rec).Type)
}

func TestRoutes_CallbackAndDashboard(t *testing.T) {
	f := newFixture()
	e := newRouter(t, f)

	rec := serve(e, httptest.NewRequest(http.MethodPost, "/api/v1/auth/callback", nil), "t-ana")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var callback AuthCallbackResponse
	decode(t, rec, &callback)
	assert.Equal(t, "Construtora ana", callback.Company.Name)
	assert.Equal(t, "ana@example.com", callback.User.Email)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/dashboard?mode=all", nil), "t-ana")
	require.Equal(t, http.StatusOK, rec.Code)
	var dashboard DashboardResponse
	decode(t, rec, &dashboard)
	assert.False(t, dashboard.EmptyState.HasTransactions)

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/api/v1/periods?mode=week", nil), "t-ana")
	assert.Equal(t, http.StatusOK, rec.Code)

	companyIDs := map[uuid.UUID]bool{}
	for _, u := range f.users.Users {
		companyIDs[u.CompanyID] = true
	}
	assert.Len(t, companyIDs, 1)
	assert.NotContains(t, companyIDs, f.companyID)
}

func TestRoutes_APIDocsArePublic(t *testing.T) {
	e := newRouter(t, newFixture())

	rec := serve(e, httptest.NewRequest(http.MethodGet, "/swagger/doc.json", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var swagger2 struct {
		BasePath string                 `json:"basePath"`
		Paths    map[string]interface{} `json:"paths"`
	}
	decode(t, rec, &swagger2)
	assert.Equal(t, "/api/v1", swagger2.BasePath)
	assert.Contains(t, swagger2.Paths, "/transactions")
	assert.Contains(t, swagger2.Paths, "/dashboard")

	rec = serve(e, httptest.NewRequest(http.MethodGet, "/openapi.json", nil), "")
	require.Equal(t, http.StatusOK, rec.Code)
	var openapi OpenAPI3Spec
	decode(t, rec, &openapi)
	assert.Equal(t, "3.0.3", openapi.OpenAPI)
	require.Len(t, openapi.Servers, 1)
	assert.Equal(t, "http://example.com/api/v1", openapi.Servers[0].URL)
}
