package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/dafibh/canteiro/canteiro-backend/internal/service"
	"github.com/dafibh/canteiro/canteiro-backend/internal/testutil"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

// setupAuthContext puts what the auth middleware would on the request. A nil companyID
// leaves the company out, as for a request that never went through the middleware.
func setupAuthContext(c echo.Context, auth0ID string, companyID uuid.UUID, custom *middleware.CustomClaims) {
	if custom == nil {
		custom = &middleware.CustomClaims{}
	}
	claims := &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{Subject: auth0ID},
		CustomClaims:     custom,
	}
	ctx := context.WithValue(c.Request().Context(), middleware.ClaimsKey, claims)
	ctx = context.WithValue(ctx, middleware.Auth0IDKey, auth0ID)
	if companyID != uuid.Nil {
		ctx = context.WithValue(ctx, middleware.CompanyIDKey, companyID)
	}
	c.SetRequest(c.Request().WithContext(ctx))
}

func jsonRequest(t *testing.T, method, target string, body interface{}) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	return req
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v), rec.Body.String())
}

func decodeProblem(t *testing.T, rec *httptest.ResponseRecorder) ProblemDetails {
	t.Helper()
	var p ProblemDetails
	decode(t, rec, &p)
	return p
}

// fixture wires real services over in-memory repositories for one company
type fixture struct {
	e            *echo.Echo
	companyID    uuid.UUID
	companies    *testutil.MockCompanyRepository
	users        *testutil.MockUserRepository
	projects     *testutil.MockProjectRepository
	categories   *testutil.MockCategoryRepository
	transactions *testutil.MockTransactionRepository
	store        *testutil.MockObjectStorage
	publisher    *testutil.MockEventPublisher

	auth        *service.AuthService
	project     *service.ProjectService
	category    *service.CategoryService
	transaction *service.TransactionService
	dashboard   *service.DashboardService
	logo        *service.LogoService
}

func newFixture() *fixture {
	f := &fixture{
		e:            echo.New(),
		companyID:    uuid.New(),
		companies:    testutil.NewMockCompanyRepository(),
		projects:     testutil.NewMockProjectRepository(),
		categories:   testutil.NewMockCategoryRepository(),
		transactions: testutil.NewMockTransactionRepository(),
		store:        testutil.NewMockObjectStorage(),
		publisher:    testutil.NewMockEventPublisher(),
	}
	f.users = testutil.NewMockUserRepository(f.companies)
	f.companies.AddCompany(&domain.Company{ID: f.companyID, Name: "Obra Viva"})

	f.auth = service.NewAuthService(f.users, f.companies)
	f.project = service.NewProjectService(f.projects)
	f.category = service.NewCategoryService(f.categories)
	f.transaction = service.NewTransactionService(f.transactions, f.projects, f.categories)
	f.dashboard = service.NewDashboardService(f.transactions, f.projects, f.categories)
	f.logo = service.NewLogoService(f.store, f.companies)

	f.project.SetEventPublisher(f.publisher)
	f.category.SetEventPublisher(f.publisher)
	f.transaction.SetEventPublisher(f.publisher)
	f.logo.SetEventPublisher(f.publisher)
	return f
}

// call runs h as the fixture company's user
func (f *fixture) call(req *http.Request, h echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	return f.callAs(f.companyID, req, h, params...)
}

// callAs runs h with the given company in context. params are name, value pairs.
func (f *fixture) callAs(companyID uuid.UUID, req *http.Request, h echo.HandlerFunc, params ...string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	c := f.e.NewContext(req, rec)
	setupAuthContext(c, "auth0|owner", companyID, nil)

	var names, values []string
	for i := 0; i+1 < len(params); i += 2 {
		names = append(names, params[i])
		values = append(values, params[i+1])
	}
	c.SetParamNames(names...)
	c.SetParamValues(values...)

	if err := h(c); err != nil {
		f.e.HTTPErrorHandler(err, c)
	}
	return rec
}

func (f *fixture) addCategory(name string, txType domain.TransactionType) *domain.Category {
	cat := &domain.Category{ID: uuid.New(), CompanyID: f.companyID, Name: name, Type: txType}
	f.categories.AddCategory(cat)
	return cat
}

func (f *fixture) addProject(name string) *domain.Project {
	p := &domain.Project{ID: uuid.New(), CompanyID: f.companyID, Name: name}
	f.projects.AddProject(p)
	return p
}
