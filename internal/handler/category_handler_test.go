package handler

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateCategory(t *testing.T) {
	f := newFixture()
	h := NewCategoryHandler(f.category)

	rec := f.call(jsonRequest(t, http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "Cimento", Type: "expense"}), h.CreateCategory)

	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var response CategoryResponse
	decode(t, rec, &response)
	assert.Equal(t, "Cimento", response.Name)
	assert.Equal(t, "EXPENSE", response.Type)
}

func TestCreateCategory_Duplicate(t *testing.T) {
	f := newFixture()
	f.addCategory("Cimento", domain.TransactionTypeExpense)
	h := NewCategoryHandler(f.category)

	rec := f.call(jsonRequest(t, http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "CIMENTO", Type: "EXPENSE"}), h.CreateCategory)
	assert.Equal(t, http.StatusConflict, rec.Code)

	// same name, other type
	rec = f.call(jsonRequest(t, http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "Cimento", Type: "INCOME"}), h.CreateCategory)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestCreateCategory_InvalidType(t *testing.T) {
	f := newFixture()
	h := NewCategoryHandler(f.category)

	rec := f.call(jsonRequest(t, http.MethodPost, "/api/v1/categories", CategoryRequest{Name: "X", Type: "TRANSFER"}), h.CreateCategory)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "type", decodeProblem(t, rec).Errors[0].Field)
}

func TestGetCategories_TypeFilter(t *testing.T) {
	f := newFixture()
	f.addCategory("Vendas", domain.TransactionTypeIncome)
	f.addCategory("Areia", domain.TransactionTypeExpense)
	f.addCategory("Brita", domain.TransactionTypeExpense)
	h := NewCategoryHandler(f.category)

	rec := f.call(httptest.NewRequest(http.MethodGet, "/api/v1/categories?type=EXPENSE", nil), h.GetCategories)

	require.Equal(t, http.StatusOK, rec.Code)
	var response []CategoryResponse
	decode(t, rec, &response)
	require.Len(t, response, 2)
	assert.Equal(t, "Areia", response[0].Name)
	assert.Equal(t, "Brita", response[1].Name)

	rec = f.call(httptest.NewRequest(http.MethodGet, "/api/v1/categories?type=bogus", nil), h.GetCategories)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestUpdateCategory_TypeLocked(t *testing.T) {
	f := newFixture()
	cat := f.addCategory("Aluguel", domain.TransactionTypeExpense)
	f.categories.InUse[cat.ID] = true
	h := NewCategoryHandler(f.category)

	rec := f.call(jsonRequest(t, http.MethodPut, "/", CategoryRequest{Name: "Aluguel", Type: "INCOME"}), h.UpdateCategory, "id", cat.ID.String())
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = f.call(jsonRequest(t, http.MethodPut, "/", CategoryRequest{Name: "Aluguel de equipamento", Type: "EXPENSE"}), h.UpdateCategory, "id", cat.ID.String())
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Aluguel de equipamento", f.categories.Categories[cat.ID].Name)
}

func TestDeleteCategory(t *testing.T) {
	f := newFixture()
	used := f.addCategory("Used", domain.TransactionTypeExpense)
	f.categories.InUse[used.ID] = true
	h := NewCategoryHandler(f.category)

	rec := f.call(httptest.NewRequest(http.MethodDelete, "/", nil), h.DeleteCategory, "id", used.ID.String())
	assert.Equal(t, http.StatusConflict, rec.Code)

	f.categories.InUse[used.ID] = false
	rec = f.call(httptest.NewRequest(http.MethodDelete, "/", nil), h.DeleteCategory, "id", used.ID.String())
	assert.Equal(t, http.StatusNoContent, rec.Code)
}
