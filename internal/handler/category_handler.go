package handler

import (
	"net/http"
	"strings"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/dafibh/canteiro/canteiro-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CategoryRequest is the body of create and update
type CategoryRequest struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// CategoryResponse represents a category in API responses
type CategoryResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Type      string `json:"type"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

func toCategoryResponse(cat *domain.Category) CategoryResponse {
	return CategoryResponse{
		ID:        cat.ID.String(),
		Name:      cat.Name,
		Type:      string(cat.Type),
		CreatedAt: formatTimestamp(cat.CreatedAt),
		UpdatedAt: formatTimestamp(cat.UpdatedAt),
	}
}

// parseType accepts INCOME and EXPENSE in any case
func parseType(s string) domain.TransactionType {
	return domain.TransactionType(strings.ToUpper(strings.TrimSpace(s)))
}

// CreateCategory godoc
// @Summary Create a category
// @Description Names are unique per company and type, ignoring case.
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CategoryRequest true "Category"
// @Success 201 {object} CategoryResponse
// @Failure 400 {object} ProblemDetails
// @Failure 409 {object} ProblemDetails
// @Router /categories [post]
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.CreateCategory(c.Request().Context(), companyID, req.Name, parseType(req.Type))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, toCategoryResponse(category))
}

// GetCategories godoc
// @Summary List categories ordered by name
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param type query string false "INCOME or EXPENSE"
// @Success 200 {array} CategoryResponse
// @Router /categories [get]
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	var txType *domain.TransactionType
	if raw := c.QueryParam("type"); raw != "" {
		t := parseType(raw)
		if !t.IsValid() {
			return NewFieldError(c, "type", "Type must be one of: INCOME, EXPENSE")
		}
		txType = &t
	}

	categories, err := h.categoryService.GetCategories(c.Request().Context(), companyID, txType)
	if err != nil {
		return respondError(c, err)
	}

	response := make([]CategoryResponse, len(categories))
	for i, cat := range categories {
		response[i] = toCategoryResponse(cat)
	}
	return c.JSON(http.StatusOK, response)
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid category ID")
	}

	var req CategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	category, err := h.categoryService.UpdateCategory(c.Request().Context(), companyID, id, req.Name, parseType(req.Type))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toCategoryResponse(category))
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid category ID")
	}

	if err := h.categoryService.DeleteCategory(c.Request().Context(), companyID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}
