package handler

import (
	"errors"
	"net/http"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ProblemDetails represents an RFC 7807 Problem Details response
type ProblemDetails struct {
	Type     string            `json:"type"`
	Title    string            `json:"title"`
	Status   int               `json:"status"`
	Detail   string            `json:"detail,omitempty"`
	Instance string            `json:"instance,omitempty"`
	Errors   []ValidationError `json:"errors,omitempty"`
}

// ValidationError represents a single validation error
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error types
const (
	ErrorTypeValidation   = "https://canteiro.app/errors/validation"
	ErrorTypeNotFound     = "https://canteiro.app/errors/not-found"
	ErrorTypeUnauthorized = "https://canteiro.app/errors/unauthorized"
	ErrorTypeConflict     = "https://canteiro.app/errors/conflict"
	ErrorTypeUnavailable  = "https://canteiro.app/errors/service-unavailable"
	ErrorTypeInternal     = "https://canteiro.app/errors/internal"
)

func problem(c echo.Context, status int, errorType, title, detail string, fieldErrors []ValidationError) error {
	return c.JSON(status, ProblemDetails{
		Type:     errorType,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: c.Request().URL.Path,
		Errors:   fieldErrors,
	})
}

// NewValidationError creates a validation error response
func NewValidationError(c echo.Context, detail string, errors []ValidationError) error {
	return problem(c, http.StatusBadRequest, ErrorTypeValidation, "Validation Error", detail, errors)
}

// NewFieldError is a validation error about a single field
func NewFieldError(c echo.Context, field, message string) error {
	return NewValidationError(c, "Validation failed", []ValidationError{{Field: field, Message: message}})
}

// NewNotFoundError creates a not found error response
func NewNotFoundError(c echo.Context, detail string) error {
	return problem(c, http.StatusNotFound, ErrorTypeNotFound, "Not Found", detail, nil)
}

// NewUnauthorizedError creates an unauthorized error response
func NewUnauthorizedError(c echo.Context, detail string) error {
	return problem(c, http.StatusUnauthorized, ErrorTypeUnauthorized, "Unauthorized", detail, nil)
}

// NewConflictError creates a conflict error response
func NewConflictError(c echo.Context, detail string) error {
	return problem(c, http.StatusConflict, ErrorTypeConflict, "Conflict", detail, nil)
}

// NewServiceUnavailableError is returned when an optional integration is not configured
func NewServiceUnavailableError(c echo.Context, detail string) error {
	return problem(c, http.StatusServiceUnavailable, ErrorTypeUnavailable, "Service Unavailable", detail, nil)
}

// NewInternalError creates an internal error response
func NewInternalError(c echo.Context, detail string) error {
	return problem(c, http.StatusInternalServerError, ErrorTypeInternal, "Internal Server Error", detail, nil)
}

type fieldProblem struct {
	err     error
	field   string
	message string
}

// fieldProblems maps validation errors raised by services to the request field they concern
var fieldProblems = []fieldProblem{
	{domain.ErrNameRequired, "name", "Name is required"},
	{domain.ErrNameTooLong, "name", "Name is too long"},
	{domain.ErrProjectDescriptionLen, "description", "Description must be 1000 characters or less"},
	{domain.ErrProjectDatesInvalid, "endDate", "End date must not be before start date"},
	{domain.ErrDescriptionRequired, "description", "Description is required"},
	{domain.ErrDescriptionTooLong, "description", "Description must be 255 characters or less"},
	{domain.ErrInvalidAmount, "amount", "Amount must be positive"},
	{domain.ErrInvalidTransactionType, "type", "Type must be one of: INCOME, EXPENSE"},
	{domain.ErrCategoryRequired, "categoryId", "Category is required"},
	{domain.ErrCategoryTypeMismatch, "categoryId", "Category type does not match transaction type"},
	{domain.ErrInstallmentsOutOfRange, "installments", "Installments must be between 1 and 120"},
	{domain.ErrInstallmentAmountTooSmall, "amount", "Amount is too small to split into this many installments"},
	{domain.ErrInstallmentGroupInvalid, "installments", "Installment fields are inconsistent"},
	{domain.ErrInvalidPeriodMode, "mode", "Mode must be one of: week, month, all"},
}

// respondError turns a service error into a problem details response
func respondError(c echo.Context, err error) error {
	for _, p := range fieldProblems {
		if errors.Is(err, p.err) {
			return NewFieldError(c, p.field, p.message)
		}
	}

	switch {
	case errors.Is(err, domain.ErrCategoryAlreadyExists):
		return NewConflictError(c, "A category with this name and type already exists")
	case errors.Is(err, domain.ErrCategoryInUse):
		return NewConflictError(c, "Category is used by transactions")
	case errors.Is(err, domain.ErrCategoryTypeLocked):
		return NewConflictError(c, "Category type cannot change while transactions use it")
	case errors.Is(err, domain.ErrProjectInUse):
		return NewConflictError(c, "Project is used by transactions")
	case errors.Is(err, domain.ErrUnauthorized):
		return NewUnauthorizedError(c, "Authentication required")
	}

	switch {
	case errors.Is(err, domain.ErrTransactionNotFound):
		return NewNotFoundError(c, "Transaction not found")
	case errors.Is(err, domain.ErrInstallmentGroupMissing):
		return NewNotFoundError(c, "Installment group not found")
	case errors.Is(err, domain.ErrProjectNotFound):
		return NewNotFoundError(c, "Project not found")
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewNotFoundError(c, "Category not found")
	case errors.Is(err, domain.ErrCompanyNotFound), errors.Is(err, domain.ErrUserNotFound):
		return NewNotFoundError(c, "Company not found")
	case errors.Is(err, domain.ErrNotFound):
		return NewNotFoundError(c, "Resource not found")
	case errors.Is(err, domain.ErrInvalidInput):
		return NewValidationError(c, "Invalid input", nil)
	}

	log.Error().Err(err).Str("path", c.Request().URL.Path).Msg("Request failed")
	return NewInternalError(c, "An unexpected error occurred")
}

// respondReferenceError is respondError for writes that point at a project or category:
// a missing reference is a bad request field, not a missing resource
func respondReferenceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrCategoryNotFound):
		return NewFieldError(c, "categoryId", "Category not found")
	case errors.Is(err, domain.ErrProjectNotFound):
		return NewFieldError(c, "projectId", "Project not found")
	}
	return respondError(c, err)
}
