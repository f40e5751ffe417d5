package handler

import (
	"net/http"
	"strconv"
	"time"

	"github.com/dafibh/canteiro/canteiro-backend/internal/domain"
	"github.com/dafibh/canteiro/canteiro-backend/internal/middleware"
	"github.com/dafibh/canteiro/canteiro-backend/internal/service"
	"github.com/dafibh/canteiro/canteiro-backend/internal/util"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	now                func() time.Time
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		now:                time.Now,
	}
}

// TransactionRequest represents the create and update request body. Installments are
// only read on create.
type TransactionRequest struct {
	Description  string  `json:"description"`
	Amount       string  `json:"amount"`
	Date         string  `json:"date"`
	Type         string  `json:"type"`
	ProjectID    *string `json:"projectId,omitempty"`
	CategoryID   string  `json:"categoryId"`
	Installments int     `json:"installments,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID                 string  `json:"id"`
	Description        string  `json:"description"`
	Amount             string  `json:"amount"`
	Date               string  `json:"date"`
	Type               string  `json:"type"`
	ProjectID          *string `json:"projectId"`
	ProjectName        *string `json:"projectName"`
	CategoryID         string  `json:"categoryId"`
	CategoryName       *string `json:"categoryName"`
	InstallmentGroupID *string `json:"installmentGroupId,omitempty"`
	InstallmentNumber  *int32  `json:"installmentNumber,omitempty"`
	TotalInstallments  *int32  `json:"totalInstallments,omitempty"`
	CreatedAt          string  `json:"createdAt"`
	UpdatedAt          string  `json:"updatedAt"`
}

// CreateTransactionResponse holds every row a create produced: one, or one per installment
type CreateTransactionResponse struct {
	Transactions       []TransactionResponse `json:"transactions"`
	InstallmentGroupID *string               `json:"installmentGroupId,omitempty"`
}

// TransactionListResponse is one page of transactions
type TransactionListResponse struct {
	Data            []TransactionResponse `json:"data"`
	Page            int32                 `json:"page"`
	PageSize        int32                 `json:"pageSize"`
	TotalItems      int64                 `json:"totalItems"`
	TotalPages      int32                 `json:"totalPages"`
	HasTransactions bool                  `json:"hasTransactions"`
}

func uuidString(id *uuid.UUID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}

func toTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:                 t.ID.String(),
		Description:        t.Description,
		Amount:             t.Amount.StringFixed(2),
		Date:               util.FormatDate(t.Date),
		Type:               string(t.Type),
		ProjectID:          uuidString(t.ProjectID),
		ProjectName:        t.ProjectName,
		CategoryID:         t.CategoryID.String(),
		CategoryName:       t.CategoryName,
		InstallmentGroupID: uuidString(t.InstallmentGroupID),
		InstallmentNumber:  t.InstallmentNumber,
		TotalInstallments:  t.TotalInstallments,
		CreatedAt:          formatTimestamp(t.CreatedAt),
		UpdatedAt:          formatTimestamp(t.UpdatedAt),
	}
}

func toTransactionResponses(rows []*domain.Transaction) []TransactionResponse {
	response := make([]TransactionResponse, len(rows))
	for i, t := range rows {
		response[i] = toTransactionResponse(t)
	}
	return response
}

// transactionFields holds the parsed, not yet validated, fields of a request
type transactionFields struct {
	amount     decimal.Decimal
	date       time.Time
	txType     domain.TransactionType
	projectID  *uuid.UUID
	categoryID uuid.UUID
}

func (req TransactionRequest) parse() (transactionFields, []ValidationError) {
	var (
		f    transactionFields
		errs []ValidationError
	)

	amount, err := decimal.NewFromString(req.Amount)
	switch {
	case err != nil:
		errs = append(errs, ValidationError{Field: "amount", Message: "Must be a valid decimal number"})
	case amount.Exponent() < -2 && !amount.Equal(amount.Round(2)):
		errs = append(errs, ValidationError{Field: "amount", Message: "At most two decimal places"})
	default:
		f.amount = amount
	}

	if req.Date == "" {
		errs = append(errs, ValidationError{Field: "date", Message: "Date is required"})
	} else if date, err := util.ParseDate(req.Date); err != nil {
		errs = append(errs, ValidationError{Field: "date", Message: "Must be in YYYY-MM-DD format"})
	} else {
		f.date = date
	}

	f.txType = parseType(req.Type)

	if projectID, err := optionalUUID(req.ProjectID); err != nil {
		errs = append(errs, ValidationError{Field: "projectId", Message: "Invalid project ID"})
	} else {
		f.projectID = projectID
	}

	if req.CategoryID == "" {
		errs = append(errs, ValidationError{Field: "categoryId", Message: "Category is required"})
	} else if categoryID, err := uuid.Parse(req.CategoryID); err != nil {
		errs = append(errs, ValidationError{Field: "categoryId", Message: "Invalid category ID"})
	} else {
		f.categoryID = categoryID
	}

	return f, errs
}

// CreateTransaction godoc
// @Summary Create a transaction
// @Description Creates an income or expense. With installments > 1 the amount is split into
// @Description that many monthly rows sharing an installment group; all rows are saved or none.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body TransactionRequest true "Transaction"
// @Success 201 {object} CreateTransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 401 {object} ProblemDetails
// @Router /transactions [post]
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	f, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	rows, err := h.transactionService.CreateTransaction(c.Request().Context(), companyID, service.CreateTransactionInput{
		Description:  req.Description,
		Amount:       f.amount,
		Date:         f.date,
		Type:         f.txType,
		ProjectID:    f.projectID,
		CategoryID:   f.categoryID,
		Installments: req.Installments,
	})
	if err != nil {
		return respondReferenceError(c, err)
	}

	response := CreateTransactionResponse{Transactions: toTransactionResponses(rows)}
	if len(rows) > 0 {
		response.InstallmentGroupID = uuidString(rows[0].InstallmentGroupID)
	}
	return c.JSON(http.StatusCreated, response)
}

// parseListFilters reads pagination and filter query parameters. A period query (mode,
// year, month, anchor, direction) takes precedence over startDate/endDate.
func (h *TransactionHandler) parseListFilters(c echo.Context) (*domain.TransactionFilters, []ValidationError) {
	filters := &domain.TransactionFilters{}
	var errs []ValidationError

	if raw := c.QueryParam("page"); raw != "" {
		page, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || page < 1 {
			errs = append(errs, ValidationError{Field: "page", Message: "Page must be a positive integer"})
		}
		filters.Page = int32(page)
	}
	if raw := c.QueryParam("pageSize"); raw != "" {
		size, err := strconv.ParseInt(raw, 10, 32)
		if err != nil || size < 1 {
			errs = append(errs, ValidationError{Field: "pageSize", Message: "Page size must be a positive integer"})
		}
		filters.PageSize = int32(size)
	}

	if raw := c.QueryParam("type"); raw != "" {
		t := parseType(raw)
		if !t.IsValid() {
			errs = append(errs, ValidationError{Field: "type", Message: "Type must be one of: INCOME, EXPENSE"})
		}
		filters.Type = &t
	}

	for _, p := range []struct {
		name string
		dst  **uuid.UUID
	}{
		{"projectId", &filters.ProjectID},
		{"categoryId", &filters.CategoryID},
	} {
		raw := c.QueryParam(p.name)
		id, err := optionalUUID(&raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: p.name, Message: "Invalid ID"})
			continue
		}
		*p.dst = id
	}

	if hasPeriodQuery(c) {
		selector, fieldErr := parsePeriodSelector(c, h.now())
		if fieldErr != nil {
			return nil, append(errs, *fieldErr)
		}
		if selector.Mode != domain.PeriodModeAll {
			r := selector.Range()
			start, end := util.DateOnly(r.Start), util.DateOnly(r.End)
			filters.StartDate, filters.EndDate = &start, &end
		}
		return filters, errs
	}

	for _, p := range []struct {
		name string
		dst  **time.Time
	}{
		{"startDate", &filters.StartDate},
		{"endDate", &filters.EndDate},
	} {
		raw := c.QueryParam(p.name)
		d, err := optionalDate(&raw)
		if err != nil {
			errs = append(errs, ValidationError{Field: p.name, Message: "Must be in YYYY-MM-DD format"})
			continue
		}
		*p.dst = d
	}
	if filters.StartDate != nil && filters.EndDate != nil && filters.EndDate.Before(*filters.StartDate) {
		errs = append(errs, ValidationError{Field: "endDate", Message: "End date must not be before start date"})
	}

	return filters, errs
}

// GetTransactions godoc
// @Summary List transactions
// @Description Newest first. Filters combine; a period query overrides startDate/endDate.
// @Tags transactions
// @Produce json
// @Security BearerAuth
// @Param page query int false "Page number (default 1)"
// @Param pageSize query int false "Items per page (default 20, max 100)"
// @Param type query string false "INCOME or EXPENSE"
// @Param projectId query string false "Project ID"
// @Param categoryId query string false "Category ID"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param mode query string false "week, month or all"
// @Success 200 {object} TransactionListResponse
// @Failure 400 {object} ProblemDetails
// @Router /transactions [get]
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}

	filters, errs := h.parseListFilters(c)
	if len(errs) > 0 {
		return NewValidationError(c, "Invalid query parameters", errs)
	}

	list, err := h.transactionService.ListTransactions(c.Request().Context(), companyID, filters)
	if err != nil {
		log.Error().Err(err).Str("company_id", companyID.String()).Msg("Failed to list transactions")
		return respondError(c, err)
	}

	return c.JSON(http.StatusOK, TransactionListResponse{
		Data:            toTransactionResponses(list.Data),
		Page:            list.Page,
		PageSize:        list.PageSize,
		TotalItems:      list.TotalItems,
		TotalPages:      list.TotalPages,
		HasTransactions: list.HasTransactions,
	})
}

// GetTransaction handles GET /transactions/:id
func (h *TransactionHandler) GetTransaction(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid transaction ID")
	}

	transaction, err := h.transactionService.GetTransaction(c.Request().Context(), companyID, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// UpdateTransaction godoc
// @Summary Update a transaction
// @Description Edits one row. Rows of an installment group keep their group, number and total.
// @Tags transactions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Transaction ID"
// @Param request body TransactionRequest true "Transaction"
// @Success 200 {object} TransactionResponse
// @Failure 400 {object} ProblemDetails
// @Failure 404 {object} ProblemDetails
// @Router /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid transaction ID")
	}

	var req TransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}

	f, errs := req.parse()
	if len(errs) > 0 {
		return NewValidationError(c, "Validation failed", errs)
	}

	transaction, err := h.transactionService.UpdateTransaction(c.Request().Context(), companyID, id, service.UpdateTransactionInput{
		Description: req.Description,
		Amount:      f.amount,
		Date:        f.date,
		Type:        f.txType,
		ProjectID:   f.projectID,
		CategoryID:  f.categoryID,
	})
	if err != nil {
		return respondReferenceError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponse(transaction))
}

// DeleteTransaction handles DELETE /transactions/:id. Only the given row is removed.
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	id, ok := pathID(c, "id")
	if !ok {
		return NewFieldError(c, "id", "Invalid transaction ID")
	}

	if err := h.transactionService.DeleteTransaction(c.Request().Context(), companyID, id); err != nil {
		return respondError(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// GetInstallmentGroup handles GET /transactions/installments/:groupId
func (h *TransactionHandler) GetInstallmentGroup(c echo.Context) error {
	companyID := middleware.GetCompanyID(c)
	if companyID == uuid.Nil {
		return NewUnauthorizedError(c, "Company required")
	}
	groupID, ok := pathID(c, "groupId")
	if !ok {
		return NewFieldError(c, "groupId", "Invalid installment group ID")
	}

	rows, err := h.transactionService.ListInstallmentGroup(c.Request().Context(), companyID, groupID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, toTransactionResponses(rows))
}
